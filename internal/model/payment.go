package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment status values.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Payment method values.
const (
	PaymentMethodCash = "cash"
	PaymentMethodBank = "bank"
	PaymentMethodCard = "card"
)

// Payment records money applied against one invoice. The sum of completed
// payment amounts for an invoice never exceeds that invoice's total.
// Reference ("PY{n}") is sequence-assigned at creation and immutable.
type Payment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Reference   string    `gorm:"uniqueIndex;not null"`
	OwnerID     uuid.UUID `gorm:"type:uuid;index;not null"`
	ClientID    uuid.UUID `gorm:"type:uuid;index;not null"`
	InvoiceID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Status      string    `gorm:"type:varchar(20);not null;default:'completed'"`
	Method      string    `gorm:"type:varchar(20);not null;default:'cash'"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency    string          `gorm:"type:varchar(3);not null;default:'USD'"`
	PaymentDate time.Time       `gorm:"not null"`
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Owner   *User    `gorm:"foreignKey:OwnerID"`
	Client  *Client  `gorm:"foreignKey:ClientID"`
	Invoice *Invoice `gorm:"foreignKey:InvoiceID"`
}
