package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice status values.
const (
	InvoiceStatusDraft         = "draft"
	InvoiceStatusUnpaid        = "unpaid"
	InvoiceStatusPartiallyPaid = "partially_paid"
	InvoiceStatusPaid          = "paid"
	InvoiceStatusVoided        = "voided"
)

// Invoice holds the balance fields kept consistent by the reconciliation
// rules:
//   - TotalAmount always equals the sum of ItemAmount over current lines.
//   - 0 <= PaidAmount <= TotalAmount after every completed operation.
//   - Status is "paid" exactly when PaidAmount == TotalAmount (and
//     FullyPaidDate is set).
//
// Reference ("INV{n}") is sequence-assigned at creation and immutable.
type Invoice struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Reference     string    `gorm:"uniqueIndex;not null"`
	OwnerID       uuid.UUID `gorm:"type:uuid;index;not null"`
	ClientID      uuid.UUID `gorm:"type:uuid;index;not null"`
	Status        string    `gorm:"type:varchar(20);not null;default:'unpaid'"`
	Description   *string
	IssuingDate   time.Time `gorm:"not null"`
	DueDate       time.Time `gorm:"not null"`
	FullyPaidDate *time.Time
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Currency      string          `gorm:"type:varchar(3);not null;default:'USD'"`
	IsSent        bool            `gorm:"not null;default:false"`
	// Retry fields — used by the delivery cron to re-attempt failed sends
	SendRetryCount int        `gorm:"not null;default:0"`
	NextSendAt     *time.Time `gorm:"column:next_send_at"`
	LastSendError  *string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Owner    *User         `gorm:"foreignKey:OwnerID"`
	Client   *Client       `gorm:"foreignKey:ClientID"`
	Lines    []InvoiceLine `gorm:"foreignKey:InvoiceID"`
	Payments []Payment     `gorm:"foreignKey:InvoiceID"`
}

// RemainingAmount is the outstanding balance (TotalAmount - PaidAmount).
func (i *Invoice) RemainingAmount() decimal.Decimal {
	return i.TotalAmount.Sub(i.PaidAmount)
}

// InvoiceLine is one billable entry on an invoice: a priced quantity of a
// catalog item. Price is a snapshot of the item's price at creation time.
// The line set is only ever replaced as a whole, never patched.
type InvoiceLine struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceID   uuid.UUID `gorm:"type:uuid;index;not null"`
	ItemID      uuid.UUID `gorm:"type:uuid;index;not null"`
	Quantity    int       `gorm:"not null"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ItemAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Item *Item `gorm:"foreignKey:ItemID"`
}
