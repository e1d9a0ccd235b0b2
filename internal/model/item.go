package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a catalog entry. Price is the source of the per-line snapshot taken
// when an invoice line is created — later price edits never touch past invoices.
type Item struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerID     uuid.UUID `gorm:"type:uuid;index;not null"`
	Name        string    `gorm:"index;not null"`
	Description *string
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Active      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Owner *User `gorm:"foreignKey:OwnerID"`
}
