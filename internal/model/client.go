package model

import (
	"time"

	"github.com/google/uuid"
)

// Client is a billable party. Reference ("CLI{n}") is assigned from a
// sequence at creation and never changes afterwards.
type Client struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Reference   string    `gorm:"uniqueIndex;not null"`
	OwnerID     uuid.UUID `gorm:"type:uuid;index;not null"`
	FirstName   string    `gorm:"not null"`
	LastName    *string
	Email       *string
	Address     *string
	Phone       *string
	Description *string
	Active      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Owner *User `gorm:"foreignKey:OwnerID"`
}
