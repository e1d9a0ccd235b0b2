package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that owns clients, items, invoices and payments.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	FullName     string    `gorm:"not null"`
	PasswordHash string    `gorm:"not null"`
	Active       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
