package dto

import "github.com/shopspring/decimal"

type CreateItemRequest struct {
	Name        string          `json:"name"  validate:"required,min=1"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"required,min=0"`
}

type UpdateItemRequest struct {
	Name        string          `json:"name"  validate:"required,min=1"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"required,min=0"`
}

type ItemResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Active      bool            `json:"active"`
	CreatedAt   string          `json:"created_at"`
}

type ItemListResponse struct {
	Data  []ItemResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
