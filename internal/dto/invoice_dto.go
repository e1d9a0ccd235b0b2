package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// InvoiceFilter is bound from the query string of GET /v1/invoices.
// OwnerID is filled from the JWT claims, never from the client.
type InvoiceFilter struct {
	Status   string `form:"status"` // draft | unpaid | partially_paid | paid | voided | all
	ClientID string `form:"client_id" validate:"omitempty,uuid"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
	OwnerID  string `form:"-"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// InvoiceLineRequest references a catalog item whose current price is
// snapshotted into the line at creation time.
type InvoiceLineRequest struct {
	ItemID      string  `json:"item_id"  validate:"required,uuid"`
	Quantity    int     `json:"quantity" validate:"required,min=1"`
	Description *string `json:"description"`
}

type CreateInvoiceRequest struct {
	ClientID    string  `json:"client_id"    validate:"required,uuid"`
	Status      string  `json:"status"       validate:"omitempty,oneof=draft unpaid"`
	Description *string `json:"description"`
	IssuingDate string  `json:"issuing_date" validate:"required"`
	DueDate     string  `json:"due_date"     validate:"required"`
	Currency    string  `json:"currency"     validate:"omitempty,len=3"`
	// Lines may be empty: a zero-line invoice has total_amount = 0.
	Lines []InvoiceLineRequest `json:"lines" validate:"dive"`
}

// UpdateInvoiceRequest replaces the whole line set; partial line patches are
// not supported.
type UpdateInvoiceRequest struct {
	ClientID    string               `json:"client_id"    validate:"required,uuid"`
	Status      string               `json:"status"       validate:"omitempty,oneof=draft unpaid voided"`
	Description *string              `json:"description"`
	IssuingDate string               `json:"issuing_date" validate:"required"`
	DueDate     string               `json:"due_date"     validate:"required"`
	Currency    string               `json:"currency"     validate:"omitempty,len=3"`
	Lines       []InvoiceLineRequest `json:"lines"        validate:"dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type InvoiceLineResponse struct {
	ID          string          `json:"id"`
	ItemID      string          `json:"item_id"`
	ItemName    string          `json:"item_name,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	ItemAmount  decimal.Decimal `json:"item_amount"`
	Description *string         `json:"description,omitempty"`
}

type InvoiceResponse struct {
	ID            string                `json:"id"`
	Reference     string                `json:"reference"`
	ClientID      string                `json:"client_id"`
	Status        string                `json:"status"`
	Description   *string               `json:"description,omitempty"`
	IssuingDate   string                `json:"issuing_date"`
	DueDate       string                `json:"due_date"`
	FullyPaidDate *string               `json:"fully_paid_date,omitempty"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	PaidAmount    decimal.Decimal       `json:"paid_amount"`
	Currency      string                `json:"currency"`
	IsSent        bool                  `json:"is_sent"`
	Lines         []InvoiceLineResponse `json:"lines"`
	CreatedAt     string                `json:"created_at"`
}

type InvoiceListResponse struct {
	Data  []InvoiceResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
