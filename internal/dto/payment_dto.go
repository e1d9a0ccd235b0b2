package dto

import "github.com/shopspring/decimal"

// PaymentFilter is bound from the query string of GET /v1/payments.
type PaymentFilter struct {
	InvoiceID string `form:"invoice_id" validate:"omitempty,uuid"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
	OwnerID   string `form:"-"`
}

type RecordPaymentRequest struct {
	InvoiceID   string          `json:"invoice_id"   validate:"required,uuid"`
	Amount      decimal.Decimal `json:"amount"       validate:"required,gt=0"`
	Method      string          `json:"method"       validate:"omitempty,oneof=cash bank card"`
	PaymentDate string          `json:"payment_date"`
	Description *string         `json:"description"`
}

// UpdatePaymentRequest only touches the amount — the reconciliation rules
// re-derive the invoice balance from the delta.
type UpdatePaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required,gt=0"`
}

type PaymentResponse struct {
	ID          string          `json:"id"`
	Reference   string          `json:"reference"`
	InvoiceID   string          `json:"invoice_id"`
	ClientID    string          `json:"client_id"`
	Status      string          `json:"status"`
	Method      string          `json:"method"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	PaymentDate string          `json:"payment_date"`
	Description *string         `json:"description,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

type PaymentListResponse struct {
	Data  []PaymentResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
