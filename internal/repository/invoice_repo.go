package repository

import (
	"context"
	"time"

	"github.com/YousofDev/Invoice-Tracker/internal/dto"
	"github.com/YousofDev/Invoice-Tracker/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvoiceRepository interface {
	Create(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	// FindByIDForUpdate loads the invoice row with a row-level lock (SELECT ...
	// FOR UPDATE) so concurrent balance mutations on the same invoice serialize.
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Invoice, error)
	UpdateHeader(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error
	// ReplaceLines deletes the current line set and inserts the new one.
	// Must run inside the caller's transaction.
	ReplaceLines(ctx context.Context, tx *gorm.DB, invoiceID uuid.UUID, lines []model.InvoiceLine) error
	// UpdateBalance writes the reconciliation fields with an explicit column
	// list — never a generic patch.
	UpdateBalance(ctx context.Context, tx *gorm.DB, id uuid.UUID, paid decimal.Decimal, status string, fullyPaidDate *time.Time) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	// CountPayments runs on the caller's transaction so the count is taken
	// under the invoice row lock, not against a snapshot that a concurrent
	// recording may have already outdated.
	CountPayments(ctx context.Context, tx *gorm.DB, invoiceID uuid.UUID) (int64, error)
	NextInvoiceNumber(ctx context.Context, tx *gorm.DB) (int, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkSendFailed(ctx context.Context, id uuid.UUID, reason string, nextAttempt time.Time) error
	AbandonSend(ctx context.Context, id uuid.UUID, reason string) error
	ListPendingSendRetries(ctx context.Context, before time.Time, limit int) ([]model.Invoice, error)
	List(ctx context.Context, filter dto.InvoiceFilter) ([]model.Invoice, int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type invoiceRepo struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository { return &invoiceRepo{db: db} }

func (r *invoiceRepo) DB() *gorm.DB { return r.db }

func (r *invoiceRepo) Create(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error {
	return tx.WithContext(ctx).Create(inv).Error
}

func (r *invoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Lines.Item").
		Preload("Client").
		First(&inv, id).Error
	return &inv, err
}

func (r *invoiceRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&inv, id).Error
	return &inv, err
}

func (r *invoiceRepo) UpdateHeader(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error {
	return tx.WithContext(ctx).Model(inv).
		Select("client_id", "status", "description", "issuing_date", "due_date", "total_amount", "currency").
		Updates(inv).Error
}

func (r *invoiceRepo) ReplaceLines(ctx context.Context, tx *gorm.DB, invoiceID uuid.UUID, lines []model.InvoiceLine) error {
	if err := tx.WithContext(ctx).Where("invoice_id = ?", invoiceID).Delete(&model.InvoiceLine{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].InvoiceID = invoiceID
	}
	return tx.WithContext(ctx).Create(&lines).Error
}

func (r *invoiceRepo) UpdateBalance(ctx context.Context, tx *gorm.DB, id uuid.UUID, paid decimal.Decimal, status string, fullyPaidDate *time.Time) error {
	return tx.WithContext(ctx).Model(&model.Invoice{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"paid_amount":     paid,
			"status":          status,
			"fully_paid_date": fullyPaidDate,
		}).Error
}

func (r *invoiceRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	if err := tx.WithContext(ctx).Where("invoice_id = ?", id).Delete(&model.InvoiceLine{}).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Delete(&model.Invoice{}, id).Error
}

func (r *invoiceRepo) CountPayments(ctx context.Context, tx *gorm.DB, invoiceID uuid.UUID) (int64, error) {
	var n int64
	err := tx.WithContext(ctx).Model(&model.Payment{}).Where("invoice_id = ?", invoiceID).Count(&n).Error
	return n, err
}

func (r *invoiceRepo) NextInvoiceNumber(ctx context.Context, tx *gorm.DB) (int, error) {
	// Uses a PostgreSQL sequence for atomic reference number generation
	var num int
	err := tx.WithContext(ctx).Raw("SELECT nextval('invoices_reference_seq')").Scan(&num).Error
	return num, err
}

func (r *invoiceRepo) MarkSent(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Invoice{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_sent":         true,
			"last_send_error": nil,
			"next_send_at":    nil,
		}).Error
}

func (r *invoiceRepo) MarkSendFailed(ctx context.Context, id uuid.UUID, reason string, nextAttempt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Invoice{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"send_retry_count": gorm.Expr("send_retry_count + 1"),
			"last_send_error":  reason,
			"next_send_at":     nextAttempt,
		}).Error
}

// AbandonSend stops further delivery attempts for an invoice after the
// retry budget is exhausted. The retry cron only considers rows with a
// non-nil next_send_at.
func (r *invoiceRepo) AbandonSend(ctx context.Context, id uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).Model(&model.Invoice{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_send_error": reason,
			"next_send_at":    nil,
		}).Error
}

func (r *invoiceRepo) ListPendingSendRetries(ctx context.Context, before time.Time, limit int) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := r.db.WithContext(ctx).
		Where("is_sent = false AND next_send_at IS NOT NULL AND next_send_at <= ?", before).
		Order("next_send_at ASC").
		Limit(limit).
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepo) List(ctx context.Context, filter dto.InvoiceFilter) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Invoice{}).Where("owner_id = ?", filter.OwnerID)
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ClientID != "" {
		q = q.Where("client_id = ?", filter.ClientID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Lines.Item").
		Preload("Client").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&invoices).Error

	return invoices, total, err
}
