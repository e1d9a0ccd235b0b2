package repository

import (
	"context"

	"github.com/YousofDev/Invoice-Tracker/internal/dto"
	"github.com/YousofDev/Invoice-Tracker/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, p *model.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	// FindByIDForUpdate re-reads the payment row with a row-level lock inside
	// the caller's transaction. Reconciliation deltas must come from this row,
	// not from a read taken before the invoice lock was acquired.
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Payment, error)
	UpdateAmount(ctx context.Context, tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	NextPaymentNumber(ctx context.Context, tx *gorm.DB) (int, error)
	List(ctx context.Context, filter dto.PaymentFilter) ([]model.Payment, int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type paymentRepo struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) PaymentRepository { return &paymentRepo{db: db} }

func (r *paymentRepo) DB() *gorm.DB { return r.db }

func (r *paymentRepo) Create(ctx context.Context, tx *gorm.DB, p *model.Payment) error {
	return tx.WithContext(ctx).Create(p).Error
}

func (r *paymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var p model.Payment
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *paymentRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Payment, error) {
	var p model.Payment
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, id).Error
	return &p, err
}

func (r *paymentRepo) UpdateAmount(ctx context.Context, tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) error {
	return tx.WithContext(ctx).Model(&model.Payment{}).Where("id = ?", id).Update("amount", amount).Error
}

func (r *paymentRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return tx.WithContext(ctx).Delete(&model.Payment{}, id).Error
}

func (r *paymentRepo) NextPaymentNumber(ctx context.Context, tx *gorm.DB) (int, error) {
	var num int
	err := tx.WithContext(ctx).Raw("SELECT nextval('payments_reference_seq')").Scan(&num).Error
	return num, err
}

func (r *paymentRepo) List(ctx context.Context, filter dto.PaymentFilter) ([]model.Payment, int64, error) {
	var payments []model.Payment
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Payment{}).Where("owner_id = ?", filter.OwnerID)
	if filter.InvoiceID != "" {
		q = q.Where("invoice_id = ?", filter.InvoiceID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("payment_date DESC").Offset(offset).Limit(filter.Limit).Find(&payments).Error
	return payments, total, err
}
