package repository

import (
	"context"

	"github.com/YousofDev/Invoice-Tracker/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClientRepository interface {
	Create(ctx context.Context, tx *gorm.DB, c *model.Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	List(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]model.Client, int64, error)
	Update(ctx context.Context, c *model.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountInvoices(ctx context.Context, clientID uuid.UUID) (int64, error)
	NextClientNumber(ctx context.Context, tx *gorm.DB) (int, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type clientRepo struct{ db *gorm.DB }

func NewClientRepository(db *gorm.DB) ClientRepository { return &clientRepo{db: db} }

func (r *clientRepo) DB() *gorm.DB { return r.db }

func (r *clientRepo) Create(ctx context.Context, tx *gorm.DB, c *model.Client) error {
	return tx.WithContext(ctx).Create(c).Error
}

func (r *clientRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var c model.Client
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *clientRepo) List(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]model.Client, int64, error) {
	var clients []model.Client
	var total int64
	offset := (page - 1) * limit

	q := r.db.WithContext(ctx).Model(&model.Client{}).Where("owner_id = ? AND active = true", ownerID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&clients).Error
	return clients, total, err
}

func (r *clientRepo) Update(ctx context.Context, c *model.Client) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *clientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Client{}, id).Error
}

func (r *clientRepo) CountInvoices(ctx context.Context, clientID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Invoice{}).Where("client_id = ?", clientID).Count(&n).Error
	return n, err
}

func (r *clientRepo) NextClientNumber(ctx context.Context, tx *gorm.DB) (int, error) {
	// PostgreSQL sequence keeps reference generation atomic under concurrency
	var num int
	err := tx.WithContext(ctx).Raw("SELECT nextval('clients_reference_seq')").Scan(&num).Error
	return num, err
}
