package repository

import (
	"context"

	"github.com/YousofDev/Invoice-Tracker/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ItemRepository interface {
	Create(ctx context.Context, i *model.Item) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error)
	List(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]model.Item, int64, error)
	Update(ctx context.Context, i *model.Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountInvoiceLines(ctx context.Context, itemID uuid.UUID) (int64, error)
}

type itemRepo struct{ db *gorm.DB }

func NewItemRepository(db *gorm.DB) ItemRepository { return &itemRepo{db: db} }

func (r *itemRepo) Create(ctx context.Context, i *model.Item) error {
	return r.db.WithContext(ctx).Create(i).Error
}

func (r *itemRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	var i model.Item
	err := r.db.WithContext(ctx).First(&i, id).Error
	return &i, err
}

func (r *itemRepo) List(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]model.Item, int64, error) {
	var items []model.Item
	var total int64
	offset := (page - 1) * limit

	q := r.db.WithContext(ctx).Model(&model.Item{}).Where("owner_id = ? AND active = true", ownerID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("name ASC").Offset(offset).Limit(limit).Find(&items).Error
	return items, total, err
}

func (r *itemRepo) Update(ctx context.Context, i *model.Item) error {
	return r.db.WithContext(ctx).Save(i).Error
}

func (r *itemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Item{}, id).Error
}

func (r *itemRepo) CountInvoiceLines(ctx context.Context, itemID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.InvoiceLine{}).Where("item_id = ?", itemID).Count(&n).Error
	return n, err
}
