package service

import (
	"context"
	"errors"
	"time"

	"github.com/YousofDev/Invoice-Tracker/internal/apierror"
	"github.com/YousofDev/Invoice-Tracker/internal/dto"
	"github.com/YousofDev/Invoice-Tracker/internal/model"
	"github.com/YousofDev/Invoice-Tracker/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ItemService interface {
	Create(ctx context.Context, ownerID uuid.UUID, req dto.CreateItemRequest) (*dto.ItemResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateItemRequest) (*dto.ItemResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*dto.ItemResponse, error)
	List(ctx context.Context, ownerID uuid.UUID, page, limit int) (*dto.ItemListResponse, error)
}

type itemService struct {
	repo repository.ItemRepository
}

func NewItemService(repo repository.ItemRepository) ItemService {
	return &itemService{repo: repo}
}

func (s *itemService) Create(ctx context.Context, ownerID uuid.UUID, req dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if req.Price.IsNegative() {
		return nil, apierror.InvalidArgumentf("price must not be negative, got %s", req.Price.String())
	}
	item := &model.Item{
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Active:      true,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, apierror.Internalf(err, "failed to create item")
	}
	return itemToResponse(item), nil
}

func (s *itemService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFoundf("item %s not found", id)
		}
		return nil, apierror.Internalf(err, "failed to load item")
	}
	if req.Price.IsNegative() {
		return nil, apierror.InvalidArgumentf("price must not be negative, got %s", req.Price.String())
	}

	// Existing invoice lines keep their snapshotted price; only future
	// invoices see the new one.
	item.Name = req.Name
	item.Description = req.Description
	item.Price = req.Price

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, apierror.Internalf(err, "failed to update item")
	}
	return itemToResponse(item), nil
}

func (s *itemService) Delete(ctx context.Context, id uuid.UUID) error {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFoundf("item %s not found", id)
		}
		return apierror.Internalf(err, "failed to load item")
	}

	lineCount, err := s.repo.CountInvoiceLines(ctx, id)
	if err != nil {
		return apierror.Internalf(err, "failed to count invoice lines")
	}
	if lineCount > 0 {
		return apierror.Conflictf("item %q cannot be deleted: %d invoice line(s) reference it", item.Name, lineCount)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return apierror.Internalf(err, "failed to delete item")
	}
	return nil
}

func (s *itemService) Get(ctx context.Context, id uuid.UUID) (*dto.ItemResponse, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFoundf("item %s not found", id)
		}
		return nil, apierror.Internalf(err, "failed to load item")
	}
	return itemToResponse(item), nil
}

func (s *itemService) List(ctx context.Context, ownerID uuid.UUID, page, limit int) (*dto.ItemListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	items, total, err := s.repo.List(ctx, ownerID, page, limit)
	if err != nil {
		return nil, apierror.Internalf(err, "failed to list items")
	}
	data := make([]dto.ItemResponse, 0, len(items))
	for i := range items {
		data = append(data, *itemToResponse(&items[i]))
	}
	return &dto.ItemListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func itemToResponse(i *model.Item) *dto.ItemResponse {
	return &dto.ItemResponse{
		ID:          i.ID.String(),
		Name:        i.Name,
		Description: i.Description,
		Price:       i.Price,
		Active:      i.Active,
		CreatedAt:   i.CreatedAt.Format(time.RFC3339),
	}
}
