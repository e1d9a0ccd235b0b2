package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/YousofDev/Invoice-Tracker/internal/apierror"
	"github.com/YousofDev/Invoice-Tracker/internal/dto"
	"github.com/YousofDev/Invoice-Tracker/internal/model"
	"github.com/YousofDev/Invoice-Tracker/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClientService interface {
	Create(ctx context.Context, ownerID uuid.UUID, req dto.CreateClientRequest) (*dto.ClientResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateClientRequest) (*dto.ClientResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error)
	List(ctx context.Context, ownerID uuid.UUID, page, limit int) (*dto.ClientListResponse, error)
}

type clientService struct {
	repo repository.ClientRepository
}

func NewClientService(repo repository.ClientRepository) ClientService {
	return &clientService{repo: repo}
}

func (s *clientService) Create(ctx context.Context, ownerID uuid.UUID, req dto.CreateClientRequest) (*dto.ClientResponse, error) {
	var client model.Client
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		num, err := s.repo.NextClientNumber(ctx, tx)
		if err != nil {
			return apierror.Internalf(err, "failed to allocate client reference")
		}
		client = model.Client{
			Reference:   fmt.Sprintf("CLI%d", num),
			OwnerID:     ownerID,
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Email:       req.Email,
			Address:     req.Address,
			Phone:       req.Phone,
			Description: req.Description,
			Active:      true,
		}
		if err := s.repo.Create(ctx, tx, &client); err != nil {
			return apierror.Internalf(err, "failed to create client")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return clientToResponse(&client), nil
}

func (s *clientService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFoundf("client %s not found", id)
		}
		return nil, apierror.Internalf(err, "failed to load client")
	}

	client.FirstName = req.FirstName
	client.LastName = req.LastName
	client.Email = req.Email
	client.Address = req.Address
	client.Phone = req.Phone
	client.Description = req.Description

	if err := s.repo.Update(ctx, client); err != nil {
		return nil, apierror.Internalf(err, "failed to update client")
	}
	return clientToResponse(client), nil
}

func (s *clientService) Delete(ctx context.Context, id uuid.UUID) error {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFoundf("client %s not found", id)
		}
		return apierror.Internalf(err, "failed to load client")
	}

	// Invoices keep a hard reference to the client; deleting would orphan them.
	invoiceCount, err := s.repo.CountInvoices(ctx, id)
	if err != nil {
		return apierror.Internalf(err, "failed to count invoices")
	}
	if invoiceCount > 0 {
		return apierror.Conflictf("client %s cannot be deleted: %d invoice(s) reference it", client.Reference, invoiceCount)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return apierror.Internalf(err, "failed to delete client")
	}
	return nil
}

func (s *clientService) Get(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFoundf("client %s not found", id)
		}
		return nil, apierror.Internalf(err, "failed to load client")
	}
	return clientToResponse(client), nil
}

func (s *clientService) List(ctx context.Context, ownerID uuid.UUID, page, limit int) (*dto.ClientListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	clients, total, err := s.repo.List(ctx, ownerID, page, limit)
	if err != nil {
		return nil, apierror.Internalf(err, "failed to list clients")
	}
	data := make([]dto.ClientResponse, 0, len(clients))
	for i := range clients {
		data = append(data, *clientToResponse(&clients[i]))
	}
	return &dto.ClientListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func clientToResponse(c *model.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ID:          c.ID.String(),
		Reference:   c.Reference,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		Address:     c.Address,
		Phone:       c.Phone,
		Description: c.Description,
		Active:      c.Active,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}
