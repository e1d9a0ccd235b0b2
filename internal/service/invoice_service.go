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
	"github.com/YousofDev/Invoice-Tracker/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceService interface {
	Create(ctx context.Context, ownerID uuid.UUID, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*dto.InvoiceResponse, error)
	List(ctx context.Context, filter dto.InvoiceFilter) (*dto.InvoiceListResponse, error)
	Send(ctx context.Context, id uuid.UUID) error
}

type invoiceService struct {
	repo            repository.InvoiceRepository
	clientRepo      repository.ClientRepository
	itemRepo        repository.ItemRepository
	dispatcher      *worker.Dispatcher
	defaultCurrency string
}

func NewInvoiceService(
	repo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	itemRepo repository.ItemRepository,
	dispatcher *worker.Dispatcher,
	defaultCurrency string,
) InvoiceService {
	return &invoiceService{
		repo:            repo,
		clientRepo:      clientRepo,
		itemRepo:        itemRepo,
		dispatcher:      dispatcher,
		defaultCurrency: defaultCurrency,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// parseDate accepts RFC 3339 timestamps or bare YYYY-MM-DD dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// resolveLines snapshots the current catalog price into each line and computes
// item_amount = quantity x price with exact decimal arithmetic. Returns the
// resolved line set and the invoice total.
func (s *invoiceService) resolveLines(ctx context.Context, reqLines []dto.InvoiceLineRequest) ([]model.InvoiceLine, decimal.Decimal, error) {
	lines := make([]model.InvoiceLine, 0, len(reqLines))
	total := decimal.Zero

	for _, l := range reqLines {
		itemID, err := uuid.Parse(l.ItemID)
		if err != nil {
			return nil, decimal.Zero, apierror.InvalidArgumentf("invalid item_id %q", l.ItemID)
		}
		if l.Quantity <= 0 {
			return nil, decimal.Zero, apierror.InvalidArgumentf("quantity must be positive, got %d", l.Quantity)
		}
		item, err := s.itemRepo.FindByID(ctx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, decimal.Zero, apierror.NotFoundf("item %s not found", l.ItemID)
			}
			return nil, decimal.Zero, apierror.Internalf(err, "failed to resolve item")
		}

		amount := item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		total = total.Add(amount)
		lines = append(lines, model.InvoiceLine{
			ItemID:      itemID,
			Quantity:    l.Quantity,
			Price:       item.Price,
			ItemAmount:  amount,
			Description: l.Description,
		})
	}
	return lines, total, nil
}

func (s *invoiceService) Create(ctx context.Context, ownerID uuid.UUID, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, apierror.InvalidArgumentf("invalid client_id %q", req.ClientID)
	}
	if _, err := s.clientRepo.FindByID(ctx, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFoundf("client %s not found", req.ClientID)
		}
		return nil, apierror.Internalf(err, "failed to resolve client")
	}

	issuingDate, err := parseDate(req.IssuingDate)
	if err != nil {
		return nil, apierror.InvalidArgumentf("invalid issuing_date %q", req.IssuingDate)
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		return nil, apierror.InvalidArgumentf("invalid due_date %q", req.DueDate)
	}

	status := req.Status
	if status == "" {
		status = model.InvoiceStatusUnpaid
	}
	currency := req.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	// Price snapshots and the total are resolved before the transaction; the
	// insert of invoice + lines + total is a single atomic unit.
	lines, total, err := s.resolveLines(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	var invoice model.Invoice
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		num, err := s.repo.NextInvoiceNumber(ctx, tx)
		if err != nil {
			return apierror.Internalf(err, "failed to allocate invoice reference")
		}
		invoice = model.Invoice{
			Reference:   fmt.Sprintf("INV%d", num),
			OwnerID:     ownerID,
			ClientID:    clientID,
			Status:      status,
			Description: req.Description,
			IssuingDate: issuingDate,
			DueDate:     dueDate,
			TotalAmount: total,
			PaidAmount:  decimal.Zero,
			Currency:    currency,
			Lines:       lines,
		}
		if err := s.repo.Create(ctx, tx, &invoice); err != nil {
			return apierror.Internalf(err, "failed to create invoice")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return invoiceToResponse(&invoice), nil
}

func (s *invoiceService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, apierror.InvalidArgumentf("invalid client_id %q", req.ClientID)
	}
	if _, err := s.clientRepo.FindByID(ctx, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFoundf("client %s not found", req.ClientID)
		}
		return nil, apierror.Internalf(err, "failed to resolve client")
	}

	issuingDate, err := parseDate(req.IssuingDate)
	if err != nil {
		return nil, apierror.InvalidArgumentf("invalid issuing_date %q", req.IssuingDate)
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		return nil, apierror.InvalidArgumentf("invalid due_date %q", req.DueDate)
	}

	lines, total, err := s.resolveLines(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	// Line composition must not change once money has been applied — that
	// would retroactively break the paid-amount invariant. The payment count
	// and the replacement run inside one transaction under the invoice row
	// lock, so a recording cannot commit between check and write. The same
	// lock also keeps the header update and the full line-set replacement
	// atomic for readers.
	var invoice *model.Invoice
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var txInnerErr error
		invoice, txInnerErr = s.repo.FindByIDForUpdate(ctx, tx, id)
		if txInnerErr != nil {
			if errors.Is(txInnerErr, gorm.ErrRecordNotFound) {
				return apierror.NotFoundf("invoice %s not found", id)
			}
			return apierror.Internalf(txInnerErr, "failed to lock invoice")
		}

		paymentCount, txInnerErr := s.repo.CountPayments(ctx, tx, id)
		if txInnerErr != nil {
			return apierror.Internalf(txInnerErr, "failed to count payments")
		}
		if paymentCount > 0 {
			return apierror.Conflictf("invoice %s cannot be updated: %d payment(s) are recorded against it", invoice.Reference, paymentCount)
		}

		invoice.ClientID = clientID
		if req.Status != "" {
			invoice.Status = req.Status
		}
		invoice.Description = req.Description
		invoice.IssuingDate = issuingDate
		invoice.DueDate = dueDate
		if req.Currency != "" {
			invoice.Currency = req.Currency
		}
		invoice.TotalAmount = total

		if err := s.repo.UpdateHeader(ctx, tx, invoice); err != nil {
			return apierror.Internalf(err, "failed to update invoice")
		}
		if err := s.repo.ReplaceLines(ctx, tx, id, lines); err != nil {
			return apierror.Internalf(err, "failed to replace invoice lines")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	invoice.Lines = lines
	return invoiceToResponse(invoice), nil
}

func (s *invoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	// Deleting an invoice with payments would orphan money records. The count
	// is taken under the invoice row lock in the same transaction as the
	// delete, so a payment recorded concurrently blocks the deletion instead
	// of slipping past a stale zero.
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		invoice, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFoundf("invoice %s not found", id)
			}
			return apierror.Internalf(err, "failed to lock invoice")
		}

		paymentCount, err := s.repo.CountPayments(ctx, tx, id)
		if err != nil {
			return apierror.Internalf(err, "failed to count payments")
		}
		if paymentCount > 0 {
			return apierror.Conflictf("invoice %s cannot be deleted: %d payment(s) are recorded against it", invoice.Reference, paymentCount)
		}

		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return apierror.Internalf(err, "failed to delete invoice")
		}
		return nil
	})
}

func (s *invoiceService) Get(ctx context.Context, id uuid.UUID) (*dto.InvoiceResponse, error) {
	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFoundf("invoice %s not found", id)
		}
		return nil, apierror.Internalf(err, "failed to load invoice")
	}
	return invoiceToResponse(invoice), nil
}

func (s *invoiceService) List(ctx context.Context, filter dto.InvoiceFilter) (*dto.InvoiceListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	invoices, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apierror.Internalf(err, "failed to list invoices")
	}
	data := make([]dto.InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		data = append(data, *invoiceToResponse(&invoices[i]))
	}
	return &dto.InvoiceListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// Send queues the invoice for email delivery. The worker generates the PDF,
// sends it to the client and marks the invoice as sent.
func (s *invoiceService) Send(ctx context.Context, id uuid.UUID) error {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFoundf("invoice %s not found", id)
		}
		return apierror.Internalf(err, "failed to load invoice")
	}
	if inv.Client == nil || inv.Client.Email == nil || *inv.Client.Email == "" {
		return apierror.InvalidArgumentf("client has no email address")
	}
	if s.dispatcher == nil {
		return apierror.Internalf(nil, "email delivery is not configured")
	}
	if err := s.dispatcher.EnqueueInvoiceEmail(ctx, inv.ID); err != nil {
		return apierror.Internalf(err, "failed to enqueue invoice email")
	}
	return nil
}

func invoiceToResponse(inv *model.Invoice) *dto.InvoiceResponse {
	lines := make([]dto.InvoiceLineResponse, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		name := ""
		if l.Item != nil {
			name = l.Item.Name
		}
		lines = append(lines, dto.InvoiceLineResponse{
			ID:          l.ID.String(),
			ItemID:      l.ItemID.String(),
			ItemName:    name,
			Quantity:    l.Quantity,
			Price:       l.Price,
			ItemAmount:  l.ItemAmount,
			Description: l.Description,
		})
	}
	var fullyPaid *string
	if inv.FullyPaidDate != nil {
		s := inv.FullyPaidDate.Format(time.RFC3339)
		fullyPaid = &s
	}
	return &dto.InvoiceResponse{
		ID:            inv.ID.String(),
		Reference:     inv.Reference,
		ClientID:      inv.ClientID.String(),
		Status:        inv.Status,
		Description:   inv.Description,
		IssuingDate:   inv.IssuingDate.Format(time.RFC3339),
		DueDate:       inv.DueDate.Format(time.RFC3339),
		FullyPaidDate: fullyPaid,
		TotalAmount:   inv.TotalAmount,
		PaidAmount:    inv.PaidAmount,
		Currency:      inv.Currency,
		IsSent:        inv.IsSent,
		Lines:         lines,
		CreatedAt:     inv.CreatedAt.Format(time.RFC3339),
	}
}
