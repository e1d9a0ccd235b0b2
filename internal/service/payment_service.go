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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentService interface {
	Record(ctx context.Context, ownerID uuid.UUID, req dto.RecordPaymentRequest) (*dto.PaymentResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdatePaymentRequest) (*dto.PaymentResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*dto.PaymentResponse, error)
	List(ctx context.Context, filter dto.PaymentFilter) (*dto.PaymentListResponse, error)
}

// paymentService drives the state machine over (invoice.paid_amount,
// invoice.status). Every mutation locks the invoice row for the duration of
// its transaction: two concurrent recordings against the same invoice
// serialize, so the second one sees the balance the first one wrote.
type paymentService struct {
	repo        repository.PaymentRepository
	invoiceRepo repository.InvoiceRepository
}

func NewPaymentService(repo repository.PaymentRepository, invoiceRepo repository.InvoiceRepository) PaymentService {
	return &paymentService{repo: repo, invoiceRepo: invoiceRepo}
}

func (s *paymentService) Record(ctx context.Context, ownerID uuid.UUID, req dto.RecordPaymentRequest) (*dto.PaymentResponse, error) {
	invoiceID, err := uuid.Parse(req.InvoiceID)
	if err != nil {
		return nil, apierror.InvalidArgumentf("invalid invoice_id %q", req.InvoiceID)
	}

	paymentDate := time.Now().UTC()
	if req.PaymentDate != "" {
		paymentDate, err = parseDate(req.PaymentDate)
		if err != nil {
			return nil, apierror.InvalidArgumentf("invalid payment_date %q", req.PaymentDate)
		}
	}
	method := req.Method
	if method == "" {
		method = model.PaymentMethodCash
	}

	var payment model.Payment
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		invoice, err := s.invoiceRepo.FindByIDForUpdate(ctx, tx, invoiceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFoundf("invoice %s not found", req.InvoiceID)
			}
			return apierror.Internalf(err, "failed to lock invoice")
		}

		if invoice.Status == model.InvoiceStatusPaid {
			return apierror.Conflictf("invoice %s is already fully paid", invoice.Reference)
		}

		remaining := invoice.RemainingAmount()
		if req.Amount.GreaterThan(remaining) {
			return apierror.InvalidArgumentf(
				"payment amount %s exceeds the remaining balance %s",
				req.Amount.StringFixed(2), remaining.StringFixed(2))
		}

		num, err := s.repo.NextPaymentNumber(ctx, tx)
		if err != nil {
			return apierror.Internalf(err, "failed to allocate payment reference")
		}
		payment = model.Payment{
			Reference:   fmt.Sprintf("PY%d", num),
			OwnerID:     ownerID,
			ClientID:    invoice.ClientID,
			InvoiceID:   invoiceID,
			Status:      model.PaymentStatusCompleted,
			Method:      method,
			Amount:      req.Amount,
			Currency:    invoice.Currency,
			PaymentDate: paymentDate,
			Description: req.Description,
		}
		if err := s.repo.Create(ctx, tx, &payment); err != nil {
			return apierror.Internalf(err, "failed to create payment")
		}

		newPaid := invoice.PaidAmount.Add(req.Amount)
		status, fullyPaid := reconcileStatus(newPaid, invoice.TotalAmount, &paymentDate)
		if err := s.invoiceRepo.UpdateBalance(ctx, tx, invoiceID, newPaid, status, fullyPaid); err != nil {
			return apierror.Internalf(err, "failed to update invoice balance")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return paymentToResponse(&payment), nil
}

func (s *paymentService) Update(ctx context.Context, id uuid.UUID, req dto.UpdatePaymentRequest) (*dto.PaymentResponse, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFoundf("payment %s not found", id)
		}
		return nil, apierror.Internalf(err, "failed to load payment")
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		invoice, err := s.invoiceRepo.FindByIDForUpdate(ctx, tx, payment.InvoiceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFoundf("invoice %s not found", payment.InvoiceID)
			}
			return apierror.Internalf(err, "failed to lock invoice")
		}

		// Re-read the payment under the invoice lock. The copy loaded before
		// the transaction can be stale if another reconciliation of the same
		// payment committed in between, and a stale amount here would corrupt
		// the delta.
		current, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFoundf("payment %s not found", id)
			}
			return apierror.Internalf(err, "failed to lock payment")
		}

		// An already-paid invoice is deliberately NOT a conflict here: the
		// payment that made it paid must remain correctable.
		projected := invoice.PaidAmount.Sub(current.Amount).Add(req.Amount)
		if projected.GreaterThan(invoice.TotalAmount) {
			return apierror.InvalidArgumentf(
				"new total paid amount %s exceeds the invoice total amount %s",
				projected.StringFixed(2), invoice.TotalAmount.StringFixed(2))
		}

		if err := s.repo.UpdateAmount(ctx, tx, id, req.Amount); err != nil {
			return apierror.Internalf(err, "failed to update payment")
		}

		now := time.Now().UTC()
		status, fullyPaid := reconcileStatus(projected, invoice.TotalAmount, &now)
		if err := s.invoiceRepo.UpdateBalance(ctx, tx, invoice.ID, projected, status, fullyPaid); err != nil {
			return apierror.Internalf(err, "failed to update invoice balance")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	payment.Amount = req.Amount
	return paymentToResponse(payment), nil
}

func (s *paymentService) Delete(ctx context.Context, id uuid.UUID) error {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFoundf("payment %s not found", id)
		}
		return apierror.Internalf(err, "failed to load payment")
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		invoice, err := s.invoiceRepo.FindByIDForUpdate(ctx, tx, payment.InvoiceID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.Internalf(err, "failed to lock invoice")
			}
			// Orphaned payment: the invoice is gone, nothing to reconcile.
			invoice = nil
		}

		// Re-read under the invoice lock: a concurrent delete of the same
		// payment may have committed since the pre-transaction read, and
		// subtracting its amount twice would drive paid_amount negative.
		current, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFoundf("payment %s not found", id)
			}
			return apierror.Internalf(err, "failed to lock payment")
		}

		if invoice != nil {
			newPaid := invoice.PaidAmount.Sub(current.Amount)
			status, fullyPaid := reconcileStatus(newPaid, invoice.TotalAmount, nil)
			if err := s.invoiceRepo.UpdateBalance(ctx, tx, invoice.ID, newPaid, status, fullyPaid); err != nil {
				return apierror.Internalf(err, "failed to update invoice balance")
			}
		}

		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return apierror.Internalf(err, "failed to delete payment")
		}
		return nil
	})
}

func (s *paymentService) Get(ctx context.Context, id uuid.UUID) (*dto.PaymentResponse, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFoundf("payment %s not found", id)
		}
		return nil, apierror.Internalf(err, "failed to load payment")
	}
	return paymentToResponse(payment), nil
}

func (s *paymentService) List(ctx context.Context, filter dto.PaymentFilter) (*dto.PaymentListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apierror.Internalf(err, "failed to list payments")
	}
	data := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		data = append(data, *paymentToResponse(&payments[i]))
	}
	return &dto.PaymentListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// reconcileStatus derives the invoice status from the new paid amount:
//   - paid == total          -> paid, fully_paid_date = at (or now)
//   - 0 < paid < total       -> partially_paid, fully_paid_date cleared
//   - paid == 0              -> unpaid, fully_paid_date cleared
//
// The zero-balance case always yields "unpaid": a status of partially_paid
// with nothing paid would contradict the balance invariant.
func reconcileStatus(paid, total decimal.Decimal, at *time.Time) (string, *time.Time) {
	switch {
	case paid.Equal(total) && total.GreaterThan(decimal.Zero):
		if at == nil {
			now := time.Now().UTC()
			at = &now
		}
		return model.InvoiceStatusPaid, at
	case paid.GreaterThan(decimal.Zero):
		return model.InvoiceStatusPartiallyPaid, nil
	default:
		return model.InvoiceStatusUnpaid, nil
	}
}

func paymentToResponse(p *model.Payment) *dto.PaymentResponse {
	return &dto.PaymentResponse{
		ID:          p.ID.String(),
		Reference:   p.Reference,
		InvoiceID:   p.InvoiceID.String(),
		ClientID:    p.ClientID.String(),
		Status:      p.Status,
		Method:      p.Method,
		Amount:      p.Amount,
		Currency:    p.Currency,
		PaymentDate: p.PaymentDate.Format(time.RFC3339),
		Description: p.Description,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}
