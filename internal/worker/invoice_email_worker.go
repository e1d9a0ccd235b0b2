package worker

// invoice_email_worker.go
// Processes invoice delivery jobs from QueueInvoiceEmail:
// renders the invoice PDF, emails it to the client through the SMTP
// circuit breaker, and marks the invoice as sent. Failures schedule an
// exponential-backoff retry picked up by the send-retry cron; after
// MaxSendRetries the job lands in the DLQ.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/YousofDev/Invoice-Tracker/internal/infra"
	"github.com/YousofDev/Invoice-Tracker/internal/model"
	"github.com/YousofDev/Invoice-Tracker/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MaxSendRetries is the delivery attempt budget per invoice.
const MaxSendRetries = 3

// InvoiceEmailWorker delivers invoices by email.
type InvoiceEmailWorker struct {
	invoiceRepo    repository.InvoiceRepository
	mailer         *infra.Mailer
	cb             *infra.CircuitBreaker
	dlq            *DLQ
	pdfStoragePath string
}

// NewInvoiceEmailWorker wires all dependencies for the delivery worker.
func NewInvoiceEmailWorker(
	invoiceRepo repository.InvoiceRepository,
	mailer *infra.Mailer,
	cb *infra.CircuitBreaker,
	dlq *DLQ,
	pdfStoragePath string,
) *InvoiceEmailWorker {
	return &InvoiceEmailWorker{
		invoiceRepo:    invoiceRepo,
		mailer:         mailer,
		cb:             cb,
		dlq:            dlq,
		pdfStoragePath: pdfStoragePath,
	}
}

// Process handles a single delivery job:
//  1. Parse InvoiceEmailPayload from the job envelope
//  2. Fetch the invoice with lines and client from DB
//  3. Render the PDF
//  4. Send the email through the circuit breaker
//  5. Mark sent, or schedule a retry / move to DLQ
func (w *InvoiceEmailWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload InvoiceEmailPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("invoice_email_worker: invalid payload")
		return
	}

	invoiceID, err := uuid.Parse(payload.InvoiceID)
	if err != nil {
		log.Error().Str("invoice_id", payload.InvoiceID).Msg("invoice_email_worker: invalid invoice_id")
		return
	}

	inv, err := w.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil || inv == nil {
		log.Error().Err(err).Str("invoice_id", payload.InvoiceID).Msg("invoice_email_worker: invoice not found")
		return
	}
	if inv.Client == nil || inv.Client.Email == nil || *inv.Client.Email == "" {
		log.Warn().Str("invoice", inv.Reference).Msg("invoice_email_worker: client has no email — skipping")
		return
	}

	if err := w.deliver(inv); err != nil {
		w.handleFailure(ctx, inv, raw, err)
		return
	}

	if err := w.invoiceRepo.MarkSent(ctx, inv.ID); err != nil {
		log.Error().Err(err).Str("invoice", inv.Reference).Msg("invoice_email_worker: failed to mark sent")
		return
	}
	log.Info().Str("invoice", inv.Reference).Str("to", *inv.Client.Email).Msg("invoice_email_worker: invoice sent")
}

func (w *InvoiceEmailWorker) deliver(inv *model.Invoice) error {
	pdfPath, err := infra.GenerateInvoicePDF(inv, w.pdfStoragePath)
	if err != nil {
		return fmt.Errorf("generate pdf: %w", err)
	}

	subject := fmt.Sprintf("Invoice %s", inv.Reference)
	body := fmt.Sprintf("Please find attached invoice %s for %s %s, due %s.",
		inv.Reference, inv.Currency, inv.TotalAmount.StringFixed(2), inv.DueDate.Format("02 Jan 2006"))

	return w.cb.Execute(func() error {
		return w.mailer.SendInvoice(*inv.Client.Email, subject, body, pdfPath)
	})
}

func (w *InvoiceEmailWorker) handleFailure(ctx context.Context, inv *model.Invoice, raw json.RawMessage, cause error) {
	attempts := inv.SendRetryCount + 1
	if attempts >= MaxSendRetries {
		reason := fmt.Sprintf("max retries (%d) exceeded: %v", MaxSendRetries, cause)
		if err := w.invoiceRepo.AbandonSend(ctx, inv.ID, reason); err != nil {
			log.Error().Err(err).Str("invoice", inv.Reference).Msg("invoice_email_worker: failed to abandon send")
		}
		w.dlq.Send(ctx, QueueInvoiceEmail, "invoice_email", raw, reason, attempts)
		log.Error().
			Str("invoice", inv.Reference).
			Int("attempts", attempts).
			Msg("invoice_email_worker: delivery abandoned, moved to DLQ")
		return
	}

	nextAttempt := time.Now().Add(computeSendBackoff(attempts))
	if err := w.invoiceRepo.MarkSendFailed(ctx, inv.ID, cause.Error(), nextAttempt); err != nil {
		log.Error().Err(err).Str("invoice", inv.Reference).Msg("invoice_email_worker: failed to record send failure")
		return
	}
	log.Warn().
		Err(cause).
		Str("invoice", inv.Reference).
		Int("attempt", attempts).
		Time("next_send_at", nextAttempt).
		Msg("invoice_email_worker: delivery failed, retry scheduled")
}

// computeSendBackoff returns the delay before the next delivery attempt.
// Schedule: 30s, 60s, 120s …
func computeSendBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(1<<uint(attempt-1)) * 30 * time.Second
}
