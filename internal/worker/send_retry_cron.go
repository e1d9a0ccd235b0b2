package worker

// send_retry_cron.go
// Background goroutine that periodically re-enqueues delivery jobs for
// invoices stuck with is_sent=false and a next_send_at in the past.
// Skips ticks while the SMTP circuit breaker is open.

import (
	"context"
	"time"

	"github.com/YousofDev/Invoice-Tracker/internal/infra"
	"github.com/YousofDev/Invoice-Tracker/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// SendRetryCronConfig holds all dependencies for the retry goroutine.
type SendRetryCronConfig struct {
	InvoiceRepo repository.InvoiceRepository
	Dispatcher  *Dispatcher
	CB          *infra.CircuitBreaker
}

// StartSendRetryCron launches a background goroutine that ticks every 30s
// and re-enqueues due delivery retries. Respects the context for graceful
// shutdown.
func StartSendRetryCron(ctx context.Context, cfg SendRetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("send_retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("send_retry_cron: shutting down")
				return
			case <-ticker.C:
				processSendRetries(ctx, cfg)
			}
		}
	}()
}

func processSendRetries(ctx context.Context, cfg SendRetryCronConfig) {
	// If the CB is open the relay is down — don't churn the queue
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("send_retry_cron: circuit breaker is open, skipping tick")
		return
	}

	invoices, err := cfg.InvoiceRepo.ListPendingSendRetries(ctx, time.Now(), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("send_retry_cron: failed to query pending retries")
		return
	}
	if len(invoices) == 0 {
		return
	}

	log.Info().Int("count", len(invoices)).Msg("send_retry_cron: re-enqueueing pending deliveries")

	for i := range invoices {
		inv := &invoices[i]
		if err := cfg.Dispatcher.EnqueueInvoiceEmail(ctx, inv.ID); err != nil {
			log.Error().Err(err).Str("invoice", inv.Reference).Msg("send_retry_cron: failed to enqueue")
			continue
		}
		log.Info().
			Str("invoice", inv.Reference).
			Int("retry_count", inv.SendRetryCount).
			Msg("send_retry_cron: delivery retry enqueued")
	}
}
