package worker

// dlq.go — Dead Letter Queue
// Jobs that exceed the delivery retry budget are moved here for manual
// inspection. Uses a Redis list per source queue: dlq:{original_queue}

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry wraps a failed job with metadata for debugging.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"` // ISO 8601
	Attempts      int             `json:"attempts"`
}

// DLQ stores permanently failed jobs in Redis.
type DLQ struct {
	rdb *redis.Client
}

func NewDLQ(rdb *redis.Client) *DLQ {
	return &DLQ{rdb: rdb}
}

// Send pushes a failed job to the dead letter queue.
func (q *DLQ) Send(ctx context.Context, queue, jobType string, payload json.RawMessage, reason string, attempts int) {
	entry := DLQEntry{
		OriginalQueue: queue,
		JobType:       jobType,
		Payload:       payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC().Format(time.RFC3339),
		Attempts:      attempts,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}

	if err := q.rdb.LPush(ctx, DLQPrefix+queue, data).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to push entry")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", jobType).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: job moved to dead letter queue")
}

// Length returns the number of entries in a DLQ for monitoring.
func (q *DLQ) Length(ctx context.Context, queue string) (int64, error) {
	return q.rdb.LLen(ctx, DLQPrefix+queue).Result()
}
