package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/formpulse/formpulse-backend/internal/audit"
	"github.com/formpulse/formpulse-backend/internal/config"
)

const (
	AuditBatchSize    = 100
	AuditBatchTimeout = 2 * time.Second
	AuditPollTimeout  = 1 * time.Second
)

// AuditWorker drains the audit-event queue into the audit_events table in
// batches. Events that fail to persist are dropped after logging — audit
// delivery is best-effort and must never build up unbounded backlog.
type AuditWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewAuditWorker creates a new AuditWorker.
func NewAuditWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *AuditWorker {
	return &AuditWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "audit_worker").Logger(),
	}
}

type auditRecord struct {
	event audit.Event
	raw   []byte
}

// Start runs the worker loop with batching until ctx is cancelled.
func (w *AuditWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AuditWorker started")

	batch := make([]auditRecord, 0, AuditBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= AuditBatchSize || time.Since(lastFlush) >= AuditBatchTimeout) {

			w.flush(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flush(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, AuditPollTimeout, config.WorkerKey.AuditEventsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var e audit.Event
			if err := json.Unmarshal([]byte(item[1]), &e); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, auditRecord{event: e, raw: []byte(item[1])})
		}
	}
}

// flush bulk-inserts a batch with one UNNEST statement.
func (w *AuditWorker) flush(ctx context.Context, batch []auditRecord) {
	if len(batch) == 0 {
		return
	}

	n := len(batch)
	types := make([]string, 0, n)
	timestamps := make([]time.Time, 0, n)
	surveyIDs := make([]*uuid.UUID, 0, n)
	responseIDs := make([]*uuid.UUID, 0, n)
	payloads := make([][]byte, 0, n)

	for _, rec := range batch {
		types = append(types, string(rec.event.Type))
		timestamps = append(timestamps, rec.event.Timestamp)
		surveyIDs = append(surveyIDs, parseOptionalUUID(rec.event.SurveyID))
		responseIDs = append(responseIDs, parseOptionalUUID(rec.event.ResponseID))
		payloads = append(payloads, rec.raw)
	}

	query := `
		INSERT INTO audit_events (event_type, occurred_at, survey_id, response_id, payload)
		SELECT u.event_type, u.occurred_at, u.survey_id, u.response_id, u.payload
		FROM UNNEST(
			$1::text[],
			$2::timestamptz[],
			$3::uuid[],
			$4::uuid[],
			$5::jsonb[]
		) AS u (event_type, occurred_at, survey_id, response_id, payload)
	`

	if _, err := w.pool.Exec(ctx, query, types, timestamps, surveyIDs, responseIDs, payloads); err != nil {
		w.log.Error().Err(err).Int("events", n).Msg("audit batch insert failed, dropping batch")
	}
}

func parseOptionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}
