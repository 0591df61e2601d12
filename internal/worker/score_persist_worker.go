package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/formpulse/formpulse-backend/internal/config"
)

const (
	ScoreBatchSize    = 50
	ScoreBatchTimeout = 2 * time.Second
	ScorePollTimeout  = 1 * time.Second
)

// ScorePersistWorker drains the score-persistence queue and finalizes
// response rows in batches. Submission handlers stay fast by never
// touching PostgreSQL for the final score on the request path.
type ScorePersistWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewScorePersistWorker creates a new ScorePersistWorker.
func NewScorePersistWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *ScorePersistWorker {
	return &ScorePersistWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "score_persist_worker").Logger(),
	}
}

type scorePayload struct {
	SurveyID   string   `json:"survey_id"`
	ResponseID string   `json:"response_id"`
	Score      *float64 `json:"score"` // nil for unscored surveys
}

// Start runs the worker loop with batching until ctx is cancelled.
func (w *ScorePersistWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ScorePersistWorker started")

	batch := make([]*scorePayload, 0, ScoreBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ScoreBatchSize || time.Since(lastFlush) >= ScoreBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ScorePollTimeout, config.WorkerKey.PersistScoresQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p scorePayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &p)
		}
	}
}

func (w *ScorePersistWorker) flushSafe(ctx context.Context, batch []*scorePayload) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkFinalizeResponses(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk response finalize failed, using fallback")

		for _, p := range batch {
			if err := w.persistSingle(ctx, p); err != nil {
				w.log.Error().Err(err).Msg("persistSingle failed — requeueing")
				raw, _ := json.Marshal(p)
				w.rdb.RPush(ctx, config.WorkerKey.PersistScoresQueue, raw)
			}
		}
	}
}

// bulkFinalizeResponses updates a whole batch with one UNNEST statement.
func (w *ScorePersistWorker) bulkFinalizeResponses(ctx context.Context, batch []*scorePayload) error {
	n := len(batch)

	responseIDs := make([]uuid.UUID, 0, n)
	scores := make([]*float64, 0, n)
	submittedAts := make([]time.Time, n)

	now := time.Now()
	for i, p := range batch {
		rID, err := uuid.Parse(p.ResponseID)
		if err != nil {
			return err
		}
		responseIDs = append(responseIDs, rID)
		scores = append(scores, p.Score)
		submittedAts[i] = now
	}

	query := `
		UPDATE responses AS r
		SET status = 'SUBMITTED',
		    final_score = t.score,
		    submitted_at = t.submitted_at
		FROM (
			SELECT
				u.response_id,
				u.score,
				u.submitted_at
			FROM UNNEST(
				$1::uuid[],
				$2::float8[],
				$3::timestamptz[]
			) AS u (response_id, score, submitted_at)
		) AS t
		WHERE r.id = t.response_id
	`

	_, err := w.pool.Exec(ctx, query, responseIDs, scores, submittedAts)
	return err
}

// persistSingle is the fallback when the bulk statement fails.
func (w *ScorePersistWorker) persistSingle(ctx context.Context, p *scorePayload) error {
	rID, err := uuid.Parse(p.ResponseID)
	if err != nil {
		return err
	}

	_, err = w.pool.Exec(ctx,
		`UPDATE responses
		 SET status = 'SUBMITTED',
		     final_score = $1,
		     submitted_at = NOW()
		 WHERE id = $2`,
		p.Score, rID,
	)

	return err
}
