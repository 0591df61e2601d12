package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/formpulse/formpulse-backend/internal/model"
)

// ResponseRepository handles respondent answer-set data access.
type ResponseRepository struct {
	pool *pgxpool.Pool
}

// NewResponseRepository creates a new ResponseRepository.
func NewResponseRepository(pool *pgxpool.Pool) *ResponseRepository {
	return &ResponseRepository{pool: pool}
}

// GetByID retrieves a response by its UUID.
func (r *ResponseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Response, error) {
	resp := &model.Response{}
	var answers []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, survey_id, answers, status, final_score, started_at, submitted_at
		 FROM responses WHERE id = $1`, id,
	).Scan(&resp.ID, &resp.SurveyID, &answers, &resp.Status, &resp.FinalScore,
		&resp.StartedAt, &resp.SubmittedAt)
	if err != nil {
		return nil, err
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &resp.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
	}
	return resp, nil
}

// Create inserts a new response row.
func (r *ResponseRepository) Create(ctx context.Context, resp *model.Response) error {
	answers, err := json.Marshal(resp.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO responses (id, survey_id, answers, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING started_at`,
		resp.ID, resp.SurveyID, answers, resp.Status,
	).Scan(&resp.StartedAt)
}

// ListBySurvey retrieves paginated responses for one survey.
func (r *ResponseRepository) ListBySurvey(ctx context.Context, surveyID uuid.UUID, limit, offset int) ([]model.Response, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM responses WHERE survey_id = $1`, surveyID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, survey_id, answers, status, final_score, started_at, submitted_at
		 FROM responses WHERE survey_id = $1
		 ORDER BY started_at DESC LIMIT $2 OFFSET $3`,
		surveyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var responses []model.Response
	for rows.Next() {
		var resp model.Response
		var answers []byte
		if err := rows.Scan(&resp.ID, &resp.SurveyID, &answers, &resp.Status,
			&resp.FinalScore, &resp.StartedAt, &resp.SubmittedAt); err != nil {
			return nil, 0, err
		}
		if len(answers) > 0 {
			if err := json.Unmarshal(answers, &resp.Answers); err != nil {
				return nil, 0, fmt.Errorf("unmarshal answers: %w", err)
			}
		}
		responses = append(responses, resp)
	}

	return responses, total, rows.Err()
}
