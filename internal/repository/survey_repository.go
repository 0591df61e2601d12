package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/formpulse/formpulse-backend/internal/model"
)

// SurveyRepository handles survey data access. Questions and the scoring
// configuration are stored as JSONB documents: they are authored and read
// as a unit, never queried field-by-field.
type SurveyRepository struct {
	pool *pgxpool.Pool
}

// NewSurveyRepository creates a new SurveyRepository.
func NewSurveyRepository(pool *pgxpool.Pool) *SurveyRepository {
	return &SurveyRepository{pool: pool}
}

// GetByID retrieves a survey by its UUID.
func (r *SurveyRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Survey, error) {
	s := &model.Survey{}
	var questions, scoring []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, author_id, status, questions, scoring, created_at, updated_at
		 FROM surveys WHERE id = $1`, id,
	).Scan(&s.ID, &s.Title, &s.AuthorID, &s.Status, &questions, &scoring, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := unmarshalSurveyDocs(s, questions, scoring); err != nil {
		return nil, err
	}
	return s, nil
}

// ListByAuthorPaginated retrieves surveys filtered by author with pagination.
// Pass authorID=0 to list all surveys.
func (r *SurveyRepository) ListByAuthorPaginated(ctx context.Context, authorID, limit, offset int) ([]model.Survey, int, error) {
	countQuery := `SELECT COUNT(*) FROM surveys`
	var countArgs []interface{}
	if authorID > 0 {
		countQuery += ` WHERE author_id = $1`
		countArgs = append(countArgs, authorID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, title, author_id, status, questions, scoring, created_at, updated_at
	          FROM surveys`
	var args []interface{}
	argIdx := 1

	if authorID > 0 {
		query += ` WHERE author_id = $1`
		args = append(args, authorID)
		argIdx++
	}

	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var surveys []model.Survey
	for rows.Next() {
		var s model.Survey
		var questions, scoring []byte
		if err := rows.Scan(&s.ID, &s.Title, &s.AuthorID, &s.Status, &questions, &scoring,
			&s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		if err := unmarshalSurveyDocs(&s, questions, scoring); err != nil {
			return nil, 0, err
		}
		surveys = append(surveys, s)
	}

	return surveys, total, rows.Err()
}

// ListPublished retrieves every published survey, used for cache prewarming.
func (r *SurveyRepository) ListPublished(ctx context.Context) ([]model.Survey, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, author_id, status, questions, scoring, created_at, updated_at
		 FROM surveys WHERE status = $1`, model.SurveyStatusPublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var surveys []model.Survey
	for rows.Next() {
		var s model.Survey
		var questions, scoring []byte
		if err := rows.Scan(&s.ID, &s.Title, &s.AuthorID, &s.Status, &questions, &scoring,
			&s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		if err := unmarshalSurveyDocs(&s, questions, scoring); err != nil {
			return nil, err
		}
		surveys = append(surveys, s)
	}

	return surveys, rows.Err()
}

// Create inserts a new survey in DRAFT status.
func (r *SurveyRepository) Create(ctx context.Context, s *model.Survey) error {
	questions, scoring, err := marshalSurveyDocs(s)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO surveys (id, title, author_id, status, questions, scoring)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`,
		s.ID, s.Title, s.AuthorID, s.Status, questions, scoring,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
}

// Update replaces the survey's mutable fields.
func (r *SurveyRepository) Update(ctx context.Context, s *model.Survey) error {
	questions, scoring, err := marshalSurveyDocs(s)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`UPDATE surveys
		 SET title = $1, status = $2, questions = $3, scoring = $4, updated_at = NOW()
		 WHERE id = $5`,
		s.Title, s.Status, questions, scoring, s.ID,
	)
	return err
}

// UpdateScoring replaces only the scoring configuration document.
func (r *SurveyRepository) UpdateScoring(ctx context.Context, id uuid.UUID, cfg *model.SurveyScoreConfig) error {
	scoring, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal scoring config: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`UPDATE surveys SET scoring = $1, updated_at = NOW() WHERE id = $2`,
		scoring, id,
	)
	return err
}

// Delete removes a survey and cascades to its responses.
func (r *SurveyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM surveys WHERE id = $1`, id)
	return err
}

func marshalSurveyDocs(s *model.Survey) (questions, scoring []byte, err error) {
	if s.Questions == nil {
		s.Questions = []model.Question{}
	}
	questions, err = json.Marshal(s.Questions)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal questions: %w", err)
	}
	scoring, err = json.Marshal(s.Scoring)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal scoring config: %w", err)
	}
	return questions, scoring, nil
}

func unmarshalSurveyDocs(s *model.Survey, questions, scoring []byte) error {
	if len(questions) > 0 {
		if err := json.Unmarshal(questions, &s.Questions); err != nil {
			return fmt.Errorf("unmarshal questions: %w", err)
		}
	}
	if len(scoring) > 0 && string(scoring) != "null" {
		if err := json.Unmarshal(scoring, &s.Scoring); err != nil {
			return fmt.Errorf("unmarshal scoring config: %w", err)
		}
	}
	return nil
}
