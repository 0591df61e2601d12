package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/formpulse/formpulse-backend/internal/config"
	"github.com/formpulse/formpulse-backend/internal/model"
	"github.com/formpulse/formpulse-backend/internal/repository"
	"github.com/formpulse/formpulse-backend/internal/response"
	"github.com/formpulse/formpulse-backend/internal/scoring"
)

// Common survey service errors.
var (
	ErrNotSurveyAuthor    = errors.New("not the author of this survey")
	ErrSurveyNotPublished = errors.New("survey is not published")
	ErrNoQuestions        = errors.New("survey has no questions")
)

// ScoreConfigError carries every validation problem found in a scoring
// configuration so the authoring UI can display them all at once.
type ScoreConfigError struct {
	Errors []string
}

func (e *ScoreConfigError) Error() string {
	return fmt.Sprintf("invalid scoring configuration (%d problems)", len(e.Errors))
}

// SurveyService handles survey authoring business logic.
type SurveyService struct {
	surveyRepo *repository.SurveyRepository
	rdb        *redis.Client
	log        zerolog.Logger
}

// NewSurveyService creates a new SurveyService.
func NewSurveyService(surveyRepo *repository.SurveyRepository, rdb *redis.Client, log zerolog.Logger) *SurveyService {
	return &SurveyService{
		surveyRepo: surveyRepo,
		rdb:        rdb,
		log:        log.With().Str("component", "survey_service").Logger(),
	}
}

// GetByID retrieves a survey by its UUID.
func (s *SurveyService) GetByID(ctx context.Context, id uuid.UUID) (*model.Survey, error) {
	return s.surveyRepo.GetByID(ctx, id)
}

// ListByAuthor retrieves surveys for an author with pagination metadata.
func (s *SurveyService) ListByAuthor(ctx context.Context, authorID, page, perPage int) ([]model.Survey, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	surveys, total, err := s.surveyRepo.ListByAuthorPaginated(ctx, authorID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, fmt.Errorf("list surveys: %w", err)
	}

	totalPages := (total + perPage - 1) / perPage
	return surveys, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// Create inserts a new survey in DRAFT status.
func (s *SurveyService) Create(ctx context.Context, survey *model.Survey) error {
	survey.ID = uuid.New()
	survey.Status = model.SurveyStatusDraft
	return s.surveyRepo.Create(ctx, survey)
}

// Update replaces a draft survey's title and questions.
func (s *SurveyService) Update(ctx context.Context, id uuid.UUID, authorID int, req *model.UpdateSurveyRequest) (*model.Survey, error) {
	survey, err := s.surveyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get survey: %w", err)
	}
	if survey.AuthorID != authorID {
		return nil, ErrNotSurveyAuthor
	}

	if req.Title != "" {
		survey.Title = req.Title
	}
	if req.Questions != nil {
		survey.Questions = req.Questions
	}

	if err := s.surveyRepo.Update(ctx, survey); err != nil {
		return nil, fmt.Errorf("update survey: %w", err)
	}

	// Keep the respondent cache coherent for published surveys.
	if survey.Status == model.SurveyStatusPublished {
		if err := s.WarmSurveyCache(ctx, survey); err != nil {
			s.log.Warn().Err(err).Str("survey_id", id.String()).Msg("cache refresh after update failed")
		}
	}

	return survey, nil
}

// Delete removes a survey owned by the author.
func (s *SurveyService) Delete(ctx context.Context, id uuid.UUID, authorID int) error {
	survey, err := s.surveyRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get survey: %w", err)
	}
	if survey.AuthorID != authorID {
		return ErrNotSurveyAuthor
	}
	if err := s.surveyRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete survey: %w", err)
	}
	s.rdb.Del(ctx, config.CacheKey.SurveyPayloadKey(id.String()),
		config.CacheKey.SurveyDefinitionKey(id.String()))
	return nil
}

// UpdateScoringConfig validates and stores a new scoring configuration.
// Validation failures block activation: the config never reaches storage
// with inconsistent band tables (they are author-facing errors, caught
// here rather than at the respondent's submission).
func (s *SurveyService) UpdateScoringConfig(ctx context.Context, id uuid.UUID, authorID int, cfg *model.SurveyScoreConfig) error {
	survey, err := s.surveyRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get survey: %w", err)
	}
	if survey.AuthorID != authorID {
		return ErrNotSurveyAuthor
	}

	if result := scoring.ValidateScoreConfig(cfg); !result.Valid {
		return &ScoreConfigError{Errors: result.Errors}
	}

	if err := s.surveyRepo.UpdateScoring(ctx, id, cfg); err != nil {
		return fmt.Errorf("update scoring: %w", err)
	}

	if survey.Status == model.SurveyStatusPublished {
		survey.Scoring = cfg
		if err := s.WarmSurveyCache(ctx, survey); err != nil {
			s.log.Warn().Err(err).Str("survey_id", id.String()).Msg("cache refresh after scoring update failed")
		}
	}

	s.log.Info().Str("survey_id", id.String()).Msg("Scoring configuration updated")
	return nil
}

// Publish changes survey status to PUBLISHED and caches the respondent
// payload and full definition in Redis. A survey whose scoring config
// fails validation cannot be published.
func (s *SurveyService) Publish(ctx context.Context, id uuid.UUID, authorID int) error {
	survey, err := s.surveyRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get survey: %w", err)
	}

	if survey.AuthorID != authorID {
		return ErrNotSurveyAuthor
	}
	if survey.Status != model.SurveyStatusDraft {
		return fmt.Errorf("survey status is %s, expected DRAFT", survey.Status)
	}
	if len(survey.Questions) == 0 {
		return ErrNoQuestions
	}

	if result := scoring.ValidateScoreConfig(survey.Scoring); !result.Valid {
		return &ScoreConfigError{Errors: result.Errors}
	}

	if err := s.WarmSurveyCache(ctx, survey); err != nil {
		return err
	}

	survey.Status = model.SurveyStatusPublished
	if err := s.surveyRepo.Update(ctx, survey); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	s.log.Info().Str("survey_id", id.String()).Msg("Survey published")
	return nil
}

// WarmSurveyCache loads a survey's respondent payload and full definition
// from PostgreSQL into Redis. Used by Publish, scoring updates, and
// startup prewarming.
func (s *SurveyService) WarmSurveyCache(ctx context.Context, survey *model.Survey) error {
	payload := buildRespondentPayload(survey)

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	definitionJSON, err := json.Marshal(survey)
	if err != nil {
		return fmt.Errorf("marshal definition: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, config.CacheKey.SurveyPayloadKey(survey.ID.String()), payloadJSON, 0)
	pipe.Set(ctx, config.CacheKey.SurveyDefinitionKey(survey.ID.String()), definitionJSON, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache to redis: %w", err)
	}

	s.log.Debug().
		Str("survey_id", survey.ID.String()).
		Int("questions", len(survey.Questions)).
		Msg("Cache warmed")
	return nil
}

// PrewarmAllCaches loads all published surveys into Redis on application
// startup, avoiding lazy-loading races under thundering herd traffic.
func (s *SurveyService) PrewarmAllCaches(ctx context.Context) error {
	surveys, err := s.surveyRepo.ListPublished(ctx)
	if err != nil {
		return fmt.Errorf("list published surveys: %w", err)
	}

	if len(surveys) == 0 {
		s.log.Info().Msg("No published surveys to prewarm")
		return nil
	}

	warmed := 0
	for i := range surveys {
		if err := s.WarmSurveyCache(ctx, &surveys[i]); err != nil {
			s.log.Warn().
				Err(err).
				Str("survey_id", surveys[i].ID.String()).
				Msg("Failed to warm survey, skipping")
			continue
		}
		warmed++
	}

	s.log.Info().
		Int("warmed", warmed).
		Int("total", len(surveys)).
		Msg("Prewarming complete")
	return nil
}

// GetRespondentPayload retrieves the cached respondent-facing payload.
func (s *SurveyService) GetRespondentPayload(ctx context.Context, id uuid.UUID) (*model.SurveyPayload, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.SurveyPayloadKey(id.String())).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSurveyNotPublished
		}
		return nil, fmt.Errorf("get payload: %w", err)
	}

	var payload model.SurveyPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return &payload, nil
}

// GetPublishedDefinition retrieves the full survey definition (questions
// with scoring metadata and logic rules) for the engine, cache-first with
// a PostgreSQL fallback that self-heals the cache.
func (s *SurveyService) GetPublishedDefinition(ctx context.Context, id uuid.UUID) (*model.Survey, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.SurveyDefinitionKey(id.String())).Bytes()
	if err == nil {
		var survey model.Survey
		if err := json.Unmarshal(data, &survey); err != nil {
			return nil, fmt.Errorf("unmarshal definition: %w", err)
		}
		return &survey, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get definition: %w", err)
	}

	// Cache miss (evicted or legacy). Fall back to the source of truth.
	survey, dbErr := s.surveyRepo.GetByID(ctx, id)
	if dbErr != nil {
		return nil, fmt.Errorf("survey not found in cache or db: %w", dbErr)
	}
	if survey.Status != model.SurveyStatusPublished {
		return nil, ErrSurveyNotPublished
	}

	// Self-heal so the next request hits the cache.
	if err := s.WarmSurveyCache(ctx, survey); err != nil {
		s.log.Warn().Err(err).Str("survey_id", id.String()).Msg("cache self-heal failed")
	}

	return survey, nil
}

// buildRespondentPayload strips scoring metadata (weights, option scores,
// logic conditions) so respondents cannot infer the scoring key.
func buildRespondentPayload(survey *model.Survey) model.SurveyPayload {
	questions := make([]model.QuestionForRespondent, len(survey.Questions))
	for i, q := range survey.Questions {
		questions[i] = model.QuestionForRespondent{
			ID:            q.ID,
			Type:          q.Type,
			Question:      q.Question,
			Required:      q.Required,
			Options:       q.Options,
			MaxSelections: q.MaxSelections,
			Scale:         q.RatingScale,
		}
	}
	return model.SurveyPayload{
		SurveyID:  survey.ID,
		Title:     survey.Title,
		Questions: questions,
	}
}
