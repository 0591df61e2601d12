package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/formpulse/formpulse-backend/internal/audit"
	"github.com/formpulse/formpulse-backend/internal/config"
	"github.com/formpulse/formpulse-backend/internal/logic"
	"github.com/formpulse/formpulse-backend/internal/model"
	"github.com/formpulse/formpulse-backend/internal/repository"
	"github.com/formpulse/formpulse-backend/internal/scoring"
)

// ErrResponseClosed is returned when a session is finalized a second time:
// the answer buffer is deleted on submit, so a closed session has nothing
// left to score.
var ErrResponseClosed = errors.New("response already submitted")

// SubmissionService hosts the scoring and logic engines: it loads survey
// definitions, runs the pure engine functions over submitted answers, and
// persists/queues the outcomes. The engines themselves stay free of I/O.
type SubmissionService struct {
	surveyService *SurveyService
	responseRepo  *repository.ResponseRepository
	rdb           *redis.Client
	sink          audit.Sink
	evaluator     *logic.Evaluator
	log           zerolog.Logger
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(
	surveyService *SurveyService,
	responseRepo *repository.ResponseRepository,
	rdb *redis.Client,
	sink audit.Sink,
	log zerolog.Logger,
) *SubmissionService {
	return &SubmissionService{
		surveyService: surveyService,
		responseRepo:  responseRepo,
		rdb:           rdb,
		sink:          sink,
		evaluator:     logic.NewEvaluator(sink),
		log:           log.With().Str("component", "submission_service").Logger(),
	}
}

// Submit persists a completed answer set and, when the survey's scoring
// config is enabled, scores it and attaches overall and per-category
// bands. Scoring fields stay entirely absent from the result when scoring
// is disabled.
func (s *SubmissionService) Submit(ctx context.Context, surveyID uuid.UUID, answers model.AnswerMap) (*model.SubmitResponseResult, error) {
	survey, err := s.surveyService.GetPublishedDefinition(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	resp := &model.Response{
		ID:       uuid.New(),
		SurveyID: surveyID,
		Answers:  answers,
		Status:   model.ResponseStatusInProgress,
	}
	if err := s.responseRepo.Create(ctx, resp); err != nil {
		return nil, fmt.Errorf("create response: %w", err)
	}

	result := &model.SubmitResponseResult{ResponseID: resp.ID}

	if survey.Scoring == nil || !survey.Scoring.Enabled {
		// Unscored surveys are final as soon as the row exists.
		s.queueFinalScore(ctx, surveyID, resp.ID, nil)
		return result, nil
	}

	scored := scoring.ScoreSurvey(survey.Questions, answers, survey.Scoring)
	result.Scoring = &scored
	result.Band = scoring.AssignBand(scored.TotalScore, scoring.OverallBands(survey.Scoring))
	result.Categories = s.categoryResults(survey.Scoring, &scored)

	event := audit.Event{
		Type:       audit.EventScoringComplete,
		Timestamp:  time.Now().UTC(),
		SurveyID:   surveyID.String(),
		ResponseID: resp.ID.String(),
		TotalScore: scored.TotalScore,
		MaxScore:   scored.MaxScore,
		Percentage: scored.Percentage,
	}
	if result.Band != nil {
		event.BandID = result.Band.ID
	}
	s.sink.Emit(event)

	s.queueFinalScore(ctx, surveyID, resp.ID, &scored.TotalScore)

	s.log.Info().
		Str("survey_id", surveyID.String()).
		Str("response_id", resp.ID.String()).
		Float64("total_score", scored.TotalScore).
		Msg("Response submitted and scored")

	return result, nil
}

// VerifyPublished confirms the survey exists and accepts responses. Used
// to gate live sessions before the WebSocket upgrade happens.
func (s *SubmissionService) VerifyPublished(ctx context.Context, surveyID uuid.UUID) error {
	_, err := s.surveyService.GetPublishedDefinition(ctx, surveyID)
	return err
}

// EvaluateLogic runs the question's logic rules against the answers
// collected so far. A nil decision means survey flow continues normally.
func (s *SubmissionService) EvaluateLogic(ctx context.Context, surveyID uuid.UUID, responseID, questionID string, answers model.AnswerMap) (*logic.Decision, error) {
	survey, err := s.surveyService.GetPublishedDefinition(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	for i := range survey.Questions {
		if survey.Questions[i].ID == questionID {
			return s.evaluator.Evaluate(surveyID.String(), responseID, &survey.Questions[i], answers), nil
		}
	}
	return nil, fmt.Errorf("question %q not found in survey", questionID)
}

// SaveAnswer records one answer into the session's running answer map and
// returns the branching decision for the answered question. Used by the
// live WebSocket session flow.
func (s *SubmissionService) SaveAnswer(ctx context.Context, surveyID uuid.UUID, responseID, questionID string, answer any) (*logic.Decision, error) {
	raw, err := json.Marshal(answer)
	if err != nil {
		return nil, fmt.Errorf("marshal answer: %w", err)
	}

	key := config.CacheKey.ResponseAnswersKey(surveyID.String(), responseID)
	if err := s.rdb.HSet(ctx, key, questionID, raw).Err(); err != nil {
		return nil, fmt.Errorf("save answer: %w", err)
	}

	answers, err := s.sessionAnswers(ctx, key)
	if err != nil {
		return nil, err
	}

	return s.EvaluateLogic(ctx, surveyID, responseID, questionID, answers)
}

// FinalizeSession scores the accumulated session answers, persists the
// response, and clears the session buffer. A session whose buffer is
// already gone has been submitted before and returns ErrResponseClosed.
func (s *SubmissionService) FinalizeSession(ctx context.Context, surveyID uuid.UUID, responseID string) (*model.SubmitResponseResult, error) {
	key := config.CacheKey.ResponseAnswersKey(surveyID.String(), responseID)

	exists, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("check session buffer: %w", err)
	}
	if exists == 0 {
		return nil, ErrResponseClosed
	}

	answers, err := s.sessionAnswers(ctx, key)
	if err != nil {
		return nil, err
	}

	result, err := s.Submit(ctx, surveyID, answers)
	if err != nil {
		return nil, err
	}

	s.rdb.Del(ctx, key)
	return result, nil
}

// ListResponses returns a page of a survey's collected responses for its
// author.
func (s *SubmissionService) ListResponses(ctx context.Context, surveyID uuid.UUID, authorID, page, perPage int) ([]model.Response, int, error) {
	survey, err := s.surveyService.GetByID(ctx, surveyID)
	if err != nil {
		return nil, 0, fmt.Errorf("get survey: %w", err)
	}
	if survey.AuthorID != authorID {
		return nil, 0, ErrNotSurveyAuthor
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.responseRepo.ListBySurvey(ctx, surveyID, perPage, (page-1)*perPage)
}

// GetResponse returns one response, restricted to the survey's author.
func (s *SubmissionService) GetResponse(ctx context.Context, responseID uuid.UUID, authorID int) (*model.Response, error) {
	resp, err := s.responseRepo.GetByID(ctx, responseID)
	if err != nil {
		return nil, err
	}
	survey, err := s.surveyService.GetByID(ctx, resp.SurveyID)
	if err != nil {
		return nil, fmt.Errorf("get survey: %w", err)
	}
	if survey.AuthorID != authorID {
		return nil, ErrNotSurveyAuthor
	}
	return resp, nil
}

// sessionAnswers loads and decodes a session's running answer map from its
// Redis hash. Each field holds one JSON-encoded answer.
func (s *SubmissionService) sessionAnswers(ctx context.Context, key string) (model.AnswerMap, error) {
	fields, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("get session answers: %w", err)
	}

	answers := make(model.AnswerMap, len(fields))
	for qid, raw := range fields {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			// A corrupt entry must not block the rest of the session.
			s.log.Warn().Str("question_id", qid).Msg("skipping undecodable session answer")
			continue
		}
		answers[qid] = v
	}
	return answers, nil
}

// categoryResults decorates each declared results-screen category with its
// band and narrative using the assigner's fallback resolution order.
func (s *SubmissionService) categoryResults(cfg *model.SurveyScoreConfig, scored *model.ScoreResult) []model.CategoryResult {
	if cfg.ResultsScreen == nil {
		return nil
	}

	results := make([]model.CategoryResult, 0, len(cfg.ResultsScreen.Categories))
	for i := range cfg.ResultsScreen.Categories {
		cat := &cfg.ResultsScreen.Categories[i]
		cs, ok := scored.CategoryScores[cat.CategoryID]
		if !ok {
			continue
		}

		band := scoring.AssignBand(cs.Score, scoring.CategoryBands(cfg, cat))
		results = append(results, model.CategoryResult{
			CategoryID: cat.CategoryID,
			Score:      cs.Score,
			MaxScore:   cs.MaxScore,
			Band:       band,
			Narrative:  scoring.NarrativeFor(cat, band),
		})
	}
	return results
}

// queueFinalScore enqueues the response's final score for the batching
// persistence worker. Queue failures are logged, never returned: the
// respondent's submission has already succeeded.
func (s *SubmissionService) queueFinalScore(ctx context.Context, surveyID, responseID uuid.UUID, score *float64) {
	payload, _ := json.Marshal(map[string]interface{}{
		"survey_id":   surveyID.String(),
		"response_id": responseID.String(),
		"score":       score,
	})
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistScoresQueue, payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("response_id", responseID.String()).Msg("score persist enqueue failed")
	}
}
