package model

import (
	"time"

	"github.com/google/uuid"
)

// SurveyStatus enumerates the possible states of a survey.
type SurveyStatus string

const (
	SurveyStatusDraft     SurveyStatus = "DRAFT"
	SurveyStatusPublished SurveyStatus = "PUBLISHED"
	SurveyStatusClosed    SurveyStatus = "CLOSED"
)

// Survey represents a survey entity.
type Survey struct {
	ID        uuid.UUID          `json:"id"`
	Title     string             `json:"title"`
	AuthorID  int                `json:"author_id"`
	Status    SurveyStatus       `json:"status"`
	Questions []Question         `json:"questions"`
	Scoring   *SurveyScoreConfig `json:"scoring,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// CreateSurveyRequest is the payload for creating a new survey.
type CreateSurveyRequest struct {
	Title     string     `json:"title" binding:"required,min=3,max=255"`
	Questions []Question `json:"questions" binding:"omitempty,dive"`
}

// UpdateSurveyRequest is the payload for updating an existing survey.
type UpdateSurveyRequest struct {
	Title     string     `json:"title" binding:"omitempty,min=3,max=255"`
	Questions []Question `json:"questions" binding:"omitempty,dive"`
}

// SurveyPayload is the Redis-cached payload served to respondents.
// Scoring metadata (weights, option scores) is stripped so respondents
// cannot infer the scoring key.
type SurveyPayload struct {
	SurveyID  uuid.UUID               `json:"survey_id"`
	Title     string                  `json:"title"`
	Questions []QuestionForRespondent `json:"questions"`
}

// QuestionForRespondent is a question without scoring metadata. Input
// constraints (options, selection cap, rating scale) survive the strip so
// the respondent UI can enforce them.
type QuestionForRespondent struct {
	ID            string       `json:"id"`
	Type          QuestionType `json:"type"`
	Question      string       `json:"question"`
	Required      bool         `json:"required"`
	Options       []string     `json:"options,omitempty"`
	MaxSelections int          `json:"maxSelections,omitempty"`
	Scale         int          `json:"scale,omitempty"`
}
