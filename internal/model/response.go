package model

import (
	"time"

	"github.com/google/uuid"
)

// AnswerMap maps question id to the respondent's answer. Answer shapes
// depend on the question type: string (choice/text), []string (checkbox),
// or float64 (rating/nps/likert/constant_sum). JSON decoding produces
// exactly these shapes ([]any elements are strings for checkbox answers).
//
// The map accumulates monotonically during a session and is complete at
// submission time.
type AnswerMap map[string]any

// ResponseStatus enumerates response lifecycle states.
type ResponseStatus string

const (
	ResponseStatusInProgress ResponseStatus = "IN_PROGRESS"
	ResponseStatusSubmitted  ResponseStatus = "SUBMITTED"
)

// Response represents one respondent's answer set for a survey.
type Response struct {
	ID          uuid.UUID      `json:"id"`
	SurveyID    uuid.UUID      `json:"survey_id"`
	Answers     AnswerMap      `json:"answers"`
	Status      ResponseStatus `json:"status"`
	FinalScore  *float64       `json:"final_score,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	SubmittedAt *time.Time     `json:"submitted_at,omitempty"`
}

// SubmitResponseRequest is the payload for submitting a completed response.
type SubmitResponseRequest struct {
	Answers AnswerMap `json:"answers" binding:"required"`
}

// SubmitResponseResult is the body returned after a submission. Scoring
// and Band are omitted entirely (not null placeholders) when the survey's
// scoring config is absent or disabled.
type SubmitResponseResult struct {
	ResponseID uuid.UUID        `json:"response_id"`
	Scoring    *ScoreResult     `json:"scoring,omitempty"`
	Band       *ScoreBand       `json:"band,omitempty"`
	Categories []CategoryResult `json:"categories,omitempty"`
}
