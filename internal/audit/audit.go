// Package audit defines the structured, PII-free event stream the engine
// emits: one event per logic-rule evaluation and one per completed scoring
// pass. Events carry ids, actions, and booleans — never answer content.
package audit

import (
	"time"

	"github.com/rs/zerolog"
)

// EventType enumerates the audit event kinds.
type EventType string

const (
	EventLogicEvaluation EventType = "logic_evaluation"
	EventScoringComplete EventType = "scoring_complete"
)

// Event is one audit record. Only the fields relevant to the event type
// are populated.
type Event struct {
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	SurveyID   string    `json:"survey_id"`
	ResponseID string    `json:"response_id,omitempty"`

	// logic_evaluation fields.
	QuestionID     string `json:"question_id,omitempty"`
	RuleID         string `json:"rule_id,omitempty"`
	Action         string `json:"action,omitempty"`
	TargetID       string `json:"target_question_id,omitempty"`
	Matched        bool   `json:"matched"`
	ConditionError string `json:"condition_error,omitempty"`

	// scoring_complete fields.
	TotalScore float64 `json:"total_score,omitempty"`
	MaxScore   float64 `json:"max_score,omitempty"`
	Percentage float64 `json:"percentage,omitempty"`
	BandID     string  `json:"band_id,omitempty"`
}

// Sink receives audit events. Emit must be safe for concurrent use and
// must never block or fail the calling scoring/logic pass: delivery is
// fire-and-forget.
type Sink interface {
	Emit(event Event)
}

// ─── Log sink ────────────────────────────────────────────────────────

// LogSink writes events to the structured log. Used in development and as
// the fallback when no queue-backed sink is configured.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log.With().Str("component", "audit").Logger()}
}

// Emit logs the event at debug level.
func (s *LogSink) Emit(event Event) {
	s.log.Debug().
		Str("type", string(event.Type)).
		Str("survey_id", event.SurveyID).
		Str("response_id", event.ResponseID).
		Str("question_id", event.QuestionID).
		Str("rule_id", event.RuleID).
		Bool("matched", event.Matched).
		Msg("audit event")
}

// NopSink discards every event. Useful in tests that do not assert on
// auditing.
type NopSink struct{}

// Emit discards the event.
func (NopSink) Emit(Event) {}
