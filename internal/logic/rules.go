package logic

import (
	"time"

	"github.com/formpulse/formpulse-backend/internal/audit"
	"github.com/formpulse/formpulse-backend/internal/model"
)

// Decision is the branching outcome of evaluating a question's rules.
// A nil Decision means "continue" — no rule matched.
type Decision struct {
	Action           model.LogicAction `json:"action"`
	TargetQuestionID string            `json:"targetQuestionId,omitempty"`
}

// Evaluator applies a question's logic rules against the accumulated
// answer map and reports every evaluation to the audit sink.
type Evaluator struct {
	sink audit.Sink
}

// NewEvaluator creates an Evaluator. The sink must be non-nil; use
// audit.NopSink to discard events.
func NewEvaluator(sink audit.Sink) *Evaluator {
	return &Evaluator{sink: sink}
}

// Evaluate walks the question's rules in declaration order and returns the
// first matching rule's action and target, or nil when no rule matches.
//
// An unparsable condition counts as not-matched rather than failing the
// pass: one bad rule must not block respondents from completing the
// survey. The parse failure is still surfaced on the audit event.
func (e *Evaluator) Evaluate(surveyID, responseID string, q *model.Question, answers model.AnswerMap) *Decision {
	for _, rule := range q.LogicRules {
		matched, err := MatchCondition(rule.Condition, answers)

		event := audit.Event{
			Type:       audit.EventLogicEvaluation,
			Timestamp:  time.Now().UTC(),
			SurveyID:   surveyID,
			ResponseID: responseID,
			QuestionID: q.ID,
			RuleID:     rule.ID,
			Action:     string(rule.Action),
			TargetID:   rule.TargetQuestionID,
			Matched:    matched,
		}
		if err != nil {
			event.ConditionError = err.Error()
		}
		e.sink.Emit(event)

		if matched {
			return &Decision{
				Action:           rule.Action,
				TargetQuestionID: rule.TargetQuestionID,
			}
		}
	}
	return nil
}
