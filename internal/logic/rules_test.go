package logic

import (
	"testing"

	"github.com/formpulse/formpulse-backend/internal/audit"
	"github.com/formpulse/formpulse-backend/internal/model"
)

// captureSink records emitted events for assertions.
type captureSink struct {
	events []audit.Event
}

func (s *captureSink) Emit(e audit.Event) { s.events = append(s.events, e) }

func TestEvaluateFirstMatchWins(t *testing.T) {
	q := &model.Question{
		ID: "q1",
		LogicRules: []model.LogicRule{
			{ID: "r1", Condition: `answer("q1") == "Mobile"`, Action: model.LogicActionSkip, TargetQuestionID: "q5"},
			{ID: "r2", Condition: `answer("q1") == "Web"`, Action: model.LogicActionSkip, TargetQuestionID: "q3"},
			{ID: "r3", Condition: `answer("q1") != ""`, Action: model.LogicActionEnd},
		},
	}

	sink := &captureSink{}
	ev := NewEvaluator(sink)

	decision := ev.Evaluate("s1", "resp1", q, model.AnswerMap{"q1": "Web"})
	if decision == nil {
		t.Fatal("expected a decision")
	}
	if decision.Action != model.LogicActionSkip || decision.TargetQuestionID != "q3" {
		t.Errorf("decision = %+v, want skip to q3", decision)
	}

	// r3 also matches but must never be reached.
	if len(sink.events) != 2 {
		t.Fatalf("emitted %d events, want 2 (evaluation stops at first match)", len(sink.events))
	}
	if sink.events[0].RuleID != "r1" || sink.events[0].Matched {
		t.Errorf("first event = %+v, want unmatched r1", sink.events[0])
	}
	if sink.events[1].RuleID != "r2" || !sink.events[1].Matched {
		t.Errorf("second event = %+v, want matched r2", sink.events[1])
	}
}

func TestEvaluateNoMatchReturnsNil(t *testing.T) {
	q := &model.Question{
		ID: "q1",
		LogicRules: []model.LogicRule{
			{ID: "r1", Condition: `answer("q1") == "Mobile"`, Action: model.LogicActionSkip, TargetQuestionID: "q5"},
		},
	}

	ev := NewEvaluator(audit.NopSink{})
	if decision := ev.Evaluate("s1", "resp1", q, model.AnswerMap{"q1": "Web"}); decision != nil {
		t.Errorf("decision = %+v, want nil (continue)", decision)
	}
}

func TestEvaluateMissingAnswerDoesNotMatch(t *testing.T) {
	q := &model.Question{
		ID: "q2",
		LogicRules: []model.LogicRule{
			{ID: "r1", Condition: `answer("q1") == "Web"`, Action: model.LogicActionShow, TargetQuestionID: "q4"},
		},
	}

	ev := NewEvaluator(audit.NopSink{})
	if decision := ev.Evaluate("s1", "resp1", q, model.AnswerMap{}); decision != nil {
		t.Errorf("decision = %+v, want nil when the referenced answer is absent", decision)
	}
}

func TestEvaluateMalformedConditionFailsClosed(t *testing.T) {
	q := &model.Question{
		ID: "q1",
		LogicRules: []model.LogicRule{
			{ID: "bad", Condition: `answer("q1" ==`, Action: model.LogicActionEnd},
			{ID: "good", Condition: `answer("q1") == "Web"`, Action: model.LogicActionSkip, TargetQuestionID: "q3"},
		},
	}

	sink := &captureSink{}
	ev := NewEvaluator(sink)

	// The broken rule must not block evaluation of the ones after it.
	decision := ev.Evaluate("s1", "resp1", q, model.AnswerMap{"q1": "Web"})
	if decision == nil || decision.TargetQuestionID != "q3" {
		t.Fatalf("decision = %+v, want skip to q3 from the well-formed rule", decision)
	}

	if len(sink.events) != 2 {
		t.Fatalf("emitted %d events, want 2", len(sink.events))
	}
	bad := sink.events[0]
	if bad.Matched {
		t.Error("unparsable rule reported as matched")
	}
	if bad.ConditionError == "" {
		t.Error("parse failure missing from the audit event")
	}
	if sink.events[1].ConditionError != "" {
		t.Error("well-formed rule carries a condition error")
	}
}

func TestEvaluateEmitsEventMetadata(t *testing.T) {
	q := &model.Question{
		ID: "q7",
		LogicRules: []model.LogicRule{
			{ID: "r1", Condition: `answer("q7") >= 8`, Action: model.LogicActionEnd},
		},
	}

	sink := &captureSink{}
	ev := NewEvaluator(sink)
	ev.Evaluate("survey-9", "resp-4", q, model.AnswerMap{"q7": float64(9)})

	if len(sink.events) != 1 {
		t.Fatalf("emitted %d events, want 1", len(sink.events))
	}
	e := sink.events[0]
	if e.Type != audit.EventLogicEvaluation {
		t.Errorf("event type = %q", e.Type)
	}
	if e.SurveyID != "survey-9" || e.ResponseID != "resp-4" || e.QuestionID != "q7" || e.RuleID != "r1" {
		t.Errorf("event identifiers = %+v", e)
	}
	if e.Action != string(model.LogicActionEnd) {
		t.Errorf("event action = %q", e.Action)
	}
	if e.Timestamp.IsZero() {
		t.Error("event timestamp not set")
	}
}
