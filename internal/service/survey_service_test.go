package service

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/formpulse/formpulse-backend/internal/model"
)

func TestBuildRespondentPayloadStripsScoringMetadata(t *testing.T) {
	survey := &model.Survey{
		ID:    uuid.New(),
		Title: "Wellbeing check",
		Questions: []model.Question{
			{
				ID:              "q1",
				Type:            model.QuestionTypeCheckbox,
				Question:        "Pick up to two",
				Required:        true,
				Options:         []string{"a", "b", "c"},
				MaxSelections:   2,
				Scorable:        true,
				ScoreWeight:     2,
				ScoringCategory: "habits",
				OptionScores:    map[string]float64{"a": 1, "b": 2, "c": 3},
				LogicRules: []model.LogicRule{
					{ID: "r1", Condition: `answer("q1") == "a"`, Action: model.LogicActionEnd},
				},
			},
			{
				ID:          "q2",
				Type:        model.QuestionTypeRating,
				Question:    "Rate your week",
				RatingScale: 5,
			},
		},
	}

	payload := buildRespondentPayload(survey)

	if len(payload.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(payload.Questions))
	}

	q1 := payload.Questions[0]
	if q1.ID != "q1" || !q1.Required || len(q1.Options) != 3 {
		t.Errorf("q1 input fields lost: %+v", q1)
	}
	// Input constraints survive the strip so the respondent UI can
	// enforce them.
	if q1.MaxSelections != 2 {
		t.Errorf("q1.MaxSelections = %d, want 2", q1.MaxSelections)
	}
	if payload.Questions[1].Scale != 5 {
		t.Errorf("q2.Scale = %d, want 5", payload.Questions[1].Scale)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	for _, leaked := range []string{"optionScores", "scoreWeight", "scoringCategory", "maxScoreOverride", "logicRules", "condition"} {
		if strings.Contains(string(raw), leaked) {
			t.Errorf("payload leaks %q: %s", leaked, raw)
		}
	}
}
