package scoring

import (
	"math"
	"testing"

	"github.com/formpulse/formpulse-backend/internal/model"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreSurveyMultipleChoice(t *testing.T) {
	questions := []model.Question{
		{
			ID:              "q1",
			Type:            model.QuestionTypeMultipleChoice,
			Scorable:        true,
			ScoringCategory: "engagement",
			OptionScores:    map[string]float64{"A": 1, "B": 5, "C": 3},
		},
	}
	cfg := &model.SurveyScoreConfig{
		Enabled:    true,
		Categories: []model.ScoreCategory{{ID: "engagement", Name: "Engagement"}},
	}

	result := ScoreSurvey(questions, model.AnswerMap{"q1": "B"}, cfg)

	if !almostEqual(result.TotalScore, 5) {
		t.Errorf("TotalScore = %g, want 5", result.TotalScore)
	}
	if !almostEqual(result.MaxScore, 5) {
		t.Errorf("MaxScore = %g, want 5", result.MaxScore)
	}
	cs, ok := result.CategoryScores["engagement"]
	if !ok {
		t.Fatal("engagement category missing from result")
	}
	if !almostEqual(cs.Score, 5) {
		t.Errorf("engagement score = %g, want 5", cs.Score)
	}
}

func TestScoreSurveyRatingClampsToScale(t *testing.T) {
	questions := []model.Question{
		{ID: "q1", Type: model.QuestionTypeRating, Scorable: true, RatingScale: 5},
	}

	tests := []struct {
		name   string
		answer any
		raw    float64
	}{
		{"in range", float64(4), 4},
		{"above scale", float64(9), 5},
		{"below zero", float64(-2), 0},
		{"int answer", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ScoreSurvey(questions, model.AnswerMap{"q1": tt.answer}, nil)
			if !almostEqual(result.TotalScore, tt.raw) {
				t.Errorf("TotalScore = %g, want %g", result.TotalScore, tt.raw)
			}
			if !almostEqual(result.MaxScore, 5) {
				t.Errorf("MaxScore = %g, want 5", result.MaxScore)
			}
		})
	}
}

func TestScoreSurveyCheckboxSumsSelections(t *testing.T) {
	questions := []model.Question{
		{
			ID:           "q1",
			Type:         model.QuestionTypeCheckbox,
			Scorable:     true,
			OptionScores: map[string]float64{"a": 2, "b": 3, "c": -1},
		},
	}

	// JSON decoding produces []any, not []string.
	result := ScoreSurvey(questions, model.AnswerMap{"q1": []any{"a", "c"}}, nil)

	if !almostEqual(result.TotalScore, 1) {
		t.Errorf("TotalScore = %g, want 1", result.TotalScore)
	}
	// Max is the sum of positive options only.
	if !almostEqual(result.MaxScore, 5) {
		t.Errorf("MaxScore = %g, want 5", result.MaxScore)
	}
}

func TestScoreSurveyNegativeOptionsCannotPushPercentageBelowZero(t *testing.T) {
	tests := []struct {
		name     string
		question model.Question
		answer   any
	}{
		{
			"checkbox with only a negative option selected",
			model.Question{
				ID:           "q1",
				Type:         model.QuestionTypeCheckbox,
				Scorable:     true,
				OptionScores: map[string]float64{"a": -1, "b": 5},
			},
			[]any{"a"},
		},
		{
			"multiple choice with a negative selected option",
			model.Question{
				ID:           "q1",
				Type:         model.QuestionTypeMultipleChoice,
				Scorable:     true,
				OptionScores: map[string]float64{"A": -3, "B": 4},
			},
			"A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ScoreSurvey([]model.Question{tt.question}, model.AnswerMap{"q1": tt.answer}, nil)

			if result.TotalScore != 0 {
				t.Errorf("TotalScore = %g, want 0 (negative contributions floor at zero)", result.TotalScore)
			}
			if result.MaxScore <= 0 {
				t.Fatalf("MaxScore = %g, want > 0", result.MaxScore)
			}
			if result.Percentage < 0 || result.Percentage > 100 {
				t.Errorf("Percentage = %g, want within [0, 100]", result.Percentage)
			}
		})
	}
}

func TestScoreSurveyOverrideCapsContribution(t *testing.T) {
	override := 3.0
	questions := []model.Question{
		{
			ID:               "q1",
			Type:             model.QuestionTypeCheckbox,
			Scorable:         true,
			OptionScores:     map[string]float64{"a": 2, "b": 3},
			MaxScoreOverride: &override,
		},
	}

	// The raw sum (5) exceeds the overridden max (3); the contribution is
	// capped so the percentage cannot exceed 100.
	result := ScoreSurvey(questions, model.AnswerMap{"q1": []string{"a", "b"}}, nil)

	if !almostEqual(result.TotalScore, 3) {
		t.Errorf("TotalScore = %g, want 3 (capped at override)", result.TotalScore)
	}
	if !almostEqual(result.Percentage, 100) {
		t.Errorf("Percentage = %g, want 100", result.Percentage)
	}
}

func TestScoreSurveyWeightMultipliesRawAndMax(t *testing.T) {
	questions := []model.Question{
		{
			ID:           "q1",
			Type:         model.QuestionTypeMultipleChoice,
			Scorable:     true,
			ScoreWeight:  2,
			OptionScores: map[string]float64{"A": 3, "B": 4},
		},
	}

	result := ScoreSurvey(questions, model.AnswerMap{"q1": "A"}, nil)

	if !almostEqual(result.TotalScore, 6) {
		t.Errorf("TotalScore = %g, want 6", result.TotalScore)
	}
	if !almostEqual(result.MaxScore, 8) {
		t.Errorf("MaxScore = %g, want 8", result.MaxScore)
	}
	if !almostEqual(result.Percentage, 75) {
		t.Errorf("Percentage = %g, want 75", result.Percentage)
	}
}

func TestScoreSurveyMaxScoreOverride(t *testing.T) {
	override := 10.0
	questions := []model.Question{
		{
			ID:               "q1",
			Type:             model.QuestionTypeCheckbox,
			Scorable:         true,
			OptionScores:     map[string]float64{"a": 2, "b": 3},
			MaxScoreOverride: &override,
		},
	}

	result := ScoreSurvey(questions, model.AnswerMap{"q1": []string{"a", "b"}}, nil)

	if !almostEqual(result.MaxScore, 10) {
		t.Errorf("MaxScore = %g, want 10 (override)", result.MaxScore)
	}
	if !almostEqual(result.TotalScore, 5) {
		t.Errorf("TotalScore = %g, want 5", result.TotalScore)
	}
}

func TestScoreSurveySkipsUnansweredAndUnscorable(t *testing.T) {
	questions := []model.Question{
		{ID: "q1", Type: model.QuestionTypeRating, Scorable: true, RatingScale: 5},
		{ID: "q2", Type: model.QuestionTypeRating, Scorable: true, RatingScale: 5},
		{ID: "q3", Type: model.QuestionTypeText, Scorable: false},
	}

	// q2 unanswered: it contributes neither raw nor max, so the
	// percentage reflects answered questions only.
	result := ScoreSurvey(questions, model.AnswerMap{"q1": float64(5), "q3": "free text"}, nil)

	if !almostEqual(result.TotalScore, 5) {
		t.Errorf("TotalScore = %g, want 5", result.TotalScore)
	}
	if !almostEqual(result.MaxScore, 5) {
		t.Errorf("MaxScore = %g, want 5", result.MaxScore)
	}
	if !almostEqual(result.Percentage, 100) {
		t.Errorf("Percentage = %g, want 100", result.Percentage)
	}
}

func TestScoreSurveyNonScoringTypesContributeNothing(t *testing.T) {
	questions := []model.Question{
		{ID: "q1", Type: model.QuestionTypeMatrix, Scorable: true},
		{ID: "q2", Type: model.QuestionTypeConstantSum, Scorable: true},
		{ID: "q3", Type: model.QuestionTypeFileUpload, Scorable: true},
	}

	result := ScoreSurvey(questions, model.AnswerMap{"q1": "x", "q2": "y", "q3": "z"}, nil)

	if result.TotalScore != 0 || result.MaxScore != 0 {
		t.Errorf("got total=%g max=%g, want both 0", result.TotalScore, result.MaxScore)
	}
	if result.Percentage != 0 {
		t.Errorf("Percentage = %g, want 0 when MaxScore is 0", result.Percentage)
	}
}

func TestScoreSurveyMismatchedAnswerShapeIsSkipped(t *testing.T) {
	questions := []model.Question{
		{ID: "q1", Type: model.QuestionTypeMultipleChoice, Scorable: true, OptionScores: map[string]float64{"A": 2}},
	}

	// A numeric answer on a single-select question has no meaning.
	result := ScoreSurvey(questions, model.AnswerMap{"q1": float64(3)}, nil)

	if result.TotalScore != 0 || result.MaxScore != 0 {
		t.Errorf("got total=%g max=%g, want both 0", result.TotalScore, result.MaxScore)
	}
}

func TestScoreSurveyPreseedsDeclaredCategories(t *testing.T) {
	cfg := &model.SurveyScoreConfig{
		Enabled: true,
		Categories: []model.ScoreCategory{
			{ID: "stress", Name: "Stress"},
			{ID: "sleep", Name: "Sleep"},
		},
	}

	result := ScoreSurvey(nil, model.AnswerMap{}, cfg)

	for _, id := range []string{"stress", "sleep"} {
		cs, ok := result.CategoryScores[id]
		if !ok {
			t.Errorf("category %q missing from result", id)
			continue
		}
		if cs.Score != 0 || cs.MaxScore != 0 {
			t.Errorf("category %q = %+v, want zero entry", id, cs)
		}
	}
}

func TestScoreSurveyIsDeterministicAndPure(t *testing.T) {
	questions := []model.Question{
		{ID: "q1", Type: model.QuestionTypeRating, Scorable: true, RatingScale: 10},
		{ID: "q2", Type: model.QuestionTypeCheckbox, Scorable: true, OptionScores: map[string]float64{"a": 1, "b": 2}},
	}
	answers := model.AnswerMap{"q1": float64(7), "q2": []string{"b"}}

	first := ScoreSurvey(questions, answers, nil)
	second := ScoreSurvey(questions, answers, nil)

	if first.TotalScore != second.TotalScore || first.MaxScore != second.MaxScore {
		t.Errorf("repeated passes disagree: %+v vs %+v", first, second)
	}
	if questions[1].OptionScores["a"] != 1 {
		t.Error("input question mutated by scoring pass")
	}
	if v, ok := answers["q1"].(float64); !ok || v != 7 {
		t.Error("input answers mutated by scoring pass")
	}
}

func TestScoreSurveyUnknownTypePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown question type")
		}
	}()

	questions := []model.Question{{ID: "q1", Type: "hologram", Scorable: true}}
	ScoreSurvey(questions, model.AnswerMap{"q1": "x"}, nil)
}
