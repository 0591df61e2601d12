package scoring

import (
	"strings"
	"testing"

	"github.com/formpulse/formpulse-backend/internal/model"
)

func TestValidateScoreConfigTriviallyValid(t *testing.T) {
	if got := ValidateScoreConfig(nil); !got.Valid {
		t.Errorf("nil config: got %+v, want valid", got)
	}
	if got := ValidateScoreConfig(&model.SurveyScoreConfig{Enabled: true}); !got.Valid {
		t.Errorf("no results screen: got %+v, want valid", got)
	}
}

func TestValidateScoreConfigAcceptsWellFormed(t *testing.T) {
	cfg := &model.SurveyScoreConfig{
		Enabled:    true,
		Categories: []model.ScoreCategory{{ID: "c1", Name: "One"}},
		ScoreRanges: []model.ScoreBand{
			{ID: "low", Min: 0, Max: 49},
			{ID: "high", Min: 50, Max: 100},
		},
		ResultsScreen: &model.ResultsScreenConfig{
			Categories: []model.CategoryResultConfig{
				{
					CategoryID:     "c1",
					BandNarratives: []model.BandNarrative{{BandID: "low", Text: "ok"}},
				},
			},
		},
	}

	got := ValidateScoreConfig(cfg)
	if !got.Valid {
		t.Errorf("well-formed config rejected: %v", got.Errors)
	}
}

func TestValidateScoreConfigDetectsOverlap(t *testing.T) {
	cfg := &model.SurveyScoreConfig{
		Enabled: true,
		ScoreRanges: []model.ScoreBand{
			{ID: "a", Min: 0, Max: 60},
			{ID: "b", Min: 40, Max: 100},
		},
		ResultsScreen: &model.ResultsScreenConfig{},
	}

	got := ValidateScoreConfig(cfg)
	if got.Valid {
		t.Fatal("overlapping bands accepted")
	}
	if !containsError(got.Errors, "overlap") {
		t.Errorf("errors = %v, want an overlap error", got.Errors)
	}
}

func TestValidateScoreConfigSharedBoundaryIsNotOverlap(t *testing.T) {
	// Max of one band equal to min of the next is legal: AssignBand
	// resolves the boundary by declaration order.
	cfg := &model.SurveyScoreConfig{
		Enabled: true,
		ScoreRanges: []model.ScoreBand{
			{ID: "a", Min: 0, Max: 50},
			{ID: "b", Min: 50, Max: 100},
		},
		ResultsScreen: &model.ResultsScreenConfig{},
	}

	if got := ValidateScoreConfig(cfg); !got.Valid {
		t.Errorf("touching bands rejected: %v", got.Errors)
	}
}

func TestValidateScoreConfigCollectsAllErrors(t *testing.T) {
	cfg := &model.SurveyScoreConfig{
		Enabled:    true,
		Categories: []model.ScoreCategory{{ID: "known", Name: "Known"}},
		ScoreRanges: []model.ScoreBand{
			{ID: "", Min: 10, Max: 5}, // empty id, inverted range, overlaps "dup"
			{ID: "dup", Min: 0, Max: 20},
			{ID: "dup", Min: 15, Max: 40}, // duplicate id
		},
		ResultsScreen: &model.ResultsScreenConfig{
			Categories: []model.CategoryResultConfig{
				{
					CategoryID:     "ghost", // not declared
					BandNarratives: []model.BandNarrative{{BandID: "nowhere", Text: "x"}},
				},
			},
		},
	}

	got := ValidateScoreConfig(cfg)
	if got.Valid {
		t.Fatal("broken config accepted")
	}

	for _, want := range []string{"empty id", "min 10 greater than max 5", "duplicate band id", "overlap", "not declared", "unknown band"} {
		if !containsError(got.Errors, want) {
			t.Errorf("errors = %v, missing %q", got.Errors, want)
		}
	}
}

func TestValidateScoreConfigCustomCategoryTable(t *testing.T) {
	cfg := &model.SurveyScoreConfig{
		Enabled:    true,
		Categories: []model.ScoreCategory{{ID: "c1", Name: "One"}},
		ScoreRanges: []model.ScoreBand{
			{ID: "ok", Min: 0, Max: 100},
		},
		ResultsScreen: &model.ResultsScreenConfig{
			Categories: []model.CategoryResultConfig{
				{
					CategoryID: "c1",
					BandsMode:  model.BandsModeCustom,
					Bands: []model.ScoreBand{
						{ID: "x", Min: 0, Max: 30},
						{ID: "y", Min: 20, Max: 50},
					},
				},
			},
		},
	}

	got := ValidateScoreConfig(cfg)
	if got.Valid {
		t.Fatal("overlapping custom category table accepted")
	}
	if !containsError(got.Errors, `category "c1"`) {
		t.Errorf("errors = %v, want category-scoped error", got.Errors)
	}
}

func containsError(errs []string, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}
