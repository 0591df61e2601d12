package scoring

import (
	"testing"

	"github.com/formpulse/formpulse-backend/internal/model"
)

var standardBands = []model.ScoreBand{
	{ID: "low", Min: 0, Max: 49, Label: "Low"},
	{ID: "high", Min: 50, Max: 100, Label: "High"},
}

func TestAssignBand(t *testing.T) {
	tests := []struct {
		name   string
		score  float64
		bands  []model.ScoreBand
		wantID string // "" means nil band expected
	}{
		{"mid range", 25, standardBands, "low"},
		{"lower boundary inclusive", 0, standardBands, "low"},
		{"shared boundary goes to matching band", 50, standardBands, "high"},
		{"upper boundary inclusive", 100, standardBands, "high"},
		{"boundary between bands", 49, standardBands, "low"},
		{"above all ranges", 150, standardBands, ""},
		{"below all ranges", -1, standardBands, ""},
		{"empty table", 42, nil, ""},
		{
			"gap between ranges",
			45,
			[]model.ScoreBand{{ID: "a", Min: 0, Max: 40}, {ID: "b", Min: 50, Max: 100}},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			band := AssignBand(tt.score, tt.bands)
			if tt.wantID == "" {
				if band != nil {
					t.Errorf("AssignBand(%g) = %q, want nil", tt.score, band.ID)
				}
				return
			}
			if band == nil {
				t.Fatalf("AssignBand(%g) = nil, want %q", tt.score, tt.wantID)
			}
			if band.ID != tt.wantID {
				t.Errorf("AssignBand(%g) = %q, want %q", tt.score, band.ID, tt.wantID)
			}
		})
	}
}

func TestAssignBandOverlapFirstWins(t *testing.T) {
	bands := []model.ScoreBand{
		{ID: "first", Min: 0, Max: 60},
		{ID: "second", Min: 40, Max: 100},
	}

	band := AssignBand(50, bands)
	if band == nil || band.ID != "first" {
		t.Fatalf("overlapping ranges: got %+v, want first band in declaration order", band)
	}
}

func TestAssignBandReturnsCopy(t *testing.T) {
	bands := []model.ScoreBand{{ID: "only", Min: 0, Max: 10, Label: "Only"}}

	band := AssignBand(5, bands)
	band.Label = "mutated"

	if bands[0].Label != "Only" {
		t.Error("AssignBand returned a pointer into the caller's table")
	}
}

func TestOverallBandsPrefersResultsScreen(t *testing.T) {
	cfg := &model.SurveyScoreConfig{
		ScoreRanges: []model.ScoreBand{{ID: "default", Min: 0, Max: 100}},
		ResultsScreen: &model.ResultsScreenConfig{
			ScoreRanges: []model.ScoreBand{{ID: "override", Min: 0, Max: 100}},
		},
	}

	got := OverallBands(cfg)
	if len(got) != 1 || got[0].ID != "override" {
		t.Errorf("OverallBands = %+v, want results-screen table", got)
	}

	// Empty results-screen table falls back to the survey-wide ranges.
	cfg.ResultsScreen.ScoreRanges = nil
	got = OverallBands(cfg)
	if len(got) != 1 || got[0].ID != "default" {
		t.Errorf("OverallBands = %+v, want survey-wide table", got)
	}

	if OverallBands(nil) != nil {
		t.Error("OverallBands(nil) should be nil")
	}
}

func TestCategoryBandsFallback(t *testing.T) {
	cfg := &model.SurveyScoreConfig{
		ScoreRanges: []model.ScoreBand{{ID: "overall", Min: 0, Max: 100}},
	}

	custom := &model.CategoryResultConfig{
		CategoryID: "c1",
		BandsMode:  model.BandsModeCustom,
		Bands:      []model.ScoreBand{{ID: "own", Min: 0, Max: 10}},
	}
	if got := CategoryBands(cfg, custom); len(got) != 1 || got[0].ID != "own" {
		t.Errorf("custom category: got %+v, want its own table", got)
	}

	// Custom mode with an empty table banding nothing would be worse
	// than falling back to the overall table.
	emptyCustom := &model.CategoryResultConfig{CategoryID: "c2", BandsMode: model.BandsModeCustom}
	if got := CategoryBands(cfg, emptyCustom); len(got) != 1 || got[0].ID != "overall" {
		t.Errorf("empty custom table: got %+v, want overall fallback", got)
	}

	deflt := &model.CategoryResultConfig{CategoryID: "c3", BandsMode: model.BandsModeDefault}
	if got := CategoryBands(cfg, deflt); len(got) != 1 || got[0].ID != "overall" {
		t.Errorf("default mode: got %+v, want overall table", got)
	}
}

func TestNarrativeFor(t *testing.T) {
	cat := &model.CategoryResultConfig{
		CategoryID: "c1",
		BandNarratives: []model.BandNarrative{
			{BandID: "low", Text: "Needs attention."},
			{BandID: "high", Text: "Doing great."},
		},
	}

	if got := NarrativeFor(cat, &model.ScoreBand{ID: "high"}); got != "Doing great." {
		t.Errorf("NarrativeFor = %q, want configured text", got)
	}
	if got := NarrativeFor(cat, &model.ScoreBand{ID: "unknown"}); got != "" {
		t.Errorf("NarrativeFor = %q, want empty for unconfigured band", got)
	}
	if got := NarrativeFor(cat, nil); got != "" {
		t.Errorf("NarrativeFor = %q, want empty for nil band", got)
	}
}

func TestPercentBands(t *testing.T) {
	bands := []model.ScoreBand{
		{ID: "low", Min: 0, Max: 50, Label: "Low"},
		{ID: "high", Min: 50, Max: 100, Label: "High"},
	}

	scaled := PercentBands(bands, 40)

	if scaled[0].Max != 20 || scaled[1].Min != 20 || scaled[1].Max != 40 {
		t.Errorf("PercentBands = %+v, want ranges scaled onto 0-40", scaled)
	}
	// Original table untouched.
	if bands[1].Max != 100 {
		t.Error("PercentBands mutated its input")
	}
}
