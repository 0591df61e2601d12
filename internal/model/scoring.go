package model

// ScoreCategory is a named grouping of questions whose weighted scores are
// aggregated separately from the overall total.
type ScoreCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ScoreBand is a labeled, inclusive numeric range used to translate a
// score into a qualitative label (e.g. "Low", "High").
type ScoreBand struct {
	ID    string  `json:"id"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Label string  `json:"label"`
}

// BandsMode selects between the survey-wide default band table and a
// category's own custom table.
type BandsMode string

const (
	BandsModeDefault BandsMode = "default"
	BandsModeCustom  BandsMode = "custom"
)

// BandNarrative is author-written free text shown when a score falls into
// the referenced band.
type BandNarrative struct {
	BandID string `json:"bandId"`
	Text   string `json:"text"`
}

// CategoryResultConfig configures how one category appears on the results
// screen, including an optional custom band table.
type CategoryResultConfig struct {
	CategoryID     string          `json:"categoryId"`
	BandsMode      BandsMode       `json:"bandsMode,omitempty"`
	Bands          []ScoreBand     `json:"bands,omitempty"`
	BandNarratives []BandNarrative `json:"bandNarratives,omitempty"`
}

// ResultsScreenConfig carries the optional overall band override and the
// ordered per-category result configuration.
type ResultsScreenConfig struct {
	ScoreRanges []ScoreBand            `json:"scoreRanges,omitempty"`
	Categories  []CategoryResultConfig `json:"categories,omitempty"`
}

// SurveyScoreConfig is the scoring configuration authored once per survey.
// It is an immutable input to the engine for the duration of one pass.
type SurveyScoreConfig struct {
	Enabled       bool                 `json:"enabled"`
	Categories    []ScoreCategory      `json:"categories,omitempty"`
	ScoreRanges   []ScoreBand          `json:"scoreRanges,omitempty"`
	ResultsScreen *ResultsScreenConfig `json:"resultsScreen,omitempty"`
}

// CategoryScore is the per-category accumulation inside a ScoreResult.
type CategoryScore struct {
	Score    float64 `json:"score"`
	MaxScore float64 `json:"maxScore"`
}

// ScoreResult is the output of one scoring pass.
type ScoreResult struct {
	TotalScore     float64                  `json:"totalScore"`
	MaxScore       float64                  `json:"maxScore"`
	Percentage     float64                  `json:"percentage"`
	CategoryScores map[string]CategoryScore `json:"categoryScores"`
}

// CategoryResult is a category score decorated with its assigned band and
// narrative, attached by the caller using the band assigner.
type CategoryResult struct {
	CategoryID string     `json:"categoryId"`
	Score      float64    `json:"score"`
	MaxScore   float64    `json:"maxScore"`
	Band       *ScoreBand `json:"band,omitempty"`
	Narrative  string     `json:"narrative,omitempty"`
}
