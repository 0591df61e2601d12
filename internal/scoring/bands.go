package scoring

import "github.com/formpulse/formpulse-backend/internal/model"

// AssignBand maps a computed score onto the band whose inclusive range
// contains it (min <= score <= max). Returns nil when the table is empty
// or no range contains the score — the caller treats a nil band as "no
// banding configured", not as an error.
//
// If a misconfigured table has overlapping ranges, the first band in
// declaration order wins. Ties are never resolved by range width.
func AssignBand(score float64, bands []model.ScoreBand) *model.ScoreBand {
	for i := range bands {
		if bands[i].Min <= score && score <= bands[i].Max {
			b := bands[i]
			return &b
		}
	}
	return nil
}

// OverallBands resolves the band table for the overall score: the results
// screen's scoreRanges when present and non-empty, else the survey-wide
// default ranges.
func OverallBands(cfg *model.SurveyScoreConfig) []model.ScoreBand {
	if cfg == nil {
		return nil
	}
	if cfg.ResultsScreen != nil && len(cfg.ResultsScreen.ScoreRanges) > 0 {
		return cfg.ResultsScreen.ScoreRanges
	}
	return cfg.ScoreRanges
}

// CategoryBands resolves the effective band table for one category: its
// own table when bandsMode is "custom" and the table is non-empty, else
// the overall table. A category flagged custom with an empty table falls
// back to the overall table rather than banding nothing.
func CategoryBands(cfg *model.SurveyScoreConfig, cat *model.CategoryResultConfig) []model.ScoreBand {
	if cat != nil && cat.BandsMode == model.BandsModeCustom && len(cat.Bands) > 0 {
		return cat.Bands
	}
	return OverallBands(cfg)
}

// NarrativeFor returns the narrative text configured for the given band,
// or "" when none is configured.
func NarrativeFor(cat *model.CategoryResultConfig, band *model.ScoreBand) string {
	if cat == nil || band == nil {
		return ""
	}
	for _, n := range cat.BandNarratives {
		if n.BandID == band.ID {
			return n.Text
		}
	}
	return ""
}

// PercentBands converts a band table expressed over 0–100 percentages into
// one over the same scale as a raw score, so AssignBand needs no
// percentage-specific logic.
func PercentBands(bands []model.ScoreBand, maxScore float64) []model.ScoreBand {
	out := make([]model.ScoreBand, len(bands))
	for i, b := range bands {
		out[i] = model.ScoreBand{
			ID:    b.ID,
			Min:   b.Min / 100 * maxScore,
			Max:   b.Max / 100 * maxScore,
			Label: b.Label,
		}
	}
	return out
}
