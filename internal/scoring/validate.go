package scoring

import (
	"fmt"
	"sort"

	"github.com/formpulse/formpulse-backend/internal/model"
)

// ValidationResult is the outcome of validating a scoring configuration.
// Errors carries every detected problem so the authoring UI can display
// them all at once.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidateScoreConfig verifies that a scoring configuration's band tables
// are internally consistent before the config is accepted for use. It is
// author-facing: a failing result must block activation of the config but
// never a respondent's submission.
//
// With no results screen there is nothing to check and validation
// trivially succeeds. The input is never mutated.
func ValidateScoreConfig(cfg *model.SurveyScoreConfig) ValidationResult {
	var errs []string

	if cfg == nil || cfg.ResultsScreen == nil {
		return ValidationResult{Valid: true}
	}

	overall := OverallBands(cfg)
	errs = append(errs, validateBandTable("overall", overall)...)

	declared := make(map[string]bool, len(cfg.Categories))
	for _, cat := range cfg.Categories {
		declared[cat.ID] = true
	}

	for i := range cfg.ResultsScreen.Categories {
		cat := &cfg.ResultsScreen.Categories[i]

		if !declared[cat.CategoryID] {
			errs = append(errs, fmt.Sprintf("category %q is not declared in the scoring categories", cat.CategoryID))
		}

		table := CategoryBands(cfg, cat)
		scope := fmt.Sprintf("category %q", cat.CategoryID)
		errs = append(errs, validateBandTable(scope, table)...)

		known := make(map[string]bool, len(table))
		for _, b := range table {
			known[b.ID] = true
		}
		for _, n := range cat.BandNarratives {
			if !known[n.BandID] {
				errs = append(errs, fmt.Sprintf("%s: narrative references unknown band %q", scope, n.BandID))
			}
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// validateBandTable checks one band table for unique non-empty ids,
// min <= max per band, and non-overlapping ranges when sorted by min.
func validateBandTable(scope string, bands []model.ScoreBand) []string {
	var errs []string

	seen := make(map[string]bool, len(bands))
	for _, b := range bands {
		if b.ID == "" {
			errs = append(errs, fmt.Sprintf("%s: band %q has an empty id", scope, b.Label))
		} else if seen[b.ID] {
			errs = append(errs, fmt.Sprintf("%s: duplicate band id %q", scope, b.ID))
		}
		seen[b.ID] = true

		if b.Min > b.Max {
			errs = append(errs, fmt.Sprintf("%s: band %q has min %g greater than max %g", scope, b.ID, b.Min, b.Max))
		}
	}

	// Overlap check on a copy so the caller's ordering is preserved.
	sorted := make([]model.ScoreBand, len(bands))
	copy(sorted, bands)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Min < sorted[i-1].Max {
			errs = append(errs, fmt.Sprintf("%s: bands %q and %q overlap", scope, sorted[i-1].ID, sorted[i].ID))
		}
	}

	return errs
}
