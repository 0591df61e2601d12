// Package scoring implements the survey scoring engine: per-category and
// overall score computation, band assignment, and scoring-config
// validation. Everything in this package is a pure function over
// immutable inputs; all I/O lives in the service and worker layers.
package scoring

import (
	"fmt"

	"github.com/formpulse/formpulse-backend/internal/model"
)

// ScoreSurvey computes the per-category and overall scores for a completed
// answer set. Only scorable questions contribute; unanswered questions are
// skipped silently so a partially-answered survey still yields a
// best-effort result.
//
// The function is deterministic and does not mutate its inputs. The config
// is used only to pre-seed declared categories with zero entries so the
// results screen always sees every category.
func ScoreSurvey(questions []model.Question, answers model.AnswerMap, cfg *model.SurveyScoreConfig) model.ScoreResult {
	result := model.ScoreResult{
		CategoryScores: make(map[string]model.CategoryScore),
	}

	if cfg != nil {
		for _, cat := range cfg.Categories {
			result.CategoryScores[cat.ID] = model.CategoryScore{}
		}
	}

	for i := range questions {
		q := &questions[i]
		if !q.Scorable {
			continue
		}

		answer, ok := answers[q.ID]
		if !ok {
			continue
		}

		raw, max, ok := questionScore(q, answer)
		if !ok {
			continue
		}

		if q.MaxScoreOverride != nil {
			max = *q.MaxScoreOverride
		}

		w := q.Weight()
		raw *= w
		max *= w

		// Negative option scores can pull a contribution below zero, and an
		// override can set the ceiling under the achievable raw. Keeping
		// every contribution inside [0, max] keeps the percentage in
		// [0, 100].
		if max < 0 {
			max = 0
		}
		raw = clamp(raw, 0, max)

		result.TotalScore += raw
		result.MaxScore += max

		if q.ScoringCategory != "" {
			cs := result.CategoryScores[q.ScoringCategory]
			cs.Score += raw
			cs.MaxScore += max
			result.CategoryScores[q.ScoringCategory] = cs
		}
	}

	if result.MaxScore > 0 {
		result.Percentage = result.TotalScore / result.MaxScore * 100
	}

	return result
}

// questionScore computes the unweighted raw and max-possible score for one
// question. It returns ok=false when the question type carries no scoring
// semantics or the answer shape does not match the type, so the caller
// skips the question instead of failing the whole pass.
func questionScore(q *model.Question, answer any) (raw, max float64, ok bool) {
	switch q.Type {
	case model.QuestionTypeRating, model.QuestionTypeNPS, model.QuestionTypeLikert:
		v, numOK := toNumber(answer)
		if !numOK {
			return 0, 0, false
		}
		scale := float64(q.RatingScale)
		return clamp(v, 0, scale), scale, true

	case model.QuestionTypeMultipleChoice:
		s, strOK := answer.(string)
		if !strOK {
			return 0, 0, false
		}
		return q.OptionScores[s], bestSingleOption(q.OptionScores), true

	case model.QuestionTypeCheckbox:
		selected, selOK := toStringSlice(answer)
		if !selOK {
			return 0, 0, false
		}
		for _, s := range selected {
			raw += q.OptionScores[s]
		}
		return raw, positiveOptionSum(q.OptionScores), true

	case model.QuestionTypeMatrix, model.QuestionTypeConstantSum,
		model.QuestionTypeText, model.QuestionTypeFileUpload:
		// No scoring semantics for these types.
		return 0, 0, false

	default:
		// Unknown types indicate the normalizer contract was violated.
		panic(fmt.Sprintf("scoring: unknown question type %q", q.Type))
	}
}

// bestSingleOption returns the highest option score, the max achievable on
// a single-select question. An empty table yields 0.
func bestSingleOption(scores map[string]float64) float64 {
	var best float64
	first := true
	for _, v := range scores {
		if first || v > best {
			best = v
			first = false
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

// positiveOptionSum returns the sum of all positive option scores, the
// default max-possible policy for multi-select questions. Authors can
// replace it per question via MaxScoreOverride.
func positiveOptionSum(scores map[string]float64) float64 {
	var sum float64
	for _, v := range scores {
		if v > 0 {
			sum += v
		}
	}
	return sum
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// toNumber coerces the numeric answer shapes that JSON decoding and test
// fixtures produce.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// toStringSlice accepts both []string and the []any that encoding/json
// produces for checkbox answers.
func toStringSlice(v any) ([]string, bool) {
	switch s := v.(type) {
	case []string:
		return s, true
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	default:
		return nil, false
	}
}
