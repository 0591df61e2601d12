package model

// QuestionType enumerates the closed set of question variants the engine
// understands. The normalizer upstream guarantees every question carries
// only the fields meaningful to its type.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeCheckbox       QuestionType = "checkbox"
	QuestionTypeRating         QuestionType = "rating"
	QuestionTypeMatrix         QuestionType = "matrix"
	QuestionTypeConstantSum    QuestionType = "constant_sum"
	QuestionTypeNPS            QuestionType = "nps"
	QuestionTypeFileUpload     QuestionType = "file_upload"
	QuestionTypeLikert         QuestionType = "likert"
	QuestionTypeText           QuestionType = "text"
)

// Question is a single survey question in its normalized shape.
//
// Common fields apply to every type. Scoring fields are meaningful only
// when Scorable is true; OptionScores only on choice-like types
// (multiple_choice, checkbox); RatingScale only on numeric types
// (rating, nps, likert).
type Question struct {
	ID       string       `json:"id"`
	Type     QuestionType `json:"type"`
	Question string       `json:"question"`
	Required bool         `json:"required"`

	// Choice-like fields.
	Options       []string `json:"options,omitempty"`
	MaxSelections int      `json:"maxSelections,omitempty"`

	// Numeric-scale fields. The normalizer coerces a missing scale to the
	// type default (5 for rating/likert, 10 for nps).
	RatingScale int `json:"ratingScale,omitempty"`

	// Scoring fields.
	Scorable        bool               `json:"scorable,omitempty"`
	ScoreWeight     float64            `json:"scoreWeight,omitempty"`
	ScoringCategory string             `json:"scoringCategory,omitempty"`
	OptionScores    map[string]float64 `json:"optionScores,omitempty"`

	// MaxScoreOverride replaces the computed max-possible score for this
	// question when set. Used by authors whose checkbox questions should
	// not count every positive option toward the maximum.
	MaxScoreOverride *float64 `json:"maxScoreOverride,omitempty"`

	// LogicRules are evaluated in declaration order, first match wins.
	LogicRules []LogicRule `json:"logicRules,omitempty"`
}

// Weight returns the question's effective score weight. The normalizer
// leaves the field at zero when the author did not set one; the engine
// treats that as the default weight of 1.
func (q *Question) Weight() float64 {
	if q.ScoreWeight == 0 {
		return 1
	}
	return q.ScoreWeight
}

// LogicAction enumerates the branching actions a logic rule can take.
type LogicAction string

const (
	LogicActionSkip LogicAction = "skip"
	LogicActionShow LogicAction = "show"
	LogicActionEnd  LogicAction = "end"
)

// LogicRule is an author-defined conditional attached to a question.
// Condition is a small boolean expression over prior answers (see the
// logic package); it is data, never executable host code.
type LogicRule struct {
	ID               string      `json:"id"`
	Condition        string      `json:"condition"`
	Action           LogicAction `json:"action"`
	TargetQuestionID string      `json:"targetQuestionId,omitempty"`
}
