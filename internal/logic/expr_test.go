package logic

import (
	"testing"

	"github.com/formpulse/formpulse-backend/internal/model"
)

func TestConditionMatch(t *testing.T) {
	answers := model.AnswerMap{
		"q1":   "Web",
		"q2":   float64(7),
		"q3":   true,
		"tags": []any{"a", "b"}, // non-scalar: comparisons never match
	}

	tests := []struct {
		name      string
		condition string
		want      bool
	}{
		{"string equality", `answer("q1") == "Web"`, true},
		{"string inequality", `answer("q1") != "Mobile"`, true},
		{"single quotes", `answer('q1') == 'Web'`, true},
		{"numeric less than", `answer("q2") < 10`, true},
		{"numeric greater or equal", `answer("q2") >= 7`, true},
		{"numeric not matched", `answer("q2") > 7`, false},
		{"bool literal", `answer("q3") == true`, true},
		{"and both sides", `answer("q1") == "Web" && answer("q2") > 5`, true},
		{"and short circuit", `answer("q1") == "Mobile" && answer("q2") > 5`, false},
		{"or either side", `answer("q1") == "Mobile" || answer("q2") == 7`, true},
		{"parentheses", `(answer("q1") == "Mobile" || answer("q1") == "Web") && answer("q2") < 8`, true},
		{"negative number literal", `answer("q2") > -1`, true},

		// Missing answers never match, inequality included.
		{"missing equality", `answer("nope") == "x"`, false},
		{"missing inequality", `answer("nope") != "x"`, false},
		{"missing ordering", `answer("nope") < 5`, false},

		// Cross-type comparisons are not matched rather than coerced.
		{"string vs number", `answer("q1") == 7`, false},
		{"ordering on strings", `answer("q1") < "Z"`, false},

		// Non-scalar answers behave like missing ones.
		{"checkbox answer", `answer("tags") == "a"`, false},

		// Bare non-boolean expressions are falsy.
		{"bare string literal", `"Web"`, false},
		{"bare number", `42`, false},
		{"bare true", `true`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, err := Parse(tt.condition)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.condition, err)
			}
			if got := cond.Match(answers); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.condition, got, tt.want)
			}
		})
	}
}

func TestParseRejectsMalformedConditions(t *testing.T) {
	conditions := []string{
		``,
		`answer(q1) == "x"`,       // unquoted id
		`answer("q1" == "x"`,      // missing close paren
		`answer("q1") = "x"`,      // single =
		`answer("q1") == "x" &&`,  // dangling operator
		`answer("q1") == "x") ||`, // unbalanced paren
		`"unterminated`,
		`lookup("q1") == "x"`, // unknown identifier
		`answer("q1") == "x"; drop`,
	}

	for _, c := range conditions {
		if _, err := Parse(c); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", c)
		}
	}
}

func TestMatchConditionFailsClosed(t *testing.T) {
	matched, err := MatchCondition(`answer("q1" ==`, model.AnswerMap{"q1": "x"})
	if err == nil {
		t.Fatal("expected parse error")
	}
	if matched {
		t.Error("unparsable condition reported as matched")
	}
}

func TestConditionMatchEscapedQuotes(t *testing.T) {
	cond, err := Parse(`answer("q1") == "say \"hi\""`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if !cond.Match(model.AnswerMap{"q1": `say "hi"`}) {
		t.Error("escaped quote in literal did not match")
	}
}
