// Package logic implements question-level conditional branching: a narrow
// expression interpreter over prior answers plus first-match-wins rule
// evaluation.
//
// Conditions originate from survey authors and are treated strictly as
// data. The interpreter supports comparison operators, logical && and ||,
// parentheses, string/number/bool literals, and a single answer(id)
// accessor against the response map. Nothing else is reachable — in
// particular, no general code-execution facility is ever involved.
package logic

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/formpulse/formpulse-backend/internal/model"
)

// ─── Values ──────────────────────────────────────────────────────────

type valueKind int

const (
	valMissing valueKind = iota // referenced answer not present
	valString
	valNumber
	valBool
)

// value is the runtime representation of an operand. Answers with
// non-scalar shapes (checkbox selections) surface as valMissing so every
// comparison against them is simply not-matched.
type value struct {
	kind valueKind
	str  string
	num  float64
	b    bool
}

func answerValue(v any, ok bool) value {
	if !ok {
		return value{kind: valMissing}
	}
	switch a := v.(type) {
	case string:
		return value{kind: valString, str: a}
	case bool:
		return value{kind: valBool, b: a}
	case float64:
		return value{kind: valNumber, num: a}
	case float32:
		return value{kind: valNumber, num: float64(a)}
	case int:
		return value{kind: valNumber, num: float64(a)}
	case int64:
		return value{kind: valNumber, num: float64(a)}
	default:
		return value{kind: valMissing}
	}
}

// ─── AST ─────────────────────────────────────────────────────────────

type expr interface {
	eval(answers model.AnswerMap) value
}

type literalExpr struct{ v value }

func (e literalExpr) eval(model.AnswerMap) value { return e.v }

type answerExpr struct{ questionID string }

func (e answerExpr) eval(answers model.AnswerMap) value {
	v, ok := answers[e.questionID]
	return answerValue(v, ok)
}

type compareExpr struct {
	op          string
	left, right expr
}

func (e compareExpr) eval(answers model.AnswerMap) value {
	l := e.left.eval(answers)
	r := e.right.eval(answers)

	// A missing operand never matches; inequality against a missing
	// answer is deliberately also false, never an error.
	if l.kind == valMissing || r.kind == valMissing {
		return value{kind: valBool, b: false}
	}

	switch e.op {
	case "==":
		return value{kind: valBool, b: valuesEqual(l, r)}
	case "!=":
		return value{kind: valBool, b: !valuesEqual(l, r)}
	}

	// Ordering comparisons are numeric only.
	if l.kind != valNumber || r.kind != valNumber {
		return value{kind: valBool, b: false}
	}
	var b bool
	switch e.op {
	case "<":
		b = l.num < r.num
	case "<=":
		b = l.num <= r.num
	case ">":
		b = l.num > r.num
	case ">=":
		b = l.num >= r.num
	}
	return value{kind: valBool, b: b}
}

func valuesEqual(l, r value) bool {
	if l.kind != r.kind {
		return false
	}
	switch l.kind {
	case valString:
		return l.str == r.str
	case valNumber:
		return l.num == r.num
	case valBool:
		return l.b == r.b
	}
	return false
}

type logicalExpr struct {
	op          string // "&&" or "||"
	left, right expr
}

func (e logicalExpr) eval(answers model.AnswerMap) value {
	l := truthy(e.left.eval(answers))
	if e.op == "&&" {
		if !l {
			return value{kind: valBool, b: false}
		}
		return value{kind: valBool, b: truthy(e.right.eval(answers))}
	}
	if l {
		return value{kind: valBool, b: true}
	}
	return value{kind: valBool, b: truthy(e.right.eval(answers))}
}

// truthy converts an operand used in boolean position. Only a true bool
// counts: bare strings/numbers fail closed.
func truthy(v value) bool {
	return v.kind == valBool && v.b
}

// ─── Lexer ───────────────────────────────────────────────────────────

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokString
	tokNumber
	tokIdent // answer, true, false
	tokOp    // == != < <= > >= && ||
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	num  float64
}

type lexer struct {
	input string
	pos   int
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) && unicode.IsSpace(rune(l.input[l.pos])) {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{kind: tokEOF}, nil
	}

	c := l.input[l.pos]
	switch {
	case c == '(':
		l.pos++
		return token{kind: tokLParen}, nil
	case c == ')':
		l.pos++
		return token{kind: tokRParen}, nil
	case c == ',':
		l.pos++
		return token{kind: tokComma}, nil
	case c == '"' || c == '\'':
		return l.lexString(c)
	case c == '&' || c == '|':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == c {
			l.pos += 2
			return token{kind: tokOp, text: string([]byte{c, c})}, nil
		}
		return token{}, fmt.Errorf("unexpected %q at position %d", c, l.pos)
	case c == '=' || c == '!':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '=' {
			op := string(c) + "="
			l.pos += 2
			return token{kind: tokOp, text: op}, nil
		}
		return token{}, fmt.Errorf("unexpected %q at position %d", c, l.pos)
	case c == '<' || c == '>':
		op := string(c)
		l.pos++
		if l.pos < len(l.input) && l.input[l.pos] == '=' {
			op += "="
			l.pos++
		}
		return token{kind: tokOp, text: op}, nil
	case c == '-' || c >= '0' && c <= '9':
		return l.lexNumber()
	case isIdentStart(c):
		return l.lexIdent(), nil
	default:
		return token{}, fmt.Errorf("unexpected %q at position %d", c, l.pos)
	}
}

func (l *lexer) lexString(quote byte) (token, error) {
	start := l.pos
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == '\\' && l.pos+1 < len(l.input) {
			l.pos++
			sb.WriteByte(l.input[l.pos])
			l.pos++
			continue
		}
		if c == quote {
			l.pos++
			return token{kind: tokString, text: sb.String()}, nil
		}
		sb.WriteByte(c)
		l.pos++
	}
	return token{}, fmt.Errorf("unterminated string starting at position %d", start)
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	if l.input[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.input) && (l.input[l.pos] >= '0' && l.input[l.pos] <= '9' || l.input[l.pos] == '.') {
		l.pos++
	}
	n, err := strconv.ParseFloat(l.input[start:l.pos], 64)
	if err != nil {
		return token{}, fmt.Errorf("invalid number %q", l.input[start:l.pos])
	}
	return token{kind: tokNumber, num: n}, nil
}

func (l *lexer) lexIdent() token {
	start := l.pos
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.pos++
	}
	return token{kind: tokIdent, text: l.input[start:l.pos]}
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

// ─── Parser ──────────────────────────────────────────────────────────

type parser struct {
	lex  lexer
	cur  token
	next token
}

// Parse compiles a condition string into an evaluable expression. Any
// syntax outside the supported grammar is a parse error; callers treat a
// failed parse as a never-matching condition (fail closed).
func Parse(condition string) (Condition, error) {
	p := &parser{lex: lexer{input: condition}}
	if err := p.advance(); err != nil {
		return Condition{}, err
	}
	if err := p.advance(); err != nil {
		return Condition{}, err
	}

	e, err := p.parseOr()
	if err != nil {
		return Condition{}, err
	}
	if p.cur.kind != tokEOF {
		return Condition{}, fmt.Errorf("unexpected trailing input")
	}
	return Condition{root: e}, nil
}

func (p *parser) advance() error {
	p.cur = p.next
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.next = t
	return nil
}

func (p *parser) parseOr() (expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokOp && p.cur.text == "||" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = logicalExpr{op: "||", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokOp && p.cur.text == "&&" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = logicalExpr{op: "&&", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseComparison() (expr, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if p.cur.kind == tokOp && isComparisonOp(p.cur.text) {
		op := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return compareExpr{op: op, left: left, right: right}, nil
	}
	return left, nil
}

func isComparisonOp(op string) bool {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
		return true
	}
	return false
}

func (p *parser) parseOperand() (expr, error) {
	switch p.cur.kind {
	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.cur.kind != tokRParen {
			return nil, fmt.Errorf("expected closing parenthesis")
		}
		return e, p.advance()

	case tokString:
		e := literalExpr{v: value{kind: valString, str: p.cur.text}}
		return e, p.advance()

	case tokNumber:
		e := literalExpr{v: value{kind: valNumber, num: p.cur.num}}
		return e, p.advance()

	case tokIdent:
		switch p.cur.text {
		case "true", "false":
			e := literalExpr{v: value{kind: valBool, b: p.cur.text == "true"}}
			return e, p.advance()
		case "answer":
			return p.parseAnswerCall()
		default:
			return nil, fmt.Errorf("unknown identifier %q", p.cur.text)
		}

	default:
		return nil, fmt.Errorf("unexpected token in expression")
	}
}

// parseAnswerCall parses the single accessor the language exposes:
// answer("questionId").
func (p *parser) parseAnswerCall() (expr, error) {
	if err := p.advance(); err != nil { // consume "answer"
		return nil, err
	}
	if p.cur.kind != tokLParen {
		return nil, fmt.Errorf("expected ( after answer")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.cur.kind != tokString {
		return nil, fmt.Errorf("answer() requires a quoted question id")
	}
	id := p.cur.text
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.cur.kind != tokRParen {
		return nil, fmt.Errorf("expected ) after answer id")
	}
	return answerExpr{questionID: id}, p.advance()
}

// ─── Public evaluation surface ───────────────────────────────────────

// Condition is a parsed, reusable condition expression.
type Condition struct {
	root expr
}

// Match evaluates the condition against the accumulated answers. The
// result is false unless the expression evaluates to boolean true;
// referencing an unanswered question never errors.
func (c Condition) Match(answers model.AnswerMap) bool {
	if c.root == nil {
		return false
	}
	return truthy(c.root.eval(answers))
}

// MatchCondition parses and evaluates a condition string in one step.
// The error reports unparsable rule text for author-facing surfacing;
// callers must still treat it as a non-match, never a failure.
func MatchCondition(condition string, answers model.AnswerMap) (bool, error) {
	cond, err := Parse(condition)
	if err != nil {
		return false, fmt.Errorf("parse condition: %w", err)
	}
	return cond.Match(answers), nil
}
