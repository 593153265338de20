package trace

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Filter expressions select events by their fields:
//
//	$name = drm_vblank_event
//	$duration > 1ms && $actor =~ "^glxgears"
//	($timeline = gfx || $timeline = sdma0) && $seqno >= 3000
//
// Keys reference event fields; $name, $actor, $duration and $ts reference
// the event itself. Comparisons are =, !=, =~ (regex), >, >=, <, <=.
// Durations accept ns/us/ms/s suffixes. && binds tighter than ||, ! and
// parentheses work as usual.

// SyntaxError describes a malformed filter expression. It is a distinct
// type so callers can separate "bad expression" from "nothing matched".
type SyntaxError struct {
	Expr string
	Pos  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("filter syntax error at offset %d: %s", e.Pos, e.Msg)
}

// Predicate is a compiled filter expression.
type Predicate interface {
	Match(ev *Event) bool
}

// ParseFilter compiles expr into a Predicate.
func ParseFilter(expr string) (Predicate, error) {
	p := &filterParser{expr: expr}
	pred, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.expr) {
		return nil, p.errf("unexpected %q", p.rest())
	}
	return pred, nil
}

type filterParser struct {
	expr string
	pos  int
}

func (p *filterParser) errf(format string, args ...any) error {
	return &SyntaxError{Expr: p.expr, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *filterParser) rest() string {
	r := p.expr[p.pos:]
	if len(r) > 12 {
		r = r[:12]
	}
	return r
}

func (p *filterParser) skipSpace() {
	for p.pos < len(p.expr) && (p.expr[p.pos] == ' ' || p.expr[p.pos] == '\t') {
		p.pos++
	}
}

func (p *filterParser) eat(tok string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.expr[p.pos:], tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *filterParser) parseOr() (Predicate, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.eat("||") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orPred{left, right}
	}
	return left, nil
}

func (p *filterParser) parseAnd() (Predicate, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.eat("&&") {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andPred{left, right}
	}
	return left, nil
}

func (p *filterParser) parseUnary() (Predicate, error) {
	if p.eat("!") {
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notPred{inner}, nil
	}
	if p.eat("(") {
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.eat(")") {
			return nil, p.errf("missing ')'")
		}
		return inner, nil
	}
	return p.parseCmp()
}

func (p *filterParser) parseCmp() (Predicate, error) {
	p.skipSpace()
	if !p.eat("$") {
		return nil, p.errf("expected '$key', got %q", p.rest())
	}
	key := p.ident()
	if key == "" {
		return nil, p.errf("expected field name after '$'")
	}

	var op string
	for _, cand := range []string{">=", "<=", "!=", "=~", "=", ">", "<"} {
		if p.eat(cand) {
			op = cand
			break
		}
	}
	if op == "" {
		return nil, p.errf("expected comparison operator, got %q", p.rest())
	}

	val, err := p.value()
	if err != nil {
		return nil, err
	}

	if op == "=~" {
		re, rerr := regexp.Compile(val)
		if rerr != nil {
			return nil, p.errf("bad regex %q: %v", val, rerr)
		}
		return regexPred{key: key, re: re}, nil
	}
	return cmpPred{key: key, op: op, val: val}, nil
}

func (p *filterParser) ident() string {
	start := p.pos
	for p.pos < len(p.expr) {
		c := rune(p.expr[p.pos])
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' {
			p.pos++
			continue
		}
		break
	}
	return p.expr[start:p.pos]
}

func (p *filterParser) value() (string, error) {
	p.skipSpace()
	if p.pos >= len(p.expr) {
		return "", p.errf("expected value")
	}
	if p.expr[p.pos] == '"' {
		end := strings.IndexByte(p.expr[p.pos+1:], '"')
		if end < 0 {
			return "", p.errf("unterminated string")
		}
		val := p.expr[p.pos+1 : p.pos+1+end]
		p.pos += end + 2
		return val, nil
	}
	start := p.pos
	for p.pos < len(p.expr) {
		c := p.expr[p.pos]
		if c == ' ' || c == '\t' || c == ')' || c == '&' || c == '|' {
			break
		}
		p.pos++
	}
	if p.pos == start {
		return "", p.errf("expected value")
	}
	return p.expr[start:p.pos], nil
}

type andPred struct{ l, r Predicate }

func (p andPred) Match(ev *Event) bool { return p.l.Match(ev) && p.r.Match(ev) }

type orPred struct{ l, r Predicate }

func (p orPred) Match(ev *Event) bool { return p.l.Match(ev) || p.r.Match(ev) }

type notPred struct{ inner Predicate }

func (p notPred) Match(ev *Event) bool { return !p.inner.Match(ev) }

type regexPred struct {
	key string
	re  *regexp.Regexp
}

func (p regexPred) Match(ev *Event) bool {
	return p.re.MatchString(eventValue(ev, p.key))
}

type cmpPred struct {
	key string
	op  string
	val string
}

func (p cmpPred) Match(ev *Event) bool {
	got := eventValue(ev, p.key)
	switch p.op {
	case "=":
		return got == p.val
	case "!=":
		return got != p.val
	}

	// Ordered comparisons are numeric. Non-numeric values never match.
	want, werr := parseDuration(p.val)
	have, herr := parseDuration(got)
	if werr != nil || herr != nil {
		return false
	}
	switch p.op {
	case ">":
		return have > want
	case ">=":
		return have >= want
	case "<":
		return have < want
	case "<=":
		return have <= want
	}
	return false
}

// eventValue resolves a filter key against an event: its built-in
// attributes first, then its field list.
func eventValue(ev *Event, key string) string {
	switch key {
	case "name":
		return ev.Name
	case "actor", "comm":
		return ev.Actor
	case "duration":
		return strconv.FormatInt(ev.Duration, 10)
	case "ts":
		return strconv.FormatInt(ev.TS, 10)
	case "id":
		return strconv.FormatUint(uint64(ev.ID), 10)
	}
	return ev.Field(key)
}

// parseDuration reads a number with an optional ns/us/ms/s suffix and
// returns nanoseconds. Bare numbers are nanoseconds.
func parseDuration(s string) (int64, error) {
	mult := int64(1)
	switch {
	case strings.HasSuffix(s, "ns"):
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "us"):
		s, mult = s[:len(s)-2], 1000
	case strings.HasSuffix(s, "ms"):
		s, mult = s[:len(s)-2], 1000*1000
	case strings.HasSuffix(s, "s"):
		s, mult = s[:len(s)-1], 1000*1000*1000
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f * float64(mult)), nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return n * mult, nil
}
