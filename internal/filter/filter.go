package filter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/atikulmunna/logloom/internal/model"
)

// ErrInvalidPattern is matched by every *PatternError.
var ErrInvalidPattern = errors.New("invalid pattern")

// PatternError reports a filter whose regular expression failed to compile.
type PatternError struct {
	Filter model.Filter
	Err    error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern in %q filter %q: %v", e.Filter.Kind, e.Filter.Pattern, e.Err)
}

func (e *PatternError) Unwrap() []error { return []error{ErrInvalidPattern, e.Err} }

// Rule is a compiled filter, ready to test lines.
type Rule struct {
	Filter model.Filter
	re     *regexp.Regexp
	needle string
}

// Compile prepares f for matching. Only regex filters can fail.
func Compile(f model.Filter) (*Rule, error) {
	r := &Rule{Filter: f}

	if f.Kind.IsRegex() {
		expr := f.Pattern
		if !f.CaseSensitive {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, &PatternError{Filter: f, Err: err}
		}
		r.re = re
		return r, nil
	}

	r.needle = f.Pattern
	if !f.CaseSensitive {
		r.needle = strings.ToLower(r.needle)
	}
	return r, nil
}

// Match reports whether the pattern occurs anywhere in line. Regex rules see
// the line without its terminator, so `$` anchors at the end of the text.
func (r *Rule) Match(line string) bool {
	if r.re != nil {
		return r.re.MatchString(strings.TrimRight(line, "\r\n"))
	}
	if !r.Filter.CaseSensitive {
		line = strings.ToLower(line)
	}
	return strings.Contains(line, r.needle)
}

// Keep reports whether line survives the rule: include rules keep matches,
// exclude rules keep everything else.
func (r *Rule) Keep(line string) bool {
	return r.Match(line) == r.Filter.Kind.IsInclude()
}

// Apply runs a single filter over lines. A nil error with an empty result means
// nothing matched; a *PatternError means the filter could not be applied at all.
func Apply(lines []model.LogLine, f model.Filter) ([]model.LogLine, error) {
	r, err := Compile(f)
	if err != nil {
		return nil, err
	}

	out := make([]model.LogLine, 0, len(lines))
	for _, l := range lines {
		if r.Keep(l.Content) {
			out = append(out, l)
		}
	}
	return out, nil
}

// PatternErrors collects every *PatternError inside err, however deeply joined or wrapped.
func PatternErrors(err error) []*PatternError {
	var out []*PatternError
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if pe, ok := e.(*PatternError); ok {
			out = append(out, pe)
			return
		}
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return out
}
