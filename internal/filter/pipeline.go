package filter

import (
	"errors"

	"github.com/atikulmunna/logloom/internal/model"
)

// Visible resolves a file's filter chain into the lines that survive it.
//
// Lines without a timestamp are dropped first. Include rules are OR-ed, each
// evaluated against the full timestamped set; exclude rules are then AND-ed over
// that result. Chain position does not affect the outcome.
//
// Every rule is compiled up front. If any fails, all failures are returned and no
// lines are.
func Visible(lines []model.LogLine, chain model.FilterChain) ([]model.LogLine, error) {
	var includes, excludes []*Rule
	var errs []error
	for _, f := range chain {
		r, err := Compile(f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if f.Kind.IsInclude() {
			includes = append(includes, r)
		} else {
			excludes = append(excludes, r)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	out := make([]model.LogLine, 0, len(lines))
	for _, l := range lines {
		if !l.HasTimestamp() {
			continue
		}
		if len(includes) > 0 && !anyMatch(includes, l.Content) {
			continue
		}
		if anyMatch(excludes, l.Content) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func anyMatch(rules []*Rule, line string) bool {
	for _, r := range rules {
		if r.Match(line) {
			return true
		}
	}
	return false
}
