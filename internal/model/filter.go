package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// FilterKind selects how a filter's pattern is matched and whether matches are kept.
type FilterKind string

const (
	IncludeText  FilterKind = "Include Text"
	ExcludeText  FilterKind = "Exclude Text"
	IncludeRegex FilterKind = "Include Regex"
	ExcludeRegex FilterKind = "Exclude Regex"
)

// ParseFilterKind maps an interchange type name to a FilterKind.
func ParseFilterKind(s string) (FilterKind, error) {
	switch k := FilterKind(s); k {
	case IncludeText, ExcludeText, IncludeRegex, ExcludeRegex:
		return k, nil
	}
	return "", fmt.Errorf("unknown filter type %q", s)
}

// IsInclude reports whether matching lines are kept (rather than dropped).
func (k FilterKind) IsInclude() bool {
	return k == IncludeText || k == IncludeRegex
}

// IsRegex reports whether the pattern is a regular expression.
func (k FilterKind) IsRegex() bool {
	return k == IncludeRegex || k == ExcludeRegex
}

// Filter is one user-defined predicate. ID is assigned at creation and is the
// handle every editing operation keys on.
type Filter struct {
	ID            string     `json:"id"`
	Kind          FilterKind `json:"type"`
	Pattern       string     `json:"value"`
	CaseSensitive bool       `json:"case_sensitive"`
}

// String renders the filter the way it is listed to users.
func (f Filter) String() string {
	return fmt.Sprintf("%s - %s - Case Sensitive: %t", f.Kind, f.Pattern, f.CaseSensitive)
}

// FilterRecord is the persisted shape of a filter. Field names are a stable contract.
type FilterRecord struct {
	Type          string `json:"type"`
	Value         string `json:"value"`
	CaseSensitive bool   `json:"case_sensitive"`
}

// FilterChain is the ordered list of filters attached to one file.
type FilterChain []Filter

// Add appends a new filter and returns it. Empty patterns are rejected.
func (c *FilterChain) Add(kind FilterKind, pattern string, caseSensitive bool) (Filter, bool) {
	if pattern == "" {
		return Filter{}, false
	}
	f := Filter{
		ID:            uuid.NewString(),
		Kind:          kind,
		Pattern:       pattern,
		CaseSensitive: caseSensitive,
	}
	*c = append(*c, f)
	return f, true
}

// Remove deletes the filter with the given id.
func (c *FilterChain) Remove(id string) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	*c = append((*c)[:i], (*c)[i+1:]...)
	return true
}

// MoveUp swaps the filter with its predecessor. No-op when already first.
func (c *FilterChain) MoveUp(id string) bool {
	i := c.index(id)
	if i <= 0 {
		return false
	}
	(*c)[i], (*c)[i-1] = (*c)[i-1], (*c)[i]
	return true
}

// MoveDown swaps the filter with its successor. No-op when already last.
func (c *FilterChain) MoveDown(id string) bool {
	i := c.index(id)
	if i < 0 || i == len(*c)-1 {
		return false
	}
	(*c)[i], (*c)[i+1] = (*c)[i+1], (*c)[i]
	return true
}

// Find returns the first filter matching all three fields.
func (c FilterChain) Find(kind FilterKind, pattern string, caseSensitive bool) (Filter, bool) {
	for _, f := range c {
		if f.Kind == kind && f.Pattern == pattern && f.CaseSensitive == caseSensitive {
			return f, true
		}
	}
	return Filter{}, false
}

// Clone returns a copy that shares no backing array with c.
func (c FilterChain) Clone() FilterChain {
	if c == nil {
		return nil
	}
	out := make(FilterChain, len(c))
	copy(out, c)
	return out
}

// Records converts the chain to its persisted form.
func (c FilterChain) Records() []FilterRecord {
	out := make([]FilterRecord, 0, len(c))
	for _, f := range c {
		out = append(out, FilterRecord{Type: string(f.Kind), Value: f.Pattern, CaseSensitive: f.CaseSensitive})
	}
	return out
}

// ChainFromRecords builds a chain from persisted records, assigning fresh ids.
// Records with an empty value are skipped, as Add would skip them.
func ChainFromRecords(records []FilterRecord) (FilterChain, error) {
	chain := make(FilterChain, 0, len(records))
	for i, r := range records {
		kind, err := ParseFilterKind(r.Type)
		if err != nil {
			return nil, fmt.Errorf("filter %d: %w", i, err)
		}
		chain.Add(kind, r.Value, r.CaseSensitive)
	}
	return chain, nil
}

// MarshalJSON encodes the chain as a list of FilterRecord; ids are not persisted.
func (c FilterChain) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Records())
}

// UnmarshalJSON decodes a list of FilterRecord.
func (c *FilterChain) UnmarshalJSON(data []byte) error {
	var records []FilterRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	chain, err := ChainFromRecords(records)
	if err != nil {
		return err
	}
	*c = chain
	return nil
}

func (c FilterChain) index(id string) int {
	for i, f := range c {
		if f.ID == id {
			return i
		}
	}
	return -1
}
