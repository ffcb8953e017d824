package model

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the display form of a parsed timestamp (millisecond precision).
const TimestampLayout = "2006-01-02 15:04:05.000"

// LogLine represents a single line read from a loaded file.
type LogLine struct {
	Content   string     `json:"content"`   // original text, terminator included
	Timestamp *time.Time `json:"timestamp"` // nil when the line had no recognizable timestamp
	Source    string     `json:"source"`    // originating file id
}

// HasTimestamp reports whether the line can be placed on the merged timeline.
func (l LogLine) HasTimestamp() bool {
	return l.Timestamp != nil
}

// FileRecord is one loaded file: its lines, fixed at load time, and its filters.
type FileRecord struct {
	ID      string
	Lines   []LogLine
	Filters FilterChain
}

// MergedLine is one row of the merged, time-ordered view.
type MergedLine struct {
	File      string    `json:"file"`
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"content"`
}

// String formats the row the way a saved view is written: [file] [timestamp] content.
func (m MergedLine) String() string {
	return fmt.Sprintf("[%s] [%s] %s", m.File, m.Timestamp.Format(TimestampLayout), m.Content)
}

// Line is String with a guaranteed single trailing newline.
func (m MergedLine) Line() string {
	s := m.String()
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s
}

// TimeRange bounds the merged view. A nil bound is open.
type TimeRange struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// IsSet reports whether either bound is present.
func (r TimeRange) IsSet() bool {
	return r.Start != nil || r.End != nil
}

// Clone returns a range whose bounds share no memory with r.
func (r TimeRange) Clone() TimeRange {
	var out TimeRange
	if r.Start != nil {
		start := *r.Start
		out.Start = &start
	}
	if r.End != nil {
		end := *r.End
		out.End = &end
	}
	return out
}

// Contains reports whether t lies within [Start, End], inclusive on both ends.
func (r TimeRange) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

var boundLayouts = []string{
	time.RFC3339Nano,
	TimestampLayout,
	"2006-01-02T15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseBound parses a user-supplied range bound. An empty string is an open bound.
// Any zone offset is dropped: bounds compare as wall clock, like parsed lines.
func ParseBound(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range boundLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
			return &wall, nil
		}
	}
	return nil, fmt.Errorf("unrecognized time %q", s)
}
