package aggregator

import (
	"time"

	"github.com/atikulmunna/logloom/internal/merge"
	"github.com/atikulmunna/logloom/internal/parser"
)

// Stats is a summary of one merged view.
type Stats struct {
	TotalLines  int               `json:"total_lines"`
	LevelCounts map[string]int    `json:"level_counts"`
	First       *time.Time        `json:"first,omitempty"`
	Last        *time.Time        `json:"last,omitempty"`
	Span        string            `json:"span"`
	Files       []merge.FileStats `json:"files"`
}

// Summarize computes Stats for a merge result. Lines are assumed sorted.
func Summarize(res *merge.Result) Stats {
	st := Stats{
		LevelCounts: make(map[string]int),
		Span:        time.Duration(0).String(),
	}
	if res == nil {
		return st
	}

	st.TotalLines = len(res.Lines)
	st.Files = res.Files
	for _, l := range res.Lines {
		st.LevelCounts[parser.Level(l.Content)]++
	}

	if n := len(res.Lines); n > 0 {
		first, last := res.Lines[0].Timestamp, res.Lines[n-1].Timestamp
		st.First, st.Last = &first, &last
		st.Span = last.Sub(first).String()
	}
	return st
}
