package merge

import (
	"errors"
	"fmt"
	"sort"

	"github.com/atikulmunna/logloom/internal/filter"
	"github.com/atikulmunna/logloom/internal/model"
)

// FileStats describes how one file's lines fared in a merge.
type FileStats struct {
	File        string `json:"file"`
	Total       int    `json:"total"`
	Timestamped int    `json:"timestamped"`
	Visible     int    `json:"visible"` // after filters, before the time range
}

// Result is a fully materialized merged view.
type Result struct {
	Lines []model.MergedLine `json:"lines"`
	Files []FileStats        `json:"files"`
}

// Merge filters every file through its own chain, concatenates the survivors in
// file order, drops lines outside tr and sorts by timestamp. The sort is stable,
// so equal timestamps keep file load order and then line order.
//
// A file whose chain has a bad pattern fails the whole merge; the errors of all
// such files are returned together.
func Merge(files []*model.FileRecord, tr model.TimeRange) (*Result, error) {
	res := &Result{Files: make([]FileStats, 0, len(files))}
	var errs []error

	for _, f := range files {
		visible, err := filter.Visible(f.Lines, f.Filters)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.ID, err))
			continue
		}

		st := FileStats{File: f.ID, Total: len(f.Lines), Visible: len(visible)}
		for _, l := range f.Lines {
			if l.HasTimestamp() {
				st.Timestamped++
			}
		}
		res.Files = append(res.Files, st)

		for _, l := range visible {
			if tr.IsSet() && !tr.Contains(*l.Timestamp) {
				continue
			}
			res.Lines = append(res.Lines, model.MergedLine{
				File:      f.ID,
				Timestamp: *l.Timestamp,
				Content:   l.Content,
			})
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	sort.SliceStable(res.Lines, func(i, j int) bool {
		return res.Lines[i].Timestamp.Before(res.Lines[j].Timestamp)
	})
	return res, nil
}
