package session

import (
	"log"
	"sync"
	"time"

	"github.com/atikulmunna/logloom/internal/merge"
	"github.com/atikulmunna/logloom/internal/model"
	"github.com/atikulmunna/logloom/internal/parser"
)

// Session is the set of loaded files, their filter chains and the global time
// range. All methods are safe for concurrent use; each runs under one lock.
type Session struct {
	mu       sync.Mutex
	parser   parser.Parser
	files    map[string]*model.FileRecord
	order    []string
	tr       model.TimeRange
	onChange []func()
}

// New creates an empty session that timestamps lines with p.
func New(p parser.Parser) *Session {
	return &Session{
		parser: p,
		files:  make(map[string]*model.FileRecord),
	}
}

// OnChange registers fn to run after every mutation. fn runs without the lock held.
func (s *Session) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// LoadFile adds a file. The first load of an id wins; later loads return the
// existing record untouched. Loading resets the time range to span every
// timestamped line in the session.
func (s *Session) LoadFile(id string, rawLines []string) *model.FileRecord {
	s.mu.Lock()
	if rec, ok := s.files[id]; ok {
		s.mu.Unlock()
		return rec
	}

	rec := &model.FileRecord{ID: id, Lines: make([]model.LogLine, 0, len(rawLines))}
	parsed := 0
	for _, raw := range rawLines {
		line := model.LogLine{Content: raw, Source: id}
		if ts, ok := s.parser.Parse(raw); ok {
			line.Timestamp = &ts
			parsed++
		}
		rec.Lines = append(rec.Lines, line)
	}
	s.files[id] = rec
	s.order = append(s.order, id)
	log.Printf("session: read %d lines from %s (%d timestamped)", len(rawLines), id, parsed)

	s.tr = s.span()
	s.mu.Unlock()

	s.notify()
	return rec
}

// span computes the range covering every timestamped line. Caller holds mu.
func (s *Session) span() model.TimeRange {
	var tr model.TimeRange
	for _, id := range s.order {
		for _, l := range s.files[id].Lines {
			if l.Timestamp == nil {
				continue
			}
			// Copies, so the range never aliases a line's cached timestamp.
			if tr.Start == nil || l.Timestamp.Before(*tr.Start) {
				start := *l.Timestamp
				tr.Start = &start
			}
			if tr.End == nil || l.Timestamp.After(*tr.End) {
				end := *l.Timestamp
				tr.End = &end
			}
		}
	}
	return tr
}

// Files returns file ids in load order.
func (s *Session) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Has reports whether a file with the given id is loaded.
func (s *Session) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[id]
	return ok
}

// LineCount returns the number of lines loaded for id.
func (s *Session) LineCount(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.files[id]; ok {
		return len(rec.Lines)
	}
	return 0
}

// GetFilters returns a copy of a file's filter chain. Unknown ids yield nil.
func (s *Session) GetFilters(id string) model.FilterChain {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.files[id]; ok {
		return rec.Filters.Clone()
	}
	return nil
}

// AddFilter appends a filter to a file's chain. It is a no-op for an unknown
// file or an empty pattern.
func (s *Session) AddFilter(id string, kind model.FilterKind, pattern string, caseSensitive bool) (model.Filter, bool) {
	var f model.Filter
	ok := s.edit(id, func(c *model.FilterChain) bool {
		var added bool
		f, added = c.Add(kind, pattern, caseSensitive)
		return added
	})
	return f, ok
}

// RemoveFilter deletes a filter by id.
func (s *Session) RemoveFilter(id, filterID string) bool {
	return s.edit(id, func(c *model.FilterChain) bool { return c.Remove(filterID) })
}

// MoveFilterUp swaps a filter with its predecessor.
func (s *Session) MoveFilterUp(id, filterID string) bool {
	return s.edit(id, func(c *model.FilterChain) bool { return c.MoveUp(filterID) })
}

// MoveFilterDown swaps a filter with its successor.
func (s *Session) MoveFilterDown(id, filterID string) bool {
	return s.edit(id, func(c *model.FilterChain) bool { return c.MoveDown(filterID) })
}

// FindFilter resolves a (kind, pattern, case) tuple to the first matching filter.
func (s *Session) FindFilter(id string, kind model.FilterKind, pattern string, caseSensitive bool) (model.Filter, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.files[id]; ok {
		return rec.Filters.Find(kind, pattern, caseSensitive)
	}
	return model.Filter{}, false
}

// ReplaceFilters swaps a file's whole chain, e.g. after importing a filter file.
func (s *Session) ReplaceFilters(id string, chain model.FilterChain) bool {
	return s.edit(id, func(c *model.FilterChain) bool {
		*c = chain.Clone()
		return true
	})
}

func (s *Session) edit(id string, fn func(*model.FilterChain) bool) bool {
	s.mu.Lock()
	rec, ok := s.files[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	changed := fn(&rec.Filters)
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	return changed
}

// SetTimeRange overrides the global bound. A nil bound is open.
func (s *Session) SetTimeRange(start, end *time.Time) {
	s.mu.Lock()
	s.tr = model.TimeRange{Start: start, End: end}.Clone()
	s.mu.Unlock()
	log.Printf("session: time range set to %s .. %s", fmtBound(start), fmtBound(end))

	s.notify()
}

// TimeRange returns a copy of the current global bound.
func (s *Session) TimeRange() model.TimeRange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tr.Clone()
}

// Render recomputes the merged view from scratch.
func (s *Session) Render() ([]model.MergedLine, error) {
	res, err := s.Merge()
	if err != nil {
		return nil, err
	}
	return res.Lines, nil
}

// Merge is Render with per-file statistics.
func (s *Session) Merge() (*merge.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files := make([]*model.FileRecord, 0, len(s.order))
	for _, id := range s.order {
		files = append(files, s.files[id])
	}
	return merge.Merge(files, s.tr)
}

func (s *Session) notify() {
	s.mu.Lock()
	hooks := append([]func(){}, s.onChange...)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

func fmtBound(t *time.Time) string {
	if t == nil {
		return "open"
	}
	return t.Format(model.TimestampLayout)
}
