package merge

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/atikulmunna/logloom/internal/filter"
	"github.com/atikulmunna/logloom/internal/model"
)

var t0 = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func at(sec int) *time.Time {
	t := t0.Add(time.Duration(sec) * time.Second)
	return &t
}

func record(id string, lines ...model.LogLine) *model.FileRecord {
	for i := range lines {
		lines[i].Source = id
	}
	return &model.FileRecord{ID: id, Lines: lines}
}

func TestMergeSortsAcrossFiles(t *testing.T) {
	a := record("a.log",
		model.LogLine{Content: "a1", Timestamp: at(1)},
		model.LogLine{Content: "a3", Timestamp: at(3)},
	)
	b := record("b.log",
		model.LogLine{Content: "b2", Timestamp: at(2)},
		model.LogLine{Content: "b0", Timestamp: at(0)},
	)

	res, err := Merge([]*model.FileRecord{a, b}, model.TimeRange{})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"b0", "a1", "b2", "a3"}
	if len(res.Lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(res.Lines))
	}
	for i, w := range want {
		if res.Lines[i].Content != w {
			t.Errorf("line %d: expected %s, got %s", i, w, res.Lines[i].Content)
		}
	}
	if res.Lines[0].File != "b.log" {
		t.Errorf("expected file b.log, got %s", res.Lines[0].File)
	}
}

func TestMergeStableTies(t *testing.T) {
	a := record("a.log",
		model.LogLine{Content: "a-first", Timestamp: at(5)},
		model.LogLine{Content: "a-second", Timestamp: at(5)},
	)
	b := record("b.log", model.LogLine{Content: "b-tie", Timestamp: at(5)})

	res, _ := Merge([]*model.FileRecord{a, b}, model.TimeRange{})

	want := []string{"a-first", "a-second", "b-tie"}
	for i, w := range want {
		if res.Lines[i].Content != w {
			t.Errorf("line %d: expected %s, got %s", i, w, res.Lines[i].Content)
		}
	}
}

func TestMergeSortedForAnyLoadOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var files []*model.FileRecord
	for f := 0; f < 4; f++ {
		var lines []model.LogLine
		for i := 0; i < 50; i++ {
			lines = append(lines, model.LogLine{Content: fmt.Sprintf("%d-%d", f, i), Timestamp: at(rng.Intn(100))})
		}
		lines = append(lines, model.LogLine{Content: "no timestamp"})
		files = append(files, record(fmt.Sprintf("f%d.log", f), lines...))
	}
	rng.Shuffle(len(files), func(i, j int) { files[i], files[j] = files[j], files[i] })

	res, err := Merge(files, model.TimeRange{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Lines) != 200 {
		t.Errorf("expected 200 lines, got %d", len(res.Lines))
	}
	for i := 1; i < len(res.Lines); i++ {
		if res.Lines[i].Timestamp.Before(res.Lines[i-1].Timestamp) {
			t.Fatalf("line %d out of order: %v before %v", i, res.Lines[i].Timestamp, res.Lines[i-1].Timestamp)
		}
	}
}

func TestMergeTimeRangeInclusive(t *testing.T) {
	f := record("a.log",
		model.LogLine{Content: "before", Timestamp: at(0)},
		model.LogLine{Content: "start", Timestamp: at(1)},
		model.LogLine{Content: "middle", Timestamp: at(2)},
		model.LogLine{Content: "end", Timestamp: at(3)},
		model.LogLine{Content: "after", Timestamp: at(4)},
		model.LogLine{Content: "untimed"},
	)

	res, err := Merge([]*model.FileRecord{f}, model.TimeRange{Start: at(1), End: at(3)})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"start", "middle", "end"}
	if len(res.Lines) != len(want) {
		t.Fatalf("expected %v, got %d lines", want, len(res.Lines))
	}
	for i, w := range want {
		if res.Lines[i].Content != w {
			t.Errorf("line %d: expected %s, got %s", i, w, res.Lines[i].Content)
		}
	}
}

func TestMergeOpenEndedRange(t *testing.T) {
	f := record("a.log",
		model.LogLine{Content: "old", Timestamp: at(0)},
		model.LogLine{Content: "new", Timestamp: at(10)},
	)

	res, _ := Merge([]*model.FileRecord{f}, model.TimeRange{Start: at(5)})
	if len(res.Lines) != 1 || res.Lines[0].Content != "new" {
		t.Errorf("expected only 'new', got %+v", res.Lines)
	}
}

func TestMergeAppliesPerFileChains(t *testing.T) {
	a := record("a.log",
		model.LogLine{Content: "a ERROR", Timestamp: at(0)},
		model.LogLine{Content: "a INFO", Timestamp: at(1)},
	)
	a.Filters.Add(model.IncludeText, "ERROR", true)
	b := record("b.log",
		model.LogLine{Content: "b INFO", Timestamp: at(2)},
	)

	res, _ := Merge([]*model.FileRecord{a, b}, model.TimeRange{})
	if len(res.Lines) != 2 || res.Lines[0].Content != "a ERROR" || res.Lines[1].Content != "b INFO" {
		t.Errorf("expected [a ERROR, b INFO], got %+v", res.Lines)
	}

	if got := res.Files[0]; got.Total != 2 || got.Timestamped != 2 || got.Visible != 1 {
		t.Errorf("unexpected stats for a.log: %+v", got)
	}
}

func TestMergeBadPatternFails(t *testing.T) {
	a := record("a.log", model.LogLine{Content: "x", Timestamp: at(0)})
	a.Filters.Add(model.IncludeRegex, "(", true)
	b := record("b.log", model.LogLine{Content: "y", Timestamp: at(1)})

	res, err := Merge([]*model.FileRecord{a, b}, model.TimeRange{})
	if err == nil {
		t.Fatal("expected error for bad pattern")
	}
	if res != nil {
		t.Errorf("expected no view on failure, got %+v", res)
	}
	if !errors.Is(err, filter.ErrInvalidPattern) {
		t.Errorf("expected ErrInvalidPattern, got %v", err)
	}
}

func TestMergeEmpty(t *testing.T) {
	res, err := Merge(nil, model.TimeRange{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Lines) != 0 {
		t.Errorf("expected empty view, got %d lines", len(res.Lines))
	}
}
