package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestChainAddRejectsEmptyPattern(t *testing.T) {
	var c FilterChain
	if _, ok := c.Add(IncludeText, "", true); ok {
		t.Error("expected empty pattern to be rejected")
	}
	if len(c) != 0 {
		t.Errorf("expected empty chain, got %d filters", len(c))
	}
}

func TestChainAddAssignsDistinctIDs(t *testing.T) {
	var c FilterChain
	a, _ := c.Add(IncludeText, "ERROR", true)
	b, _ := c.Add(IncludeText, "ERROR", true)

	if a.ID == "" || b.ID == "" {
		t.Fatal("expected ids to be assigned")
	}
	if a.ID == b.ID {
		t.Errorf("expected duplicate filters to get distinct ids, both got %s", a.ID)
	}
}

func TestChainMoveBoundaries(t *testing.T) {
	var c FilterChain
	first, _ := c.Add(IncludeText, "a", true)
	c.Add(IncludeText, "b", true)
	last, _ := c.Add(ExcludeRegex, "c", false)

	if c.MoveUp(first.ID) {
		t.Error("expected MoveUp on first entry to be a no-op")
	}
	if c.MoveDown(last.ID) {
		t.Error("expected MoveDown on last entry to be a no-op")
	}
	if c[0].ID != first.ID || c[2].ID != last.ID {
		t.Error("expected order to be unchanged by boundary moves")
	}

	if !c.MoveDown(first.ID) {
		t.Fatal("expected MoveDown on first entry to succeed")
	}
	if c[1].ID != first.ID || c[0].Pattern != "b" {
		t.Errorf("expected [b a c], got [%s %s %s]", c[0].Pattern, c[1].Pattern, c[2].Pattern)
	}
	if !c.MoveUp(last.ID) {
		t.Fatal("expected MoveUp on last entry to succeed")
	}
	if c[1].ID != last.ID {
		t.Errorf("expected c in the middle, got %s", c[1].Pattern)
	}
}

func TestChainLengthInvariant(t *testing.T) {
	var c FilterChain
	a, _ := c.Add(IncludeText, "a", true)
	b, _ := c.Add(ExcludeText, "b", true)
	if len(c) != 2 {
		t.Fatalf("expected 2, got %d", len(c))
	}

	c.MoveUp(b.ID)
	c.MoveDown(b.ID)
	c.MoveUp("missing")
	if len(c) != 2 {
		t.Errorf("expected moves to keep length 2, got %d", len(c))
	}

	if !c.Remove(a.ID) {
		t.Error("expected Remove to succeed")
	}
	if c.Remove(a.ID) {
		t.Error("expected second Remove of same id to be a no-op")
	}
	if len(c) != 1 {
		t.Errorf("expected 1, got %d", len(c))
	}
}

func TestChainFindFirstOccurrence(t *testing.T) {
	var c FilterChain
	first, _ := c.Add(IncludeText, "dup", false)
	c.Add(IncludeText, "dup", false)

	got, ok := c.Find(IncludeText, "dup", false)
	if !ok || got.ID != first.ID {
		t.Errorf("expected first occurrence %s, got %s (found=%v)", first.ID, got.ID, ok)
	}
	if _, ok := c.Find(IncludeText, "dup", true); ok {
		t.Error("expected case sensitivity to be part of the identity")
	}
}

func TestChainJSONShape(t *testing.T) {
	var c FilterChain
	c.Add(IncludeRegex, "err(or)?", false)
	c.Add(ExcludeText, "healthz", true)

	raw, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"type":"Include Regex","value":"err(or)?","case_sensitive":false},{"type":"Exclude Text","value":"healthz","case_sensitive":true}]`
	if string(raw) != want {
		t.Errorf("expected %s, got %s", want, raw)
	}

	var back FilterChain
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if len(back) != 2 || back[0].Kind != IncludeRegex || back[1].Pattern != "healthz" {
		t.Errorf("unexpected decoded chain: %+v", back)
	}
	if back[0].ID == "" {
		t.Error("expected decoded filters to get ids")
	}
}

func TestChainUnmarshalUnknownType(t *testing.T) {
	var c FilterChain
	err := json.Unmarshal([]byte(`[{"type":"Highlight","value":"x","case_sensitive":true}]`), &c)
	if err == nil {
		t.Error("expected error for unknown filter type")
	}
}

func TestTimeRangeInclusive(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	r := TimeRange{Start: &start, End: &end}

	if !r.Contains(start) || !r.Contains(end) {
		t.Error("expected both bounds to be inclusive")
	}
	if r.Contains(start.Add(-time.Millisecond)) || r.Contains(end.Add(time.Millisecond)) {
		t.Error("expected values outside the range to be excluded")
	}
	if !(TimeRange{}).Contains(start) {
		t.Error("expected open range to contain everything")
	}
}

func TestMergedLineString(t *testing.T) {
	m := MergedLine{
		File:      "app.log",
		Timestamp: time.Date(2024, 6, 1, 10, 0, 0, 500*int(time.Millisecond), time.UTC),
		Content:   "2024-06-01T10:00:00,500 connected\n",
	}
	want := "[app.log] [2024-06-01 10:00:00.500] 2024-06-01T10:00:00,500 connected\n"
	if got := m.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if got := m.Line(); got != want {
		t.Errorf("expected Line to keep single newline, got %q", got)
	}
}

func TestParseBound(t *testing.T) {
	got, err := ParseBound("")
	if err != nil || got != nil {
		t.Errorf("expected open bound, got %v (err=%v)", got, err)
	}

	got, err = ParseBound("2024-06-01 10:00:00.500")
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2024, 6, 1, 10, 0, 0, 500*int(time.Millisecond), time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if got, err = ParseBound("2024-06-01"); err != nil || got.Day() != 1 {
		t.Errorf("expected date-only bound to parse, got %v (err=%v)", got, err)
	}
	got, err = ParseBound("2024-06-01T12:00:00+02:00")
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("expected offset to be dropped giving %v, got %v", want, got)
	}
	if _, err := ParseBound("yesterday"); err == nil {
		t.Error("expected error for unrecognized time")
	}
}

func TestTimeRangeClone(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := TimeRange{Start: &start}
	c := r.Clone()

	*c.Start = start.Add(time.Hour)
	if !r.Start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected original bound unchanged, got %v", *r.Start)
	}
	if c.End != nil {
		t.Errorf("expected open end to stay open, got %v", *c.End)
	}
}
