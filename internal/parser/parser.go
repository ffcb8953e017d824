package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Parser extracts a timestamp from the leading characters of a log line.
// A line with no recognizable timestamp yields ok == false; it is never an error.
type Parser interface {
	Parse(line string) (ts time.Time, ok bool)
}

// ---------------------------------------------------------------------------
// ISO Parser
// ---------------------------------------------------------------------------

// ISOParser handles lines starting with YYYY-MM-DD HH:MM:SS.mmm.
// Accepts 'T' or space between date and time and '.' or ',' before the milliseconds.
type ISOParser struct {
	re *regexp.Regexp
}

func NewISOParser() *ISOParser {
	return &ISOParser{
		re: regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})[T ](\d{2}:\d{2}:\d{2})[.,](\d{3})`),
	}
}

const isoLayout = "2006-01-02 15:04:05.000"

func (p *ISOParser) Parse(line string) (time.Time, bool) {
	m := p.re.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, false
	}

	t, err := time.Parse(isoLayout, m[1]+" "+m[2]+"."+m[3])
	if err != nil {
		return time.Time{}, false // e.g. month 13
	}
	return t, true
}

// ---------------------------------------------------------------------------
// Syslog Parser
// ---------------------------------------------------------------------------

// SyslogParser handles lines starting with "Jun 29 14:22:27". The text carries no
// year, so the parser stamps every match with Year. Lines spanning a year
// boundary are attributed to the same year.
type SyslogParser struct {
	Year int
	re   *regexp.Regexp
}

func NewSyslogParser(year int) *SyslogParser {
	return &SyslogParser{
		Year: year,
		re:   regexp.MustCompile(`^(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+(\d{1,2})\s+(\d{2}:\d{2}:\d{2})`),
	}
}

func (p *SyslogParser) Parse(line string) (time.Time, bool) {
	m := p.re.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, false
	}

	t, err := time.Parse("2006 Jan 2 15:04:05", fmt.Sprintf("%04d %s %s %s", p.Year, m[1], m[2], m[3]))
	if err != nil {
		return time.Time{}, false // e.g. Feb 30
	}
	return t, true
}

// ---------------------------------------------------------------------------
// Auto Parser (format auto-detection)
// ---------------------------------------------------------------------------

// AutoParser tries parsers in order: ISO → syslog. First match wins.
type AutoParser struct {
	parsers []Parser
}

// NewAutoParser builds the default chain. refYear is stamped on syslog lines.
func NewAutoParser(refYear int) *AutoParser {
	return &AutoParser{
		parsers: []Parser{NewISOParser(), NewSyslogParser(refYear)},
	}
}

func (p *AutoParser) Parse(line string) (time.Time, bool) {
	for _, sub := range p.parsers {
		if t, ok := sub.Parse(line); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// Range returns the earliest and latest timestamps found in lines.
// ok is false when no line parsed.
func Range(lines []string, p Parser) (min, max time.Time, ok bool) {
	for _, line := range lines {
		t, parsed := p.Parse(line)
		if !parsed {
			continue
		}
		if !ok || t.Before(min) {
			min = t
		}
		if !ok || t.After(max) {
			max = t
		}
		ok = true
	}
	return min, max, ok
}

// Level detects severity from keywords in the line. Used for display only.
func Level(line string) string {
	upper := strings.ToUpper(line)

	switch {
	case strings.Contains(upper, "FATAL"):
		return "FATAL"
	case strings.Contains(upper, "ERROR"):
		return "ERROR"
	case strings.Contains(upper, "WARN"):
		return "WARN"
	case strings.Contains(upper, "DEBUG"):
		return "DEBUG"
	default:
		return "INFO"
	}
}
