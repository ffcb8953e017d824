package parser

import (
	"fmt"
	"testing"
)

// BenchmarkISOParser measures ISO timestamp extraction throughput.
func BenchmarkISOParser(b *testing.B) {
	p := NewISOParser()
	line := "2026-02-17T12:00:00,123 ERROR something failed badly"

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p.Parse(line)
	}
}

// BenchmarkSyslogParser measures syslog timestamp extraction throughput.
func BenchmarkSyslogParser(b *testing.B) {
	p := NewSyslogParser(2026)
	line := "Feb 17 12:00:00 host sshd[42]: accepted publickey"

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p.Parse(line)
	}
}

// BenchmarkAutoParserMiss measures the cost of a line with no timestamp.
func BenchmarkAutoParserMiss(b *testing.B) {
	p := NewAutoParser(2026)
	line := "\tat com.example.Service.handle(Service.java:42)"

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p.Parse(line)
	}
}

// BenchmarkRange measures range computation over a batch of lines.
func BenchmarkRange(b *testing.B) {
	p := NewAutoParser(2026)
	lines := make([]string, 1000)
	for i := range lines {
		lines[i] = fmt.Sprintf("2026-02-17 12:%02d:%02d.%03d INFO event %d", (i/60)%60, i%60, i%1000, i)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Range(lines, p)
	}
}
