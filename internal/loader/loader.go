package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/atikulmunna/logloom/internal/session"
)

// Expand resolves glob patterns to file paths.
// Supports recursive patterns like /var/log/**/*.log via doublestar.
// Paths are returned sorted within each pattern, without duplicates.
func Expand(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			abs, err := filepath.Abs(m)
			if err != nil {
				abs = m
			}
			if seen[abs] {
				continue
			}
			seen[abs] = true
			out = append(out, abs)
		}
	}
	return out, nil
}

// ReadLines splits r into lines, keeping each line's terminator.
// The last line has none if the input does not end with a newline.
func ReadLines(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	var lines []string
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			lines = append(lines, line)
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return lines, err
		}
	}
}

// FileID is the identifier a path is loaded under: its base name.
func FileID(path string) string {
	return filepath.Base(path)
}

// LoadPaths reads every path into the session. Two paths sharing a base name
// resolve to the same id; the first one loaded wins.
func LoadPaths(s *session.Session, paths []string) ([]string, error) {
	ids := make([]string, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return ids, fmt.Errorf("open %s: %w", p, err)
		}
		lines, err := ReadLines(f)
		f.Close()
		if err != nil {
			return ids, fmt.Errorf("read %s: %w", p, err)
		}

		id := FileID(p)
		s.LoadFile(id, lines)
		ids = append(ids, id)
	}
	return ids, nil
}
