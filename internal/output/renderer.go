package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/atikulmunna/logloom/internal/model"
	"github.com/atikulmunna/logloom/internal/parser"
)

// Renderer writes merged view rows to an output stream.
type Renderer interface {
	Render(line model.MergedLine) error
}

// New returns the renderer for a format name: text, plain or json.
func New(format string, w io.Writer) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return NewTextRenderer(w), nil
	case "plain":
		return NewPlainRenderer(w), nil
	case "json":
		return NewJSONRenderer(w), nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

// RenderAll writes every row, stopping at the first error.
func RenderAll(r Renderer, lines []model.MergedLine) error {
	for _, l := range lines {
		if err := r.Render(l); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Plain Renderer (saved view format)
// ---------------------------------------------------------------------------

// PlainRenderer writes "[file] [timestamp] content", one row per line.
type PlainRenderer struct {
	w io.Writer
}

func NewPlainRenderer(w io.Writer) *PlainRenderer {
	return &PlainRenderer{w: w}
}

func (r *PlainRenderer) Render(line model.MergedLine) error {
	_, err := io.WriteString(r.w, line.Line())
	return err
}

// ---------------------------------------------------------------------------
// Text Renderer (colorized terminal output)
// ---------------------------------------------------------------------------

var (
	styleInfo  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // gray
	styleDebug = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
	styleWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))            // yellow
	styleError = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // red bold
	styleFatal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("196")).
			Bold(true) // white on red
	styleSource = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Faint(true) // cyan
	styleTime   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// TextRenderer prints rows to the terminal, coloured by detected severity.
type TextRenderer struct {
	w io.Writer
}

func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{w: w}
}

func (r *TextRenderer) Render(line model.MergedLine) error {
	src := styleSource.Render("[" + line.File + "]")
	ts := styleTime.Render(line.Timestamp.Format(model.TimestampLayout))
	msg := styleLevel(parser.Level(line.Content)).Render(strings.TrimRight(line.Content, "\r\n"))

	_, err := fmt.Fprintf(r.w, "%s %s %s\n", src, ts, msg)
	return err
}

func styleLevel(level string) lipgloss.Style {
	switch level {
	case "DEBUG":
		return styleDebug
	case "WARN":
		return styleWarn
	case "ERROR":
		return styleError
	case "FATAL":
		return styleFatal
	default:
		return styleInfo
	}
}

// ---------------------------------------------------------------------------
// JSON Renderer (structured output for piping)
// ---------------------------------------------------------------------------

// JSONRenderer prints each row as a single JSON object per line.
type JSONRenderer struct {
	enc *json.Encoder
}

func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{enc: json.NewEncoder(w)}
}

func (r *JSONRenderer) Render(line model.MergedLine) error {
	return r.enc.Encode(struct {
		File      string `json:"file"`
		Timestamp string `json:"timestamp"`
		Content   string `json:"content"`
	}{
		File:      line.File,
		Timestamp: line.Timestamp.Format(model.TimestampLayout),
		Content:   line.Content,
	})
}
