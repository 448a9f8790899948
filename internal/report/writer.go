package report

import (
	"io"

	"github.com/nao1215/wikirip/internal/model"
)

// Writer renders rip reports and history listings.
type Writer interface {
	// Write outputs one rip report.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.RipReport) (int, error)

	// WriteHistory outputs a list of past rips, newest first.
	WriteHistory(rips []model.RipSummary) (int, error)
}

// Format names an output format.
type Format string

const (
	// FormatText is the default human-readable format.
	FormatText Format = "text"

	// FormatJSON is indented JSON.
	FormatJSON Format = "json"

	// FormatMarkdown is GitHub Flavored Markdown.
	FormatMarkdown Format = "markdown"
)

// FormatFor maps the --json and --markdown flags to a Format.
// Callers validate that both are not set.
func FormatFor(jsonReport, markdownReport bool) Format {
	switch {
	case jsonReport:
		return FormatJSON
	case markdownReport:
		return FormatMarkdown
	default:
		return FormatText
	}
}

// New returns the Writer for format. Unknown formats fall back to text.
func New(output io.Writer, format Format) Writer {
	switch format {
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint())
	case FormatMarkdown:
		return NewMarkdownWriter(output)
	default:
		return NewSimpleWriter(output)
	}
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// countingWriter counts bytes passed through to w.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
