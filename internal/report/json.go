package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/wikirip/internal/model"
)

// JSONWriter outputs reports in JSON format for tool integration.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// jsonReport adds derived fields to the stored report.
type jsonReport struct {
	*model.RipReport

	Status       string `json:"status"`
	FailureCount int    `json:"failure_count"`
}

// Write outputs the report in JSON format.
func (w *JSONWriter) Write(report *model.RipReport) (int, error) {
	return w.writeJSON(jsonReport{
		RipReport:    report,
		Status:       report.Status(),
		FailureCount: report.FailureCount(),
	})
}

// WriteHistory outputs the rip list as a JSON array.
func (w *JSONWriter) WriteHistory(rips []model.RipSummary) (int, error) {
	if rips == nil {
		rips = []model.RipSummary{}
	}
	return w.writeJSON(rips)
}

// writeJSON marshals v and writes it with a trailing newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
