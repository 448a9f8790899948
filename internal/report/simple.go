package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/nao1215/wikirip/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// Colors are applied only when fatih/color detects a terminal.
type SimpleWriter struct {
	baseWriter

	// verbose lists every visited page and queued resource.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables the full suffix listings.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.RipReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeCounts(&sb, report)
	w.writeFailures(&sb, report)
	if w.verbose {
		w.writeList(&sb, "VISITED PAGES", report.Visited)
		w.writeList(&sb, "RESOURCES", report.Resources)
	}
	w.writeFooter(&sb, report)

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.RipReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          WIKIRIP REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Root:           %s\n", report.Root)
	fmt.Fprintf(sb, "Starting Page:  %s\n", report.StartPage)
	fmt.Fprintf(sb, "Output:         %s\n", report.OutputDir)
	fmt.Fprintf(sb, "Started:        %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Duration:       %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintf(sb, "Status:         %s\n", statusText(report.Status()))
	sb.WriteString("\n")
}

// statusText colors a report status.
func statusText(status string) string {
	switch status {
	case "complete":
		return color.GreenString("Complete")
	case "partial":
		return color.YellowString("Partial (some items skipped)")
	case "cancelled":
		return color.RedString("Cancelled (partial results)")
	default:
		return status
	}
}

func (w *SimpleWriter) writeCounts(sb *strings.Builder, report *model.RipReport) {
	writeSection(sb, "SUMMARY")

	fmt.Fprintf(sb, "  Rounds:          %d\n", report.Rounds)
	fmt.Fprintf(sb, "  Pages:           %d saved / %d visited\n", report.PagesSaved, len(report.Visited))
	fmt.Fprintf(sb, "  Resources:       %d saved / %d found\n", report.ResourcesSaved, len(report.Resources))
	fmt.Fprintf(sb, "  Bytes written:   %s\n", humanize.Bytes(uint64(max(report.BytesSaved, 0))))
	fmt.Fprintf(sb, "  Skipped:         %d\n", report.FailureCount())
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFailures(sb *strings.Builder, report *model.RipReport) {
	if report.FailureCount() == 0 {
		return
	}

	writeSection(sb, "SKIPPED")

	for _, kind := range []model.ItemKind{model.KindPage, model.KindResource} {
		failures := report.FailuresOf(kind)
		if len(failures) == 0 {
			continue
		}
		fmt.Fprintf(sb, "[%s] %d\n", kind, len(failures))
		for _, f := range failures {
			fmt.Fprintf(sb, "  * %s\n", f.Suffix)
			fmt.Fprintf(sb, "    %s\n", f.Message)
		}
		sb.WriteString("\n")
	}
}

func (w *SimpleWriter) writeList(sb *strings.Builder, title string, suffixes []string) {
	writeSection(sb, title)
	if len(suffixes) == 0 {
		sb.WriteString("  (none)\n\n")
		return
	}
	for _, s := range suffixes {
		fmt.Fprintf(sb, "  %s\n", s)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder, _ *model.RipReport) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// WriteHistory outputs past rips as a table.
func (w *SimpleWriter) WriteHistory(rips []model.RipSummary) (int, error) {
	if len(rips) == 0 {
		return io.WriteString(w.output, "No rips recorded yet.\n")
	}

	cw := &countingWriter{w: w.output}
	table := tablewriter.NewWriter(cw)
	table.Header([]string{"ID", "Started", "Root", "Pages", "Resources", "Size", "Skipped", "Status"})
	for _, r := range rips {
		if err := table.Append([]string{
			strconv.FormatInt(r.ID, 10),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Root,
			strconv.Itoa(r.PagesSaved),
			strconv.Itoa(r.ResourcesSaved),
			humanize.Bytes(uint64(max(r.BytesSaved, 0))),
			strconv.Itoa(r.FailureCount),
			r.Status,
		}); err != nil {
			return cw.n, err
		}
	}
	if err := table.Render(); err != nil {
		return cw.n, err
	}

	return cw.n, nil
}

// writeSection writes a dashed section title.
func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}
