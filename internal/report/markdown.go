package report

import (
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/wikirip/internal/model"
)

// MarkdownWriter outputs reports as GitHub Flavored Markdown using
// nao1215/markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RipReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeFailures(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and run information table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RipReport) {
	md.H1("wikirip Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Root", "`" + report.Root + "`"},
			{"Starting Page", "`" + report.StartPage + "`"},
			{"Output", "`" + report.OutputDir + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration.Round(time.Millisecond).String()},
			{"Status", markdownStatus(report.Status())},
		},
	})
	md.PlainText("")
}

func markdownStatus(status string) string {
	switch status {
	case "complete":
		return "✅ Complete"
	case "partial":
		return "⚠️ Partial"
	case "cancelled":
		return "❌ Cancelled"
	default:
		return status
	}
}

// writeSummary writes the counters, a pie chart and an alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.RipReport) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Item", "Count"},
		Rows: [][]string{
			{"Rounds", strconv.Itoa(report.Rounds)},
			{"Pages visited", strconv.Itoa(len(report.Visited))},
			{"Pages saved", strconv.Itoa(report.PagesSaved)},
			{"Resources found", strconv.Itoa(len(report.Resources))},
			{"Resources saved", strconv.Itoa(report.ResourcesSaved)},
			{"Bytes written", humanize.Bytes(uint64(max(report.BytesSaved, 0)))},
			{"**Skipped**", "**" + strconv.Itoa(report.FailureCount()) + "**"},
		},
	})
	md.PlainText("")

	if report.PagesSaved+report.ResourcesSaved+report.FailureCount() > 0 {
		w.writePieChart(md, report)
	}

	switch {
	case report.Cancelled:
		md.Cautionf("The rip was cancelled after %d round(s). The mirror is incomplete.", report.Rounds)
	case report.FailureCount() > 0:
		md.Warningf("%d item(s) could not be mirrored and were skipped.", report.FailureCount())
	default:
		md.Tip("Every visited page and found resource was mirrored.")
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of saved and skipped items.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.RipReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Mirrored Items"),
		piechart.WithShowData(true),
	)

	if report.PagesSaved > 0 {
		chart.LabelAndIntValue("Pages", uint64(report.PagesSaved))
	}
	if report.ResourcesSaved > 0 {
		chart.LabelAndIntValue("Resources", uint64(report.ResourcesSaved))
	}
	if n := report.FailureCount(); n > 0 {
		chart.LabelAndIntValue("Skipped", uint64(n))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFailures writes one table per item kind.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, report *model.RipReport) {
	md.H2("Skipped Items")
	md.PlainText("")

	if report.FailureCount() == 0 {
		md.PlainText("Nothing was skipped.")
		md.PlainText("")
		return
	}

	sections := []struct {
		kind   model.ItemKind
		header string
	}{
		{model.KindPage, "Pages"},
		{model.KindResource, "Resources"},
	}

	for _, sec := range sections {
		failures := report.FailuresOf(sec.kind)
		if len(failures) == 0 {
			continue
		}

		md.H3(sec.header)
		md.PlainText("")

		rows := make([][]string, len(failures))
		for i, f := range failures {
			round := "-"
			if f.Round > 0 {
				round = strconv.Itoa(f.Round)
			}
			rows[i] = []string{"`" + f.Suffix + "`", round, truncateString(f.Message, 80)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Suffix", "Round", "Error"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by wikirip*")
}

// WriteHistory outputs past rips as a Markdown table.
func (w *MarkdownWriter) WriteHistory(rips []model.RipSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("wikirip History")
	md.PlainText("")

	if len(rips) == 0 {
		md.Note("No rips recorded yet.")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(rips))
	for i, r := range rips {
		rows[i] = []string{
			strconv.FormatInt(r.ID, 10),
			r.StartedAt.Format("2006-01-02 15:04:05 MST"),
			"`" + r.Root + "`",
			strconv.Itoa(r.PagesSaved),
			strconv.Itoa(r.ResourcesSaved),
			humanize.Bytes(uint64(max(r.BytesSaved, 0))),
			strconv.Itoa(r.FailureCount),
			markdownStatus(r.Status),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Started", "Root", "Pages", "Resources", "Size", "Skipped", "Status"},
		Rows:   rows,
	})

	return len(md.String()), md.Build()
}

// truncateString truncates s to maxLen bytes with an ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
