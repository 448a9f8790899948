// Package report renders rip reports and rip history.
//
// Three formats are provided, all implementing Writer:
//   - SimpleWriter: plain text for the terminal
//   - JSONWriter: structured JSON for other tools
//   - MarkdownWriter: GitHub Flavored Markdown with a mermaid pie chart
package report
