// Package report renders the result of a create run.
//
// Writers:
//   - SimpleWriter: plain text for the terminal
//   - MarkdownWriter: Markdown, with tables and a mermaid chart
//   - JSONWriter and FullJSONWriter: JSON for other tools
//
// WriteHistory prints the run listing kept by the database package.
package report
