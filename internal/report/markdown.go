package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/csv2wiki/internal/model"
)

// MarkdownWriter outputs reports in Markdown, using nao1215/markdown for
// tables, alerts and the mermaid chart.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.SyncReport) (int, error) {
	simple := model.NewSimpleReport(report)
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, simple)
	w.writeSummary(md, simple)
	w.writeSectionChart(md, report)
	w.writePages(md, report)
	w.writeWarnings(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteSimple outputs the summary in Markdown format.
func (w *MarkdownWriter) WriteSimple(report *model.SimpleReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.SimpleReport) {
	md.H1("csv2wiki Report")
	md.PlainText("")

	mode := "live"
	if report.DryRun {
		mode = "dry run"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Site", "`" + report.Site + "`"},
			{"Input", "`" + report.Input + "`"},
			{"Run Date", report.DateRun.Format(timeLayout)},
			{"Mode", mode},
			{"Status", w.statusText(report)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) statusText(report *model.SimpleReport) string {
	if report.Error != "" {
		return "❌ Error - " + report.Error
	}
	return "✅ Complete"
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.SimpleReport) {
	md.H2("Summary")
	md.PlainText("")

	toc := "no"
	if report.TOCWritten {
		toc = "yes"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Item", "Count"},
		Rows: [][]string{
			{"Pages written", strconv.Itoa(report.PagesWritten)},
			{"Pages moved", strconv.Itoa(report.PagesMoved)},
			{"Sections written", strconv.Itoa(report.SectionsWritten)},
			{"Sections appended", strconv.Itoa(report.SectionsAppended)},
			{"Categories written", strconv.Itoa(report.CategoriesWritten)},
			{"Table of contents written", toc},
			{"Warnings", strconv.Itoa(report.WarningCount)},
			{"Info", strconv.Itoa(report.InfoCount)},
		},
	})
	md.PlainText("")

	w.writeAlert(md, report)
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.SimpleReport) {
	switch {
	case report.Error != "":
		md.Cautionf("The run stopped early: %s. The table of contents and category pages may be missing.", report.Error)
	case report.WarningCount > 0:
		md.Warningf("%d page(s) need attention. See the warnings below.", report.WarningCount)
	case report.SectionsAppended > 0:
		md.Importantf("%d section(s) did not exist yet and were appended.", report.SectionsAppended)
	default:
		md.Tip("Every row was written without problems.")
	}
	md.PlainText("")
}

// writeSectionChart draws how the sections reached the wiki.
func (w *MarkdownWriter) writeSectionChart(md *markdown.Markdown, report *model.SyncReport) {
	counts := map[model.SectionWrite]int{}
	for _, p := range report.Pages {
		for _, s := range p.Sections {
			counts[s.Write]++
		}
	}
	if len(counts) == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Section Writes"),
		piechart.WithShowData(true),
	)
	for _, kind := range []model.SectionWrite{model.SectionReplaced, model.SectionAppended, model.SectionCombined} {
		if counts[kind] > 0 {
			chart.LabelAndIntValue(string(kind), uint64(counts[kind])) //nolint:gosec // counts are non-negative
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.SyncReport) {
	md.H2("Pages")
	md.PlainText("")

	if len(report.Pages) == 0 {
		md.PlainText("No pages were written.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Pages))
	for i, p := range report.Pages {
		base := "-"
		if p.Moved {
			base = p.BaseTitle
		}
		rows[i] = []string{
			strconv.Itoa(p.Row),
			truncateString(p.Title, 60),
			base,
			strconv.Itoa(len(p.Sections)),
			dash(p.Category),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Row", "Title", "Moved From", "Sections", "Category"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(report.Categories) > 0 {
		md.H3("Categories")
		md.PlainText("")
		md.BulletList(report.Categories...)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeWarnings(md *markdown.Markdown, report *model.SyncReport) {
	md.H2("Warnings")
	md.PlainText("")

	if len(report.Warnings) == 0 {
		md.PlainText("No warnings.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Warnings))
	for i, warning := range report.Warnings {
		rows[i] = []string{
			warning.Severity.String(),
			warning.Kind,
			truncateString(warning.Title, 40),
			truncateString(dash(warning.Recommendation), 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Kind", "Page", "Recommendation"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, warning := range report.Warnings {
		if warning.Message != "" {
			md.Details(warning.Title, warning.Message)
		}
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [csv2wiki](https://github.com/nao1215/csv2wiki)*")
}
