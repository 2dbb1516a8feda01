package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/csv2wiki/internal/model"
)

const timeLayout = "2006-01-02 15:04:05 MST"

// SimpleWriter outputs plain text reports for the terminal.
type SimpleWriter struct {
	baseWriter

	// showEmpty prints the warnings section even when there are none.
	showEmpty bool

	// verbose adds the page list and warning recommendations.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
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

// Write outputs the summary followed by the pages and warnings.
func (w *SimpleWriter) Write(report *model.SyncReport) (int, error) {
	simple := model.NewSimpleReport(report)

	var sb strings.Builder
	w.writeHeader(&sb, simple)
	w.writeSummary(&sb, simple)
	if w.verbose {
		w.writePages(&sb, report)
	}
	w.writeWarnings(&sb, report)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// WriteSimple outputs only the summary.
func (w *SimpleWriter) WriteSimple(report *model.SimpleReport) (int, error) {
	var sb strings.Builder
	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

func rule(sb *strings.Builder, c string) {
	sb.WriteString(strings.Repeat(c, 70))
	sb.WriteString("\n")
}

func sectionTitle(sb *strings.Builder, title string) {
	rule(sb, "-")
	sb.WriteString(title)
	sb.WriteString("\n")
	rule(sb, "-")
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.SimpleReport) {
	sb.WriteString("\n")
	rule(sb, "=")
	sb.WriteString("                          CSV2WIKI REPORT\n")
	rule(sb, "=")
	sb.WriteString("\n")

	fmt.Fprintf(sb, "Site:      %s\n", report.Site)
	fmt.Fprintf(sb, "Input:     %s\n", report.Input)
	fmt.Fprintf(sb, "Run Date:  %s\n", report.DateRun.Format(timeLayout))
	if report.DryRun {
		sb.WriteString("Mode:      dry run (nothing was sent to the wiki)\n")
	}
	fmt.Fprintf(sb, "Status:    %s\n", statusText(report))
	sb.WriteString("\n")
}

func statusText(report *model.SimpleReport) string {
	if report.Error != "" {
		return "ERROR - " + report.Error
	}
	return "Complete"
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.SimpleReport) {
	sectionTitle(sb, "SUMMARY")

	fmt.Fprintf(sb, "  Pages written:      %d\n", report.PagesWritten)
	fmt.Fprintf(sb, "  Pages moved:        %d\n", report.PagesMoved)
	fmt.Fprintf(sb, "  Sections written:   %d (%d appended)\n", report.SectionsWritten, report.SectionsAppended)
	fmt.Fprintf(sb, "  Categories written: %d\n", report.CategoriesWritten)
	if report.TOCWritten {
		sb.WriteString("  Table of contents:  written\n")
	} else {
		sb.WriteString("  Table of contents:  not written\n")
	}
	fmt.Fprintf(sb, "  Warnings:           %d\n", report.WarningCount)
	fmt.Fprintf(sb, "  Info:               %d\n", report.InfoCount)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writePages(sb *strings.Builder, report *model.SyncReport) {
	if len(report.Pages) == 0 && !w.showEmpty {
		return
	}

	sectionTitle(sb, "PAGES")

	if len(report.Pages) == 0 {
		sb.WriteString("  No pages written\n\n")
		return
	}
	for _, p := range report.Pages {
		fmt.Fprintf(sb, "  %4d  %s", p.Row, p.Title)
		if p.Moved {
			fmt.Fprintf(sb, " (from %s)", p.BaseTitle)
		}
		sb.WriteString("\n")
		if p.Category != "" {
			fmt.Fprintf(sb, "        category: %s\n", p.Category)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeWarnings(sb *strings.Builder, report *model.SyncReport) {
	if len(report.Warnings) == 0 && !w.showEmpty {
		return
	}

	sectionTitle(sb, "WARNINGS")

	if len(report.Warnings) == 0 {
		sb.WriteString("  No warnings\n\n")
		return
	}

	for _, severity := range []model.Severity{model.SeverityError, model.SeverityWarning, model.SeverityInfo} {
		var matched []model.Warning
		for _, warning := range report.Warnings {
			if warning.Severity == severity {
				matched = append(matched, warning)
			}
		}
		if len(matched) == 0 {
			continue
		}

		fmt.Fprintf(sb, "[%s] %s\n", severityIndicator(severity), severity)
		for _, warning := range matched {
			fmt.Fprintf(sb, "  * %s: %s\n", warning.Title, warning.Kind)
			if warning.Message != "" {
				fmt.Fprintf(sb, "    %s\n", warning.Message)
			}
			if w.verbose && warning.Recommendation != "" {
				fmt.Fprintf(sb, "    Recommendation: %s\n", warning.Recommendation)
			}
		}
		sb.WriteString("\n")
	}
}

func severityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityError:
		return "!!"
	case model.SeverityWarning:
		return "!"
	case model.SeverityInfo:
		return "i"
	default:
		return "?"
	}
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	rule(sb, "=")
}
