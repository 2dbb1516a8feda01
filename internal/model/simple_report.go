package model

import "time"

// SimpleReport is the summary printed at the end of a run.
type SimpleReport struct {
	// Site is the wiki host the run wrote to.
	Site string `json:"site"`

	// Input is the CSV file that was read.
	Input string `json:"input"`

	// DateRun is when the run started.
	DateRun time.Time `json:"date_run"`

	// DryRun is true when nothing was sent to the wiki.
	DryRun bool `json:"dry_run"`

	// PagesWritten is the number of row pages.
	PagesWritten int `json:"pages_written"`

	// PagesMoved is the number of pages renamed to a descriptive title.
	PagesMoved int `json:"pages_moved"`

	// SectionsWritten is the number of non-empty cells sent.
	SectionsWritten int `json:"sections_written"`

	// SectionsAppended is how many of those had to be appended.
	SectionsAppended int `json:"sections_appended"`

	// CategoriesWritten is the number of category pages saved.
	CategoriesWritten int `json:"categories_written"`

	// TOCWritten is true once the table of contents page was saved.
	TOCWritten bool `json:"toc_written"`

	// WarningCount is the number of warnings at SeverityWarning or above.
	WarningCount int `json:"warning_count"`

	// InfoCount is the number of informational warnings.
	InfoCount int `json:"info_count"`

	// Error contains the fatal error message if the run failed.
	Error string `json:"error,omitempty"`
}

// NewSimpleReport summarizes report.
func NewSimpleReport(report *SyncReport) *SimpleReport {
	simple := &SimpleReport{
		Site:              report.Site,
		Input:             report.Input,
		DateRun:           report.StartedAt,
		DryRun:            report.DryRun,
		PagesWritten:      len(report.Pages),
		CategoriesWritten: report.CategoriesWritten,
		TOCWritten:        report.TOCWritten,
		Error:             report.Error,
	}

	for _, p := range report.Pages {
		if p.Moved {
			simple.PagesMoved++
		}
		simple.SectionsWritten += len(p.Sections)
		simple.SectionsAppended += p.Appended()
	}

	for _, w := range report.Warnings {
		if w.Severity == SeverityInfo {
			simple.InfoCount++
		} else {
			simple.WarningCount++
		}
	}

	return simple
}
