package model

import (
	"slices"
	"time"
)

// SyncReport is the result of one create run.
type SyncReport struct {
	// Site is the wiki host the run wrote to.
	Site string `json:"site"`

	// Input is the path of the CSV file that was read.
	Input string `json:"input"`

	// InputDigest is the hex SHA3-256 of the input file.
	InputDigest string `json:"input_digest,omitempty"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run ended, successfully or not.
	FinishedAt time.Time `json:"finished_at"`

	// DryRun is true when nothing was sent to the wiki.
	DryRun bool `json:"dry_run"`

	// Header is the header row of the input.
	Header []string `json:"header"`

	// Pages has one entry per data row, in row order.
	Pages []*PageResult `json:"pages"`

	// TOCTitle is the title of the table of contents page.
	TOCTitle string `json:"toc_title"`

	// TOC holds the table of contents lines in row order.
	TOC []string `json:"toc"`

	// TOCWritten is true once the table of contents page was saved.
	TOCWritten bool `json:"toc_written"`

	// Categories holds the distinct category labels in first-seen order.
	Categories []string `json:"categories"`

	// CategoriesWritten counts the category pages saved.
	CategoriesWritten int `json:"categories_written"`

	// StepsRun lists the pipeline steps that completed.
	StepsRun []string `json:"steps_run,omitempty"`

	// Warnings lists the non-fatal problems met during the run.
	Warnings []Warning `json:"warnings,omitempty"`

	// Error is the fatal error that stopped the run, if any.
	Error string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// NewSyncReport creates a report for a run of input against site.
func NewSyncReport(site, input string) *SyncReport {
	return &SyncReport{
		Site:      site,
		Input:     input,
		StartedAt: time.Now(),
	}
}

// AddPage appends a page result.
func (r *SyncReport) AddPage(p *PageResult) {
	r.Pages = append(r.Pages, p)
}

// AddTOCLine appends a table of contents line.
func (r *SyncReport) AddTOCLine(line string) {
	r.TOC = append(r.TOC, line)
}

// AddCategory records label unless it was already seen.
// Returns true if the label is new.
func (r *SyncReport) AddCategory(label string) bool {
	if slices.Contains(r.Categories, label) {
		return false
	}
	r.Categories = append(r.Categories, label)
	return true
}

// AddWarning records a warning, ignoring exact duplicates.
func (r *SyncReport) AddWarning(w Warning) {
	for _, existing := range r.Warnings {
		if existing.Kind == w.Kind && existing.Title == w.Title && existing.Message == w.Message {
			return
		}
	}
	r.Warnings = append(r.Warnings, w)
}

// Fail records the fatal error of the run.
func (r *SyncReport) Fail(err error) {
	if err != nil {
		r.Error = err.Error()
	}
}

// Finish stamps the end time.
func (r *SyncReport) Finish() {
	r.FinishedAt = time.Now()
}

// Succeeded reports whether the run ended without a fatal error.
func (r *SyncReport) Succeeded() bool {
	return r.Error == ""
}

// Duration returns how long the run took, or zero if it has not finished.
func (r *SyncReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Titles returns the final title of every page in row order.
func (r *SyncReport) Titles() []string {
	titles := make([]string, 0, len(r.Pages))
	for _, p := range r.Pages {
		titles = append(titles, p.Title)
	}
	return titles
}

// WarningsBySeverity returns the warnings at or above minimum.
func (r *SyncReport) WarningsBySeverity(minimum Severity) []Warning {
	var out []Warning
	for _, w := range r.Warnings {
		if w.Severity >= minimum {
			out = append(out, w)
		}
	}
	return out
}
