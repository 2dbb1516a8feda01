package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/nao1215/csv2wiki/internal/model"
	"github.com/nao1215/csv2wiki/internal/table"
	"github.com/nao1215/csv2wiki/internal/wiki"
)

// SyncPagesStep writes one page per data row and stores the resulting
// Outcome in the report.
type SyncPagesStep struct {
	wiki   Wiki
	header table.Header
	rows   RowSource
	opts   SyncOptions
}

// NewSyncPagesStep creates the page synchronization step.
func NewSyncPagesStep(w Wiki, header table.Header, rows RowSource, opts SyncOptions) *SyncPagesStep {
	return &SyncPagesStep{wiki: w, header: header, rows: rows, opts: opts}
}

// Name returns the step name.
func (s *SyncPagesStep) Name() string {
	return "sync_pages"
}

// Do executes the page synchronization. The rows synced before a fatal
// error are still stored in the report.
func (s *SyncPagesStep) Do(ctx context.Context, report *model.SyncReport) error {
	report.Header = s.header

	out, err := SyncRows(ctx, s.wiki, s.header, s.rows, s.opts)
	for _, p := range out.Pages {
		report.AddPage(p)
	}
	for _, line := range out.TOC {
		report.AddTOCLine(line)
	}
	for _, label := range out.Categories {
		report.AddCategory(label)
	}
	for _, w := range out.Warnings {
		report.AddWarning(w)
	}
	return err
}

// WriteTOCStep saves the table of contents page.
type WriteTOCStep struct {
	wiki  Wiki
	title string
}

// NewWriteTOCStep creates a step writing the table of contents to title.
func NewWriteTOCStep(w Wiki, title string) *WriteTOCStep {
	return &WriteTOCStep{wiki: w, title: title}
}

// Name returns the step name.
func (s *WriteTOCStep) Name() string {
	return "write_toc"
}

// Do overwrites the table of contents page with one line per row.
func (s *WriteTOCStep) Do(ctx context.Context, report *model.SyncReport) error {
	report.TOCTitle = s.title
	if err := s.wiki.Edit(ctx, s.title, TOCText(report.TOC)); err != nil {
		return fmt.Errorf("%w %s: %w", ErrPageWrite, s.title, err)
	}
	report.TOCWritten = true
	return nil
}

// TOCText joins table of contents lines into the page body.
func TOCText(lines []string) string {
	return strings.Join(lines, "\n")
}

// WriteCategoriesStep saves an empty page per category label.
type WriteCategoriesStep struct {
	wiki     Wiki
	progress io.Writer
	logger   *slog.Logger
}

// CategoriesOption configures a WriteCategoriesStep.
type CategoriesOption func(*WriteCategoriesStep)

// WithCategoriesProgress prints each category page title to w.
func WithCategoriesProgress(w io.Writer) CategoriesOption {
	return func(s *WriteCategoriesStep) {
		s.progress = w
	}
}

// WithCategoriesLogger sets a custom logger for the step.
func WithCategoriesLogger(logger *slog.Logger) CategoriesOption {
	return func(s *WriteCategoriesStep) {
		s.logger = logger
	}
}

// NewWriteCategoriesStep creates the category page step.
func NewWriteCategoriesStep(w Wiki, opts ...CategoriesOption) *WriteCategoriesStep {
	s := &WriteCategoriesStep{
		wiki:     w,
		progress: io.Discard,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *WriteCategoriesStep) Name() string {
	return "write_categories"
}

// Do writes the category pages in first-seen order.
func (s *WriteCategoriesStep) Do(ctx context.Context, report *model.SyncReport) error {
	for _, label := range report.Categories {
		if err := ctx.Err(); err != nil {
			return err
		}
		title := wiki.CategoryTitle(label)
		if err := s.wiki.Edit(ctx, title, ""); err != nil {
			return fmt.Errorf("%w %s: %w", ErrPageWrite, title, err)
		}
		report.CategoriesWritten++
		fmt.Fprintln(s.progress, title)
		s.logger.Debug("wrote category page", "title", title)
	}
	return nil
}

// CreateConfig holds what DefaultPipeline needs besides the wiki and rows.
type CreateConfig struct {
	// Sync controls how rows become pages.
	Sync SyncOptions

	// TOCTitle is the table of contents page title.
	TOCTitle string
}

// DefaultPipeline creates the create-run pipeline: sync pages, then write
// the table of contents, then the category pages.
func DefaultPipeline(w Wiki, header table.Header, rows RowSource, cfg CreateConfig, opts ...Option) *Pipeline {
	p := New(opts...)

	progress := cfg.Sync.Progress
	if progress == nil {
		progress = io.Discard
	}
	catOpts := []CategoriesOption{WithCategoriesProgress(progress)}
	if cfg.Sync.Logger != nil {
		catOpts = append(catOpts, WithCategoriesLogger(cfg.Sync.Logger))
	}

	p.AddSteps(
		NewSyncPagesStep(w, header, rows, cfg.Sync),
		NewWriteTOCStep(w, cfg.TOCTitle),
		NewWriteCategoriesStep(w, catOpts...),
	)
	return p
}
