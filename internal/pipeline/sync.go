package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/nao1215/csv2wiki/internal/model"
	"github.com/nao1215/csv2wiki/internal/table"
	"github.com/nao1215/csv2wiki/internal/wiki"
)

// Wiki is the part of the wiki client the synchronizer writes through.
type Wiki interface {
	EditSection(ctx context.Context, title string, section int, heading, text string) (wiki.EditStatus, error)
	Edit(ctx context.Context, title, text string) error
	Move(ctx context.Context, from, to, reason string) error
}

// RowSource yields data rows until io.EOF. *table.Reader implements it.
type RowSource interface {
	Next() (table.Row, error)
}

// SyncOptions controls how rows become pages.
type SyncOptions struct {
	// PagePrefix is prepended to the row number to form the base title.
	PagePrefix string

	// CombineSections writes each page with one full-page edit instead of
	// one edit per cell.
	CombineSections bool

	// Progress receives one line per page and category, like
	// "Proposal_1: Alpha". Nil discards them.
	Progress io.Writer

	// Logger is used for per-row debug output. Nil means slog.Default.
	Logger *slog.Logger
}

// Outcome is the fold of all rows: the pages written plus the
// accumulators the trailing steps need.
type Outcome struct {
	Pages      []*model.PageResult
	TOC        []string
	Categories []string
	Warnings   []model.Warning
}

// addCategory appends label unless it was already collected.
func (o *Outcome) addCategory(label string) {
	for _, c := range o.Categories {
		if c == label {
			return
		}
	}
	o.Categories = append(o.Categories, label)
}

// rowResult is what syncing a single row contributes to the Outcome.
type rowResult struct {
	page     *model.PageResult
	tocLine  string
	warnings []model.Warning
}

// SyncRows writes one page per row read from rows and returns the fold of
// their results. On a fatal error the Outcome holds the rows completed so
// far and the error is returned alongside it.
func SyncRows(ctx context.Context, w Wiki, header table.Header, rows RowSource, opts SyncOptions) (Outcome, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}

	var out Outcome
	for rowNum := 1; ; rowNum++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		row, err := rows.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}

		res, err := syncRow(ctx, w, header, rowNum, row, opts)
		if err != nil {
			return out, fmt.Errorf("row %d: %w", rowNum, err)
		}

		out.Pages = append(out.Pages, res.page)
		out.TOC = append(out.TOC, res.tocLine)
		out.Warnings = append(out.Warnings, res.warnings...)
		if res.page.Category != "" {
			out.addCategory(res.page.Category)
		}

		fmt.Fprintln(progress, res.page.Title)
		logger.Debug("synced row",
			"row", rowNum,
			"title", res.page.Title,
			"sections", len(res.page.Sections),
		)
	}
}

// BaseTitle returns the title row n is first written to.
func BaseTitle(prefix string, n int) string {
	return prefix + strconv.Itoa(n)
}

// RichTitle returns the descriptive title for a row whose first cell is
// name, or "" when name is blank.
func RichTitle(baseTitle, name string) string {
	if isBlank(name) {
		return ""
	}
	return wiki.NormalizeTitle(baseTitle + ": " + name)
}

// TOCLine returns the table of contents entry for title.
func TOCLine(title string) string {
	return "* " + wiki.Link(title)
}

// cell is one non-empty cell ready to be written.
type cell struct {
	index   int
	heading string
	text    string
}

// cells returns the non-empty cells of row with their section headings and
// wikitext, and the category label if the last cell holds one.
func cells(header table.Header, row table.Row) ([]cell, string) {
	var out []cell
	var category string
	last := row.LastIndex()
	for i, text := range row {
		if isBlank(text) {
			continue
		}
		if i == last {
			category = strings.TrimSpace(text)
			text = wiki.CategoryLink(category)
		}
		out = append(out, cell{index: i, heading: header.Title(i), text: text})
	}
	return out, category
}

func syncRow(ctx context.Context, w Wiki, header table.Header, rowNum int, row table.Row, opts SyncOptions) (rowResult, error) {
	base := BaseTitle(opts.PagePrefix, rowNum)
	page := model.NewPageResult(rowNum, base)
	res := rowResult{page: page}

	cs, category := cells(header, row)
	page.Category = category

	var err error
	if opts.CombineSections {
		err = writeCombined(ctx, w, page, cs)
	} else {
		res.warnings, err = writeSections(ctx, w, page, cs)
	}
	if err != nil {
		return res, err
	}

	if len(cs) == 0 {
		res.warnings = append(res.warnings, model.NewWarning(model.WarnEmptyRow, base, "row "+strconv.Itoa(rowNum)+" has no content"))
	}

	rich := RichTitle(base, row.Cell(0))
	if rich != "" && rich != base && len(cs) > 0 {
		warning, err := movePage(ctx, w, base, rich)
		if err != nil {
			return res, err
		}
		if warning != nil {
			res.warnings = append(res.warnings, *warning)
		} else {
			page.Title = rich
			page.Moved = true
		}
	}

	res.tocLine = TOCLine(page.Title)
	return res, nil
}

// writeSections sends one edit per cell. A section the page does not have
// yet, or any write the wiki rejects, is retried once as a new section.
// Transport failures are not retried.
func writeSections(ctx context.Context, w Wiki, page *model.PageResult, cs []cell) ([]model.Warning, error) {
	var warnings []model.Warning
	for _, c := range cs {
		status, err := w.EditSection(ctx, page.BaseTitle, c.index, c.heading, c.text)
		message := "section " + strconv.Itoa(c.index) + " (" + c.heading + ") was appended"
		switch {
		case status == wiki.EditWritten:
			page.AddSection(c.index, c.heading, model.SectionReplaced)
			continue
		case status == wiki.EditSectionAbsent:
		case status == wiki.EditFailed && wiki.IsAPIError(err):
			message += " after the wiki rejected it: " + err.Error()
		default:
			return warnings, fmt.Errorf("%w %d of %s: %w", ErrSectionWrite, c.index, page.BaseTitle, orUnknown(err))
		}

		status, err = w.EditSection(ctx, page.BaseTitle, wiki.SectionNew, c.heading, c.text)
		if status != wiki.EditWritten {
			return warnings, fmt.Errorf("%w %d of %s as new section: %w", ErrSectionWrite, c.index, page.BaseTitle, orUnknown(err))
		}
		page.AddSection(c.index, c.heading, model.SectionAppended)
		warnings = append(warnings, model.NewWarning(model.WarnSectionAppended, page.BaseTitle, message))
	}
	return warnings, nil
}

// writeCombined renders every cell into one body and saves it at once.
func writeCombined(ctx context.Context, w Wiki, page *model.PageResult, cs []cell) error {
	if len(cs) == 0 {
		return nil
	}
	if err := w.Edit(ctx, page.BaseTitle, renderPage(cs)); err != nil {
		return fmt.Errorf("%w %s: %w", ErrPageWrite, page.BaseTitle, err)
	}
	for _, c := range cs {
		page.AddSection(c.index, c.heading, model.SectionCombined)
	}
	return nil
}

// renderPage builds the wikitext a page ends up with when each cell is
// written to its own section: cell 0 as the lead, the rest as level-2
// sections in column order.
func renderPage(cs []cell) string {
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		if c.index == 0 {
			parts = append(parts, c.text)
			continue
		}
		parts = append(parts, wiki.SectionText(c.heading, c.text))
	}
	return strings.Join(parts, "\n")
}

// movePage renames from to to. A refusal by the wiki is returned as a
// warning; anything else is fatal.
func movePage(ctx context.Context, w Wiki, from, to string) (*model.Warning, error) {
	err := w.Move(ctx, from, to, "")
	if err == nil {
		return nil, nil
	}
	if !wiki.IsAPIError(err) {
		return nil, fmt.Errorf("%w %s to %s: %w", ErrMove, from, to, err)
	}

	kind := model.WarnMoveFailed
	if wiki.HasCode(err, wiki.CodeArticleExists) {
		kind = model.WarnTitleCollision
	}
	warning := model.NewWarning(kind, from, fmt.Sprintf("could not move to %q: %v", to, err))
	return &warning, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func orUnknown(err error) error {
	if err == nil {
		return errors.New("unknown error")
	}
	return err
}
