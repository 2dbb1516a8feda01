package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/csv2wiki/internal/model"
	"github.com/nao1215/csv2wiki/internal/wiki"
)

// Deleter is the part of the wiki client page removal needs.
type Deleter interface {
	PrefixSearch(ctx context.Context, namespace int, prefix string) ([]string, error)
	Delete(ctx context.Context, title, reason string) error
}

// CleanupOptions selects the pages Cleanup removes.
type CleanupOptions struct {
	// PagePrefix selects the row pages by title prefix.
	PagePrefix string

	// TOCTitle is the table of contents page.
	TOCTitle string

	// Categories are the labels whose category pages are removed.
	Categories []string

	// Reason is shown in the wiki's deletion log.
	Reason string

	// Progress receives the title of every deleted page. Nil discards them.
	Progress io.Writer

	// Logger is used for debug output. Nil means slog.Default.
	Logger *slog.Logger
}

// CleanupResult lists what Cleanup did.
type CleanupResult struct {
	Deleted  []string
	Warnings []model.Warning
}

// Cleanup deletes the row pages, the table of contents and the category
// pages. Pages that are already gone or that the wiki refuses to delete
// become warnings; transport failures stop the cleanup.
func Cleanup(ctx context.Context, d Deleter, opts CleanupOptions) (CleanupResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}

	var res CleanupResult

	titles, err := d.PrefixSearch(ctx, wiki.NamespaceMain, opts.PagePrefix)
	if err != nil {
		return res, fmt.Errorf("failed to list pages with prefix %q: %w", opts.PagePrefix, err)
	}
	if opts.TOCTitle != "" {
		titles = append(titles, opts.TOCTitle)
	}
	for _, label := range opts.Categories {
		titles = append(titles, wiki.CategoryTitle(label))
	}

	seen := make(map[string]bool, len(titles))
	for _, title := range titles {
		if seen[title] {
			continue
		}
		seen[title] = true

		if err := ctx.Err(); err != nil {
			return res, err
		}

		err := d.Delete(ctx, title, opts.Reason)
		switch {
		case err == nil:
			res.Deleted = append(res.Deleted, title)
			fmt.Fprintln(progress, title)
			logger.Debug("deleted page", "title", title)
		case wiki.HasCode(err, wiki.CodeMissingTitle):
			res.Warnings = append(res.Warnings, model.NewWarning(model.WarnPageMissing, title, err.Error()))
		case wiki.IsAPIError(err):
			res.Warnings = append(res.Warnings, model.NewWarning(model.WarnDeleteFailed, title, err.Error()))
		default:
			return res, fmt.Errorf("failed to delete %s: %w", title, err)
		}
	}

	return res, nil
}
