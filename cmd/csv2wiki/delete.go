package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/csv2wiki/internal/config"
	"github.com/nao1215/csv2wiki/internal/database"
	"github.com/nao1215/csv2wiki/internal/pipeline"
)

// deleteReason is shown in the wiki's deletion log.
const deleteReason = "Removed by csv2wiki delete"

// NewDeleteCmd creates the delete command.
func NewDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <username> [password]",
		Short: "Delete the pages written by create",
		Long: `Delete removes every page whose title starts with the page prefix, the
table of contents page, and the category pages recorded by the most recent
create run against the same site.

Pages that are already gone are reported and skipped.

Examples:
  csv2wiki delete WikiBot
  csv2wiki delete --prefix Idea_ --toc-title "List of Ideas" WikiBot secret`,
		Args: usageArgs(cobra.RangeArgs(1, 2)),
		RunE: runDeleteCmd,
	}

	cmd.Flags().String("prefix", "", "Page title prefix (default \""+config.DefaultPagePrefix+"\")")
	cmd.Flags().String("toc-title", "", "Table of contents page title (default \""+config.DefaultTOCTitle+"\")")

	return cmd
}

// runDeleteCmd executes the delete command.
func runDeleteCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if v := stringFlag(cmd, "prefix"); v != "" {
		cfg.PagePrefix = v
	}
	if v := stringFlag(cmd, "toc-title"); v != "" {
		cfg.TOCTitle = v
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg.Verbose)

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	password, err := resolvePassword(args, 1, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	client, err := login(ctx, cfg, args[0], password, logger)
	if err != nil {
		return err
	}

	return runDelete(ctx, cfg, client, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// runDelete removes the pages and prints what could not be removed.
func runDelete(ctx context.Context, cfg *config.Config, d pipeline.Deleter, stdout, stderr io.Writer, logger *slog.Logger) error {
	categories, err := lastCategories(ctx, cfg)
	if err != nil {
		return err
	}
	if categories == nil {
		logger.Warn("no create run recorded for site; category pages are kept", "site", cfg.Site)
	}

	res, err := pipeline.Cleanup(ctx, d, pipeline.CleanupOptions{
		PagePrefix: cfg.PagePrefix,
		TOCTitle:   cfg.TOCTitle,
		Categories: categories,
		Reason:     deleteReason,
		Progress:   stdout,
		Logger:     logger,
	})
	for _, warning := range res.Warnings {
		fmt.Fprintf(stderr, "WARNING: %s: %s\n", warning.Title, warning.Message)
	}
	if err != nil {
		return err
	}

	logger.Info("delete finished", "deleted", len(res.Deleted), "warnings", len(res.Warnings))
	return nil
}

// lastCategories returns the category labels of the latest create run
// against the site, or nil when there is none.
func lastCategories(ctx context.Context, cfg *config.Config) ([]string, error) {
	db, err := openHistory(cfg, false)
	if errors.Is(err, database.ErrDatabaseNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer db.Close()

	run, err := db.LatestRun(ctx, cfg.Site)
	if errors.Is(err, database.ErrRunNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run.Categories, nil
}
