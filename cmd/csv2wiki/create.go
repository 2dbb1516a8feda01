package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/csv2wiki/internal/config"
	"github.com/nao1215/csv2wiki/internal/database"
	"github.com/nao1215/csv2wiki/internal/model"
	"github.com/nao1215/csv2wiki/internal/pipeline"
	"github.com/nao1215/csv2wiki/internal/table"
)

// NewCreateCmd creates the create command.
func NewCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <csv_file> <username> [password]",
		Short: "Create wiki pages from a CSV file",
		Long: `Create writes one wiki page per data row of the CSV file.

For row N the page <prefix>N is written section by section: each non-empty
cell becomes a section titled with its column header, and the last cell
becomes a [[Category:...]] link. Once written, the page is moved to
"<prefix>N: <first cell>". A page of that name that already exists is
left alone and reported as a warning.

After all rows, the table of contents page is overwritten with a link to
every row's page and an empty page is written for every category.

The password may be omitted; it is then read from $CSV2WIKI_PASSWORD or
prompted for.

Examples:
  # Create pages on the wiki configured in .csv2wiki
  csv2wiki create proposals.csv WikiBot

  # Point at a wiki explicitly
  csv2wiki create --site localhost/mediawiki proposals.csv WikiBot secret

  # Show what would be written without touching the wiki
  csv2wiki create --dry-run proposals.csv WikiBot

  # One edit per page and a Markdown report
  csv2wiki create --combine --markdown -o report.md proposals.csv WikiBot`,
		Args: usageArgs(cobra.RangeArgs(2, 3)),
		RunE: runCreateCmd,
	}

	cmd.Flags().String("prefix", "", "Page title prefix (default \""+config.DefaultPagePrefix+"\")")
	cmd.Flags().String("toc-title", "", "Table of contents page title (default \""+config.DefaultTOCTitle+"\")")
	cmd.Flags().Bool("combine", false, "Write each page with a single edit")
	cmd.Flags().BoolP("dry-run", "n", false, "Print the writes without contacting the wiki")
	cmd.Flags().Bool("no-history", false, "Do not record the run in the history database")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("summary", false, "Report only the summary counts")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// createOptions holds the create-only settings.
type createOptions struct {
	csvPath   string
	user      string
	noHistory bool

	// progress receives page and category titles as they are written.
	progress io.Writer
}

// buildCreateConfig applies the create flags on top of buildConfig.
func buildCreateConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}

	if v := stringFlag(cmd, "prefix"); v != "" {
		cfg.PagePrefix = v
	}
	if v := stringFlag(cmd, "toc-title"); v != "" {
		cfg.TOCTitle = v
	}

	combine, err := cmd.Flags().GetBool("combine")
	if err != nil {
		return nil, err
	}
	cfg.CombineSections = cfg.CombineSections || combine

	if cfg.DryRun, err = cmd.Flags().GetBool("dry-run"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	if cfg.SummaryOnly, err = cmd.Flags().GetBool("summary"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// runCreateCmd executes the create command.
func runCreateCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCreateConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return err
	}
	opts := createOptions{
		csvPath:   args[0],
		user:      args[1],
		noHistory: noHistory,
		progress:  cmd.OutOrStdout(),
	}
	// Keep stdout parseable when a JSON or Markdown report goes there.
	if (cfg.JSONReport || cfg.MarkdownReport) && cfg.ReportFile == "" {
		opts.progress = cmd.ErrOrStderr()
	}

	logger := setupLogger(cmd, cfg.Verbose)

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	var w pipeline.Wiki
	if cfg.DryRun {
		w = pipeline.NewDryRunWiki(opts.progress)
	} else {
		password, err := resolvePassword(args, 2, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		client, err := login(ctx, cfg, opts.user, password, logger)
		if err != nil {
			return err
		}
		w = client
	}

	return runCreate(ctx, cfg, opts, w, cmd.OutOrStdout(), logger)
}

// runCreate reads the CSV file, runs the create pipeline against w and
// reports the result. The report and history are produced even when the
// pipeline fails; the pipeline error is returned afterwards.
func runCreate(ctx context.Context, cfg *config.Config, opts createOptions, w pipeline.Wiki, stdout io.Writer, logger *slog.Logger) error {
	reader, err := table.Open(opts.csvPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	digest, err := database.DigestFile(opts.csvPath)
	if err != nil {
		return err
	}

	syncReport := model.NewSyncReport(cfg.Site, opts.csvPath)
	syncReport.InputDigest = digest
	syncReport.DryRun = cfg.DryRun

	if !cfg.DryRun {
		ids, err := previousRuns(ctx, cfg, digest)
		if err != nil {
			logger.Warn("failed to read run history", "error", err)
		}
		if len(ids) > 0 {
			syncReport.AddWarning(model.NewWarning(model.WarnInputResynced, opts.csvPath,
				fmt.Sprintf("unchanged input was already written by run %d", ids[0])))
		}
	}

	p := pipeline.DefaultPipeline(w, reader.Header(), reader, pipeline.CreateConfig{
		Sync: pipeline.SyncOptions{
			PagePrefix:      cfg.PagePrefix,
			CombineSections: cfg.CombineSections,
			Progress:        opts.progress,
			Logger:          logger,
		},
		TOCTitle: cfg.TOCTitle,
	}, pipeline.WithLogger(logger))

	logger.Info("starting create run",
		"site", cfg.Site,
		"input", opts.csvPath,
		"dryRun", cfg.DryRun,
		"combine", cfg.CombineSections,
		"steps", p.StepNames(),
	)

	start := time.Now()
	runErr := p.Execute(ctx, syncReport)
	syncReport.Finish()
	logger.Info("create run finished",
		"elapsed", time.Since(start).Round(time.Millisecond),
		"pages", len(syncReport.Pages),
		"error", syncReport.Error,
	)

	for _, warning := range syncReport.Warnings {
		logger.Warn("sync warning", "kind", warning.Kind, "title", warning.Title, "message", warning.Message)
	}

	if !cfg.DryRun && !opts.noHistory {
		// Context-free so an interrupted run is still recorded.
		if err := saveRun(context.Background(), cfg, syncReport, logger); err != nil {
			logger.Error("failed to save run history", "error", err)
		}
	}

	if err := outputReport(cfg, syncReport, stdout); err != nil {
		logger.Error("report failed", "error", err)
	}

	return runErr
}

// previousRuns returns the successful runs of the same input against the
// configured site. A missing history database means there are none.
func previousRuns(ctx context.Context, cfg *config.Config, digest string) ([]int64, error) {
	db, err := openHistory(cfg, false)
	if errors.Is(err, database.ErrDatabaseNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.RunsForDigest(ctx, cfg.Site, digest)
}

// saveRun records the run in the history database.
func saveRun(ctx context.Context, cfg *config.Config, r *model.SyncReport, logger *slog.Logger) error {
	db, err := openHistory(cfg, true)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := db.SaveRun(ctx, r)
	if err != nil {
		return err
	}
	logger.Info("run saved to history", "id", id, "path", db.Path())
	return nil
}
