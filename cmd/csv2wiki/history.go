package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nao1215/csv2wiki/internal/config"
	"github.com/nao1215/csv2wiki/internal/database"
	"github.com/nao1215/csv2wiki/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded create runs",
		Long: `History lists the create runs recorded in the history database, newest
first. Runs are filtered by the configured site unless --all is given.

Examples:
  # List runs against the configured site
  csv2wiki history

  # Show the full report of run 3
  csv2wiki history --show 3

  # Show a run as JSON
  csv2wiki history --show 3 --json`,
		Args: usageArgs(cobra.NoArgs),
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64P("show", "s", 0, "Print the report of the run with this ID")
	cmd.Flags().BoolP("all", "a", false, "List runs against every site")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().Bool("summary", false, "With --show, print only the summary counts")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	show, err := cmd.Flags().GetInt64("show")
	if err != nil {
		return err
	}
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if cfg.SummaryOnly, err = cmd.Flags().GetBool("summary"); err != nil {
		return err
	}

	site := cfg.Site
	if all {
		site = ""
	}
	return runHistory(cmd.Context(), cfg, site, show, cmd.OutOrStdout())
}

// runHistory lists runs against site, or prints run show when it is set.
func runHistory(ctx context.Context, cfg *config.Config, site string, show int64, stdout io.Writer) error {
	db, err := openHistory(cfg, false)
	if errors.Is(err, database.ErrDatabaseNotFound) {
		if show != 0 {
			return fmt.Errorf("run %d: %w", show, database.ErrRunNotFound)
		}
		return report.WriteHistory(stdout, nil)
	}
	if err != nil {
		return err
	}
	defer db.Close()

	if show != 0 {
		run, err := db.GetRun(ctx, show)
		if err != nil {
			return fmt.Errorf("run %d: %w", show, err)
		}
		return outputReport(cfg, run, stdout)
	}

	runs, err := db.ListRuns(ctx, site)
	if err != nil {
		return err
	}
	return report.WriteHistory(stdout, runs)
}
