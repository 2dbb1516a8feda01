package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/csv2wiki/internal/config"
	"github.com/nao1215/csv2wiki/internal/sheets"
	"github.com/nao1215/csv2wiki/internal/table"
)

// NewSheetsCmd creates the sheets command.
func NewSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Export a Google Sheets range as CSV",
		Long: `Sheets reads the range configured in the "sheets" section of the config
file and prints it as CSV, ready for 'csv2wiki create'.

The first run prints a Google consent URL and asks for the authorization
code; the token is then cached (mode 0600) and reused.

Examples:
  csv2wiki sheets > proposals.csv
  csv2wiki sheets --range "Sheet2!A1:D" -o proposals.csv`,
		Args: usageArgs(cobra.NoArgs),
		RunE: runSheetsCmd,
	}

	cmd.Flags().String("sheet-id", "", "Spreadsheet ID (overrides sheets.sheetID)")
	cmd.Flags().String("range", "", "Range in A1 notation (overrides sheets.range)")
	cmd.Flags().StringP("output", "o", "", "Write CSV to file instead of stdout")

	return cmd
}

// runSheetsCmd executes the sheets command.
func runSheetsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if v := stringFlag(cmd, "sheet-id"); v != "" {
		cfg.Sheets.SheetID = v
	}
	if v := stringFlag(cmd, "range"); v != "" {
		cfg.Sheets.Range = v
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return err
	}

	logger := setupLogger(cmd, cfg.Verbose)

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	oauthConfig, err := sheets.OAuthConfig(sheets.Credentials{
		ClientID:     cfg.Sheets.ClientID,
		ClientSecret: cfg.Sheets.ClientSecret,
		RedirectURL:  cfg.Sheets.RedirectURL,
	})
	if err != nil {
		return err
	}

	tokenFile := cfg.Sheets.TokenFile
	if tokenFile == "" {
		tokenFile = config.DefaultTokenFile()
	}
	auth := sheets.NewAuthorizer(oauthConfig, sheets.NewTokenStore(tokenFile), cmd.InOrStdin(), cmd.ErrOrStderr())

	tok, err := auth.Token(ctx)
	if err != nil {
		return err
	}

	base, err := newHTTPClient(cfg)
	if err != nil {
		return err
	}
	client := sheets.NewClient(auth.HTTPClient(ctx, base, tok))

	return runSheets(ctx, cfg, client, cmd.OutOrStdout(), logger)
}

// valuesFetcher is the part of sheets.Client runSheets needs.
type valuesFetcher interface {
	Values(ctx context.Context, sheetID, rangeA1 string) ([][]string, error)
}

// runSheets fetches the configured range and writes it as CSV.
func runSheets(ctx context.Context, cfg *config.Config, client valuesFetcher, stdout io.Writer, logger *slog.Logger) error {
	values, err := client.Values(ctx, cfg.Sheets.SheetID, cfg.Sheets.Range)
	if err != nil {
		return err
	}
	logger.Info("fetched sheet values", "sheet", cfg.Sheets.SheetID, "range", cfg.Sheets.Range, "rows", len(values))

	if len(values) == 0 {
		_, err := fmt.Fprintln(stdout, "No data found.")
		return err
	}

	header, rows, err := table.FromValues(values)
	if err != nil {
		return err
	}

	out, closeFn, err := openReportOutput(cfg.ReportFile, stdout)
	if err != nil {
		return err
	}
	werr := table.Write(out, header, rows)
	if cerr := closeFn(); werr == nil {
		werr = cerr
	}
	return werr
}
