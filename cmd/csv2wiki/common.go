package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nao1215/csv2wiki/internal/config"
	"github.com/nao1215/csv2wiki/internal/database"
	applog "github.com/nao1215/csv2wiki/internal/log"
	"github.com/nao1215/csv2wiki/internal/model"
	"github.com/nao1215/csv2wiki/internal/report"
	"github.com/nao1215/csv2wiki/internal/transport"
	"github.com/nao1215/csv2wiki/internal/wiki"
)

// errNoPassword is returned when no password was given and none can be
// prompted for.
var errNoPassword = errors.New("no password given: pass it as an argument, set " +
	config.PasswordEnv + " or run in a terminal")

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// stringFlag returns the value of a flag the user set, or "".
func stringFlag(cmd *cobra.Command, name string) string {
	f := cmd.Flags().Lookup(name)
	if f == nil || !f.Changed {
		return ""
	}
	return f.Value.String()
}

// buildConfig loads the config file and applies the global flags on top.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("configuration file not found: %s", configPath)
		}
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if v := stringFlag(cmd, "site"); v != "" {
		cfg.Site = v
	}
	if v := stringFlag(cmd, "scheme"); v != "" {
		cfg.Scheme = v
	}
	if v := stringFlag(cmd, "path"); v != "" {
		cfg.ScriptPath = v
	}
	if v := stringFlag(cmd, "proxy"); v != "" {
		cfg.ProxyAddress = v
	}
	if f := cmd.Flags().Lookup("timeout"); f != nil && f.Changed {
		cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
		if err != nil {
			return nil, err
		}
	}

	cfg.DBDir = config.XDGDataDir()
	if v := stringFlag(cmd, "data-dir"); v != "" {
		cfg.DBDir = v
	}

	cfg.Verbose = getVerboseFlag(cmd)
	return cfg, nil
}

// setupLogger creates the secret-masking logger for stderr, emitting JSON
// lines when --log-json is set.
func setupLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	if jsonLogs, err := cmd.Flags().GetBool("log-json"); err == nil && jsonLogs {
		return applog.NewSecureJSONLogger(os.Stderr, verbose)
	}
	return applog.NewSecureLogger(os.Stderr, verbose)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// newHTTPClient builds the HTTP client shared by the wiki and Sheets clients.
func newHTTPClient(cfg *config.Config) (*http.Client, error) {
	return transport.NewHTTPClient(transport.Options{
		Timeout:      cfg.Timeout,
		UserAgent:    cfg.UserAgent,
		ProxyAddress: cfg.ProxyAddress,
	})
}

// login connects to the configured wiki.
func login(ctx context.Context, cfg *config.Config, user, password string, logger *slog.Logger) (*wiki.Client, error) {
	httpClient, err := newHTTPClient(cfg)
	if err != nil {
		return nil, err
	}

	client := wiki.NewClient(cfg.APIEndpoint(), httpClient, wiki.WithLogger(logger))
	if err := client.Login(ctx, user, password); err != nil {
		return nil, err
	}
	return client, nil
}

// resolvePassword returns args[idx] if present, then $CSV2WIKI_PASSWORD,
// then a no-echo prompt when stdin is a terminal.
func resolvePassword(args []string, idx int, prompt io.Writer) (string, error) {
	if len(args) > idx {
		return args[idx], nil
	}
	if v := os.Getenv(config.PasswordEnv); v != "" {
		return v, nil
	}

	fd := int(os.Stdin.Fd()) //nolint:gosec // file descriptors fit in int
	if !term.IsTerminal(fd) {
		return "", errNoPassword
	}
	fmt.Fprint(prompt, "Password: ")
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

// openReportOutput returns the report destination: the --output file,
// created with owner-only permissions, or fallback.
func openReportOutput(path string, fallback io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return fallback, func() error { return nil }, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// reportWriter picks the writer for the requested format.
func reportWriter(cfg *config.Config, out io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(out, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(out)
	default:
		return report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	}
}

// outputReport writes the run report in the requested format. With
// --output the file gets that format and stdout the text report; with
// --summary only the summary counts are written.
func outputReport(cfg *config.Config, r *model.SyncReport, stdout io.Writer) error {
	out, closeFn, err := openReportOutput(cfg.ReportFile, stdout)
	if err != nil {
		return err
	}

	w := reportWriter(cfg, out)
	if cfg.ReportFile != "" {
		w = report.NewMultiWriter(w, report.NewSimpleWriter(stdout, report.WithVerbose(cfg.Verbose)))
	}

	var werr error
	if cfg.SummaryOnly {
		_, werr = w.WriteSimple(model.NewSimpleReport(r))
	} else {
		_, werr = w.Write(r)
	}
	if cerr := closeFn(); werr == nil {
		werr = cerr
	}
	return werr
}

// openHistory opens the run history database. With create false a missing
// database is reported as database.ErrDatabaseNotFound.
func openHistory(cfg *config.Config, create bool) (*database.HistoryDB, error) {
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = create
	return database.Open(cfg.DBDir, opts)
}
