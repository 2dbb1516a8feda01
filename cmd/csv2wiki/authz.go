package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/csv2wiki/internal/authz"
	"github.com/nao1215/csv2wiki/internal/config"
)

// NewAuthzCmd creates the authz command.
func NewAuthzCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "authz [authz_file] [checkout_dir]",
		Short: "Validate a Subversion authz file",
		Long: `Authz checks a Subversion authz file in two ways:

  - every section header added by the last commit ("svn log --diff -l 1")
    or by the uncommitted changes ("svn diff") must name a directory that
    exists in the checkout
  - no section header may appear twice in the file

Violations are printed to stderr and the command exits with status 1.

Without arguments the file and checkout come from the config file, or else
from $OTS_DIR:
  $OTS_DIR/` + config.DefaultAuthzRelPath + `
  $OTS_DIR`,
		Args: usageArgs(cobra.MaximumNArgs(2)),
		RunE: runAuthzCmd,
	}
}

// runAuthzCmd executes the authz command.
func runAuthzCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	file, checkout, err := authzPaths(cfg, args)
	if err != nil {
		return err
	}

	logger := setupLogger(cmd, cfg.Verbose)

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	return runAuthz(ctx, authz.NewSVN(nil), cfg.Authz.PathPrefix, file, checkout, cmd.ErrOrStderr(), logger)
}

// authzPaths resolves the authz file and checkout from the arguments, the
// config file and the environment, in that order.
func authzPaths(cfg *config.Config, args []string) (file, checkout string, err error) {
	file, checkout = cfg.Authz.File, cfg.Authz.Checkout
	if len(args) > 0 {
		file = args[0]
	}
	if len(args) > 1 {
		checkout = args[1]
	}
	if file != "" && checkout != "" {
		return file, checkout, nil
	}

	envFile, envCheckout, err := config.DefaultAuthzPaths()
	if err != nil {
		return "", "", err
	}
	if file == "" {
		file = envFile
	}
	if checkout == "" {
		checkout = envCheckout
	}
	return file, checkout, nil
}

// runAuthz validates file and prints the violations to stderr.
func runAuthz(ctx context.Context, source authz.Source, prefix, file, checkout string, stderr io.Writer, logger *slog.Logger) error {
	v := authz.NewValidator(source, authz.WithPrefix(prefix), authz.WithLogger(logger))

	res, err := v.Validate(ctx, file, checkout)
	if err != nil {
		return err
	}
	if err := res.Write(stderr); err != nil {
		return fmt.Errorf("failed to print violations: %w", err)
	}
	if !res.OK() {
		return errViolations
	}
	return nil
}
