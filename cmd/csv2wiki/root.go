package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// errViolations makes the process exit 1 without printing anything more;
// the violations themselves are already on stderr.
var errViolations = errors.New("violations found")

// NewRootCmd creates the root command for csv2wiki.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "csv2wiki",
		Short: "Create MediaWiki pages from the rows of a CSV file",
		Long: `csv2wiki creates one MediaWiki page per row of a CSV file.

Every non-empty cell becomes a section titled with its column header, the
last column names the page's category, and a table of contents page links
every row. The wiki is reached through its api.php; set the host in the
.csv2wiki config file (see 'csv2wiki init') or with --site.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write log lines to stderr as JSON")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .csv2wiki in current or home directory)")
	cmd.PersistentFlags().String("site", "", "Wiki host, e.g. localhost/mediawiki")
	cmd.PersistentFlags().String("scheme", "", "Wiki URL scheme (http or https)")
	cmd.PersistentFlags().String("path", "", "Directory serving api.php on the wiki host")
	cmd.PersistentFlags().String("proxy", "", "SOCKS5 proxy address (host:port)")
	cmd.PersistentFlags().Duration("timeout", 0, "Timeout of each HTTP request (default 60s)")
	cmd.PersistentFlags().String("data-dir", "", "Directory of the run history database (default: XDG data dir)")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return usageError(c, err)
	})

	cmd.AddCommand(NewCreateCmd())
	cmd.AddCommand(NewDeleteCmd())
	cmd.AddCommand(NewAuthzCmd())
	cmd.AddCommand(NewSheetsCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// usageArgs makes argument errors of validate carry the command's usage line.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError(cmd, err)
		}
		return nil
	}
}

func usageError(cmd *cobra.Command, err error) error {
	return fmt.Errorf("%w\nUsage: %s", err, cmd.UseLine())
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if !errors.Is(err, errViolations) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
