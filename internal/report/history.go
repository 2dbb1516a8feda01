package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/nao1215/csv2wiki/internal/database"
)

// digestWidth is how much of the input digest the listing shows.
const digestWidth = 12

// WriteHistory prints one line per stored run.
func WriteHistory(out io.Writer, runs []database.RunMetadata) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(out, "No runs recorded.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSITE\tINPUT\tPAGES\tSECTIONS\tCATEGORIES\tWARNINGS\tSTATUS\tDIGEST")

	for _, run := range runs {
		status := "ok"
		if !run.Succeeded {
			status = "failed"
		}
		digest := run.InputDigest
		if len(digest) > digestWidth {
			digest = digest[:digestWidth]
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.Site,
			run.Input,
			run.Pages,
			run.Sections,
			run.Categories,
			run.Warnings,
			status,
			dash(digest),
		)
	}

	return tw.Flush()
}
