package pipeline

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/csv2wiki/internal/model"
)

// TestCleanup tests deleting the pages a create run made.
func TestCleanup(t *testing.T) {
	t.Parallel()

	t.Run("deletes row, TOC and category pages", func(t *testing.T) {
		t.Parallel()

		srv, c := loggedInWiki(t)
		for _, title := range []string{"Proposal_1", "Proposal_1: Alpha", "Proposal_2", "List of Proposals", "Category:Cat1", "Main Page"} {
			srv.SetPage(title, "x")
		}

		var buf bytes.Buffer
		res, err := Cleanup(t.Context(), c, CleanupOptions{
			PagePrefix: "Proposal_",
			TOCTitle:   "List of Proposals",
			Categories: []string{"Cat1", "Gone"},
			Progress:   &buf,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"Proposal_1", "Proposal_1: Alpha", "Proposal_2", "List of Proposals", "Category:Cat1"}
		if diff := cmp.Diff(want, res.Deleted); diff != "" {
			t.Errorf("deleted mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"Main Page"}, srv.Titles()); diff != "" {
			t.Errorf("remaining pages mismatch (-want +got):\n%s", diff)
		}
		if len(res.Warnings) != 1 || res.Warnings[0].Kind != model.WarnPageMissing {
			t.Errorf("expected one page_missing warning, got %+v", res.Warnings)
		}
		if buf.Len() == 0 {
			t.Error("expected progress output")
		}
	})

	t.Run("refused deletes are warnings", func(t *testing.T) {
		t.Parallel()

		srv, c := loggedInWiki(t)
		srv.SetPage("Proposal_1", "x")
		srv.SetPage("Proposal_2", "x")
		srv.Fail("delete", "Proposal_1", "permissiondenied")

		res, err := Cleanup(t.Context(), c, CleanupOptions{PagePrefix: "Proposal_"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff([]string{"Proposal_2"}, res.Deleted); diff != "" {
			t.Errorf("deleted mismatch (-want +got):\n%s", diff)
		}
		if len(res.Warnings) != 1 || res.Warnings[0].Kind != model.WarnDeleteFailed {
			t.Errorf("expected delete_failed warning, got %+v", res.Warnings)
		}
	})

	t.Run("listing failure is fatal", func(t *testing.T) {
		t.Parallel()

		_, err := Cleanup(t.Context(), failingDeleter{}, CleanupOptions{PagePrefix: "Proposal_"})
		if !errors.Is(err, errListing) {
			t.Errorf("expected listing error, got %v", err)
		}
	})
}

var errListing = errors.New("listing failed")

type failingDeleter struct{}

func (failingDeleter) PrefixSearch(context.Context, int, string) ([]string, error) {
	return nil, errListing
}

func (failingDeleter) Delete(context.Context, string, string) error {
	return nil
}
