package pipeline

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/csv2wiki/internal/wiki"
)

// TestDryRunWiki tests that a dry run plays out like a first run.
func TestDryRunWiki(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewDryRunWiki(&buf)

	report, err := runCreate(t, w, alphaBeta, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Pages[0].Title != "Proposal_1: Alpha" {
		t.Errorf("expected move to succeed, got %q", report.Pages[0].Title)
	}
	if report.Pages[0].Appended() != 2 {
		t.Errorf("expected 2 appended sections on an empty wiki, got %d", report.Pages[0].Appended())
	}

	actions := w.Actions()
	wantFirst := []string{
		"write lead of Proposal_1",
		`append section "Description" to Proposal_1`,
		`append section "Category" to Proposal_1`,
		"move Proposal_1 to Proposal_1: Alpha",
	}
	for i, want := range wantFirst {
		if actions[i] != want {
			t.Errorf("action %d = %q, want %q", i, actions[i], want)
		}
	}
	if !strings.Contains(buf.String(), "[dry-run] move Proposal_2 to Proposal_2: Beta") {
		t.Errorf("expected dry-run output, got:\n%s", buf.String())
	}
}

// TestDryRunWikiMove tests simulated move failures.
func TestDryRunWikiMove(t *testing.T) {
	t.Parallel()

	w := NewDryRunWiki(nil)
	ctx := t.Context()

	if err := w.Move(ctx, "Nope", "Other", ""); !wiki.HasCode(err, wiki.CodeMissingTitle) {
		t.Errorf("expected missingtitle, got %v", err)
	}

	_ = w.Edit(ctx, "A", "x")
	_ = w.Edit(ctx, "B", "y")
	err := w.Move(ctx, "A", "B", "")
	var apiErr *wiki.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != wiki.CodeArticleExists {
		t.Errorf("expected articleexists, got %v", err)
	}
}

// TestDryRunWikiSections tests section bookkeeping.
func TestDryRunWikiSections(t *testing.T) {
	t.Parallel()

	w := NewDryRunWiki(nil)
	ctx := t.Context()

	if status, _ := w.EditSection(ctx, "P", 1, "H", "x"); status != wiki.EditSectionAbsent {
		t.Errorf("missing page must report absent, got %v", status)
	}
	_ = w.Edit(ctx, "P", "lead\n== One ==\na\n== Two ==\nb")
	if status, _ := w.EditSection(ctx, "P", 2, "Two", "c"); status != wiki.EditWritten {
		t.Errorf("existing section must be written, got %v", status)
	}
	if status, _ := w.EditSection(ctx, "P", 3, "Three", "d"); status != wiki.EditSectionAbsent {
		t.Errorf("section past the end must be absent, got %v", status)
	}
	if status, err := w.EditSection(ctx, "P", -5, "", ""); status != wiki.EditFailed || err == nil {
		t.Errorf("invalid index must fail, got %v (%v)", status, err)
	}
}
