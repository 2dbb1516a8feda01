package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/nao1215/csv2wiki/internal/report"
)

// TestHistoryCommand tests listing and showing recorded runs.
func TestHistoryCommand(t *testing.T) {
	t.Parallel()

	t.Run("empty history", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := execute(t, "history", "--data-dir", t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != "No runs recorded.\n" {
			t.Errorf("unexpected output %q", stdout)
		}
	})

	t.Run("show on empty history", func(t *testing.T) {
		t.Parallel()

		_, _, err := execute(t, "history", "--data-dir", t.TempDir(), "--show", "1")
		if err == nil {
			t.Error("expected error for unknown run")
		}
	})

	_, site := fakeSite(t)
	dataDir := t.TempDir()
	csvPath := writeFile(t, t.TempDir(), "proposals.csv", proposalsCSV)
	if _, _, err := execute(t, "create", "--site", site, "--data-dir", dataDir, csvPath, "admin", "secret"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	t.Run("lists runs against the site", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := execute(t, "history", "--site", site, "--data-dir", dataDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"ID", "DIGEST", site, "proposals.csv"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected listing to contain %q, got:\n%s", want, stdout)
			}
		}
	})

	t.Run("filters other sites", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := execute(t, "history", "--site", "other.example.org", "--data-dir", dataDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != "No runs recorded.\n" {
			t.Errorf("unexpected output %q", stdout)
		}

		stdout, _, err = execute(t, "history", "--all", "--site", "other.example.org", "--data-dir", dataDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, site) {
			t.Errorf("expected --all to list %s, got:\n%s", site, stdout)
		}
	})

	t.Run("shows a run as json", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := execute(t, "history", "--data-dir", dataDir, "--show", "1", "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var got report.JSONReport
		if err := json.Unmarshal([]byte(stdout), &got); err != nil {
			t.Fatalf("stdout is not JSON: %v", err)
		}
		if got.Report == nil || len(got.Report.Pages) != 2 {
			t.Errorf("unexpected report %+v", got.Report)
		}
		if got.Report != nil && got.Report.InputDigest == "" {
			t.Error("expected the input digest to be stored")
		}
	})
}
