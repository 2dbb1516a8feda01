package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/csv2wiki/internal/database"
	"github.com/nao1215/csv2wiki/internal/model"
)

// createTestReport creates a report with sample data for testing.
func createTestReport() *model.SyncReport {
	report := model.NewSyncReport("wiki.example.org", "proposals.csv")
	report.Header = []string{"Title", "Summary", "Category"}
	report.TOCTitle = "List of Proposals"

	alpha := model.NewPageResult(1, "Proposal_1")
	alpha.Title = "Proposal_1: Alpha"
	alpha.Moved = true
	alpha.Category = "Green"
	alpha.AddSection(0, "Title", model.SectionReplaced)
	alpha.AddSection(1, "Summary", model.SectionAppended)
	report.AddPage(alpha)
	report.AddTOCLine("* [[Proposal_1: Alpha]]")
	report.AddCategory("Green")

	beta := model.NewPageResult(2, "Proposal_2")
	beta.AddSection(0, "Title", model.SectionReplaced)
	report.AddPage(beta)
	report.AddTOCLine("* [[Proposal_2]]")
	report.AddWarning(model.NewWarning(model.WarnTitleCollision, "Proposal_2", "articleexists: the destination exists"))
	report.AddWarning(model.NewWarning(model.WarnSectionAppended, "Proposal_1", ""))

	report.TOCWritten = true
	report.CategoriesWritten = 1
	report.Finish()
	return report
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"CSV2WIKI REPORT",
			"wiki.example.org",
			"proposals.csv",
			"Status:    Complete",
			"Pages written:      2",
			"Pages moved:        1",
			"Sections written:   3 (1 appended)",
			"Table of contents:  written",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("groups warnings by severity", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		warning := strings.Index(output, "[!] WARNING")
		info := strings.Index(output, "[i] INFO")
		if warning < 0 || info < 0 {
			t.Fatalf("expected both severity groups, got:\n%s", output)
		}
		if warning > info {
			t.Error("warnings should be listed before info")
		}
		if strings.Contains(output, "Recommendation:") {
			t.Error("recommendations should only appear in verbose mode")
		}
	})

	t.Run("verbose lists pages and recommendations", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Proposal_1: Alpha (from Proposal_1)") {
			t.Error("expected moved page with its base title")
		}
		if !strings.Contains(output, "category: Green") {
			t.Error("expected page category")
		}
		if !strings.Contains(output, "Recommendation:") {
			t.Error("expected recommendations in verbose mode")
		}
	})

	t.Run("hides empty warnings unless asked", func(t *testing.T) {
		t.Parallel()

		report := model.NewSyncReport("wiki.example.org", "in.csv")

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "WARNINGS") {
			t.Error("empty warnings section should be hidden")
		}

		buf.Reset()
		if _, err := NewSimpleWriter(&buf, WithShowEmpty(true)).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No warnings") {
			t.Error("expected empty warnings section")
		}
	})
}

func TestSimpleWriterWithError(t *testing.T) {
	t.Parallel()

	report := createTestReport()
	report.TOCWritten = false
	report.Fail(errors.New("row 3: edit refused"))
	report.DryRun = true

	var buf bytes.Buffer
	if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "ERROR - row 3: edit refused") {
		t.Error("expected error status")
	}
	if !strings.Contains(output, "Table of contents:  not written") {
		t.Error("expected unwritten table of contents")
	}
	if !strings.Contains(output, "dry run") {
		t.Error("expected dry run mode")
	}
}

func TestSimpleWriterWriteSimple(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := NewSimpleWriter(&buf).WriteSimple(model.NewSimpleReport(createTestReport()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != buf.Len() {
		t.Errorf("returned %d bytes, wrote %d", n, buf.Len())
	}
	if strings.Contains(buf.String(), "WARNINGS") {
		t.Error("WriteSimple should only print the summary")
	}
}

func TestSeverityIndicator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		severity model.Severity
		want     string
	}{
		{model.SeverityError, "!!"},
		{model.SeverityWarning, "!"},
		{model.SeverityInfo, "i"},
		{model.Severity(99), "?"},
	}
	for _, tt := range tests {
		if got := severityIndicator(tt.severity); got != tt.want {
			t.Errorf("severityIndicator(%v) = %q, want %q", tt.severity, got, tt.want)
		}
	}
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes compact JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if strings.Count(output, "\n") != 1 {
			t.Error("compact output should be a single line")
		}

		var decoded model.SyncReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.Site != "wiki.example.org" || len(decoded.Pages) != 2 {
			t.Errorf("unexpected decoded report: %+v", decoded)
		}
	})

	t.Run("pretty prints", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).WriteSimple(model.NewSimpleReport(createTestReport())); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"site\": \"wiki.example.org\"") {
			t.Errorf("expected indented output, got:\n%s", buf.String())
		}
	})

	t.Run("custom indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithIndent(">", "\t")).WriteSimple(model.NewSimpleReport(createTestReport())); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), ">\t\"site\"") {
			t.Errorf("expected prefix and tab indent, got:\n%s", buf.String())
		}
	})
}

func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewFullJSONWriter(&buf, "v1.2.3").Write(createTestReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded JSONReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Version != "v1.2.3" {
		t.Errorf("Version = %q", decoded.Version)
	}
	if decoded.Summary == nil || decoded.Summary.PagesMoved != 1 {
		t.Errorf("unexpected summary: %+v", decoded.Summary)
	}
	if decoded.Report == nil || len(decoded.Report.TOC) != 2 {
		t.Errorf("unexpected report: %+v", decoded.Report)
	}
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, js bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))

	n, err := mw.Write(createTestReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != text.Len()+js.Len() {
		t.Errorf("returned %d bytes, wrote %d", n, text.Len()+js.Len())
	}
	if !strings.Contains(text.String(), "CSV2WIKI REPORT") {
		t.Error("text writer received nothing")
	}
	if !json.Valid(js.Bytes()) {
		t.Error("JSON writer produced invalid output")
	}

	text.Reset()
	js.Reset()
	if _, err := mw.WriteSimple(model.NewSimpleReport(createTestReport())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text.Len() == 0 || js.Len() == 0 {
		t.Error("WriteSimple should reach every writer")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestMultiWriterStopsOnError(t *testing.T) {
	t.Parallel()

	var after bytes.Buffer
	mw := NewMultiWriter(NewJSONWriter(failingWriter{}), NewJSONWriter(&after))

	if _, err := mw.Write(createTestReport()); err == nil {
		t.Fatal("expected error")
	}
	if after.Len() != 0 {
		t.Error("writers after the failing one should not run")
	}
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes tables and chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# csv2wiki Report",
			"## Summary",
			"## Pages",
			"## Warnings",
			"`wiki.example.org`",
			"Proposal_1: Alpha",
			"pie",
			"title_collision",
			"[!WARNING]",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("no sections means no chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(model.NewSyncReport("wiki.example.org", "in.csv")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if strings.Contains(output, "```mermaid") {
			t.Error("chart should be omitted when nothing was written")
		}
		if !strings.Contains(output, "No pages were written.") {
			t.Error("expected empty pages text")
		}
		if !strings.Contains(output, "[!TIP]") {
			t.Error("expected tip alert for a clean run")
		}
	})

	t.Run("error becomes a caution", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		report.Fail(errors.New("row 2: edit refused"))

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteSimple(model.NewSimpleReport(report)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "[!CAUTION]") {
			t.Error("expected caution alert")
		}
		if !strings.Contains(output, "row 2: edit refused") {
			t.Error("expected error text")
		}
	})
}

func TestWriteHistory(t *testing.T) {
	t.Parallel()

	t.Run("no runs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := WriteHistory(&buf, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.String() != "No runs recorded.\n" {
			t.Errorf("got %q", buf.String())
		}
	})

	t.Run("lists runs", func(t *testing.T) {
		t.Parallel()

		runs := []database.RunMetadata{
			{
				ID:          2,
				Site:        "wiki.example.org",
				Input:       "proposals.csv",
				InputDigest: "0123456789abcdef0123",
				StartedAt:   time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
				Pages:       5,
				Sections:    20,
				Categories:  2,
				Succeeded:   true,
			},
			{ID: 1, Site: "wiki.example.org", Input: "old.csv"},
		}

		var buf bytes.Buffer
		if err := WriteHistory(&buf, runs); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header and 2 rows, got %d lines:\n%s", len(lines), buf.String())
		}
		if !strings.HasPrefix(lines[0], "ID") {
			t.Errorf("unexpected header %q", lines[0])
		}
		if !strings.Contains(lines[1], "0123456789ab ") && !strings.HasSuffix(lines[1], "0123456789ab") {
			t.Errorf("digest should be shortened: %q", lines[1])
		}
		if !strings.Contains(lines[1], "ok") || !strings.Contains(lines[2], "failed") {
			t.Errorf("unexpected status columns:\n%s", buf.String())
		}
	})
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abcdef", 3, "abc"},
		{"日本語のタイトル", 5, "日本..."},
	}
	for _, tt := range tests {
		if got := truncateString(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}
