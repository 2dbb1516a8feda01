package authz

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fakeRunner answers svn invocations from canned output.
type fakeRunner struct {
	mu    sync.Mutex
	log   string
	diff  string
	err   error
	calls []string
	dirs  []string
}

func (f *fakeRunner) Run(_ context.Context, dir, name string, args ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, name+" "+strings.Join(args, " "))
	f.dirs = append(f.dirs, dir)
	if f.err != nil {
		return "", f.err
	}
	if slices.Contains(args, "log") {
		return f.log, nil
	}
	return f.diff, nil
}

// writeAuthz creates an authz file inside a fresh directory.
func writeAuthz(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ots-authz-file")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSVNChangedLines(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{log: "l1\nl2", diff: "d1"}
	lines, err := NewSVN(runner).ChangedLines(t.Context(), "/repo/auth/ots-authz-file")
	if err != nil {
		t.Fatalf("ChangedLines() error = %v", err)
	}

	if diff := cmp.Diff([]string{"l1", "l2", "d1"}, lines); diff != "" {
		t.Errorf("ChangedLines() mismatch (-want +got):\n%s", diff)
	}

	slices.Sort(runner.calls)
	want := []string{"svn diff ots-authz-file", "svn log --diff -l 1 ots-authz-file"}
	if diff := cmp.Diff(want, runner.calls); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
	for _, dir := range runner.dirs {
		if dir != "/repo/auth/" {
			t.Errorf("command ran in %q, want the file's directory", dir)
		}
	}
}

func TestSVNChangedLinesError(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{err: ErrCommandFailed}
	if _, err := NewSVN(runner).ChangedLines(t.Context(), "authz"); !errors.Is(err, ErrCommandFailed) {
		t.Errorf("ChangedLines() error = %v, want ErrCommandFailed", err)
	}
	for _, dir := range runner.dirs {
		if dir != "." {
			t.Errorf("bare file name should run in \".\", got %q", dir)
		}
	}
}

func TestAddedPaths(t *testing.T) {
	t.Parallel()

	lines := []string{
		"Index: ots-authz-file",
		"+[/trunk/some/dir]",
		"+[/trunk/other]\r",
		" [/trunk/context]",
		"-[/trunk/removed]",
		"+[/branches/x]",
		"+user = rw",
	}

	got := AddedPaths(lines, "/trunk/")
	if diff := cmp.Diff([]string{"some/dir", "other"}, got); diff != "" {
		t.Errorf("AddedPaths() mismatch (-want +got):\n%s", diff)
	}

	got = AddedPaths(lines, "/branches/")
	if diff := cmp.Diff([]string{"x"}, got); diff != "" {
		t.Errorf("AddedPaths() with other prefix mismatch (-want +got):\n%s", diff)
	}
}

func TestMissingPaths(t *testing.T) {
	t.Parallel()

	checkout := t.TempDir()
	if err := os.MkdirAll(filepath.Join(checkout, "present", "deep"), 0750); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(checkout, "present", "README"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	got := MissingPaths(checkout, "/trunk/", []string{"present/deep", "absent", "present/absent", "present/README"})
	want := []string{"/trunk/absent", "/trunk/present/absent", "/trunk/present/README"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MissingPaths() mismatch (-want +got):\n%s", diff)
	}
}

func TestDuplicateHeaders(t *testing.T) {
	t.Parallel()

	content := strings.Join([]string{
		"[groups]",
		"staff = a, b",
		"[/trunk/a]",
		"@staff = rw",
		"  [/trunk/a]  ",
		"[/trunk/b]",
		"[/trunk/a]",
		"",
	}, "\n")

	got := DuplicateHeaders(content)
	if diff := cmp.Diff([]string{"[/trunk/a]", "[/trunk/a]"}, got); diff != "" {
		t.Errorf("DuplicateHeaders() mismatch (-want +got):\n%s", diff)
	}

	if got := DuplicateHeaders("[a]\n[b]\n"); len(got) != 0 {
		t.Errorf("expected no duplicates, got %v", got)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("missing directory is reported", func(t *testing.T) {
		t.Parallel()

		file := writeAuthz(t, "[/trunk/some/missing/dir]\n* = r\n")
		runner := &fakeRunner{diff: "+[/trunk/some/missing/dir]\n"}

		res, err := NewValidator(NewSVN(runner)).Validate(t.Context(), file, t.TempDir())
		if err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if res.OK() {
			t.Fatal("expected a violation")
		}
		if diff := cmp.Diff([]string{"/trunk/some/missing/dir"}, res.Missing); diff != "" {
			t.Errorf("Missing mismatch (-want +got):\n%s", diff)
		}

		var buf bytes.Buffer
		if err := res.Write(&buf); err != nil {
			t.Fatal(err)
		}
		want := MissingHeading + "\n/trunk/some/missing/dir\n"
		if buf.String() != want {
			t.Errorf("Write() = %q, want %q", buf.String(), want)
		}
	})

	t.Run("both checks run and report", func(t *testing.T) {
		t.Parallel()

		checkout := t.TempDir()
		if err := os.MkdirAll(filepath.Join(checkout, "ok"), 0750); err != nil {
			t.Fatal(err)
		}
		file := writeAuthz(t, "[/trunk/ok]\n[/trunk/ok]\n")
		runner := &fakeRunner{
			log:  "+[/trunk/gone]\n",
			diff: "+[/trunk/ok]\n+[/trunk/also-gone]\n",
		}

		res, err := NewValidator(NewSVN(runner)).Validate(t.Context(), file, checkout)
		if err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if diff := cmp.Diff([]string{"/trunk/gone", "/trunk/also-gone"}, res.Missing); diff != "" {
			t.Errorf("Missing mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"[/trunk/ok]"}, res.Duplicates); diff != "" {
			t.Errorf("Duplicates mismatch (-want +got):\n%s", diff)
		}

		var buf bytes.Buffer
		if err := res.Write(&buf); err != nil {
			t.Fatal(err)
		}
		out := buf.String()
		if strings.Index(out, MissingHeading) > strings.Index(out, DuplicateHeading) {
			t.Errorf("missing paths should be printed first:\n%s", out)
		}
	})

	t.Run("clean file", func(t *testing.T) {
		t.Parallel()

		checkout := t.TempDir()
		if err := os.MkdirAll(filepath.Join(checkout, "proj"), 0750); err != nil {
			t.Fatal(err)
		}
		file := writeAuthz(t, "[/trunk/proj]\n")
		runner := &fakeRunner{diff: "+[/trunk/proj]\n"}

		res, err := NewValidator(NewSVN(runner)).Validate(t.Context(), file, checkout)
		if err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if !res.OK() {
			t.Errorf("expected no violations, got %+v", res)
		}

		var buf bytes.Buffer
		if err := res.Write(&buf); err != nil {
			t.Fatal(err)
		}
		if buf.Len() != 0 {
			t.Errorf("clean result should print nothing, got %q", buf.String())
		}
	})

	t.Run("custom prefix", func(t *testing.T) {
		t.Parallel()

		file := writeAuthz(t, "")
		runner := &fakeRunner{diff: "+[/branches/x]\n+[/trunk/y]\n"}

		res, err := NewValidator(NewSVN(runner), WithPrefix("/branches/")).Validate(t.Context(), file, t.TempDir())
		if err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if diff := cmp.Diff([]string{"/branches/x"}, res.Missing); diff != "" {
			t.Errorf("Missing mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty prefix is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := NewValidator(NewSVN(&fakeRunner{}), WithPrefix("")).Validate(t.Context(), "authz", t.TempDir())
		if !errors.Is(err, ErrEmptyPrefix) {
			t.Errorf("Validate() error = %v, want ErrEmptyPrefix", err)
		}
	})

	t.Run("svn failure", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{err: ErrCommandFailed}
		_, err := NewValidator(NewSVN(runner)).Validate(t.Context(), writeAuthz(t, ""), t.TempDir())
		if !errors.Is(err, ErrCommandFailed) {
			t.Errorf("Validate() error = %v, want ErrCommandFailed", err)
		}
	})

	t.Run("unreadable authz file", func(t *testing.T) {
		t.Parallel()

		missing := filepath.Join(t.TempDir(), "nope")
		if _, err := NewValidator(NewSVN(&fakeRunner{})).Validate(t.Context(), missing, t.TempDir()); err == nil {
			t.Error("expected error for missing authz file")
		}
	})
}
