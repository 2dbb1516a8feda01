package authz

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Runner runs an external command in dir and returns its stdout.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %s %s in %s: %w (stderr: %s)",
			ErrCommandFailed, name, strings.Join(args, " "), dir, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// SVN reads the recent changes of a file from Subversion.
type SVN struct {
	runner Runner
}

// NewSVN returns an SVN that runs commands through runner.
// A nil runner means ExecRunner.
func NewSVN(runner Runner) *SVN {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &SVN{runner: runner}
}

// ChangedLines returns the lines of "svn log --diff -l 1" followed by the
// lines of "svn diff" for file. Both commands run concurrently in the
// file's directory.
func (s *SVN) ChangedLines(ctx context.Context, file string) ([]string, error) {
	dir, name := filepath.Split(file)
	if dir == "" {
		dir = "."
	}

	var logOut, diffOut string
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := s.runner.Run(ctx, dir, "svn", "log", "--diff", "-l", "1", name)
		logOut = out
		return err
	})
	g.Go(func() error {
		out, err := s.runner.Run(ctx, dir, "svn", "diff", name)
		diffOut = out
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	lines := strings.Split(logOut, "\n")
	return append(lines, strings.Split(diffOut, "\n")...), nil
}
