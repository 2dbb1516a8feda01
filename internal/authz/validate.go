package authz

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Headings printed before each list of violations.
const (
	MissingHeading   = "Dirs that exist in authz but not in filesystem:"
	DuplicateHeading = "Directory lines that appear twice:"
)

// Source supplies the diff lines the existence check inspects.
type Source interface {
	ChangedLines(ctx context.Context, file string) ([]string, error)
}

// Result holds the violations found by Validate.
type Result struct {
	// Missing lists added paths absent from the checkout, each with the
	// repository prefix in front.
	Missing []string

	// Duplicates lists every repeated section header, once per repeat.
	Duplicates []string
}

// OK reports whether no violation was found.
func (r Result) OK() bool {
	return len(r.Missing) == 0 && len(r.Duplicates) == 0
}

// Write prints each non-empty violation list under its heading.
func (r Result) Write(w io.Writer) error {
	if len(r.Missing) > 0 {
		if err := writeList(w, MissingHeading, r.Missing); err != nil {
			return err
		}
	}
	if len(r.Duplicates) > 0 {
		return writeList(w, DuplicateHeading, r.Duplicates)
	}
	return nil
}

func writeList(w io.Writer, heading string, items []string) error {
	if _, err := fmt.Fprintln(w, heading); err != nil {
		return err
	}
	for _, item := range items {
		if _, err := fmt.Fprintln(w, item); err != nil {
			return err
		}
	}
	return nil
}

// Validator runs both authz checks.
type Validator struct {
	source Source
	prefix string
	logger *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithPrefix sets the repository prefix of added paths. The default is
// "/trunk/".
func WithPrefix(prefix string) Option {
	return func(v *Validator) {
		v.prefix = prefix
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// NewValidator returns a Validator reading diffs from source.
func NewValidator(source Source, opts ...Option) *Validator {
	v := &Validator{
		source: source,
		prefix: "/trunk/",
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks the authz file against the checkout directory.
// Both checks always run. The error is non-nil only when a check could
// not be carried out.
func (v *Validator) Validate(ctx context.Context, file, checkout string) (Result, error) {
	var res Result
	if v.prefix == "" {
		return res, ErrEmptyPrefix
	}

	lines, err := v.source.ChangedLines(ctx, file)
	if err != nil {
		return res, fmt.Errorf("failed to read changes of %s: %w", file, err)
	}
	added := AddedPaths(lines, v.prefix)
	v.logger.Debug("collected added authz paths", "file", file, "count", len(added))
	res.Missing = MissingPaths(checkout, v.prefix, added)

	content, err := os.ReadFile(file) //nolint:gosec // User-provided authz path is intentional
	if err != nil {
		return res, fmt.Errorf("failed to read %s: %w", file, err)
	}
	res.Duplicates = DuplicateHeaders(string(content))

	v.logger.Debug("validated authz file",
		"file", file,
		"missing", len(res.Missing),
		"duplicates", len(res.Duplicates),
	)
	return res, nil
}

// AddedPaths returns the checkout-relative path of every line that adds
// a section header under prefix, e.g. "+[/trunk/a/b]" gives "a/b".
func AddedPaths(lines []string, prefix string) []string {
	marker := "+[" + prefix
	var paths []string
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if !strings.HasPrefix(line, marker) {
			continue
		}
		path := strings.TrimSuffix(line[len(marker):], "]")
		paths = append(paths, path)
	}
	return paths
}

// MissingPaths returns prefix+path for every path that is not a directory
// under checkout.
func MissingPaths(checkout, prefix string, paths []string) []string {
	var missing []string
	for _, path := range paths {
		info, err := os.Stat(filepath.Join(checkout, filepath.FromSlash(path)))
		if err != nil || !info.IsDir() {
			missing = append(missing, prefix+path)
		}
	}
	return missing
}

// DuplicateHeaders returns each section header line that repeats an
// earlier one. A header seen three times is returned twice.
func DuplicateHeaders(content string) []string {
	seen := make(map[string]bool)
	var dupes []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "[") {
			continue
		}
		if seen[line] {
			dupes = append(dupes, line)
		}
		seen[line] = true
	}
	return dupes
}
