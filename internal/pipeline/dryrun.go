package pipeline

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/nao1215/csv2wiki/internal/wiki"
)

// DryRunWiki is a Wiki that prints the writes a run would make instead of
// sending them. It tracks which pages and sections the run has created so
// that section fallbacks and move collisions play out as they would on an
// empty wiki.
type DryRunWiki struct {
	out      io.Writer
	sections map[string]int
	actions  []string
}

// NewDryRunWiki creates a DryRunWiki printing to out.
func NewDryRunWiki(out io.Writer) *DryRunWiki {
	if out == nil {
		out = io.Discard
	}
	return &DryRunWiki{
		out:      out,
		sections: make(map[string]int),
	}
}

// EditSection implements Wiki.
func (d *DryRunWiki) EditSection(_ context.Context, title string, section int, heading, _ string) (wiki.EditStatus, error) {
	count, exists := d.sections[title]
	switch {
	case section == wiki.SectionNew:
		d.sections[title] = count + 1
		d.record("append section %q to %s", heading, title)
	case section == 0:
		d.sections[title] = count
		d.record("write lead of %s", title)
	case section > 0:
		if !exists || section > count {
			return wiki.EditSectionAbsent, nil
		}
		d.record("replace section %d (%s) of %s", section, heading, title)
	default:
		return wiki.EditFailed, fmt.Errorf("invalid section index %d", section)
	}
	return wiki.EditWritten, nil
}

// Edit implements Wiki.
func (d *DryRunWiki) Edit(_ context.Context, title, text string) error {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "==") {
			n++
		}
	}
	d.sections[title] = n
	d.record("write %s (%d bytes)", title, len(text))
	return nil
}

// Move implements Wiki.
func (d *DryRunWiki) Move(_ context.Context, from, to, _ string) error {
	count, ok := d.sections[from]
	if !ok {
		return &wiki.APIError{Code: wiki.CodeMissingTitle, Info: "The page you specified doesn't exist."}
	}
	if _, ok := d.sections[to]; ok {
		return &wiki.APIError{Code: wiki.CodeArticleExists, Info: "A page of that name already exists."}
	}
	d.sections[to] = count
	d.sections[from] = 0
	d.record("move %s to %s", from, to)
	return nil
}

// Actions returns the writes recorded so far.
func (d *DryRunWiki) Actions() []string {
	return slices.Clone(d.actions)
}

func (d *DryRunWiki) record(format string, args ...any) {
	action := fmt.Sprintf(format, args...)
	d.actions = append(d.actions, action)
	fmt.Fprintln(d.out, "[dry-run] "+action)
}
