package wiki

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// SectionNew asks EditSection to append a new section at the end of the page.
const SectionNew = -1

// EditStatus is the outcome of a section write.
type EditStatus int

const (
	// EditWritten means the wiki accepted the edit.
	EditWritten EditStatus = iota
	// EditSectionAbsent means the page has no section at that index.
	EditSectionAbsent
	// EditFailed means the edit was rejected or could not be sent.
	EditFailed
)

// String implements fmt.Stringer.
func (s EditStatus) String() string {
	switch s {
	case EditWritten:
		return "written"
	case EditSectionAbsent:
		return "section-absent"
	case EditFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// EditSection writes text into one section of title, creating the page if
// needed. Section 0 is the lead and is written as-is. Any other index
// replaces that section, heading included, with heading and text.
// SectionNew appends a section titled heading.
//
// A missing section is reported as EditSectionAbsent with a nil error so the
// caller can decide whether to append instead. EditFailed always comes
// with a non-nil error.
func (c *Client) EditSection(ctx context.Context, title string, section int, heading, text string) (EditStatus, error) {
	params := url.Values{
		"action": {"edit"},
		"title":  {title},
	}

	switch {
	case section == SectionNew:
		params.Set("section", "new")
		params.Set("sectiontitle", heading)
		params.Set("text", text)
	case section == 0:
		params.Set("section", "0")
		params.Set("text", text)
	case section > 0:
		params.Set("section", strconv.Itoa(section))
		params.Set("text", SectionText(heading, text))
	default:
		return EditFailed, fmt.Errorf("invalid section index %d", section)
	}

	err := c.edit(ctx, params)
	switch {
	case err == nil:
		c.logger.Debug("wrote section", "title", title, "section", params.Get("section"))
		return EditWritten, nil
	case HasCode(err, CodeNoSuchSection):
		return EditSectionAbsent, nil
	default:
		return EditFailed, err
	}
}

// Edit replaces the full text of title, creating the page if needed.
func (c *Client) Edit(ctx context.Context, title, text string) error {
	err := c.edit(ctx, url.Values{
		"action": {"edit"},
		"title":  {title},
		"text":   {text},
	})
	if err != nil {
		return err
	}
	c.logger.Debug("wrote page", "title", title)
	return nil
}

func (c *Client) edit(ctx context.Context, params url.Values) error {
	var resp struct {
		Edit struct {
			Result string `json:"result"`
		} `json:"edit"`
	}
	if err := c.write(ctx, params, &resp); err != nil {
		return err
	}
	if resp.Edit.Result != "Success" {
		return fmt.Errorf("%w: edit of %s returned %q", ErrUnexpectedResponse, params.Get("title"), resp.Edit.Result)
	}
	return nil
}

// SectionText renders a level-2 section with heading followed by text.
func SectionText(heading, text string) string {
	return "== " + heading + " ==\n" + text
}
