package model

// SectionWrite records how one cell reached the wiki.
type SectionWrite string

const (
	// SectionReplaced means the section already existed and was overwritten.
	SectionReplaced SectionWrite = "replaced"

	// SectionAppended means the section was missing and was added at the
	// end of the page.
	SectionAppended SectionWrite = "appended"

	// SectionCombined means the cell was part of a single full-page edit.
	SectionCombined SectionWrite = "combined"
)

// SectionResult is one non-empty cell written to a page.
type SectionResult struct {
	// Index is the cell's column position, which is also the section
	// index the cell was addressed to.
	Index int `json:"index"`

	// Heading is the section heading taken from the header row.
	Heading string `json:"heading"`

	// Write tells whether the section was replaced, appended or combined.
	Write SectionWrite `json:"write"`
}

// PageResult describes the page created for one data row.
type PageResult struct {
	// Row is the 1-based data row number.
	Row int `json:"row"`

	// BaseTitle is the prefix-plus-row-number title the row was written to.
	BaseTitle string `json:"base_title"`

	// Title is where the page ended up: the descriptive title after a
	// successful move, otherwise BaseTitle.
	Title string `json:"title"`

	// Moved is true when the page was renamed to its descriptive title.
	Moved bool `json:"moved"`

	// Sections lists the cells written, in column order.
	Sections []SectionResult `json:"sections,omitempty"`

	// Category is the label taken from the row's last cell, if any.
	Category string `json:"category,omitempty"`
}

// NewPageResult creates a result for data row n written to baseTitle.
func NewPageResult(n int, baseTitle string) *PageResult {
	return &PageResult{
		Row:       n,
		BaseTitle: baseTitle,
		Title:     baseTitle,
	}
}

// AddSection records a written cell.
func (p *PageResult) AddSection(index int, heading string, write SectionWrite) {
	p.Sections = append(p.Sections, SectionResult{Index: index, Heading: heading, Write: write})
}

// Appended returns how many sections had to be appended.
func (p *PageResult) Appended() int {
	n := 0
	for _, s := range p.Sections {
		if s.Write == SectionAppended {
			n++
		}
	}
	return n
}
