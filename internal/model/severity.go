package model

// Severity represents how serious a Warning is.
type Severity int

const (
	// SeverityInfo is worth knowing but needs no action.
	SeverityInfo Severity = iota

	// SeverityWarning means the run finished but the wiki may not look
	// the way the input describes.
	SeverityWarning

	// SeverityError means part of the requested work was not done.
	SeverityError
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Warning kinds produced by csv2wiki.
const (
	WarnMoveFailed      = "move_failed"
	WarnTitleCollision  = "title_collision"
	WarnSectionAppended = "section_appended"
	WarnEmptyRow        = "empty_row"
	WarnPageMissing     = "page_missing"
	WarnDeleteFailed    = "delete_failed"
	WarnInputResynced   = "input_resynced"
)

// WarningInfo holds the severity and advice for a warning kind.
type WarningInfo struct {
	Severity       Severity
	Impact         string
	Recommendation string
}

var warningInfoMapping = map[string]WarningInfo{
	WarnMoveFailed: {
		Severity:       SeverityWarning,
		Impact:         "The page kept its numbered title and is listed under it in the table of contents.",
		Recommendation: "Check the wiki for the reported reason and rename the page by hand if needed.",
	},
	WarnTitleCollision: {
		Severity:       SeverityWarning,
		Impact:         "A page with the descriptive title already exists, so the row stayed under its numbered title.",
		Recommendation: "Delete or rename the existing page, or make the first column unique.",
	},
	WarnSectionAppended: {
		Severity:       SeverityInfo,
		Impact:         "A section did not exist yet and was added at the end of the page.",
		Recommendation: "Re-running with empty cells in earlier columns can shift section numbers.",
	},
	WarnEmptyRow: {
		Severity:       SeverityInfo,
		Impact:         "Every cell in the row was empty, so its page has no content.",
		Recommendation: "Remove blank rows from the input.",
	},
	WarnPageMissing: {
		Severity:       SeverityInfo,
		Impact:         "The page was already gone from the wiki.",
		Recommendation: "",
	},
	WarnDeleteFailed: {
		Severity:       SeverityError,
		Impact:         "The page could not be deleted and is still on the wiki.",
		Recommendation: "Check that the account has the delete right.",
	},
	WarnInputResynced: {
		Severity:       SeverityWarning,
		Impact:         "The same input was already written to this wiki, so its sections were appended a second time.",
		Recommendation: "Run 'csv2wiki delete' before re-creating pages from an unchanged file.",
	},
}

// GetWarningInfo returns the metadata for kind. Unknown kinds are warnings
// with no advice.
func GetWarningInfo(kind string) WarningInfo {
	if info, ok := warningInfoMapping[kind]; ok {
		return info
	}
	return WarningInfo{Severity: SeverityWarning}
}

// Warning is a non-fatal problem met during a run.
type Warning struct {
	// Kind identifies the warning, one of the Warn constants.
	Kind string `json:"kind"`

	// Severity is derived from Kind.
	Severity Severity `json:"severity"`

	// SeverityText is the human-readable severity.
	SeverityText string `json:"severity_text"`

	// Title is the page the warning is about.
	Title string `json:"title,omitempty"`

	// Message carries the details, usually the wiki's error text.
	Message string `json:"message"`

	// Recommendation tells the user what to do about it.
	Recommendation string `json:"recommendation,omitempty"`
}

// NewWarning builds a Warning of kind, filling severity and advice from the
// kind's metadata.
func NewWarning(kind, title, message string) Warning {
	info := GetWarningInfo(kind)
	return Warning{
		Kind:           kind,
		Severity:       info.Severity,
		SeverityText:   info.Severity.String(),
		Title:          title,
		Message:        message,
		Recommendation: info.Recommendation,
	}
}
