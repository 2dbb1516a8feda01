// Package wiki is a small client for the MediaWiki action API (api.php).
//
// It covers what csv2wiki needs: logging in with a username and password,
// writing a page or one of its sections, moving and deleting pages, and
// listing pages by title prefix. Every call takes a context and blocks
// until the wiki answers.
//
// Section writes report their outcome as an EditStatus so that callers can
// tell "the section does not exist yet" apart from a real failure without
// inspecting error strings:
//
//	status, err := c.EditSection(ctx, "Proposal_1", 2, "Budget", "1000")
//	if status == wiki.EditSectionAbsent {
//		status, err = c.EditSection(ctx, "Proposal_1", wiki.SectionNew, "Budget", "1000")
//	}
package wiki
