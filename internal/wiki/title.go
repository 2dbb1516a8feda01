package wiki

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxTitleBytes is the longest title MediaWiki accepts.
const MaxTitleBytes = 255

// illegalTitleChars cannot appear in a MediaWiki title.
const illegalTitleChars = "#<>[]|{}"

// NormalizeTitle turns free text into a usable page title: NFC form,
// characters MediaWiki forbids replaced by spaces, whitespace runs
// collapsed, and the result cut to MaxTitleBytes on a rune boundary.
func NormalizeTitle(s string) string {
	s = norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) || strings.ContainsRune(illegalTitleChars, r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}

	out := b.String()
	if len(out) <= MaxTitleBytes {
		return out
	}
	cut := MaxTitleBytes
	for cut > 0 && !utf8.RuneStart(out[cut]) {
		cut--
	}
	return strings.TrimRight(out[:cut], " ")
}

// CategoryTitle returns the page title of the category named label.
func CategoryTitle(label string) string {
	return "Category:" + label
}

// CategoryLink returns the wikitext that files a page under label.
func CategoryLink(label string) string {
	return "[[" + CategoryTitle(label) + "]]"
}

// Link returns a wikitext link to title.
func Link(title string) string {
	return "[[" + title + "]]"
}
