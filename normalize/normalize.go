// Package normalize canonicalizes raw title/artist strings into the stable
// form used for cache keys. All functions are pure and idempotent: equivalent
// queries that differ only in casing, whitespace, platform qualifiers or
// feature-artist notation normalize to the same pair.
package normalize

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)

	// Feature-artist clauses, bracketed or trailing:
	// "(feat. Dua Lipa)", "[ft. SZA]", "feat. Justin Bieber"
	bracketedFeatRe = regexp.MustCompile(`(?i)\s*[(\[]\s*(?:feat\.?|ft\.?|featuring)\s+[^)\]]*[)\]]`)
	trailingFeatRe  = regexp.MustCompile(`(?i)\s+(?:feat\.?|ft\.?|featuring)\s+.*$`)

	// Trailing qualifiers platforms append without changing song identity:
	// "(Remastered 2011)", "[Live]", "- Single Version". Matched by keyword so
	// identity-bearing parentheticals ("(Part II)") survive.
	qualifierWords = `(?:remaster(?:ed)?|live|acoustic|demo|mono|stereo|deluxe|explicit|single version|album version|radio edit|bonus track|extended(?: mix)?|re-?recorded)`

	bracketQualifierRe = regexp.MustCompile(`(?i)\s*[(\[][^()\[\]]*\b` + qualifierWords + `\b[^()\[\]]*[)\]]\s*$`)
	dashQualifierRe    = regexp.MustCompile(`(?i)\s+-\s+[^-]*\b` + qualifierWords + `\b[^-]*$`)
)

// Query normalizes a (title, artist) pair.
func Query(title, artist string) (string, string) {
	return Title(title), Artist(artist)
}

// Title canonicalizes a song title.
func Title(title string) string {
	t := fold(title)
	t = bracketedFeatRe.ReplaceAllString(t, " ")
	t = trailingFeatRe.ReplaceAllString(t, "")
	// Qualifiers can stack ("(Live) [Remastered]"), strip until fixed point
	for {
		stripped := bracketQualifierRe.ReplaceAllString(t, "")
		stripped = dashQualifierRe.ReplaceAllString(stripped, "")
		if stripped == t {
			break
		}
		t = stripped
	}
	return fold(t)
}

// Artist canonicalizes an artist string. Multi-artist separators are unified
// to ", " and feature clauses are dropped, so "A feat. B" and "A" key alike.
func Artist(artist string) string {
	a := fold(artist)
	a = bracketedFeatRe.ReplaceAllString(a, " ")
	a = trailingFeatRe.ReplaceAllString(a, "")

	parts := strings.FieldsFunc(a, func(r rune) bool {
		return r == ',' || r == ';'
	})
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return fold(strings.Join(cleaned, ", "))
}

// fold lower-cases, trims and collapses internal whitespace.
func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " ")))
}
