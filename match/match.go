// Package match decides whether a search hit from an upstream source is the
// song the caller asked for. Upstream search is fuzzy and frequently returns
// covers, remixes and unrelated tracks as the top hit; every scrape adapter
// runs its candidates through here before fetching a lyrics page.
package match

import (
	"regexp"
	"strings"

	"github.com/sahilm/fuzzy"

	"lyriclocate-go/normalize"
)

// Candidate is a search hit to compare against the requested song.
type Candidate struct {
	Title  string
	Artist string
}

// Genius hosts community translation/romanization pages under these artist
// names; they are valid hits for any artist when a translated variant is
// wanted.
var translationArtists = map[string]bool{
	"genius english translations": true,
	"genius romanizations":        true,
}

var parentheticalRe = regexp.MustCompile(`\(([^)]*)\)`)

// Song reports whether the candidate plausibly is the requested song.
func Song(queryTitle, queryArtist string, c Candidate) bool {
	wantTitle := normalize.Title(queryTitle)
	candTitle := strings.ToLower(strings.TrimSpace(c.Title))
	candArtist := strings.ToLower(strings.TrimSpace(c.Artist))

	if wantTitle == "" {
		return false
	}

	// Compare against the full candidate title, the title with
	// parentheticals stripped, and each parenthetical on its own; Genius
	// translation pages carry the original title inside parentheses.
	variants := titleVariants(candTitle)
	if len(fuzzy.Find(wantTitle, variants)) == 0 {
		return false
	}

	if translationArtists[candArtist] {
		return true
	}

	return artistMatches(queryArtist, candArtist)
}

// ArtistIn reports whether any of the query's artists appears in free-form
// text, e.g. the subtitle block of a search results page.
func ArtistIn(queryArtist, text string) bool {
	text = strings.ToLower(text)
	for _, name := range splitArtists(queryArtist) {
		if strings.Contains(text, name) {
			return true
		}
	}
	return false
}

func artistMatches(queryArtist, candArtist string) bool {
	if candArtist == "" {
		return false
	}
	for _, name := range splitArtists(queryArtist) {
		if strings.Contains(candArtist, name) || strings.Contains(name, candArtist) {
			return true
		}
		if len(fuzzy.Find(name, []string{candArtist})) > 0 {
			return true
		}
	}
	return false
}

func splitArtists(artist string) []string {
	parts := strings.FieldsFunc(strings.ToLower(artist), func(r rune) bool {
		return r == ',' || r == ';' || r == '&'
	})
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, normalize.Artist(p))
		}
	}
	return names
}

func titleVariants(title string) []string {
	variants := []string{title}
	if stripped := strings.TrimSpace(parentheticalRe.ReplaceAllString(title, "")); stripped != "" && stripped != title {
		variants = append(variants, stripped)
	}
	for _, m := range parentheticalRe.FindAllStringSubmatch(title, -1) {
		if inner := strings.TrimSpace(m[1]); inner != "" {
			variants = append(variants, inner)
		}
	}
	return variants
}
