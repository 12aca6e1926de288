// Package googlesearch extracts lyrics directly from web search result
// pages. It is the last resort in the provider chain: no API, just the
// lyrics boxes the search engine renders for popular songs.
package googlesearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"

	"lyriclocate-go/logcolors"
	"lyriclocate-go/match"
	"lyriclocate-go/normalize"
	"lyriclocate-go/providers"
)

const (
	defaultBaseURL = "https://www.google.com/search"
	defaultTimeout = 10 * time.Second
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/116.0.5845.140 Safari/537.36"
)

// Lyrics boxes on result pages. The class names are stable enough to
// target but do change occasionally.
const lyricsSelectors = `div.ujudUb, div.PZPZlf, div[data-lyricid]`

// Text that marks a scraped block as something other than lyrics.
var excludeKeywords = []string{"Spotify", "YouTube", "Album"}

// Provider scrapes lyrics boxes from search result pages.
type Provider struct {
	baseURL    string
	httpClient *http.Client
}

// New creates the search scrape adapter.
func New() *Provider {
	return &Provider{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

func (p *Provider) Name() string { return "google-search" }

func (p *Provider) Available() bool { return true }

// FetchLyrics runs two queries: title plus first artist, then title alone.
// The title-only query verifies the artist against the result subtitles
// before trusting any lyrics box.
func (p *Provider) FetchLyrics(ctx context.Context, title, artist, language string) (string, error) {
	normTitle, normArtist := normalize.Query(title, artist)
	firstArtist := normArtist
	if idx := strings.Index(normArtist, ","); idx >= 0 {
		firstArtist = strings.TrimSpace(normArtist[:idx])
	}

	queries := []string{
		fmt.Sprintf("%s %s lyrics", normTitle, firstArtist),
		fmt.Sprintf("%s lyrics", normTitle),
	}
	if language == "en" {
		for i := range queries {
			queries[i] += " english translation"
		}
	}

	var lastErr error
	for i, query := range queries {
		log.Debugf("%s Searching: %s", logcolors.ProviderPrefix(p.Name()), query)

		doc, err := p.search(ctx, query)
		if err != nil {
			lastErr = err
			continue
		}

		// The title-only query can surface covers; require the artist
		// somewhere in the result subtitles before extracting.
		if i == 1 && artist != "" && !subtitleMentionsArtist(doc, artist) {
			log.Debugf("%s Artist verification failed for query %q", logcolors.ProviderPrefix(p.Name()), query)
			continue
		}

		if lyrics := extractLyrics(doc); lyrics != "" {
			return lyrics, nil
		}
	}

	if lastErr != nil {
		return "", providers.NewProviderError(p.Name(), "search failed", lastErr)
	}
	return "", providers.ErrNotFound
}

func (p *Provider) search(ctx context.Context, query string) (*goquery.Document, error) {
	searchURL := p.baseURL + "?hl=en&q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", "https://www.google.com/")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

func subtitleMentionsArtist(doc *goquery.Document, artist string) bool {
	found := false
	doc.Find("div.rVusze").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if match.ArtistIn(artist, s.Text()) {
			found = true
			return false
		}
		return true
	})
	return found
}

// extractLyrics returns the first lyrics box that looks like an actual
// song: more than four lines and none of the sidebar keywords.
func extractLyrics(doc *goquery.Document) string {
	lyrics := ""
	doc.Find(lyricsSelectors).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		s.Find("br").Each(func(_ int, br *goquery.Selection) {
			br.ReplaceWithHtml("\n")
		})
		text := strings.TrimSpace(s.Text())
		if len(strings.Split(text, "\n")) <= 4 {
			return true
		}
		for _, kw := range excludeKeywords {
			if strings.Contains(text, kw) {
				return true
			}
		}
		lyrics = text
		return false
	})
	return lyrics
}
