// Package genius resolves lyrics from genius.com, either through the
// official search API (when an access token is configured) or by locating
// a song page through a web search and scraping it.
package genius

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"

	"lyriclocate-go/logcolors"
	"lyriclocate-go/providers"
)

const (
	defaultAPIBaseURL    = "https://api.genius.com"
	defaultSearchBaseURL = "https://www.google.com/search"

	defaultTimeout = 10 * time.Second
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/116.0.5845.140 Safari/537.36"
)

// Client holds the shared HTTP plumbing for both Genius adapters.
type Client struct {
	apiBaseURL    string
	searchBaseURL string
	token         string
	httpClient    *http.Client
}

// NewClient creates a client. An empty token disables the API adapter but
// the scrape adapter works without one.
func NewClient(token string) *Client {
	return &Client{
		apiBaseURL:    defaultAPIBaseURL,
		searchBaseURL: defaultSearchBaseURL,
		token:         token,
		httpClient:    &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) get(ctx context.Context, rawURL string, bearer bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if bearer && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.httpClient.Do(req)
}

// scrapeLyricsPage fetches a Genius song page and extracts the lyrics text.
func (c *Client) scrapeLyricsPage(ctx context.Context, pageURL string) (string, error) {
	log.Debugf("%s Scraping lyrics page: %s", logcolors.LogSearch, pageURL)

	resp, err := c.get(ctx, pageURL, false)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lyrics page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse lyrics page: %w", err)
	}

	containers := doc.Find(`div[data-lyrics-container="true"]`)
	if containers.Length() == 0 {
		if strings.Contains(doc.Text(), "This song is an instrumental") {
			return "This song is an instrumental", nil
		}
		return "", providers.ErrNotFound
	}

	// Line breaks inside the containers carry the verse structure.
	containers.Find("br").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml("\n")
	})

	var parts []string
	containers.Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})

	lyrics := reformatLyrics(strings.Join(parts, "\n"))
	if lyrics == "" {
		return "", providers.ErrNotFound
	}
	return lyrics, nil
}

// Page chrome that sometimes leaks into the scraped text; everything from
// the first occurrence onward is dropped.
var unwantedPhrases = []string{
	"Something went wrong.",
	"Please try again.",
	"Translate to English",
}

var (
	sectionHeaderRe  = regexp.MustCompile(`\n?\s*\[([^\]\n]+)\]\s*\n?`)
	excessNewlinesRe = regexp.MustCompile(`\n{3,}`)
)

func reformatLyrics(lyrics string) string {
	for _, phrase := range unwantedPhrases {
		if idx := strings.Index(lyrics, phrase); idx >= 0 {
			lyrics = lyrics[:idx]
			break
		}
	}

	lyrics = sectionHeaderRe.ReplaceAllString(lyrics, "\n\n[$1]\n")
	lyrics = excessNewlinesRe.ReplaceAllString(lyrics, "\n\n")
	return strings.TrimSpace(lyrics)
}
