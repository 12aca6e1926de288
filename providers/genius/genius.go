package genius

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"

	"lyriclocate-go/logcolors"
	"lyriclocate-go/match"
	"lyriclocate-go/providers"
)

// APIProvider searches the official Genius API and scrapes the matched
// song page. Requires an access token.
type APIProvider struct {
	client *Client
}

// NewAPIProvider creates the API-backed adapter.
func NewAPIProvider(c *Client) *APIProvider {
	return &APIProvider{client: c}
}

func (p *APIProvider) Name() string { return "genius-api" }

func (p *APIProvider) Available() bool { return p.client.token != "" }

type searchResponse struct {
	Response struct {
		Hits []struct {
			Result struct {
				Title         string `json:"title"`
				URL           string `json:"url"`
				PrimaryArtist struct {
					Name string `json:"name"`
				} `json:"primary_artist"`
			} `json:"result"`
		} `json:"hits"`
	} `json:"response"`
}

// FetchLyrics searches the Genius API for the song and scrapes the first
// hit that matches. For language "en" the query asks for a translation
// page instead of the original.
func (p *APIProvider) FetchLyrics(ctx context.Context, title, artist, language string) (string, error) {
	query := title + " " + artist
	if language == "en" {
		query += " english translation"
	}

	searchURL := p.client.apiBaseURL + "/search?q=" + url.QueryEscape(query)
	log.Debugf("%s Searching Genius API: %s", logcolors.ProviderPrefix(p.Name()), query)

	resp, err := p.client.get(ctx, searchURL, true)
	if err != nil {
		return "", providers.NewProviderError(p.Name(), "search request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", providers.NewProviderError(p.Name(), "rate limit exceeded", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return "", providers.NewProviderError(p.Name(), fmt.Sprintf("search returned status %d", resp.StatusCode), nil)
	}

	var search searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return "", providers.NewProviderError(p.Name(), "failed to parse search response", err)
	}

	log.Debugf("%s Genius API returned %d hits", logcolors.ProviderPrefix(p.Name()), len(search.Response.Hits))

	for _, hit := range search.Response.Hits {
		cand := match.Candidate{Title: hit.Result.Title, Artist: hit.Result.PrimaryArtist.Name}
		if !match.Song(title, artist, cand) {
			continue
		}
		lyrics, err := p.client.scrapeLyricsPage(ctx, hit.Result.URL)
		if err == providers.ErrNotFound {
			continue
		}
		if err != nil {
			return "", providers.NewProviderError(p.Name(), "failed to scrape lyrics page", err)
		}
		return lyrics, nil
	}

	return "", providers.ErrNotFound
}

// ScrapeProvider locates a Genius song page through a web search when no
// API token is available.
type ScrapeProvider struct {
	client *Client
}

// NewScrapeProvider creates the search-backed adapter.
func NewScrapeProvider(c *Client) *ScrapeProvider {
	return &ScrapeProvider{client: c}
}

func (p *ScrapeProvider) Name() string { return "genius-scrape" }

func (p *ScrapeProvider) Available() bool { return true }

var geniusURLRe = regexp.MustCompile(`https?://genius\.com/[^\s&"']+`)

// FetchLyrics searches the web for a genius.com lyrics page and scrapes
// the first link found.
func (p *ScrapeProvider) FetchLyrics(ctx context.Context, title, artist, language string) (string, error) {
	query := fmt.Sprintf("%s %s genius.com lyrics", title, artist)
	if language == "en" {
		query += " english translation"
	}

	searchURL := p.client.searchBaseURL + "?hl=en&q=" + url.QueryEscape(query)
	log.Debugf("%s Searching for Genius page: %s", logcolors.ProviderPrefix(p.Name()), query)

	resp, err := p.client.get(ctx, searchURL, false)
	if err != nil {
		return "", providers.NewProviderError(p.Name(), "search request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", providers.NewProviderError(p.Name(), fmt.Sprintf("search returned status %d", resp.StatusCode), nil)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", providers.NewProviderError(p.Name(), "failed to parse search results", err)
	}

	pageURL := findGeniusLink(doc)
	if pageURL == "" {
		return "", providers.ErrNotFound
	}

	log.Debugf("%s Found Genius page: %s", logcolors.ProviderPrefix(p.Name()), pageURL)

	lyrics, err := p.client.scrapeLyricsPage(ctx, pageURL)
	if err == providers.ErrNotFound {
		return "", providers.ErrNotFound
	}
	if err != nil {
		return "", providers.NewProviderError(p.Name(), "failed to scrape lyrics page", err)
	}
	return lyrics, nil
}

// findGeniusLink pulls the first genius.com song URL out of a search
// results page. Result links usually wrap the target URL in a redirect
// parameter, so the URL is extracted from the raw href.
func findGeniusLink(doc *goquery.Document) string {
	pageURL := ""
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if !strings.Contains(href, "genius.com") {
			return true
		}
		if m := geniusURLRe.FindString(href); m != "" {
			pageURL = m
			return false
		}
		return true
	})
	return pageURL
}
