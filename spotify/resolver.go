// Package spotify turns a Spotify track URL into the (title, artist) pair
// the lyrics engine works with. Metadata comes from the Web API when
// credentials are configured, falling back to scraping the public track
// page, and resolved tracks are cached by ID.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
	spotifyapi "github.com/zmb3/spotify"
	"golang.org/x/oauth2/clientcredentials"

	"lyriclocate-go/cache"
	"lyriclocate-go/logcolors"
	"lyriclocate-go/providers"
)

var (
	// ErrInvalidURL reports input that is not a Spotify track URL or URI.
	ErrInvalidURL = errors.New("invalid spotify track url")

	// ErrTrackNotFound reports a well-formed ID that no source knows.
	ErrTrackNotFound = errors.New("spotify track not found")
)

var (
	trackURLRe = regexp.MustCompile(`^https?://open\.spotify\.com/(?:intl-[a-z]{2}/)?track/([0-9A-Za-z]{22})(?:[?/].*)?$`)
	trackURIRe = regexp.MustCompile(`^spotify:track:([0-9A-Za-z]{22})$`)
)

// ParseTrackID extracts the 22-character track ID from a track URL or a
// spotify: URI. Locale segments and query parameters are ignored, so URL
// variants of the same track all map to one ID.
func ParseTrackID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if m := trackURLRe.FindStringSubmatch(raw); m != nil {
		return m[1], nil
	}
	if m := trackURIRe.FindStringSubmatch(raw); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidURL, raw)
}

// Track is the resolved metadata for one track.
type Track struct {
	ID     string
	Title  string
	Artist string
}

// metadataSource is one way of getting track metadata by ID.
type metadataSource interface {
	name() string
	trackInfo(ctx context.Context, id string) (*Track, error)
}

// Resolver resolves track URLs through cache, API, then page scrape.
type Resolver struct {
	store   *cache.Store
	sources []metadataSource
}

// NewResolver creates a resolver. Empty credentials disable the API
// source; the page scrape works without them.
func NewResolver(store *cache.Store, clientID, clientSecret string) *Resolver {
	var sources []metadataSource
	if clientID != "" && clientSecret != "" {
		sources = append(sources, newAPISource(clientID, clientSecret))
	} else {
		log.Warnf("%s API credentials missing, track pages will be scraped instead", logcolors.LogSpotify)
	}
	sources = append(sources, newScrapeSource())

	return &Resolver{store: store, sources: sources}
}

// Resolve maps a track URL or URI to its title and artist.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (*Track, error) {
	id, err := ParseTrackID(rawURL)
	if err != nil {
		return nil, err
	}

	if rec, err := r.store.GetSpotify(id); err != nil {
		log.Warnf("%s Lookup degraded, bypassing cache: %v", logcolors.LogCacheSpotify, err)
	} else if rec != nil {
		log.Debugf("%s Cache hit for track %s", logcolors.LogCacheSpotify, id)
		return &Track{ID: rec.TrackID, Title: rec.Title, Artist: rec.Artist}, nil
	}

	var lastErr error
	for _, src := range r.sources {
		track, err := src.trackInfo(ctx, id)
		if err == nil {
			if cacheErr := r.store.PutSpotify(cache.SpotifyRecord{
				TrackID: track.ID,
				Title:   track.Title,
				Artist:  track.Artist,
			}); cacheErr != nil {
				log.Warnf("%s Failed to cache track metadata: %v", logcolors.LogCacheSpotify, cacheErr)
			}
			log.Infof("%s Resolved track %s to %q by %q via %s", logcolors.LogSpotify, id, track.Title, track.Artist, src.name())
			return track, nil
		}
		if errors.Is(err, ErrTrackNotFound) {
			return nil, err
		}
		log.Warnf("%s %s failed for track %s: %v", logcolors.LogSpotify, src.name(), id, err)
		lastErr = err
	}

	return nil, providers.NewProviderError("spotify", "all metadata sources failed", lastErr)
}

// apiSource uses the Web API with client-credentials auth. The client is
// built lazily so a broken token endpoint only fails requests, not startup.
type apiSource struct {
	creds   *clientcredentials.Config
	once    sync.Once
	client  spotifyapi.Client
	initErr error
}

func newAPISource(clientID, clientSecret string) *apiSource {
	return &apiSource{
		creds: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     spotifyapi.TokenURL,
		},
	}
}

func (s *apiSource) name() string { return "spotify-api" }

func (s *apiSource) trackInfo(ctx context.Context, id string) (*Track, error) {
	s.once.Do(func() {
		// The credentials config caches and refreshes the token itself;
		// its lifetime is the process, not this request.
		token, err := s.creds.Token(context.Background())
		if err != nil {
			s.initErr = fmt.Errorf("token request failed: %w", err)
			return
		}
		s.client = spotifyapi.Authenticator{}.NewClient(token)
	})
	if s.initErr != nil {
		return nil, s.initErr
	}

	full, err := s.client.GetTrack(spotifyapi.ID(id))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "non existing id") ||
			strings.Contains(err.Error(), "404") {
			return nil, ErrTrackNotFound
		}
		return nil, err
	}

	artists := make([]string, 0, len(full.Artists))
	for _, a := range full.Artists {
		artists = append(artists, a.Name)
	}

	return &Track{
		ID:     id,
		Title:  full.Name,
		Artist: strings.Join(artists, ", "),
	}, nil
}

// scrapeSource reads the OpenGraph tags off the public track page.
type scrapeSource struct {
	baseURL    string
	httpClient *http.Client
}

func newScrapeSource() *scrapeSource {
	return &scrapeSource{
		baseURL:    "https://open.spotify.com",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *scrapeSource) name() string { return "spotify-scrape" }

func (s *scrapeSource) trackInfo(ctx context.Context, id string) (*Track, error) {
	pageURL := s.baseURL + "/track/" + id

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrTrackNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("track page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse track page: %w", err)
	}

	title, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
	desc, _ := doc.Find(`meta[property="og:description"]`).Attr("content")
	artist := artistFromDescription(desc)

	if title == "" || artist == "" {
		return nil, ErrTrackNotFound
	}

	return &Track{ID: id, Title: strings.TrimSpace(title), Artist: artist}, nil
}

// The og:description reads like "Artist · Song · 2019". Some locales use
// a separator-first form, so the artist is the first non-empty segment
// that is not the word "Song".
func artistFromDescription(desc string) string {
	for _, part := range strings.Split(desc, "·") {
		part = strings.TrimSpace(part)
		if part == "" || strings.EqualFold(part, "song") {
			continue
		}
		return part
	}
	return ""
}
