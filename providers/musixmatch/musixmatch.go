// Package musixmatch adapts the Musixmatch matcher API to the provider
// chain. The free tier returns partial lyrics with a tracking disclaimer
// appended, which is stripped before the text is returned.
package musixmatch

import (
	"context"
	"net/http"
	"strings"
	"time"

	mxm "github.com/milindmadhukar/go-musixmatch"
	"github.com/milindmadhukar/go-musixmatch/params"
	log "github.com/sirupsen/logrus"

	"lyriclocate-go/logcolors"
	"lyriclocate-go/providers"
)

const defaultTimeout = 10 * time.Second

// Provider wraps the Musixmatch client.
type Provider struct {
	client *mxm.Client
}

// New creates the adapter. An empty API key leaves it unavailable.
func New(apiKey string) *Provider {
	p := &Provider{}
	if apiKey != "" {
		p.client = mxm.New(apiKey, &http.Client{Timeout: defaultTimeout})
	}
	return p
}

func (p *Provider) Name() string { return "musixmatch" }

func (p *Provider) Available() bool { return p.client != nil }

// FetchLyrics asks the matcher endpoint for the song. Musixmatch serves
// original-language lyrics only, so translation requests are declined up
// front and fall through to the next adapter.
func (p *Provider) FetchLyrics(ctx context.Context, title, artist, language string) (string, error) {
	if language == "en" {
		return "", providers.ErrNotFound
	}

	log.Debugf("%s Matching track: %s by %s", logcolors.ProviderPrefix(p.Name()), title, artist)

	lyrics, err := p.client.GetMatcherLyrics(ctx,
		params.QueryTrack(title),
		params.QueryArtist(artist),
	)
	if err != nil {
		if isNotFound(err) {
			return "", providers.ErrNotFound
		}
		return "", providers.NewProviderError(p.Name(), "matcher lookup failed", err)
	}

	body := stripDisclaimer(lyrics.Body)
	if body == "" {
		return "", providers.ErrNotFound
	}
	return body, nil
}

// The API reports a missing match as a 404 status inside the response
// envelope; the client surfaces it as an error string.
func isNotFound(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "404") || strings.Contains(strings.ToLower(msg), "not found")
}

func stripDisclaimer(body string) string {
	if idx := strings.Index(body, "*******"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}
