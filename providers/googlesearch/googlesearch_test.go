package googlesearch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lyriclocate-go/providers"
)

const resultsWithLyrics = `<html><body>
<div class="rVusze">Song by Toto · 1982</div>
<div class="ujudUb">I hear the drums echoing tonight<br>But she hears only whispers of some quiet conversation<br>She's coming in, twelve-thirty flight<br>The moonlit wings reflect the stars that guide me towards salvation<br>I stopped an old man along the way</div>
</body></html>`

const resultsSidebarOnly = `<html><body>
<div class="PZPZlf">Africa<br>Song by Toto<br>Album: Toto IV<br>Released: 1982<br>Listen on Spotify</div>
</body></html>`

func newTestProvider(server *httptest.Server) *Provider {
	p := New()
	p.baseURL = server.URL
	p.httpClient = server.Client()
	return p
}

func TestFetchLyricsFromResultBox(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, resultsWithLyrics)
	}))
	defer server.Close()

	p := newTestProvider(server)
	lyrics, err := p.FetchLyrics(context.Background(), "Africa", "Toto", "original")
	if err != nil {
		t.Fatalf("FetchLyrics failed: %v", err)
	}
	if !strings.Contains(lyrics, "I hear the drums echoing tonight") {
		t.Errorf("Expected lyrics text, got %q", lyrics)
	}
}

func TestSidebarBlockRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, resultsSidebarOnly)
	}))
	defer server.Close()

	p := newTestProvider(server)
	_, err := p.FetchLyrics(context.Background(), "Africa", "Toto", "original")
	if !errors.Is(err, providers.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for sidebar-only results, got %v", err)
	}
}

func TestShortBlockRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div class="ujudUb">one<br>two<br>three</div></body></html>`)
	}))
	defer server.Close()

	p := newTestProvider(server)
	_, err := p.FetchLyrics(context.Background(), "Africa", "Toto", "original")
	if !errors.Is(err, providers.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for too-short block, got %v", err)
	}
}

func TestTitleOnlyQueryRequiresArtistInSubtitle(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		q := r.URL.Query().Get("q")
		if strings.Contains(q, "toto") {
			// Artist query finds nothing
			fmt.Fprint(w, `<html><body></body></html>`)
			return
		}
		// Title-only query returns a cover with the wrong artist
		fmt.Fprint(w, `<html><body>
<div class="rVusze">Song by Weezer · 2018</div>
<div class="ujudUb">line one<br>line two<br>line three<br>line four<br>line five<br>line six</div>
</body></html>`)
	}))
	defer server.Close()

	p := newTestProvider(server)
	_, err := p.FetchLyrics(context.Background(), "Africa", "Toto", "original")
	if !errors.Is(err, providers.ErrNotFound) {
		t.Errorf("Expected ErrNotFound when subtitle artist does not match, got %v", err)
	}
	if requests != 2 {
		t.Errorf("Expected both queries attempted, got %d requests", requests)
	}
}

func TestUpstreamErrorWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := newTestProvider(server)
	_, err := p.FetchLyrics(context.Background(), "Africa", "Toto", "original")

	var perr *providers.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected ProviderError, got %v", err)
	}
	if perr.Provider != "google-search" {
		t.Errorf("Expected provider name google-search, got %q", perr.Provider)
	}
}
