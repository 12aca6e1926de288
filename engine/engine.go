// Package engine ties the pieces together: it normalizes the query, answers
// from the cache when it can, walks the provider chain when it cannot, and
// writes every definitive outcome back through the cache.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"lyriclocate-go/cache"
	"lyriclocate-go/circuitbreaker"
	"lyriclocate-go/logcolors"
	"lyriclocate-go/normalize"
	"lyriclocate-go/providers"
	"lyriclocate-go/stats"
)

// OriginalLanguage is the language value for lyrics as published.
const OriginalLanguage = "original"

// ErrUnsupportedLanguage reports a language other than the supported
// variants. Detected before any network traffic.
var ErrUnsupportedLanguage = errors.New("unsupported language")

const defaultProviderTimeout = 8 * time.Second

// Result is one resolved lyrics variant.
type Result struct {
	Title     string
	Artist    string
	Language  string
	Lyrics    string
	Source    string
	FromCache bool
}

// Translator produces a target-language rendition of lyrics text.
type Translator interface {
	Name() string
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// Options tunes per-provider behavior.
type Options struct {
	ProviderTimeout  time.Duration
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// Engine resolves lyrics through a cache-fronted provider chain.
type Engine struct {
	store      *cache.Store
	chain      []providers.Provider
	translator Translator
	timeout    time.Duration
	breakers   map[string]*circuitbreaker.CircuitBreaker
}

// New creates an engine over the given store and provider chain. Order of
// the chain is the fallback order. The translator may be nil, in which
// case English variants rely on upstream translation pages only.
func New(store *cache.Store, chain []providers.Provider, translator Translator, opts Options) *Engine {
	timeout := opts.ProviderTimeout
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}

	breakers := make(map[string]*circuitbreaker.CircuitBreaker, len(chain))
	for _, p := range chain {
		breakers[p.Name()] = circuitbreaker.New(circuitbreaker.Config{
			Name:      p.Name(),
			Threshold: opts.BreakerThreshold,
			Cooldown:  opts.BreakerCooldown,
		})
	}

	return &Engine{
		store:      store,
		chain:      chain,
		translator: translator,
		timeout:    timeout,
		breakers:   breakers,
	}
}

// Resolve returns the lyrics for a song in their original language.
// Returns providers.ErrNotFound when no provider has them.
func (e *Engine) Resolve(ctx context.Context, title, artist string) (*Result, error) {
	return e.resolve(ctx, title, artist, OriginalLanguage, true)
}

// ResolveWithLanguage returns the requested language variant. Supported
// values are "original" (or empty) and "en", compared case-insensitively;
// anything else fails with ErrUnsupportedLanguage before any lookup work
// happens.
func (e *Engine) ResolveWithLanguage(ctx context.Context, title, artist, language string) (*Result, error) {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "", OriginalLanguage:
		return e.Resolve(ctx, title, artist)
	case "en":
		return e.resolveEnglish(ctx, title, artist)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}
}

// resolve runs the cache-then-chain flow for one language variant.
// markNotFound controls whether provider exhaustion is recorded as a
// negative entry; speculative passes leave the cache untouched on a miss.
func (e *Engine) resolve(ctx context.Context, title, artist, language string, markNotFound bool) (*Result, error) {
	normTitle, normArtist := normalize.Query(title, artist)
	if normTitle == "" || normArtist == "" {
		return nil, providers.ErrNotFound
	}

	rec, err := e.store.GetLyrics(normTitle, normArtist, language)
	if err != nil {
		// Storage trouble is not a miss: skip the cache for this
		// request and resolve through providers as usual.
		log.Warnf("%s Lookup degraded, bypassing cache: %v", logcolors.LogCache, err)
		stats.Get().RecordCacheDegraded()
	} else if rec != nil {
		if rec.NotFoundMarker() {
			log.Debugf("%s Negative entry for %q by %q (%s)", logcolors.LogCacheNegative, title, artist, language)
			stats.Get().RecordNegativeCacheHit()
			return nil, providers.ErrNotFound
		}
		stats.Get().RecordCacheHit()
		return &Result{
			Title:     rec.Title,
			Artist:    rec.Artist,
			Language:  rec.Language,
			Lyrics:    rec.Lyrics,
			Source:    rec.Source,
			FromCache: true,
		}, nil
	} else {
		stats.Get().RecordCacheMiss()
	}

	lyrics, source, errCount, err := e.queryChain(ctx, title, artist, language)
	if err != nil {
		if errors.Is(err, providers.ErrNotFound) {
			if errCount > 0 {
				// At least one provider errored rather than answered,
				// so this miss may be transient. Do not make it sticky.
				log.Warnf("%s Chain exhausted for %q by %q with %d provider errors, miss not recorded",
					logcolors.LogChain, title, artist, errCount)
			} else if markNotFound {
				if cacheErr := e.store.PutNotFound(normTitle, normArtist, language, title, artist); cacheErr != nil {
					log.Warnf("%s Failed to record miss: %v", logcolors.LogCache, cacheErr)
				}
			}
		}
		return nil, err
	}

	res := &Result{
		Title:    title,
		Artist:   artist,
		Language: language,
		Lyrics:   lyrics,
		Source:   source,
	}
	e.writeThrough(normTitle, normArtist, res)
	return res, nil
}

// queryChain walks the providers in order until one returns lyrics.
// errCount reports how many providers failed with a real error, as
// opposed to a definitive not-found answer.
func (e *Engine) queryChain(ctx context.Context, title, artist, language string) (lyrics, source string, errCount int, err error) {
	for _, p := range e.chain {
		if ctx.Err() != nil {
			return "", "", errCount, ctx.Err()
		}
		if !p.Available() {
			log.Debugf("%s Skipping %s (not configured)", logcolors.LogChain, p.Name())
			continue
		}

		breaker := e.breakers[p.Name()]
		if !breaker.Allow() {
			log.Debugf("%s Skipping %s (circuit open)", logcolors.LogChain, p.Name())
			continue
		}

		pctx, cancel := context.WithTimeout(ctx, e.timeout)
		lyrics, ferr := p.FetchLyrics(pctx, title, artist, language)
		cancel()

		switch {
		case ferr == nil:
			breaker.RecordSuccess()
			stats.Get().RecordProviderHit(p.Name())
			log.Infof("%s Resolved %q by %q via %s", logcolors.LogChain, title, artist, p.Name())
			return lyrics, p.Name(), errCount, nil

		case errors.Is(ferr, providers.ErrNotFound):
			// A clean "I don't have it" is a healthy upstream
			breaker.RecordSuccess()
			log.Debugf("%s %s has no lyrics for %q by %q", logcolors.LogChain, p.Name(), title, artist)

		default:
			breaker.RecordFailure()
			errCount++
			log.Warnf("%s %s failed: %v", logcolors.LogChain, p.Name(), ferr)
		}
	}

	return "", "", errCount, providers.ErrNotFound
}

// writeThrough persists a resolved result, and doubles English-looking
// original lyrics under the "en" key so a later translation request is a
// straight cache hit.
func (e *Engine) writeThrough(normTitle, normArtist string, res *Result) {
	rec := cache.LyricsRecord{
		Title:    res.Title,
		Artist:   res.Artist,
		Language: res.Language,
		Lyrics:   res.Lyrics,
		Source:   res.Source,
	}
	if err := e.store.PutLyrics(normTitle, normArtist, rec); err != nil {
		log.Warnf("%s Failed to cache lyrics: %v", logcolors.LogCache, err)
	}

	if res.Language == OriginalLanguage && looksEnglish(res.Lyrics) {
		enRec := rec
		enRec.Language = "en"
		if err := e.store.PutLyrics(normTitle, normArtist, enRec); err != nil {
			log.Warnf("%s Failed to cache english variant: %v", logcolors.LogCache, err)
		}
	}
}
