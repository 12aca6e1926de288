package engine

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"lyriclocate-go/cache"
	"lyriclocate-go/logcolors"
	"lyriclocate-go/normalize"
	"lyriclocate-go/providers"
	"lyriclocate-go/stats"
)

// resolveEnglish produces the "en" variant of a song. In order: the en
// cache key, the provider chain flavored for translation pages, and
// finally the original lyrics passed through the translator. Whatever is
// produced is cached under the en key so the work happens once.
func (e *Engine) resolveEnglish(ctx context.Context, title, artist string) (*Result, error) {
	normTitle, normArtist := normalize.Query(title, artist)
	if normTitle == "" || normArtist == "" {
		return nil, providers.ErrNotFound
	}

	// Translation pages are rarer than originals, so a chain miss here
	// is speculative and must not leave a sticky negative entry.
	res, err := e.resolve(ctx, title, artist, "en", false)
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, providers.ErrNotFound) {
		return nil, err
	}

	orig, err := e.Resolve(ctx, title, artist)
	if err != nil {
		if errors.Is(err, providers.ErrNotFound) {
			// The song itself is unresolvable; make the en variant a
			// fast miss too.
			if cacheErr := e.store.PutNotFound(normTitle, normArtist, "en", title, artist); cacheErr != nil {
				log.Warnf("%s Failed to record miss: %v", logcolors.LogCache, cacheErr)
			}
		}
		return nil, err
	}

	// writeThrough already cached English-looking originals under the en
	// key; serve that instead of translating English to English.
	if looksEnglish(orig.Lyrics) {
		return &Result{
			Title:    orig.Title,
			Artist:   orig.Artist,
			Language: "en",
			Lyrics:   orig.Lyrics,
			Source:   orig.Source,
		}, nil
	}

	if e.translator == nil {
		log.Debugf("%s No translator configured for %q by %q", logcolors.LogTranslate, title, artist)
		return nil, providers.ErrNotFound
	}

	translated, err := e.translator.Translate(ctx, orig.Lyrics, "en")
	if err != nil {
		log.Warnf("%s Translation failed for %q by %q: %v", logcolors.LogTranslate, title, artist, err)
		return nil, providers.ErrNotFound
	}
	stats.Get().RecordTranslation()

	enRes := &Result{
		Title:    title,
		Artist:   artist,
		Language: "en",
		Lyrics:   translated,
		Source:   e.translator.Name(),
	}
	if cacheErr := e.store.PutLyrics(normTitle, normArtist, cache.LyricsRecord{
		Title:    enRes.Title,
		Artist:   enRes.Artist,
		Language: enRes.Language,
		Lyrics:   enRes.Lyrics,
		Source:   enRes.Source,
	}); cacheErr != nil {
		log.Warnf("%s Failed to cache translation: %v", logcolors.LogCache, cacheErr)
	}

	return enRes, nil
}

// looksEnglish reports whether lyrics are predominantly ASCII, which is a
// good enough proxy for English text in practice.
func looksEnglish(lyrics string) bool {
	if lyrics == "" {
		return false
	}
	ascii := 0
	for _, b := range []byte(lyrics) {
		if b < 128 {
			ascii++
		}
	}
	return float64(ascii)/float64(len(lyrics)) > 0.9
}
