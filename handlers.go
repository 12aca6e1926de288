package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"lyriclocate-go/engine"
	"lyriclocate-go/logcolors"
	"lyriclocate-go/providers"
	"lyriclocate-go/spotify"
	"lyriclocate-go/stats"
)

// getLyrics resolves lyrics for ?title=&artist=&language=
func getLyrics(w http.ResponseWriter, r *http.Request) {
	stats.Get().RecordRequest(r.URL.Path)

	title := r.URL.Query().Get("title")
	artist := r.URL.Query().Get("artist")
	language := r.URL.Query().Get("language")

	if title == "" || artist == "" {
		Respond(w, r).Error(http.StatusBadRequest, ErrorResponse{Error: "Both title and artist are required"})
		return
	}

	serveLyrics(w, r, title, artist, language)
}

// getLyricsFromSpotify resolves lyrics for ?spotify_url=&language= where
// spotify_url is a Spotify track link
func getLyricsFromSpotify(w http.ResponseWriter, r *http.Request) {
	stats.Get().RecordRequest(r.URL.Path)

	rawURL := r.URL.Query().Get("spotify_url")
	language := r.URL.Query().Get("language")

	if rawURL == "" {
		Respond(w, r).Error(http.StatusBadRequest, ErrorResponse{Error: "spotify_url is required"})
		return
	}

	track, err := trackResolver.Resolve(r.Context(), rawURL)
	if err != nil {
		switch {
		case errors.Is(err, spotify.ErrInvalidURL):
			Respond(w, r).Error(http.StatusBadRequest, ErrorResponse{Error: "Not a valid Spotify track URL"})
		case errors.Is(err, spotify.ErrTrackNotFound):
			Respond(w, r).Error(http.StatusNotFound, ErrorResponse{Error: "Spotify track not found"})
		default:
			log.Errorf("%s Metadata resolution failed: %v", logcolors.LogSpotify, err)
			Respond(w, r).Error(http.StatusBadGateway, ErrorResponse{Error: "Could not resolve track metadata"})
		}
		return
	}

	serveLyrics(w, r, track.Title, track.Artist, language)
}

// serveLyrics runs the engine and maps its outcome onto the HTTP surface.
func serveLyrics(w http.ResponseWriter, r *http.Request, title, artist, language string) {
	res, err := lyricsResolver.ResolveWithLanguage(r.Context(), title, artist, language)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrUnsupportedLanguage):
			Respond(w, r).Error(http.StatusBadRequest, ErrorResponse{Error: "Unsupported language, use original or en"})
		case errors.Is(err, providers.ErrNotFound):
			Respond(w, r).Error(http.StatusNotFound, ErrorResponse{Error: "Lyrics not found"})
		default:
			log.Errorf("%s Resolution failed for %q by %q: %v", logcolors.LogEngine, title, artist, err)
			Respond(w, r).Error(http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
		}
		return
	}

	cacheStatus := "MISS"
	if res.FromCache {
		cacheStatus = "HIT"
	}

	if conf.FeatureFlags.WarmEnglishVariant && res.Language == engine.OriginalLanguage {
		go warmEnglishVariant(title, artist)
	}

	Respond(w, r).SetCacheStatus(cacheStatus).SetProvider(res.Source).JSON(LyricsResponse{
		Title:    res.Title,
		Artist:   res.Artist,
		Language: res.Language,
		Lyrics:   res.Lyrics,
	})
}

// warmEnglishVariant pre-resolves the en variant after an original-language
// response, so a later translation request is a cache hit. Runs detached
// from the request that triggered it.
func warmEnglishVariant(title, artist string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := lyricsResolver.ResolveWithLanguage(ctx, title, artist, "en"); err != nil {
		if !errors.Is(err, providers.ErrNotFound) {
			log.Warnf("%s Warming en variant for %q by %q failed: %v", logcolors.LogLanguage, title, artist, err)
		}
		return
	}
	log.Debugf("%s Warmed en variant for %q by %q", logcolors.LogLanguage, title, artist)
}

// authorized gates the cache management endpoints behind the access token
func authorized(r *http.Request) bool {
	return r.Header.Get("Authorization") == conf.Configuration.CacheAccessToken
}

func getCacheDump(w http.ResponseWriter, r *http.Request) {
	stats.Get().RecordRequest(r.URL.Path)

	if !authorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	lyricsKeys, spotifyKeys, sizeKB := store.Stats()
	Respond(w, r).JSON(CacheDumpResponse{
		LyricsKeys:  lyricsKeys,
		SpotifyKeys: spotifyKeys,
		SizeInKB:    sizeKB,
	})
}

func backupCache(w http.ResponseWriter, r *http.Request) {
	stats.Get().RecordRequest(r.URL.Path)

	if !authorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	path, err := store.Backup()
	if err != nil {
		log.Errorf("%s Backup failed: %v", logcolors.LogCacheBackup, err)
		Respond(w, r).Error(http.StatusInternalServerError, ErrorResponse{Error: "Backup failed"})
		return
	}

	Respond(w, r).JSON(map[string]string{"backup": path})
}

func listBackups(w http.ResponseWriter, r *http.Request) {
	stats.Get().RecordRequest(r.URL.Path)

	if !authorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	backups, err := store.ListBackups()
	if err != nil {
		log.Errorf("%s Listing backups failed: %v", logcolors.LogCacheBackup, err)
		Respond(w, r).Error(http.StatusInternalServerError, ErrorResponse{Error: "Could not list backups"})
		return
	}

	Respond(w, r).JSON(map[string]interface{}{"backups": backups})
}

func getHealthStatus(w http.ResponseWriter, r *http.Request) {
	stats.Get().RecordRequest(r.URL.Path)

	lyricsKeys, spotifyKeys, _ := store.Stats()
	Respond(w, r).JSON(map[string]interface{}{
		"status":       "ok",
		"lyrics_keys":  lyricsKeys,
		"spotify_keys": spotifyKeys,
	})
}

func getStats(w http.ResponseWriter, r *http.Request) {
	stats.Get().RecordRequest(r.URL.Path)
	Respond(w, r).JSON(stats.Get().Snapshot())
}

func helpHandler(w http.ResponseWriter, r *http.Request) {
	stats.Get().RecordRequest(r.URL.Path)
	Respond(w, r).JSON(map[string]interface{}{
		"help": "Use /api/get_lyrics?title=Shape%20of%20You&artist=Ed%20Sheeran to fetch lyrics, " +
			"or /api/get_lyrics_from_spotify?spotify_url=https://open.spotify.com/track/... to resolve from a Spotify link. " +
			"Add language=en for an English variant.",
	})
}
