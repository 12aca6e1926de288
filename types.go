package main

import (
	"context"

	"lyriclocate-go/engine"
	"lyriclocate-go/spotify"
)

// LyricsResolver is the engine surface the handlers need.
type LyricsResolver interface {
	ResolveWithLanguage(ctx context.Context, title, artist, language string) (*engine.Result, error)
}

// TrackResolver maps Spotify track URLs to song metadata.
type TrackResolver interface {
	Resolve(ctx context.Context, rawURL string) (*spotify.Track, error)
}

// LyricsResponse is the payload for both lyrics endpoints
type LyricsResponse struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Language string `json:"language"`
	Lyrics   string `json:"lyrics"`
}

// ErrorResponse is the payload for all error statuses
type ErrorResponse struct {
	Error string `json:"error"`
}

// CacheDumpResponse is the response format for /cache endpoint
type CacheDumpResponse struct {
	LyricsKeys  int `json:"lyrics_keys"`
	SpotifyKeys int `json:"spotify_keys"`
	SizeInKB    int `json:"size_kb"`
}
