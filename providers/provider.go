// Package providers defines the uniform capability every upstream lyrics
// source exposes to the resolution engine. Adapters are black boxes: they
// either return lyrics text, report ErrNotFound, or fail with a
// ProviderError; the engine never looks inside.
package providers

import (
	"context"
	"errors"
)

// ErrNotFound reports that a provider completed its lookup without locating
// lyrics. It is an outcome, not a failure: the engine advances to the next
// adapter and a provider's circuit breaker does not count it against it.
var ErrNotFound = errors.New("lyrics not found")

// Provider is a single upstream lyrics source.
type Provider interface {
	// Name returns the adapter's identifier (e.g. "genius-api", "musixmatch")
	Name() string

	// Available reports whether the adapter can be invoked at all. Adapters
	// decide this at construction time from their configuration (a missing
	// API token makes an adapter unavailable); the engine skips unavailable
	// adapters without calling them.
	Available() bool

	// FetchLyrics fetches lyrics for the given song. The language hint is
	// either "original" or a translation target ("en"); adapters that can
	// locate translated lyrics flavor their searches with it, others may
	// ignore it or report ErrNotFound for non-original requests.
	FetchLyrics(ctx context.Context, title, artist, language string) (string, error)
}

// ProviderError represents an error from a provider with additional context
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Provider + ": " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new ProviderError
func NewProviderError(provider, message string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Message:  message,
		Err:      err,
	}
}
