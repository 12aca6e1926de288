// Package stats keeps process-lifetime counters exposed at /stats.
package stats

import (
	"sync"
	"sync/atomic"
	"time"
)

// Stats holds all server statistics with atomic counters
type Stats struct {
	StartTime time.Time

	// Request counters
	TotalRequests   atomic.Int64
	LyricsRequests  atomic.Int64
	SpotifyRequests atomic.Int64
	OtherRequests   atomic.Int64

	// Cache performance
	CacheHits         atomic.Int64
	CacheMisses       atomic.Int64
	NegativeCacheHits atomic.Int64
	CacheDegraded     atomic.Int64

	// Language handling
	Translations atomic.Int64

	// Rate limiting
	RateLimited atomic.Int64

	// Per-provider successful resolutions
	providerHits sync.Map // string -> *atomic.Int64
}

// Global stats instance
var global = &Stats{
	StartTime: time.Now(),
}

// Get returns the global stats instance
func Get() *Stats {
	return global
}

// RecordRequest records a request to a specific endpoint
func (s *Stats) RecordRequest(path string) {
	s.TotalRequests.Add(1)
	switch path {
	case "/api/get_lyrics":
		s.LyricsRequests.Add(1)
	case "/api/get_lyrics_from_spotify":
		s.SpotifyRequests.Add(1)
	default:
		s.OtherRequests.Add(1)
	}
}

func (s *Stats) RecordCacheHit()         { s.CacheHits.Add(1) }
func (s *Stats) RecordCacheMiss()        { s.CacheMisses.Add(1) }
func (s *Stats) RecordNegativeCacheHit() { s.NegativeCacheHits.Add(1) }
func (s *Stats) RecordCacheDegraded()    { s.CacheDegraded.Add(1) }
func (s *Stats) RecordTranslation()      { s.Translations.Add(1) }
func (s *Stats) RecordRateLimited()      { s.RateLimited.Add(1) }

// RecordProviderHit records a successful resolution by one provider.
func (s *Stats) RecordProviderHit(name string) {
	v, _ := s.providerHits.LoadOrStore(name, &atomic.Int64{})
	v.(*atomic.Int64).Add(1)
}

// Snapshot returns a JSON-friendly view of all counters.
func (s *Stats) Snapshot() map[string]interface{} {
	hits := s.CacheHits.Load()
	misses := s.CacheMisses.Load()
	hitRate := 0.0
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses) * 100
	}

	providers := map[string]int64{}
	s.providerHits.Range(func(k, v interface{}) bool {
		providers[k.(string)] = v.(*atomic.Int64).Load()
		return true
	})

	return map[string]interface{}{
		"uptime_seconds": int64(time.Since(s.StartTime).Seconds()),
		"requests": map[string]int64{
			"total":   s.TotalRequests.Load(),
			"lyrics":  s.LyricsRequests.Load(),
			"spotify": s.SpotifyRequests.Load(),
			"other":   s.OtherRequests.Load(),
		},
		"cache": map[string]interface{}{
			"hits":             hits,
			"misses":           misses,
			"negative_hits":    s.NegativeCacheHits.Load(),
			"degraded_lookups": s.CacheDegraded.Load(),
			"hit_rate_percent": hitRate,
		},
		"providers":    providers,
		"translations": s.Translations.Load(),
		"rate_limited": s.RateLimited.Load(),
	}
}
