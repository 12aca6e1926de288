package main

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"lyriclocate-go/cache"
	"lyriclocate-go/config"
	"lyriclocate-go/engine"
	"lyriclocate-go/logcolors"
	"lyriclocate-go/middleware"
	"lyriclocate-go/providers"
	"lyriclocate-go/providers/genius"
	"lyriclocate-go/providers/googlesearch"
	"lyriclocate-go/providers/musixmatch"
	"lyriclocate-go/spotify"
	"lyriclocate-go/translate"
)

var conf = config.Get()

var (
	store          *cache.Store
	lyricsResolver LyricsResolver
	trackResolver  TrackResolver
)

func init() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel) // Set to InfoLevel (change to DebugLevel for detailed logs)

	err := godotenv.Load()
	if err != nil {
		log.Warn("Error loading .env file, using environment variables")
	}
}

func main() {
	var err error
	store, err = cache.Open(conf.Configuration.CacheDBPath, conf.Configuration.CacheBackupPath, conf.FeatureFlags.CacheCompression)
	if err != nil {
		log.Fatalf("%s Failed to open cache: %v", logcolors.LogCacheInit, err)
	}
	defer store.Close()

	lyricsResolver = engine.New(store, buildProviderChain(), translate.NewGoogle(), engine.Options{
		ProviderTimeout:  time.Duration(conf.Configuration.ProviderTimeoutInSeconds) * time.Second,
		BreakerThreshold: conf.Configuration.CircuitBreakerThreshold,
		BreakerCooldown:  time.Duration(conf.Configuration.CircuitBreakerCooldownSecs) * time.Second,
	})
	trackResolver = spotify.NewResolver(store, conf.Configuration.SpotifyClientID, conf.Configuration.SpotifyClientSecret)

	router := mux.NewRouter()
	setupRoutes(router)

	c := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(conf.Server.AllowedOrigins, ","),
		AllowCredentials: true,
	})

	limiter := middleware.NewIPRateLimiter(rate.Limit(conf.Configuration.RateLimitPerSecond), conf.Configuration.RateLimitBurstLimit)

	// logging, then cors, then rate limiting on the outside
	loggedRouter := middleware.LoggingMiddleware(router)
	corsHandler := c.Handler(loggedRouter)
	handler := middleware.RateLimitMiddleware(limiter, corsHandler)

	log.Infof("%s Server listening on port %s", logcolors.LogServer, conf.Server.Port)
	log.Fatal(http.ListenAndServe(":"+conf.Server.Port, handler))
}

// buildProviderChain assembles the fallback order: Genius API, Genius via
// web search, Musixmatch, then lyrics boxes on search result pages.
// Adapters with missing credentials stay in the chain but report
// themselves unavailable.
func buildProviderChain() []providers.Provider {
	gc := genius.NewClient(conf.Configuration.GeniusAccessToken)

	if conf.Configuration.GeniusAccessToken == "" {
		log.Warnf("%s GENIUS_CLIENT_ACCESS_TOKEN not set, falling back to page scraping", logcolors.LogConfig)
	}
	if conf.Configuration.MusixmatchAPIKey == "" {
		log.Warnf("%s MUSIXMATCH_API_KEY not set, Musixmatch adapter disabled", logcolors.LogConfig)
	}

	return []providers.Provider{
		genius.NewAPIProvider(gc),
		genius.NewScrapeProvider(gc),
		musixmatch.New(conf.Configuration.MusixmatchAPIKey),
		googlesearch.New(),
	}
}
