package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

var conf = mustLoad()

type Config struct {
	Server struct {
		Port           string `envconfig:"PORT" default:"8080"`
		AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"*"`
	}

	Configuration struct {
		// Upstream credentials. All optional: a missing credential makes the
		// corresponding adapter unavailable, it never fails startup.
		GeniusAccessToken   string `envconfig:"GENIUS_CLIENT_ACCESS_TOKEN" default:""`
		SpotifyClientID     string `envconfig:"SPOTIFY_CLIENT_ID" default:""`
		SpotifyClientSecret string `envconfig:"SPOTIFY_CLIENT_SECRET" default:""`
		MusixmatchAPIKey    string `envconfig:"MUSIXMATCH_API_KEY" default:""`

		CacheDBPath      string `envconfig:"CACHE_DB_PATH" default:"cache/lyrics.db"`
		CacheBackupPath  string `envconfig:"CACHE_BACKUP_PATH" default:"cache/backups"`
		CacheAccessToken string `envconfig:"CACHE_ACCESS_TOKEN" default:""`

		RateLimitPerSecond  int `envconfig:"RATE_LIMIT_PER_SECOND" default:"2"`
		RateLimitBurstLimit int `envconfig:"RATE_LIMIT_BURST_LIMIT" default:"5"`

		// Bound on each adapter call so one slow upstream cannot stall the chain
		ProviderTimeoutInSeconds int `envconfig:"PROVIDER_TIMEOUT_IN_SECONDS" default:"8"`

		CircuitBreakerThreshold    int `envconfig:"CIRCUIT_BREAKER_THRESHOLD" default:"5"`
		CircuitBreakerCooldownSecs int `envconfig:"CIRCUIT_BREAKER_COOLDOWN_SECS" default:"300"`
	}

	FeatureFlags struct {
		CacheCompression   bool `envconfig:"FF_CACHE_COMPRESSION" default:"true"`
		WarmEnglishVariant bool `envconfig:"FF_WARM_ENGLISH_VARIANT" default:"true"`
	}
}

// load loads the configuration from the environment.
func load() (Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Warnf("Error loading env config: %v", err)
	}

	cfg := Config{}
	err = envconfig.Process("", &cfg)
	return cfg, err
}

func mustLoad() Config {
	c, err := load()
	if err != nil {
		log.WithError(err).Warnf("Unable to load configuration")
	}

	return c
}

func Get() Config {
	return conf
}
