package config

import (
	"testing"

	"github.com/kelseyhightower/envconfig"
)

func TestDefaults(t *testing.T) {
	cfg := Config{}
	if err := envconfig.Process("", &cfg); err != nil {
		t.Fatalf("Failed to process config: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %q", cfg.Server.Port)
	}
	if cfg.Configuration.CacheDBPath != "cache/lyrics.db" {
		t.Errorf("Expected default cache path, got %q", cfg.Configuration.CacheDBPath)
	}
	if cfg.Configuration.ProviderTimeoutInSeconds != 8 {
		t.Errorf("Expected default provider timeout 8, got %d", cfg.Configuration.ProviderTimeoutInSeconds)
	}
	if cfg.Configuration.RateLimitPerSecond != 2 {
		t.Errorf("Expected default rate limit 2, got %d", cfg.Configuration.RateLimitPerSecond)
	}
	if !cfg.FeatureFlags.CacheCompression {
		t.Error("Expected cache compression enabled by default")
	}
}

func TestCredentialsOptional(t *testing.T) {
	// Startup must not depend on any upstream credential being present
	cfg := Config{}
	if err := envconfig.Process("", &cfg); err != nil {
		t.Fatalf("Failed to process config: %v", err)
	}

	if cfg.Configuration.GeniusAccessToken != "" {
		t.Skip("GENIUS_CLIENT_ACCESS_TOKEN set in environment")
	}
	if cfg.Configuration.SpotifyClientID != "" || cfg.Configuration.SpotifyClientSecret != "" {
		t.Skip("Spotify credentials set in environment")
	}
}
