// Package translate turns lyrics into a target language when no upstream
// source carries a translated version.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"lyriclocate-go/logcolors"
)

const (
	defaultEndpoint = "https://translate.googleapis.com/translate_a/single"
	defaultTimeout  = 15 * time.Second
	userAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Google uses the unauthenticated web endpoint of Google Translate. It
// detects the source language automatically.
type Google struct {
	endpoint   string
	httpClient *http.Client
}

// NewGoogle creates the translator.
func NewGoogle() *Google {
	return &Google{
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

func (g *Google) Name() string { return "google-translate" }

// Translate returns the text translated into targetLanguage.
func (g *Google) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	log.Debugf("%s Translating %d characters to %s", logcolors.LogTranslate, len(text), targetLanguage)

	form := url.Values{}
	form.Set("client", "gtx")
	form.Set("sl", "auto")
	form.Set("tl", targetLanguage)
	form.Set("dt", "t")
	form.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translation endpoint returned status %d", resp.StatusCode)
	}

	// The response is a nested JSON array; element [0] holds segment
	// pairs of [translated, original, ...].
	var payload []interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to parse translation response: %w", err)
	}

	translated, err := joinSegments(payload)
	if err != nil {
		return "", err
	}
	return translated, nil
}

func joinSegments(payload []interface{}) (string, error) {
	if len(payload) == 0 {
		return "", fmt.Errorf("empty translation response")
	}
	segments, ok := payload[0].([]interface{})
	if !ok {
		return "", fmt.Errorf("unexpected translation response shape")
	}

	var b strings.Builder
	for _, seg := range segments {
		pair, ok := seg.([]interface{})
		if !ok || len(pair) == 0 {
			continue
		}
		if s, ok := pair[0].(string); ok {
			b.WriteString(s)
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", fmt.Errorf("translation produced no text")
	}
	return out, nil
}
