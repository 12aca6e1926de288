package translate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("Failed to parse form: %v", err)
		}
		if got := r.Form.Get("tl"); got != "en" {
			t.Errorf("Expected target language en, got %q", got)
		}
		if got := r.Form.Get("sl"); got != "auto" {
			t.Errorf("Expected source language auto, got %q", got)
		}
		fmt.Fprint(w, `[[["A passion for smoking\n","Страсть к курению\n",null,null],["burns in my chest","горит в моей груди",null,null]],null,"ru"]`)
	}))
	defer server.Close()

	g := NewGoogle()
	g.endpoint = server.URL
	g.httpClient = server.Client()

	got, err := g.Translate(context.Background(), "Страсть к курению\nгорит в моей груди", "en")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	want := "A passion for smoking\nburns in my chest"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestTranslateUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	g := NewGoogle()
	g.endpoint = server.URL
	g.httpClient = server.Client()

	if _, err := g.Translate(context.Background(), "text", "en"); err == nil {
		t.Error("Expected error on upstream failure")
	}
}

func TestJoinSegmentsMalformed(t *testing.T) {
	if _, err := joinSegments([]interface{}{}); err == nil {
		t.Error("Expected error on empty payload")
	}
	if _, err := joinSegments([]interface{}{"nope"}); err == nil {
		t.Error("Expected error on malformed payload")
	}
}
