package match

import "testing"

func TestSong(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		artist   string
		cand     Candidate
		expected bool
	}{
		{
			name:     "exact match",
			title:    "Shape of You",
			artist:   "Ed Sheeran",
			cand:     Candidate{Title: "Shape of You", Artist: "Ed Sheeran"},
			expected: true,
		},
		{
			name:     "case insensitive",
			title:    "shape of you",
			artist:   "ED SHEERAN",
			cand:     Candidate{Title: "Shape of You", Artist: "Ed Sheeran"},
			expected: true,
		},
		{
			name:     "unrelated title rejected",
			title:    "Sleepless",
			artist:   "deadmau5",
			cand:     Candidate{Title: "Bohemian Rhapsody", Artist: "Queen"},
			expected: false,
		},
		{
			name:     "wrong artist rejected",
			title:    "Creep",
			artist:   "Radiohead",
			cand:     Candidate{Title: "Creep", Artist: "TLC"},
			expected: false,
		},
		{
			name:     "translation page accepted for any artist",
			title:    "Страсть к курению",
			artist:   "Buerak",
			cand:     Candidate{Title: "Buerak - Страсть к курению (English Translation)", Artist: "Genius English Translations"},
			expected: true,
		},
		{
			name:     "romanization page accepted",
			title:    "봄날",
			artist:   "BTS",
			cand:     Candidate{Title: "BTS - 봄날 (bomnal)", Artist: "Genius Romanizations"},
			expected: true,
		},
		{
			name:     "multi artist query matches one",
			title:    "One More Time",
			artist:   "Daft Punk; Romanthony",
			cand:     Candidate{Title: "One More Time", Artist: "Daft Punk"},
			expected: true,
		},
		{
			name:     "candidate with qualifier still matches",
			title:    "Africa",
			artist:   "Toto",
			cand:     Candidate{Title: "Africa (Single Version)", Artist: "Toto"},
			expected: true,
		},
		{
			name:     "empty query title rejected",
			title:    "",
			artist:   "Toto",
			cand:     Candidate{Title: "Africa", Artist: "Toto"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Song(tt.title, tt.artist, tt.cand); got != tt.expected {
				t.Errorf("Song(%q, %q, %+v) = %v, want %v", tt.title, tt.artist, tt.cand, got, tt.expected)
			}
		})
	}
}

func TestArtistIn(t *testing.T) {
	if !ArtistIn("Ed Sheeran", "Song by Ed Sheeran · 2017") {
		t.Error("Expected artist found in subtitle text")
	}
	if ArtistIn("deadmau5", "Song by Queen · 1975") {
		t.Error("Expected artist not found in unrelated text")
	}
	if !ArtistIn("Daft Punk, Romanthony", "one more time romanthony edit") {
		t.Error("Expected any listed artist to match")
	}
}
