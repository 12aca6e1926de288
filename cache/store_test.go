package cache

import (
	"os"
	"path/filepath"
	"testing"
)

// setupTestStore creates a temporary store for testing
func setupTestStore(t *testing.T, compression bool) *Store {
	t.Helper()

	tmpDir := t.TempDir()
	store, err := Open(filepath.Join(tmpDir, "test_lyrics.db"), filepath.Join(tmpDir, "backups"), compression)
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestLyricsRoundTrip(t *testing.T) {
	for _, compression := range []bool{false, true} {
		store := setupTestStore(t, compression)

		rec := LyricsRecord{
			Title:    "Shape of You",
			Artist:   "Ed Sheeran",
			Language: "original",
			Lyrics:   "The club isn't the best place to find a lover",
			Source:   "genius-api",
		}
		if err := store.PutLyrics("shape of you", "ed sheeran", rec); err != nil {
			t.Fatalf("PutLyrics failed: %v", err)
		}

		got, err := store.GetLyrics("shape of you", "ed sheeran", "original")
		if err != nil {
			t.Fatalf("GetLyrics failed: %v", err)
		}
		if got == nil {
			t.Fatal("Expected record, got absent")
		}
		if got.Lyrics != rec.Lyrics {
			t.Errorf("Expected lyrics %q, got %q", rec.Lyrics, got.Lyrics)
		}
		if got.Source != "genius-api" {
			t.Errorf("Expected source genius-api, got %q", got.Source)
		}
		if got.Timestamp == 0 {
			t.Error("Expected timestamp to be set on put")
		}
	}
}

func TestGetLyricsAbsent(t *testing.T) {
	store := setupTestStore(t, false)

	got, err := store.GetLyrics("never", "queried", "original")
	if err != nil {
		t.Fatalf("GetLyrics failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected absent (nil), got %+v", got)
	}
}

func TestNotFoundMarkerDistinctFromAbsent(t *testing.T) {
	store := setupTestStore(t, false)

	if err := store.PutNotFound("ghost song", "nobody", "original", "Ghost Song", "Nobody"); err != nil {
		t.Fatalf("PutNotFound failed: %v", err)
	}

	got, err := store.GetLyrics("ghost song", "nobody", "original")
	if err != nil {
		t.Fatalf("GetLyrics failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected a not-found marker record, got absent")
	}
	if !got.NotFoundMarker() {
		t.Error("Expected NotFoundMarker() to be true")
	}
}

func TestMarkerNeverOverwritesLyrics(t *testing.T) {
	store := setupTestStore(t, false)

	rec := LyricsRecord{Title: "Sleepless", Artist: "deadmau5", Language: "original", Lyrics: "...", Source: "musixmatch"}
	if err := store.PutLyrics("sleepless", "deadmau5", rec); err != nil {
		t.Fatalf("PutLyrics failed: %v", err)
	}
	if err := store.PutNotFound("sleepless", "deadmau5", "original", "Sleepless", "deadmau5"); err != nil {
		t.Fatalf("PutNotFound failed: %v", err)
	}

	// Read twice: the first answer comes from the memory front, which
	// must agree with what the transaction kept on disk
	for i := 0; i < 2; i++ {
		got, err := store.GetLyrics("sleepless", "deadmau5", "original")
		if err != nil {
			t.Fatalf("GetLyrics failed: %v", err)
		}
		if got == nil || got.NotFoundMarker() {
			t.Fatal("Marker overwrote a real lyrics record")
		}
		if got.Lyrics != "..." {
			t.Errorf("Expected lyrics preserved, got %q", got.Lyrics)
		}
	}
}

func TestLyricsHealNotFoundMarker(t *testing.T) {
	store := setupTestStore(t, false)

	if err := store.PutNotFound("sleepless", "deadmau5", "original", "Sleepless", "deadmau5"); err != nil {
		t.Fatalf("PutNotFound failed: %v", err)
	}

	rec := LyricsRecord{Title: "Sleepless", Artist: "deadmau5", Language: "original", Lyrics: "found later", Source: "google-search"}
	if err := store.PutLyrics("sleepless", "deadmau5", rec); err != nil {
		t.Fatalf("PutLyrics failed: %v", err)
	}

	got, err := store.GetLyrics("sleepless", "deadmau5", "original")
	if err != nil {
		t.Fatalf("GetLyrics failed: %v", err)
	}
	if got == nil || got.NotFoundMarker() {
		t.Fatal("Expected marker to be healed by later resolution")
	}
	if got.Lyrics != "found later" {
		t.Errorf("Expected %q, got %q", "found later", got.Lyrics)
	}
}

func TestLanguageVariantsAreSeparateRecords(t *testing.T) {
	store := setupTestStore(t, false)

	orig := LyricsRecord{Title: "Страсть к курению", Artist: "Buerak", Language: "original", Lyrics: "горький дым", Source: "genius-scrape"}
	en := LyricsRecord{Title: "Страсть к курению", Artist: "Buerak", Language: "en", Lyrics: "bitter smoke", Source: "google-translate"}

	if err := store.PutLyrics("страсть к курению", "buerak", orig); err != nil {
		t.Fatalf("PutLyrics original failed: %v", err)
	}
	if err := store.PutLyrics("страсть к курению", "buerak", en); err != nil {
		t.Fatalf("PutLyrics en failed: %v", err)
	}

	gotOrig, _ := store.GetLyrics("страсть к курению", "buerak", "original")
	gotEn, _ := store.GetLyrics("страсть к курению", "buerak", "en")
	if gotOrig == nil || gotEn == nil {
		t.Fatal("Expected both language variants cached")
	}
	if gotOrig.Lyrics == gotEn.Lyrics {
		t.Error("Expected distinct records per language")
	}
}

func TestSpotifyRoundTrip(t *testing.T) {
	store := setupTestStore(t, true)

	rec := SpotifyRecord{TrackID: "7qiZfU4dY1lWllzX7mPBI3", Title: "Shape of You", Artist: "Ed Sheeran"}
	if err := store.PutSpotify(rec); err != nil {
		t.Fatalf("PutSpotify failed: %v", err)
	}

	got, err := store.GetSpotify("7qiZfU4dY1lWllzX7mPBI3")
	if err != nil {
		t.Fatalf("GetSpotify failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected record, got absent")
	}
	if got.Title != "Shape of You" || got.Artist != "Ed Sheeran" {
		t.Errorf("Unexpected record: %+v", got)
	}

	absent, err := store.GetSpotify("0000000000000000000000")
	if err != nil || absent != nil {
		t.Errorf("Expected absent without error, got %+v, %v", absent, err)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "lyrics.db")
	backupPath := filepath.Join(tmpDir, "backups")

	store, err := Open(dbPath, backupPath, true)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	rec := LyricsRecord{Title: "Sleepless", Artist: "deadmau5", Language: "original", Lyrics: "...", Source: "genius-api"}
	if err := store.PutLyrics("sleepless", "deadmau5", rec); err != nil {
		t.Fatalf("PutLyrics failed: %v", err)
	}
	store.Close()

	reopened, err := Open(dbPath, backupPath, true)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetLyrics("sleepless", "deadmau5", "original")
	if err != nil {
		t.Fatalf("GetLyrics after reopen failed: %v", err)
	}
	if got == nil || got.Lyrics != "..." {
		t.Fatalf("Expected record to survive restart, got %+v", got)
	}
}

func TestLyricsKeyStable(t *testing.T) {
	a := LyricsKey("shape of you", "ed sheeran", "original")
	b := LyricsKey("shape of you", "ed sheeran", "Original")
	c := LyricsKey("shape of you", "ed sheeran", "en")

	if a != b {
		t.Error("Expected language casing not to change the key")
	}
	if a == c {
		t.Error("Expected different languages to produce different keys")
	}
	if len(a) != 32 {
		t.Errorf("Expected 32-char md5 hex key, got %q", a)
	}
}

func TestConcurrentWritersSameKey(t *testing.T) {
	store := setupTestStore(t, false)

	done := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			done <- store.PutLyrics("sleepless", "deadmau5", LyricsRecord{
				Title: "Sleepless", Artist: "deadmau5", Language: "original",
				Lyrics: "...", Source: "genius-api",
			})
		}()
	}
	for i := 0; i < 10; i++ {
		if err := <-done; err != nil {
			t.Fatalf("Concurrent PutLyrics failed: %v", err)
		}
	}

	got, err := store.GetLyrics("sleepless", "deadmau5", "original")
	if err != nil || got == nil {
		t.Fatalf("Expected record after concurrent writes, got %+v, %v", got, err)
	}
}

func TestBackup(t *testing.T) {
	store := setupTestStore(t, false)

	if err := store.PutLyrics("a", "b", LyricsRecord{Title: "A", Artist: "B", Language: "original", Lyrics: "x"}); err != nil {
		t.Fatalf("PutLyrics failed: %v", err)
	}

	path, err := store.Backup()
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Backup file missing: %v", err)
	}

	backups, err := store.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("Expected 1 backup, got %d", len(backups))
	}
}
