// Package cache implements the persistent store behind the resolution engine:
// a BoltDB file with two buckets (lyrics records keyed by normalized query,
// Spotify track metadata keyed by track ID) fronted by an in-memory map.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"lyriclocate-go/utils"

	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"

	"lyriclocate-go/logcolors"
)

const (
	lyricsBucket  = "lyrics"
	spotifyBucket = "spotify"
)

// ErrUnavailable reports a storage I/O failure. Callers must treat it as
// "cache cannot answer", never as "not found": the engine degrades to
// querying providers directly instead of returning a false negative.
var ErrUnavailable = errors.New("cache unavailable")

// LyricsRecord is one cached resolution for a (title, artist, language) key.
// An empty Lyrics field is the not-found marker: the key was resolved and no
// provider had lyrics, which is distinct from the key being absent entirely.
type LyricsRecord struct {
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Language  string `json:"language"`
	Lyrics    string `json:"lyrics"`
	Source    string `json:"source,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// NotFoundMarker reports whether the record marks a confirmed miss.
func (r *LyricsRecord) NotFoundMarker() bool {
	return r.Lyrics == ""
}

// SpotifyRecord caches the resolved metadata for one Spotify track ID.
// URL variants encoding the same ID share this record.
type SpotifyRecord struct {
	TrackID   string `json:"trackId"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Timestamp int64  `json:"timestamp"`
}

// Store wraps BoltDB with an in-memory cache for fast reads
type Store struct {
	db          *bolt.DB
	memCache    sync.Map
	dbPath      string
	backupPath  string
	compression bool
}

// Open opens (or creates) the store at dbPath.
func Open(dbPath, backupPath string, compression bool) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %v", err)
	}
	if err := os.MkdirAll(backupPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %v", err)
	}

	if info, err := os.Stat(dbPath); err == nil {
		log.Infof("%s Found existing database at %s (size: %d bytes)", logcolors.LogCacheInit, dbPath, info.Size())
	} else {
		log.Infof("%s Creating new database at %s", logcolors.LogCacheInit, dbPath)
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %v", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{lyricsBucket, spotifyBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache buckets: %v", err)
	}

	s := &Store{
		db:          db,
		dbPath:      dbPath,
		backupPath:  backupPath,
		compression: compression,
	}

	if err := s.loadToMemory(); err != nil {
		log.Warnf("%s Failed to preload cache to memory: %v", logcolors.LogCache, err)
	}

	log.Infof("%s Persistent cache initialized at %s (compression: %v)", logcolors.LogCache, dbPath, compression)
	return s, nil
}

// LyricsKey derives the unique cache key for a normalized query. Same scheme
// for every language variant of a song, so variants differ only in the
// language component.
func LyricsKey(normTitle, normArtist, language string) string {
	sum := md5.Sum([]byte(normTitle + "_" + normArtist + "_" + strings.ToLower(language)))
	return hex.EncodeToString(sum[:])
}

// GetLyrics looks up the record for a normalized (title, artist, language)
// key. Returns (nil, nil) when the key was never resolved.
func (s *Store) GetLyrics(normTitle, normArtist, language string) (*LyricsRecord, error) {
	data, err := s.get(lyricsBucket, LyricsKey(normTitle, normArtist, language))
	if err != nil || data == nil {
		return nil, err
	}

	var rec LyricsRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: corrupt lyrics record: %v", ErrUnavailable, err)
	}
	return &rec, nil
}

// PutLyrics upserts a record under the normalized key. The write is atomic
// (single Bolt transaction) and safe under concurrent writers; last writer
// wins, except that a not-found marker never replaces an existing non-empty
// record, while a non-empty record always replaces a stale marker.
func (s *Store) PutLyrics(normTitle, normArtist string, rec LyricsRecord) error {
	if rec.Timestamp == 0 {
		rec.Timestamp = time.Now().Unix()
	}
	key := LyricsKey(normTitle, normArtist, rec.Language)

	value, err := s.encode(&rec)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	wrote := false
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(lyricsBucket))
		if rec.NotFoundMarker() {
			if existing := b.Get([]byte(key)); existing != nil {
				prev, decErr := s.decodeLyrics(existing)
				if decErr == nil && !prev.NotFoundMarker() {
					// Never downgrade real lyrics to a marker
					return nil
				}
			}
		}
		wrote = true
		return b.Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// The memory front must mirror what the transaction decided: a
	// skipped marker write must not shadow the real record in memory.
	if wrote {
		s.memCache.Store(lyricsBucket+"/"+key, value)
	}
	return nil
}

// PutNotFound records that every provider was exhausted for this key, so
// repeat queries can short-circuit without network calls.
func (s *Store) PutNotFound(normTitle, normArtist, language, displayTitle, displayArtist string) error {
	return s.PutLyrics(normTitle, normArtist, LyricsRecord{
		Title:    displayTitle,
		Artist:   displayArtist,
		Language: language,
	})
}

// GetSpotify looks up cached track metadata. Returns (nil, nil) when absent.
func (s *Store) GetSpotify(trackID string) (*SpotifyRecord, error) {
	data, err := s.get(spotifyBucket, trackID)
	if err != nil || data == nil {
		return nil, err
	}

	var rec SpotifyRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: corrupt spotify record: %v", ErrUnavailable, err)
	}
	return &rec, nil
}

// PutSpotify upserts track metadata keyed by track ID.
func (s *Store) PutSpotify(rec SpotifyRecord) error {
	if rec.Timestamp == 0 {
		rec.Timestamp = time.Now().Unix()
	}

	value, err := s.encode(&rec)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(spotifyBucket)).Put([]byte(rec.TrackID), value)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	s.memCache.Store(spotifyBucket+"/"+rec.TrackID, value)
	return nil
}

// get returns the raw (decoded) value for a key, memory first, then disk.
func (s *Store) get(bucket, key string) ([]byte, error) {
	memKey := bucket + "/" + key
	if v, ok := s.memCache.Load(memKey); ok {
		return s.decode(v.([]byte))
	}

	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(bucket)).Get([]byte(key)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if raw == nil {
		return nil, nil
	}

	s.memCache.Store(memKey, raw)
	return s.decode(raw)
}

// encode marshals a record and compresses it when compression is enabled.
func (s *Store) encode(rec interface{}) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	if s.compression {
		compressed, err := utils.CompressString(string(data))
		if err != nil {
			return nil, err
		}
		return []byte(compressed), nil
	}
	return data, nil
}

// decode reverses encode.
func (s *Store) decode(value []byte) ([]byte, error) {
	if !s.compression {
		return value, nil
	}
	plain, err := utils.DecompressString(string(value))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return []byte(plain), nil
}

func (s *Store) decodeLyrics(value []byte) (*LyricsRecord, error) {
	plain, err := s.decode(value)
	if err != nil {
		return nil, err
	}
	var rec LyricsRecord
	if err := json.Unmarshal(plain, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// loadToMemory loads all entries from disk to the in-memory cache.
func (s *Store) loadToMemory() error {
	count := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		for _, bucket := range []string{lyricsBucket, spotifyBucket} {
			b := tx.Bucket([]byte(bucket))
			if b == nil {
				continue
			}
			prefix := bucket + "/"
			if err := b.ForEach(func(k, v []byte) error {
				s.memCache.Store(prefix+string(k), append([]byte(nil), v...))
				count++
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Infof("%s Loaded %d entries from disk to memory", logcolors.LogCache, count)
	return nil
}

// Stats returns entry counts and approximate on-disk size per bucket.
func (s *Store) Stats() (lyricsKeys, spotifyKeys, sizeInKB int) {
	size := 0
	s.memCache.Range(func(k, v interface{}) bool {
		key := k.(string)
		switch {
		case strings.HasPrefix(key, lyricsBucket+"/"):
			lyricsKeys++
		case strings.HasPrefix(key, spotifyBucket+"/"):
			spotifyKeys++
		}
		size += len(key) + len(v.([]byte))
		return true
	})
	return lyricsKeys, spotifyKeys, size / 1024
}

// Backup writes a hot copy of the database into the backup directory and
// returns the backup file path.
func (s *Store) Backup() (string, error) {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	backupFilePath := filepath.Join(s.backupPath, fmt.Sprintf("lyrics_backup_%s.db", timestamp))

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.CopyFile(backupFilePath, 0600)
	})
	if err != nil {
		return "", fmt.Errorf("failed to copy database: %v", err)
	}

	log.Infof("%s Backup created: %s", logcolors.LogCacheBackup, backupFilePath)
	return backupFilePath, nil
}

// BackupInfo contains metadata about a backup file
type BackupInfo struct {
	FileName  string    `json:"fileName"`
	Size      int64     `json:"sizeBytes"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListBackups returns all backup files in the backup directory.
func (s *Store) ListBackups() ([]BackupInfo, error) {
	var backups []BackupInfo

	entries, err := os.ReadDir(s.backupPath)
	if err != nil {
		if os.IsNotExist(err) {
			return backups, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %v", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".db" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			log.Warnf("%s Failed to stat %s: %v", logcolors.LogCacheBackup, entry.Name(), err)
			continue
		}
		backups = append(backups, BackupInfo{
			FileName:  entry.Name(),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	return backups, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
