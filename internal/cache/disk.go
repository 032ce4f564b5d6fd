package cache

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"
)

const indexFile = "cache.index"

// DiskCache stores zstd-compressed values as files with a gob index.
type DiskCache struct {
	dir      string
	capacity int64
	size     int64

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	index map[string]*diskEntry

	mu     sync.Mutex
	stats  Stats
	closed bool
}

// diskEntry is persisted in the index, so its fields are exported.
type diskEntry struct {
	File         string
	Size         int64 // compressed
	OriginalSize int64
	Created      time.Time
	LastAccess   time.Time
	Hits         int64
}

// NewDiskCache opens or creates a disk cache in dir. A missing or unreadable
// index starts the cache empty.
func NewDiskCache(dir string, capacity int64, level int) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if level <= 0 {
		level = 3
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	dc := &DiskCache{
		dir:      dir,
		capacity: capacity,
		encoder:  enc,
		decoder:  dec,
		index:    make(map[string]*diskEntry),
	}
	if err := dc.loadIndex(); err != nil {
		log.Warn("Ignoring unreadable speech cache index", "dir", dir, "err", err)
		dc.index = make(map[string]*diskEntry)
	}
	for key, e := range dc.index {
		if _, err := os.Stat(filepath.Join(dir, e.File)); err != nil {
			delete(dc.index, key)
			continue
		}
		dc.size += e.Size
	}
	return dc, nil
}

// Get reads and decompresses the value for key. Missing or corrupt files
// count as misses and are dropped from the index.
func (dc *DiskCache) Get(key string) ([]byte, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	e, ok := dc.index[key]
	if !ok || dc.closed {
		dc.stats.Misses++
		return nil, false
	}

	data, err := os.ReadFile(filepath.Join(dc.dir, e.File))
	if err == nil {
		data, err = dc.decoder.DecodeAll(data, nil)
	}
	if err != nil {
		log.Debug("Dropping unreadable cache entry", "file", e.File, "err", err)
		dc.removeLocked(key, e)
		dc.stats.Misses++
		return nil, false
	}

	e.LastAccess = time.Now()
	e.Hits++
	dc.stats.Hits++
	return data, true
}

// Put compresses and writes value, evicting least recently used entries
// when the cache would exceed its capacity.
func (dc *DiskCache) Put(key string, value []byte) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if dc.closed {
		return ErrClosed
	}

	data := dc.encoder.EncodeAll(value, nil)
	n := int64(len(data))
	if n > dc.capacity {
		return ErrItemTooLarge
	}
	if e, ok := dc.index[key]; ok {
		dc.removeLocked(key, e)
	}
	for dc.size+n > dc.capacity && len(dc.index) > 0 {
		dc.evictOldestLocked()
	}

	file := key[:min(len(key), 32)] + ".zst"
	if err := writeFileAtomic(filepath.Join(dc.dir, file), data); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	now := time.Now()
	dc.index[key] = &diskEntry{
		File:         file,
		Size:         n,
		OriginalSize: int64(len(value)),
		Created:      now,
		LastAccess:   now,
	}
	dc.size += n
	return dc.saveIndexLocked()
}

// RemoveOlderThan drops entries created before cutoff and returns how many
// were removed.
func (dc *DiskCache) RemoveOlderThan(cutoff time.Time) int {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	removed := 0
	for key, e := range dc.index {
		if e.Created.Before(cutoff) {
			dc.removeLocked(key, e)
			removed++
		}
	}
	if removed > 0 {
		if err := dc.saveIndexLocked(); err != nil {
			log.Warn("Unable to save cache index", "err", err)
		}
	}
	return removed
}

// Clear deletes every cached file.
func (dc *DiskCache) Clear() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	for key, e := range dc.index {
		dc.removeLocked(key, e)
	}
	dc.size = 0
	return dc.saveIndexLocked()
}

// Stats returns the cache counters.
func (dc *DiskCache) Stats() Stats {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	s := dc.stats
	s.Capacity = dc.capacity
	s.Size = dc.size
	s.Items = int64(len(dc.index))
	for _, e := range dc.index {
		if s.Oldest.IsZero() || e.Created.Before(s.Oldest) {
			s.Oldest = e.Created
		}
	}
	s.finish()
	return s
}

// lru returns the index keys ordered from least to most recently used.
func (dc *DiskCache) lru() []string {
	keys := make([]string, 0, len(dc.index))
	for k := range dc.index {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return dc.index[keys[i]].LastAccess.Before(dc.index[keys[j]].LastAccess)
	})
	return keys
}

func (dc *DiskCache) evictOldestLocked() {
	keys := dc.lru()
	if len(keys) == 0 {
		return
	}
	dc.removeLocked(keys[0], dc.index[keys[0]])
	dc.stats.Evictions++
}

func (dc *DiskCache) removeLocked(key string, e *diskEntry) {
	if err := os.Remove(filepath.Join(dc.dir, e.File)); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Debug("Unable to remove cache file", "file", e.File, "err", err)
	}
	delete(dc.index, key)
	dc.size -= e.Size
}

func (dc *DiskCache) loadIndex() error {
	f, err := os.Open(filepath.Join(dc.dir, indexFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	return gob.NewDecoder(f).Decode(&dc.index)
}

func (dc *DiskCache) saveIndexLocked() error {
	path := filepath.Join(dc.dir, indexFile)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	err = gob.NewEncoder(f).Encode(dc.index)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// Close saves the index and releases the codecs.
func (dc *DiskCache) Close() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if dc.closed {
		return nil
	}
	dc.closed = true
	err := dc.saveIndexLocked()
	dc.decoder.Close()
	if cerr := dc.encoder.Close(); err == nil {
		err = cerr
	}
	return err
}

// writeFileAtomic writes to a temp file and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
