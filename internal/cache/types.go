package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

var (
	// ErrItemTooLarge is returned when an item exceeds the cache capacity.
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrClosed is returned by Put after Close.
	ErrClosed = errors.New("cache closed")
)

// Stats holds cache counters.
type Stats struct {
	Capacity  int64
	Size      int64 // bytes on disk or in memory
	Items     int64
	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64
	Oldest    time.Time
}

func (s *Stats) finish() {
	if s.Hits+s.Misses > 0 {
		s.HitRate = float64(s.Hits) / float64(s.Hits+s.Misses)
	}
}

// Store is a byte cache keyed by string.
type Store interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
}

// Key derives the cache key for text spoken by voice with model. Any change
// to one of the three yields a different key.
func Key(model, voice, text string) string {
	h := sha256.New()
	for _, part := range []string{model, voice, text} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Config sizes a SpeechCache.
type Config struct {
	Dir              string
	MemoryCapacity   int64
	DiskCapacity     int64
	CompressionLevel int           // zstd level, 1-22
	MaxAge           time.Duration // entries older than this are dropped on open; 0 keeps all
}

// DefaultConfig returns the cache settings used when the config file is
// silent.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:              dir,
		MemoryCapacity:   32 << 20,
		DiskCapacity:     256 << 20,
		CompressionLevel: 3,
		MaxAge:           30 * 24 * time.Hour,
	}
}
