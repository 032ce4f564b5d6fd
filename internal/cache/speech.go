package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/envoy/internal/tts"
)

// SpeechCache layers a MemoryCache over a DiskCache. Hits on disk are
// promoted to memory.
type SpeechCache struct {
	memory *MemoryCache
	disk   *DiskCache
}

// Open opens the speech cache described by cfg and drops entries older than
// cfg.MaxAge.
func Open(cfg Config) (*SpeechCache, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("cache directory not set")
	}
	disk, err := NewDiskCache(cfg.Dir, cfg.DiskCapacity, cfg.CompressionLevel)
	if err != nil {
		return nil, err
	}
	if cfg.MaxAge > 0 {
		if n := disk.RemoveOlderThan(time.Now().Add(-cfg.MaxAge)); n > 0 {
			log.Debug("Pruned expired speech", "entries", n)
		}
	}
	return &SpeechCache{memory: NewMemoryCache(cfg.MemoryCapacity), disk: disk}, nil
}

// Get looks in memory, then on disk.
func (sc *SpeechCache) Get(key string) ([]byte, bool) {
	if data, ok := sc.memory.Get(key); ok {
		return data, true
	}
	data, ok := sc.disk.Get(key)
	if ok {
		_ = sc.memory.Put(key, data)
	}
	return data, ok
}

// Put stores value in both levels. A value too large for memory still goes
// to disk.
func (sc *SpeechCache) Put(key string, value []byte) error {
	if err := sc.memory.Put(key, value); err != nil && err != ErrItemTooLarge {
		return err
	}
	return sc.disk.Put(key, value)
}

// Clear empties both levels.
func (sc *SpeechCache) Clear() error {
	sc.memory.Clear()
	return sc.disk.Clear()
}

// Stats reports the disk level, with hits from either level.
func (sc *SpeechCache) Stats() Stats {
	mem, disk := sc.memory.Stats(), sc.disk.Stats()
	disk.Hits += mem.Hits
	// every memory miss was retried on disk
	disk.HitRate = 0
	disk.finish()
	return disk
}

// Close flushes the disk index.
func (sc *SpeechCache) Close() error {
	return sc.disk.Close()
}

type cachedSynth struct {
	next  tts.Synthesizer
	store Store
	model string
	voice string
}

// Cached returns a Synthesizer that serves repeated text from store. Cache
// failures are logged and never fail a synthesis.
func Cached(next tts.Synthesizer, store Store, model, voice string) tts.Synthesizer {
	return &cachedSynth{next: next, store: store, model: model, voice: voice}
}

func (c *cachedSynth) Synthesize(ctx context.Context, text string) ([]byte, error) {
	key := Key(c.model, c.voice, text)
	if data, ok := c.store.Get(key); ok {
		log.Debug("Speech cache hit", "chars", len(text))
		return data, nil
	}

	data, err := c.next.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := c.store.Put(key, data); err != nil {
		log.Warn("Unable to cache speech", "err", err)
	}
	return data, nil
}
