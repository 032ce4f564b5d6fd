package cache

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgnsrekt/envoy/internal/tts"
)

func TestKey(t *testing.T) {
	base := Key("m", "Kore", "hello")
	if base != Key("m", "Kore", "hello") {
		t.Fatal("Key is not stable")
	}
	for _, other := range []string{
		Key("m2", "Kore", "hello"),
		Key("m", "Puck", "hello"),
		Key("m", "Kore", "hello!"),
		Key("mK", "ore", "hello"),
	} {
		if other == base {
			t.Errorf("key collision for %s", other)
		}
	}
}

func TestMemoryCacheLRU(t *testing.T) {
	c := NewMemoryCache(10)

	if err := c.Put("a", []byte("aaaa")); err != nil {
		t.Fatal(err)
	}
	if err := c.Put("b", []byte("bbbb")); err != nil {
		t.Fatal(err)
	}
	c.Get("a") // b is now least recently used
	if err := c.Put("c", []byte("cccc")); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should still be cached")
	}
	if err := c.Put("huge", make([]byte, 11)); !errors.Is(err, ErrItemTooLarge) {
		t.Errorf("Put(huge) error = %v, want ErrItemTooLarge", err)
	}

	s := c.Stats()
	if s.Size != 8 || s.Items != 2 || s.Evictions != 1 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestDiskCachePersists(t *testing.T) {
	dir := t.TempDir()
	value := bytes.Repeat([]byte{0, 1, 2, 3}, 1024)

	dc, err := NewDiskCache(dir, 1<<20, 3)
	if err != nil {
		t.Fatal(err)
	}
	if err := dc.Put("k", value); err != nil {
		t.Fatal(err)
	}
	if err := dc.Close(); err != nil {
		t.Fatal(err)
	}
	if err := dc.Put("k2", value); !errors.Is(err, ErrClosed) {
		t.Errorf("Put after Close error = %v, want ErrClosed", err)
	}

	reopened, err := NewDiskCache(dir, 1<<20, 3)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close() //nolint:errcheck

	got, ok := reopened.Get("k")
	if !ok {
		t.Fatal("entry lost across reopen")
	}
	if !bytes.Equal(got, value) {
		t.Error("value changed across reopen")
	}
	if s := reopened.Stats(); s.Size >= int64(len(value)) {
		t.Errorf("stored %d bytes, expected compression below %d", s.Size, len(value))
	}
}

func TestDiskCacheDropsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir, 1<<20, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer dc.Close() //nolint:errcheck

	key := Key("m", "v", "text")
	if err := dc.Put(key, []byte("payload")); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(dir, dc.index[key].File)); err != nil {
		t.Fatal(err)
	}

	if _, ok := dc.Get(key); ok {
		t.Fatal("expected a miss for a deleted file")
	}
	if s := dc.Stats(); s.Items != 0 || s.Size != 0 {
		t.Errorf("Stats() = %+v, want empty", s)
	}
}

func TestDiskCacheEvictsLeastRecentlyUsed(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 1<<20, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer dc.Close() //nolint:errcheck

	for _, k := range []string{"a", "b"} {
		if err := dc.Put(k, []byte(k)); err != nil {
			t.Fatal(err)
		}
	}
	dc.index["a"].LastAccess = time.Now().Add(time.Hour)
	dc.capacity = dc.size

	if err := dc.Put("c", []byte("c")); err != nil {
		t.Fatal(err)
	}
	if _, ok := dc.index["b"]; ok {
		t.Error("b should have been evicted")
	}
	if _, ok := dc.index["a"]; !ok {
		t.Error("a should have been kept")
	}
}

func TestRemoveOlderThan(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 1<<20, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer dc.Close() //nolint:errcheck

	_ = dc.Put("old", []byte("x"))
	_ = dc.Put("new", []byte("y"))
	dc.index["old"].Created = time.Now().Add(-48 * time.Hour)

	if n := dc.RemoveOlderThan(time.Now().Add(-24 * time.Hour)); n != 1 {
		t.Fatalf("RemoveOlderThan() = %d, want 1", n)
	}
	if _, ok := dc.Get("new"); !ok {
		t.Error("new entry removed")
	}
}

type countingSynth struct {
	calls int
	err   error
}

func (s *countingSynth) Synthesize(_ context.Context, text string) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []byte("pcm:" + text), nil
}

func TestCached(t *testing.T) {
	sc, err := Open(DefaultConfig(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}
	defer sc.Close() //nolint:errcheck

	next := &countingSynth{}
	var synth tts.Synthesizer = Cached(next, sc, "model", "Kore")

	for i := 0; i < 3; i++ {
		got, err := synth.Synthesize(context.Background(), "Hello")
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "pcm:Hello" {
			t.Fatalf("Synthesize() = %q", got)
		}
	}
	if next.calls != 1 {
		t.Errorf("underlying synthesizer called %d times, want 1", next.calls)
	}

	other := Cached(next, sc, "model", "Puck")
	if _, err := other.Synthesize(context.Background(), "Hello"); err != nil {
		t.Fatal(err)
	}
	if next.calls != 2 {
		t.Error("a different voice must not share cached speech")
	}

	if s := sc.Stats(); s.Hits != 2 || s.Items != 2 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestCachedDoesNotStoreFailures(t *testing.T) {
	sc, err := Open(DefaultConfig(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}
	defer sc.Close() //nolint:errcheck

	boom := errors.New("boom")
	next := &countingSynth{err: boom}
	synth := Cached(next, sc, "m", "v")

	if _, err := synth.Synthesize(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}
	if s := sc.Stats(); s.Items != 0 {
		t.Errorf("failure was cached: %+v", s)
	}
}

type brokenStore struct{}

func (brokenStore) Get(string) ([]byte, bool)  { return nil, false }
func (brokenStore) Put(string, []byte) error { return errors.New("disk full") }

func TestCachedIgnoresStoreErrors(t *testing.T) {
	synth := Cached(&countingSynth{}, brokenStore{}, "m", "v")
	got, err := synth.Synthesize(context.Background(), "x")
	if err != nil || string(got) != "pcm:x" {
		t.Fatalf("Synthesize() = %q, %v", got, err)
	}
}
