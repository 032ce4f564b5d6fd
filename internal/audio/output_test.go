package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileOutput_WritesNumberedFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	out, err := NewFileOutput(dir)
	if err != nil {
		t.Fatalf("NewFileOutput failed: %v", err)
	}

	dev, err := out.Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	buf := &Buffer{Data: pcm(240), SampleRate: SampleRate, Channels: Channels}
	for i := 0; i < 2; i++ {
		if err := dev.Play(context.Background(), buf); err != nil {
			t.Fatalf("Play failed: %v", err)
		}
	}
	if err := dev.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	for _, name := range []string{"segment-001.wav", "segment-002.wav"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}

	if err := dev.Play(context.Background(), buf); !errors.Is(err, ErrClosed) {
		t.Errorf("Play after Close = %v, want ErrClosed", err)
	}
}

func TestMockOutput_StopEndsPlayback(t *testing.T) {
	out := &MockOutput{Hold: make(chan struct{})}
	dev, err := out.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close() //nolint:errcheck

	started := make(chan struct{})
	out.OnPlay = func(*Buffer) { close(started) }

	done := make(chan error, 1)
	go func() {
		done <- dev.Play(context.Background(), &Buffer{Data: pcm(10), SampleRate: SampleRate, Channels: 1})
	}()

	<-started
	if err := dev.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	// idempotent
	if err := dev.Stop(); err != nil {
		t.Fatalf("second Stop failed: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Play returned %v after Stop", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Play did not return after Stop")
	}
	if n := len(out.Played()); n != 0 {
		t.Errorf("stopped buffer counted as played (%d)", n)
	}
}

func TestMockOutput_CancelledContextDoesNotStart(t *testing.T) {
	out := &MockOutput{}
	dev, _ := out.Open()
	defer dev.Close() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := dev.Play(ctx, &Buffer{Data: pcm(10), SampleRate: SampleRate, Channels: 1}); !errors.Is(err, context.Canceled) {
		t.Errorf("Play = %v, want context.Canceled", err)
	}
	if n := len(out.Started()); n != 0 {
		t.Errorf("%d buffers started after cancellation", n)
	}
}
