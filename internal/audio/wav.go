package audio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-audio/wav"
)

// WriteWAV encodes buf as a 16-bit PCM WAV file.
func WriteWAV(w io.WriteSeeker, buf *Buffer) error {
	if err := buf.validate(); err != nil {
		return err
	}
	enc := wav.NewEncoder(w, buf.SampleRate, BitDepth, buf.Channels, 1)
	if err := enc.Write(intBuffer(buf)); err != nil {
		return fmt.Errorf("unable to write WAV samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("unable to finalize WAV file: %w", err)
	}
	return nil
}

// FileOutput "plays" each buffer by writing it to a numbered WAV file in Dir.
// Useful on machines without a sound card.
type FileOutput struct {
	Dir string

	mu   sync.Mutex
	next int
}

// NewFileOutput returns an output writing into dir, creating it if needed.
func NewFileOutput(dir string) (*FileOutput, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec
		return nil, fmt.Errorf("unable to create audio directory: %w", err)
	}
	return &FileOutput{Dir: dir}, nil
}

// Open returns a device writing into the output directory.
func (o *FileOutput) Open() (Device, error) {
	return &fileDevice{out: o}, nil
}

func (o *FileOutput) nextPath() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.next++
	return filepath.Join(o.Dir, fmt.Sprintf("segment-%03d.wav", o.next))
}

type fileDevice struct {
	out *FileOutput

	mu     sync.Mutex
	closed bool
}

func (d *fileDevice) Play(ctx context.Context, buf *Buffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Create(d.out.nextPath())
	if err != nil {
		return fmt.Errorf("unable to create audio file: %w", err)
	}
	if err := WriteWAV(f, buf); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (d *fileDevice) Stop() error { return nil }

func (d *fileDevice) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}
