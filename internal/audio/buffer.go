package audio

import (
	"errors"
	"fmt"
	"time"
)

// Speech format produced by the synthesis service.
const (
	// SampleRate is the fixed speech sample rate in Hz.
	SampleRate = 24000
	// Channels is the number of speech channels (mono).
	Channels = 1
	// BitDepth is the bit depth per sample.
	BitDepth = 16
	// BytesPerSample is the number of bytes per sample.
	BytesPerSample = BitDepth / 8
)

var (
	// ErrEmptyPayload is returned when there is nothing to decode.
	ErrEmptyPayload = errors.New("empty audio payload")

	// ErrFormat is returned when a payload does not match the expected format.
	ErrFormat = errors.New("unsupported audio format")
)

// Buffer is decoded, playable audio: signed 16-bit little-endian PCM.
type Buffer struct {
	Data       []byte
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames in the buffer.
func (b *Buffer) Frames() int {
	if b == nil || b.Channels == 0 {
		return 0
	}
	return len(b.Data) / (BytesPerSample * b.Channels)
}

// Duration returns the playback length of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate == 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

func (b *Buffer) validate() error {
	switch {
	case b == nil || len(b.Data) == 0:
		return ErrEmptyPayload
	case b.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrFormat, b.SampleRate)
	case b.Channels != 1 && b.Channels != 2:
		return fmt.Errorf("%w: %d channels", ErrFormat, b.Channels)
	case len(b.Data)%(BytesPerSample*b.Channels) != 0:
		return fmt.Errorf("%w: %d bytes is not aligned to %d-byte frames",
			ErrFormat, len(b.Data), BytesPerSample*b.Channels)
	}
	return nil
}
