package tts

import (
	"context"

	"github.com/dgnsrekt/envoy/internal/audio"
)

// Synthesizer turns one segment of text into an encoded speech payload.
// Failures are returned immediately; the Controller never retries.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// SynthesizerFunc adapts a function to the Synthesizer interface.
type SynthesizerFunc func(ctx context.Context, text string) ([]byte, error)

// Synthesize calls f(ctx, text).
func (f SynthesizerFunc) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return f(ctx, text)
}

// DecodeFunc turns a payload into a playable buffer at the given format.
type DecodeFunc func(payload []byte, sampleRate, channels int) (*audio.Buffer, error)
