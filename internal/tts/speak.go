package tts

import (
	"context"
	"strings"

	"github.com/dgnsrekt/envoy/internal/audio"
)

// Speak synthesizes text as a single utterance and plays it to the end
// without going through a Controller. Errors are returned as *Error values.
func Speak(ctx context.Context, synth Synthesizer, output audio.Output, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	payload, err := synth.Synthesize(ctx, text)
	if err != nil {
		return newError(ErrorCodeFetch, -1, err)
	}
	buf, err := audio.Decode(payload, audio.SampleRate, audio.Channels)
	if err != nil {
		return newError(ErrorCodeDecode, -1, err)
	}

	dev, err := output.Open()
	if err != nil {
		return newError(ErrorCodePlayback, -1, err)
	}
	defer dev.Close() //nolint:errcheck

	if err := dev.Play(ctx, buf); err != nil && ctx.Err() == nil {
		return newError(ErrorCodePlayback, -1, err)
	}
	return nil
}
