package tts

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/dgnsrekt/envoy/internal/audio"
)

func TestSpeak(t *testing.T) {
	synth := &fakeSynth{}
	out := &audio.MockOutput{}

	if err := Speak(context.Background(), synth, out, "  France "); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	played := out.Played()
	if len(played) != 1 || !bytes.Equal(played[0], payloadFor("France")) {
		t.Fatalf("played %v", played)
	}
	if out.OpenDevices() != 0 {
		t.Error("device left open")
	}
}

func TestSpeakBlankIsNoop(t *testing.T) {
	synth := &fakeSynth{}
	out := &audio.MockOutput{}
	if err := Speak(context.Background(), synth, out, " \n"); err != nil {
		t.Fatal(err)
	}
	if len(synth.calls) != 0 || out.Opens() != 0 {
		t.Error("blank text should not synthesize or open a device")
	}
}

func TestSpeakErrors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("fetch", func(t *testing.T) {
		synth := &fakeSynth{fail: map[string]error{"Chad": boom}}
		err := Speak(context.Background(), synth, &audio.MockOutput{}, "Chad")
		if !errors.Is(err, ErrFetch) || !errors.Is(err, boom) {
			t.Fatalf("error = %v, want fetch failure wrapping boom", err)
		}
	})

	t.Run("decode", func(t *testing.T) {
		synth := SynthesizerFunc(func(context.Context, string) ([]byte, error) {
			return []byte{1, 2, 3}, nil
		})
		if err := Speak(context.Background(), synth, &audio.MockOutput{}, "Chad"); !errors.Is(err, ErrDecode) {
			t.Fatalf("error = %v, want ErrDecode", err)
		}
	})

	t.Run("playback", func(t *testing.T) {
		out := &audio.MockOutput{OpenErr: boom}
		if err := Speak(context.Background(), &fakeSynth{}, out, "Chad"); !errors.Is(err, ErrPlayback) {
			t.Fatalf("error = %v, want ErrPlayback", err)
		}
	})
}
