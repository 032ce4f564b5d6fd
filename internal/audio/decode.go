package audio

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Decode turns a speech payload into a playable buffer with the given
// sample rate and channel count. The payload is either raw s16le PCM or a
// 16-bit WAV container.
func Decode(payload []byte, sampleRate, channels int) (*Buffer, error) {
	if len(payload) == 0 {
		return nil, ErrEmptyPayload
	}
	if isWAV(payload) {
		return decodeWAV(payload, sampleRate, channels)
	}

	buf := &Buffer{Data: payload, SampleRate: sampleRate, Channels: channels}
	if err := buf.validate(); err != nil {
		return nil, err
	}
	return buf, nil
}

// DecodeBase64 decodes a payload that arrives as standard base64 text, then
// hands the bytes to Decode. Surrounding whitespace is ignored.
func DecodeBase64(payload []byte, sampleRate, channels int) (*Buffer, error) {
	text := bytes.TrimSpace(payload)
	if len(text) == 0 {
		return nil, ErrEmptyPayload
	}
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(text)))
	n, err := base64.StdEncoding.Decode(raw, text)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 payload: %w", ErrFormat, err)
	}
	return Decode(raw[:n], sampleRate, channels)
}

func decodeWAV(payload []byte, sampleRate, channels int) (*Buffer, error) {
	d := wav.NewDecoder(bytes.NewReader(payload))
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid WAV container", ErrFormat)
	}
	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("unable to read WAV samples: %w", err)
	}
	if int(d.BitDepth) != BitDepth {
		return nil, fmt.Errorf("%w: %d-bit WAV", ErrFormat, d.BitDepth)
	}
	if int(d.SampleRate) != sampleRate || int(d.NumChans) != channels {
		return nil, fmt.Errorf("%w: WAV is %d Hz/%d ch, want %d Hz/%d ch",
			ErrFormat, d.SampleRate, d.NumChans, sampleRate, channels)
	}

	buf := &Buffer{
		Data:       intsToPCM(pcm.Data),
		SampleRate: sampleRate,
		Channels:   channels,
	}
	if err := buf.validate(); err != nil {
		return nil, err
	}
	return buf, nil
}

func intsToPCM(samples []int) []byte {
	out := make([]byte, len(samples)*BytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*BytesPerSample:], uint16(int16(s))) //nolint:gosec
	}
	return out
}

func pcmToInts(data []byte) []int {
	out := make([]int, len(data)/BytesPerSample)
	for i := range out {
		out[i] = int(int16(binary.LittleEndian.Uint16(data[i*BytesPerSample:]))) //nolint:gosec
	}
	return out
}

func isWAV(b []byte) bool {
	return len(b) >= 12 && string(b[0:4]) == "RIFF" && string(b[8:12]) == "WAVE"
}

func intBuffer(b *Buffer) *goaudio.IntBuffer {
	return &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: b.Channels, SampleRate: b.SampleRate},
		Data:           pcmToInts(b.Data),
		SourceBitDepth: BitDepth,
	}
}
