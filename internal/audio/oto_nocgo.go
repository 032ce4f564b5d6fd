//go:build nocgo
// +build nocgo

package audio

import "errors"

// ErrClosed is returned when playing on a closed device.
var ErrClosed = errors.New("audio device is closed")

// OtoOutput is unavailable in builds without cgo.
type OtoOutput struct {
	SampleRate int
	Channels   int
	Volume     float64
}

// NewOtoOutput returns an output that always fails to open.
func NewOtoOutput(volume float64) *OtoOutput {
	return &OtoOutput{SampleRate: SampleRate, Channels: Channels, Volume: volume}
}

// Open always fails; use a WAV file output instead.
func (o *OtoOutput) Open() (Device, error) {
	return nil, errors.New("audio playback not available in nocgo build")
}
