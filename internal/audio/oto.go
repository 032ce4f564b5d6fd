//go:build !nocgo
// +build !nocgo

package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process, so it is created lazily once and
// shared by every device.
var (
	otoOnce    sync.Once
	otoContext *oto.Context
	otoRate    int
	otoErr     error
)

// ErrClosed is returned when playing on a closed device.
var ErrClosed = errors.New("audio device is closed")

// pollInterval is how often a playing device checks for the natural end.
const pollInterval = 10 * time.Millisecond

// OtoOutput plays speech on the system audio device.
type OtoOutput struct {
	SampleRate int
	Channels   int
	Volume     float64
}

// NewOtoOutput returns an output for the speech format.
func NewOtoOutput(volume float64) *OtoOutput {
	return &OtoOutput{SampleRate: SampleRate, Channels: Channels, Volume: volume}
}

func sharedContext(sampleRate, channels int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		}
		// macOS benefits from larger buffers
		if runtime.GOOS == "darwin" {
			op.BufferSize = 100 * time.Millisecond
		} else {
			op.BufferSize = 50 * time.Millisecond
		}

		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			otoErr = fmt.Errorf("failed to create audio context: %w", err)
			return
		}
		<-ready
		otoContext = ctx
		otoRate = sampleRate
	})
	if otoErr != nil {
		return nil, otoErr
	}
	if otoRate != sampleRate {
		return nil, fmt.Errorf("%w: audio context runs at %d Hz, not %d Hz", ErrFormat, otoRate, sampleRate)
	}
	return otoContext, nil
}

// Open acquires the audio device.
func (o *OtoOutput) Open() (Device, error) {
	ctx, err := sharedContext(o.SampleRate, o.Channels)
	if err != nil {
		return nil, err
	}
	if err := ctx.Resume(); err != nil {
		return nil, fmt.Errorf("failed to resume audio context: %w", err)
	}
	volume := o.Volume
	if volume <= 0 {
		volume = 1
	}
	return &otoDevice{ctx: ctx, volume: volume}, nil
}

type otoDevice struct {
	ctx    *oto.Context
	volume float64

	mu      sync.Mutex
	player  *oto.Player
	stopped chan struct{}
	closed  bool
}

func (d *otoDevice) Play(ctx context.Context, buf *Buffer) error {
	if err := buf.validate(); err != nil {
		return err
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	// checked under the lock so a concurrent Stop either sees this player
	// or prevents it from starting
	if err := ctx.Err(); err != nil {
		d.mu.Unlock()
		return err
	}
	p := d.ctx.NewPlayer(bytes.NewReader(buf.Data))
	p.SetVolume(d.volume)
	stopped := make(chan struct{})
	d.player = p
	d.stopped = stopped
	p.Play()
	d.mu.Unlock()

	defer d.release(p)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.Pause()
			return ctx.Err()
		case <-stopped:
			return nil
		case <-ticker.C:
			if !p.IsPlaying() {
				return p.Err()
			}
		}
	}
}

func (d *otoDevice) release(p *oto.Player) {
	d.mu.Lock()
	if d.player == p {
		d.player = nil
		d.stopped = nil
	}
	d.mu.Unlock()
	_ = p.Close()
}

func (d *otoDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.player == nil {
		return nil
	}
	d.player.Pause()
	close(d.stopped)
	d.player = nil
	d.stopped = nil
	return nil
}

func (d *otoDevice) Close() error {
	if err := d.Stop(); err != nil {
		return err
	}
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}
