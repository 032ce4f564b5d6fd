package audio

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// MockOutput simulates an audio device without producing sound. It records
// what was played and can hold playback open until released.
type MockOutput struct {
	// PlayDelay simulates playback length. Ignored when Hold is set.
	PlayDelay time.Duration

	// Hold, when non-nil, keeps every Play running until a value is
	// received (or the channel closed), the device is stopped, or ctx ends.
	Hold chan struct{}

	// OpenErr and PlayErr simulate device failures.
	OpenErr error
	PlayErr error

	// OnPlay is called when a buffer starts playing.
	OnPlay func(buf *Buffer)

	mu      sync.Mutex
	played  [][]byte
	started [][]byte

	opens    atomic.Int64
	closes   atomic.Int64
	stops    atomic.Int64
	active   atomic.Int64
	overlaps atomic.Int64
	open     atomic.Int64
}

// Open returns a new mock device.
func (m *MockOutput) Open() (Device, error) {
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}
	m.opens.Add(1)
	m.open.Add(1)
	return &mockDevice{out: m}, nil
}

// Played returns the buffers that played to their natural end, in order.
func (m *MockOutput) Played() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.played...)
}

// Started returns every buffer whose playback was started, in order.
func (m *MockOutput) Started() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.started...)
}

// Opens returns how many devices were opened.
func (m *MockOutput) Opens() int64 { return m.opens.Load() }

// Closes returns how many devices were closed.
func (m *MockOutput) Closes() int64 { return m.closes.Load() }

// OpenDevices returns how many devices are currently open.
func (m *MockOutput) OpenDevices() int64 { return m.open.Load() }

// Stops returns how many times Stop was called.
func (m *MockOutput) Stops() int64 { return m.stops.Load() }

// Overlaps returns how many times a buffer started while another was playing.
func (m *MockOutput) Overlaps() int64 { return m.overlaps.Load() }

type mockDevice struct {
	out *MockOutput

	mu      sync.Mutex
	stopped chan struct{}
	closed  bool
}

func (d *mockDevice) Play(ctx context.Context, buf *Buffer) error {
	m := d.out
	if m.PlayErr != nil {
		return m.PlayErr
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		d.mu.Unlock()
		return err
	}
	stopped := make(chan struct{})
	d.stopped = stopped
	if m.active.Add(1) > 1 {
		m.overlaps.Add(1)
	}
	m.mu.Lock()
	m.started = append(m.started, buf.Data)
	m.mu.Unlock()
	d.mu.Unlock()
	defer m.active.Add(-1)

	if m.OnPlay != nil {
		m.OnPlay(buf)
	}

	var ended <-chan struct{}
	if m.Hold != nil {
		ended = m.Hold
	} else {
		timer := time.NewTimer(m.PlayDelay)
		defer timer.Stop()
		done := make(chan struct{})
		ended = done
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopped:
			return nil
		case <-timer.C:
			close(done)
		}
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-stopped:
		return nil
	case <-ended:
		m.mu.Lock()
		m.played = append(m.played, buf.Data)
		m.mu.Unlock()
		return nil
	}
}

func (d *mockDevice) Stop() error {
	d.out.stops.Add(1)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped != nil {
		close(d.stopped)
		d.stopped = nil
	}
	return nil
}

func (d *mockDevice) Close() error {
	_ = d.Stop()
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.closed {
		d.closed = true
		d.out.closes.Add(1)
		d.out.open.Add(-1)
	}
	return nil
}
