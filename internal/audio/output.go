package audio

import "context"

// Output hands out devices that can play buffers. Opening a device acquires
// the audio output resource; closing it releases it.
type Output interface {
	Open() (Device, error)
}

// Device plays one buffer at a time.
type Device interface {
	// Play starts playback and blocks until the buffer has played to the
	// end or ctx is done. It must not start any output when ctx is already
	// done.
	Play(ctx context.Context, buf *Buffer) error

	// Stop halts the current playback, if any. It is idempotent and safe to
	// call concurrently with Play and after Close.
	Stop() error

	// Close stops playback and releases the device. It is idempotent; Play
	// on a closed device returns ErrClosed.
	Close() error
}
