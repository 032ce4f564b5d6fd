package tts

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/envoy/internal/audio"
)

// ErrNilDependency is returned by New when a collaborator is missing.
var ErrNilDependency = errors.New("synthesizer and output are required")

// Controller reads text aloud segment by segment with start/stop control.
// All methods are safe for concurrent use.
type Controller struct {
	synth  Synthesizer
	output audio.Output
	decode DecodeFunc
	logger *log.Logger

	sampleRate int
	channels   int

	onState    func(State)
	onProgress func(Progress)

	mu      sync.Mutex
	text    string
	state   State
	session *session
	lastErr error
	closed  bool

	// tracks running session goroutines, including cancelled ones still
	// unwinding
	wg sync.WaitGroup
}

// session is one run over a fixed list of segments. Fields other than the
// immutable ones are guarded by Controller.mu.
type session struct {
	ctx      context.Context
	cancel   context.CancelFunc
	segments []string

	cursor int
	device audio.Device
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for session diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDecoder replaces audio.Decode.
func WithDecoder(fn DecodeFunc) Option {
	return func(c *Controller) {
		if fn != nil {
			c.decode = fn
		}
	}
}

// WithFormat overrides the speech sample rate and channel count.
func WithFormat(sampleRate, channels int) Option {
	return func(c *Controller) {
		c.sampleRate = sampleRate
		c.channels = channels
	}
}

// OnStateChange registers fn to be called on every state transition. fn is
// called with the Controller locked: it must not block or call back into the
// Controller.
func OnStateChange(fn func(State)) Option {
	return func(c *Controller) { c.onState = fn }
}

// OnProgress registers fn to be called when a session moves to a new
// segment. The same restrictions as OnStateChange apply.
func OnProgress(fn func(Progress)) Option {
	return func(c *Controller) { c.onProgress = fn }
}

// New returns an idle Controller.
func New(synth Synthesizer, output audio.Output, opts ...Option) (*Controller, error) {
	if synth == nil || output == nil {
		return nil, ErrNilDependency
	}
	c := &Controller{
		synth:      synth,
		output:     output,
		decode:     audio.Decode,
		logger:     log.Default(),
		sampleRate: audio.SampleRate,
		channels:   audio.Channels,
		state:      StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetText replaces the text to read. A different text stops the active
// session, if any; playback is not restarted.
func (c *Controller) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if text == c.text {
		return
	}
	c.text = text
	if c.session != nil {
		c.logger.Debug("Text changed, stopping read-aloud")
		c.stopLocked()
	}
}

// Text returns the current text.
func (c *Controller) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// Toggle stops the active session, or starts a new one when idle and the
// text is not blank. Stopping reports idle immediately without waiting for
// in-flight work to unwind.
func (c *Controller) Toggle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		c.logger.Debug("Stopping read-aloud")
		c.stopLocked()
		return
	}
	if c.closed || strings.TrimSpace(c.text) == "" {
		return
	}

	segments := Segments(c.text)
	if len(segments) == 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{ctx: ctx, cancel: cancel, segments: segments}
	c.session = s
	c.lastErr = nil
	c.setStateLocked(StateLoading)
	c.progressLocked(s)

	c.logger.Debug("Starting read-aloud", "segments", len(segments))
	c.wg.Add(1)
	go c.run(s)
}

// Close stops any active session, waits for it to release the audio device,
// and refuses further sessions.
func (c *Controller) Close() error {
	c.mu.Lock()
	c.closed = true
	if c.session != nil {
		c.stopLocked()
	}
	c.mu.Unlock()

	c.wg.Wait()
	return nil
}

// Wait blocks until every session, including stopped ones still unwinding,
// has exited.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// State returns the current playback state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Progress returns the position of the active session.
func (c *Controller) Progress() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Progress{}
	}
	return Progress{Segment: c.session.cursor, Total: len(c.session.segments)}
}

// LastError returns the failure that ended the most recent session, if any.
// It is kept for diagnostics only.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// stopLocked cancels the active session and releases its device without
// waiting for the session goroutine, which may be stuck in the synthesizer.
func (c *Controller) stopLocked() {
	s := c.session
	s.cancel()
	if s.device != nil {
		if err := s.device.Close(); err != nil {
			c.logger.Warn("Unable to release audio device", "err", err)
		}
		s.device = nil
	}
	c.session = nil
	c.setStateLocked(StateIdle)
}

func (c *Controller) setStateLocked(state State) {
	if c.state == state {
		return
	}
	c.state = state
	if c.onState != nil {
		c.onState(state)
	}
}

func (c *Controller) progressLocked(s *session) {
	if c.onProgress != nil {
		c.onProgress(Progress{Segment: s.cursor, Total: len(s.segments)})
	}
}

func (c *Controller) run(s *session) {
	defer c.wg.Done()
	defer s.cancel()

	err := c.play(s)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != s {
		if err != nil {
			c.logger.Debug("Stopped read-aloud failed while unwinding", "err", err)
		}
		return
	}
	if err != nil {
		c.lastErr = err
		c.logger.Error("Read-aloud stopped early", "err", err)
	}
	c.session = nil
	c.setStateLocked(StateIdle)
	c.logger.Debug("Read-aloud finished", "failed", err != nil)
}

// play renders every segment in order. It returns nil when the session ran
// to completion or was cancelled.
func (c *Controller) play(s *session) error {
	dev, err := c.output.Open()
	if err != nil {
		return newError(ErrorCodePlayback, -1, err)
	}

	c.mu.Lock()
	if c.session != s {
		c.mu.Unlock()
		_ = dev.Close()
		return nil
	}
	s.device = dev
	c.mu.Unlock()

	// a stop may already have closed dev; Close is idempotent
	defer func() {
		c.mu.Lock()
		s.device = nil
		c.mu.Unlock()
		if err := dev.Close(); err != nil {
			c.logger.Warn("Unable to release audio device", "err", err)
		}
	}()

	for i, text := range s.segments {
		if s.ctx.Err() != nil {
			return nil
		}
		c.mu.Lock()
		if c.session == s && s.cursor != i {
			s.cursor = i
			c.progressLocked(s)
		}
		c.mu.Unlock()

		payload, err := c.synth.Synthesize(s.ctx, text)
		if s.ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return newError(ErrorCodeFetch, i, err)
		}

		buf, err := c.decode(payload, c.sampleRate, c.channels)
		if err != nil {
			return newError(ErrorCodeDecode, i, err)
		}

		c.mu.Lock()
		if c.session != s {
			c.mu.Unlock()
			return nil
		}
		c.setStateLocked(StatePlaying)
		c.mu.Unlock()

		// the device refuses to start once s.ctx is done or it was closed by
		// a concurrent stop
		if err := dev.Play(s.ctx, buf); err != nil {
			if s.ctx.Err() != nil {
				return nil
			}
			return newError(ErrorCodePlayback, i, err)
		}
		c.logger.Debug("Segment played", "segment", i+1, "of", len(s.segments), "duration", buf.Duration())
	}
	return nil
}
