package ui

import (
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/envoy/internal/tts"
)

type playbackMsg struct{}

// playback connects a tts.Controller to the Bubble Tea loop. Controller hooks
// run with the controller locked, so they only poke a one-slot channel; the
// model reads the actual state when the message arrives.
type playback struct {
	ctrl   *tts.Controller
	events chan struct{}
	once   sync.Once
}

func newPlayback(svc Services) (*playback, error) {
	p := &playback{events: make(chan struct{}, 1)}
	ctrl, err := tts.New(svc.Speech, svc.Output,
		tts.WithLogger(log.Default()),
		tts.OnStateChange(func(tts.State) { p.notify() }),
		tts.OnProgress(func(tts.Progress) { p.notify() }),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to set up read-aloud: %w", err)
	}
	p.ctrl = ctrl
	return p, nil
}

func (p *playback) notify() {
	select {
	case p.events <- struct{}{}:
	default:
	}
}

// wait delivers the next playback change.
func (p *playback) wait() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-p.events; !ok {
			return nil
		}
		return playbackMsg{}
	}
}

// close stops playback and waits for the audio device to be released.
func (p *playback) close() {
	p.once.Do(func() {
		if err := p.ctrl.Close(); err != nil {
			log.Warn("Unable to shut down read-aloud", "err", err)
		}
		close(p.events)
	})
}

// statusView is the read-aloud indicator for the status bar.
func (p *playback) statusView() string {
	pr := p.ctrl.Progress()
	switch p.ctrl.State() {
	case tts.StateLoading:
		return loadingStyle.Render(fmt.Sprintf("⟳ loading %d/%d", pr.Segment+1, pr.Total))
	case tts.StatePlaying:
		return playingStyle.Render(fmt.Sprintf("▶ reading %d/%d", pr.Segment+1, pr.Total))
	default:
		return ""
	}
}
