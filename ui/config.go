package ui

import (
	"context"
	"time"

	"github.com/dgnsrekt/envoy/internal/audio"
	"github.com/dgnsrekt/envoy/internal/briefing"
	"github.com/dgnsrekt/envoy/internal/history"
	"github.com/dgnsrekt/envoy/internal/tts"
)

// Config contains TUI-specific configuration.
type Config struct {
	GlamourMaxWidth uint
	GlamourStyle    string `env:"GLAMOUR_STYLE"`
	EnableMouse     bool

	// Defaults for the briefing form
	Detail         briefing.DetailLevel
	IncludeHistory bool

	// Where PDFs are written; empty means the working directory
	ExportDir string `env:"ENVOY_EXPORT_DIR"`

	// For debugging the UI
	GlamourEnabled         bool          `env:"ENVOY_ENABLE_GLAMOUR"           envDefault:"true"`
	LoadingMessageInterval time.Duration `env:"ENVOY_LOADING_MESSAGE_INTERVAL" envDefault:"2s"`
}

// Generator produces briefings.
type Generator interface {
	Generate(ctx context.Context, req briefing.Request) (briefing.Briefing, error)
}

// Services are the collaborators the TUI drives. History, Countries, Flag
// and Copy are optional.
type Services struct {
	Generator Generator
	Speech    tts.Synthesizer
	Output    audio.Output
	History   *history.Store
	Countries func(context.Context) ([]string, error)
	Flag      func(context.Context, string) (string, error)
	Copy      func(summary string, sources []briefing.Source) error
}
