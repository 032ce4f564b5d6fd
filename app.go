package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/envoy/internal/audio"
	"github.com/dgnsrekt/envoy/internal/briefing"
	"github.com/dgnsrekt/envoy/internal/cache"
	"github.com/dgnsrekt/envoy/internal/countries"
	"github.com/dgnsrekt/envoy/internal/gemini"
	"github.com/dgnsrekt/envoy/internal/history"
	"github.com/dgnsrekt/envoy/internal/tts"
	"github.com/dgnsrekt/envoy/utils"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"
)

var appScope = gap.NewScope(gap.User, "envoy")

// apiKey looks in the environment first, then in the config file.
func apiKey() string {
	for _, name := range []string{"GEMINI_API_KEY", "API_KEY"} {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return strings.TrimSpace(viper.GetString("gemini.api_key"))
}

func geminiConfig() gemini.Config {
	return gemini.Config{
		APIKey:                  apiKey(),
		Model:                   viper.GetString("gemini.model"),
		SpeechModel:             viper.GetString("gemini.speech_model"),
		Voice:                   viper.GetString("gemini.voice"),
		Grounding:               viper.GetBool("gemini.grounding"),
		SpeechRequestsPerMinute: viper.GetInt("gemini.speech_requests_per_minute"),
	}
}

func newGeminiClient(ctx context.Context) (*gemini.Client, error) {
	return gemini.New(ctx, geminiConfig())
}

func detailFromConfig() (briefing.DetailLevel, error) {
	level, err := briefing.ParseDetailLevel(viper.GetString("briefing.detail"))
	if err != nil {
		return "", fmt.Errorf("briefing.detail: %w", err)
	}
	return level, nil
}

func cacheDir() (string, error) {
	if dir := viper.GetString("cache.dir"); dir != "" {
		return utils.ExpandPath(dir), nil
	}
	dir, err := appScope.CacheDir()
	if err != nil {
		return "", fmt.Errorf("unable to find cache directory: %w", err)
	}
	return filepath.Join(dir, "speech"), nil
}

func openSpeechCache() (*cache.SpeechCache, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, err
	}
	cfg := cache.DefaultConfig(dir)
	if mb := viper.GetInt64("cache.max_size"); mb > 0 {
		cfg.DiskCapacity = mb << 20
	}
	cfg.MaxAge = viper.GetDuration("cache.max_age")
	return cache.Open(cfg)
}

// speech bundles a synthesizer with the cache it writes to. Close flushes
// the cache.
type speech struct {
	tts.Synthesizer
	cache *cache.SpeechCache
}

func (s *speech) Close() error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Close()
}

// newSpeech returns the Gemini synthesizer behind the speech cache. When
// the cache cannot be opened speech is fetched uncached.
func newSpeech(client *gemini.Client) *speech {
	sc, err := openSpeechCache()
	if err != nil {
		log.Warn("Speech cache disabled", "err", err)
		return &speech{Synthesizer: client}
	}
	cfg := client.Config()
	return &speech{
		Synthesizer: cache.Cached(client, sc, cfg.SpeechModel, cfg.Voice),
		cache:       sc,
	}
}

// newOutput plays through the sound card, or writes WAV files to dir when
// dir is set.
func newOutput(dir string) (audio.Output, error) {
	if dir != "" {
		out, err := audio.NewFileOutput(utils.ExpandPath(dir))
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return audio.NewOtoOutput(viper.GetFloat64("audio.volume")), nil
}

func historyPath() (string, error) {
	if p := viper.GetString("history.file"); p != "" {
		return utils.ExpandPath(p), nil
	}
	p, err := appScope.DataPath("history.json")
	if err != nil {
		return "", fmt.Errorf("unable to find data directory: %w", err)
	}
	return p, nil
}

func openHistory() (*history.Store, error) {
	path, err := historyPath()
	if err != nil {
		return nil, err
	}
	store := history.Open(path)
	if err := store.Load(); err != nil {
		return nil, err
	}
	return store, nil
}

func newCountriesClient() *countries.Client {
	path := ""
	if dir, err := appScope.CacheDir(); err == nil {
		path = filepath.Join(dir, "countries.json.zst")
	}
	return countries.New(path, viper.GetDuration("countries.ttl"))
}

// renderMarkdown renders md for the terminal with the configured style.
func renderMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithColorProfile(lipgloss.ColorProfile()),
		utils.GlamourStyle(style),
		glamour.WithWordWrap(int(width)), //nolint:gosec
	)
	if err != nil {
		return "", fmt.Errorf("unable to create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("unable to render markdown: %w", err)
	}
	return out, nil
}
