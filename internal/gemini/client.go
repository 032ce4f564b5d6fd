// Package gemini talks to the Gemini API: briefing generation and speech
// synthesis.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// Defaults for Config.
const (
	DefaultModel       = "gemini-2.5-pro"
	DefaultSpeechModel = "gemini-2.5-flash-preview-tts"
	DefaultVoice       = "Kore"
)

// ErrNoAPIKey is returned by New when no API key is configured.
var ErrNoAPIKey = errors.New("API key not set: export GEMINI_API_KEY or set gemini.api_key in the config file")

// Config holds API client settings.
type Config struct {
	APIKey      string
	Model       string
	SpeechModel string
	Voice       string

	// Grounding enables Google Search grounding, which provides sources.
	Grounding bool

	// SpeechRequestsPerMinute paces speech requests to stay under quota.
	// Zero means unlimited.
	SpeechRequestsPerMinute int
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.SpeechModel == "" {
		c.SpeechModel = DefaultSpeechModel
	}
	if c.Voice == "" {
		c.Voice = DefaultVoice
	}
	return c
}

// generator is the subset of *genai.Models the client uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client generates briefings and speech.
type Client struct {
	cfg     Config
	models  generator
	limiter *rate.Limiter
}

// New creates a client for the Gemini API.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create Gemini client: %w", err)
	}
	return newClient(cfg, gc.Models), nil
}

func newClient(cfg Config, models generator) *Client {
	cfg = cfg.withDefaults()
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.SpeechRequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.SpeechRequestsPerMinute)), 1)
	}
	return &Client{cfg: cfg, models: models, limiter: limiter}
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}
