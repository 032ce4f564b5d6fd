package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# style name or JSON path (default "auto")
style: "auto"
# word-wrap at width (0 uses the terminal width, up to 120)
width: 0
# mouse support (TUI-mode only)
mouse: false
# write debug output to the log file
debug: false

gemini:
  # API key; GEMINI_API_KEY or API_KEY in the environment (or a .env file) also work
  # api_key: ""
  model: "gemini-2.5-pro"
  speech_model: "gemini-2.5-flash-preview-tts"
  voice: "Kore"
  # ground briefings on Google Search and list the sources
  grounding: true
  # pace read-aloud requests to stay under quota (0 disables)
  speech_requests_per_minute: 0

briefing:
  # concise, standard or detailed
  detail: "standard"
  include_history: false

audio:
  # playback volume (0.0 to 1.0)
  volume: 1.0

cache:
  # directory for synthesized speech (default: the user cache directory)
  # dir: ""
  # maximum size on disk, in megabytes
  max_size: 256
  # drop speech older than this
  max_age: "720h"

countries:
  # how long the country list is cached
  ttl: "168h"

history:
  # history file (default: the user data directory)
  # file: ""
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the envoy config file",
	Long:    paragraph(fmt.Sprintf("\n%s the envoy config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("envoy config\nenvoy config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("envoy", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func setConfigDefaults() {
	viper.SetDefault("gemini.model", "gemini-2.5-pro")
	viper.SetDefault("gemini.speech_model", "gemini-2.5-flash-preview-tts")
	viper.SetDefault("gemini.voice", "Kore")
	viper.SetDefault("gemini.grounding", true)
	viper.SetDefault("gemini.speech_requests_per_minute", 0)
	viper.SetDefault("briefing.detail", "standard")
	viper.SetDefault("briefing.include_history", false)
	viper.SetDefault("audio.volume", 1.0)
	viper.SetDefault("cache.max_size", 256)
	viper.SetDefault("cache.max_age", "720h")
	viper.SetDefault("countries.ttl", "168h")
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
