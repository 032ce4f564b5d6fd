package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/envoy/internal/tts"
	"github.com/spf13/cobra"
)

var (
	pronounceAudioDir string

	pronounceCmd = &cobra.Command{
		Use:     "pronounce COUNTRY",
		Short:   "Say a country name out loud",
		Example: paragraph("envoy pronounce \"Côte d'Ivoire\""),
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			client, err := newGeminiClient(ctx)
			if err != nil {
				return err
			}
			sp := newSpeech(client)
			defer sp.Close() //nolint:errcheck

			out, err := newOutput(pronounceAudioDir)
			if err != nil {
				return err
			}
			name := strings.Join(args, " ")
			if err := tts.Speak(ctx, sp, out, name); err != nil {
				log.Error("Failed to play pronunciation", "country", name, "err", err)
				return fmt.Errorf("failed to play pronunciation: %w", err)
			}
			return nil
		},
	}
)

func init() {
	pronounceCmd.Flags().StringVar(&pronounceAudioDir, "save-audio", "", "write the WAV file to this directory instead of playing it")
}
