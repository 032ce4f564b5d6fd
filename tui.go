package main

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/envoy/internal/briefing"
	"github.com/dgnsrekt/envoy/ui"
	"github.com/spf13/viper"
)

func runTUI(ctx context.Context) error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	// use style set in env, or the configured one if unset
	if err := validateStyle(cfg.GlamourStyle); cfg.GlamourStyle == "" || err != nil {
		cfg.GlamourStyle = style
	}
	cfg.GlamourMaxWidth = width
	cfg.EnableMouse = mouse
	cfg.IncludeHistory = viper.GetBool("briefing.include_history")
	if cfg.Detail, err = detailFromConfig(); err != nil {
		return err
	}

	ctx, stop := signalContext(ctx)
	defer stop()

	client, err := newGeminiClient(ctx)
	if err != nil {
		return err
	}
	speech := newSpeech(client)
	defer speech.Close() //nolint:errcheck

	output, err := newOutput("")
	if err != nil {
		return err
	}

	svc := ui.Services{
		Generator: client,
		Speech:    speech,
		Output:    output,
		Copy:      briefing.Copy,
	}
	if store, err := openHistory(); err != nil {
		log.Warn("History disabled", "err", err)
	} else {
		svc.History = store
	}
	cc := newCountriesClient()
	svc.Countries = cc.All
	svc.Flag = cc.Flag

	if err := ui.Run(ctx, cfg, svc); err != nil {
		return fmt.Errorf("error during program run: %w", err)
	}
	return nil
}
