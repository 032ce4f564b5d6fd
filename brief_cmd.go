package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/envoy/internal/briefing"
	"github.com/dgnsrekt/envoy/internal/export"
	"github.com/dgnsrekt/envoy/internal/history"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	briefCountry  string
	briefTopic    string
	briefDetail   string
	briefHistory  bool
	briefRead     bool
	briefPDF      string
	briefCopy     bool
	briefNoSave   bool
	briefAudioDir string

	briefCmd = &cobra.Command{
		Use:   "brief",
		Short: "Generate a country briefing",
		Long: paragraph(fmt.Sprintf("\nAsk Gemini for a %s on a committee topic, print it and save it to the history.",
			keyword("country briefing"))),
		Example: paragraph("envoy brief -c Brazil -t \"Climate finance\"\nenvoy brief -c Japan -t \"Nuclear disarmament\" -d detailed --history --pdf ."),
		Args:    cobra.NoArgs,
		RunE:    runBrief,
	}
)

func init() {
	briefCmd.Flags().StringVarP(&briefCountry, "country", "c", "", "country you represent")
	briefCmd.Flags().StringVarP(&briefTopic, "topic", "t", "", "committee topic")
	briefCmd.Flags().StringVarP(&briefDetail, "detail", "d", "", "detail level: concise, standard or detailed")
	briefCmd.Flags().BoolVar(&briefHistory, "history", false, "include a historical background section")
	briefCmd.Flags().BoolVarP(&briefRead, "read", "r", false, "read the briefing aloud")
	briefCmd.Flags().StringVar(&briefPDF, "pdf", "", "export a PDF to this file or directory")
	briefCmd.Flags().BoolVar(&briefCopy, "copy", false, "copy the briefing to the clipboard")
	briefCmd.Flags().BoolVar(&briefNoSave, "no-save", false, "do not save the briefing to the history")
	briefCmd.Flags().StringVar(&briefAudioDir, "save-audio", "", "write speech to WAV files in this directory instead of playing it")

	_ = viper.BindPFlag("briefing.detail", briefCmd.Flags().Lookup("detail"))
	_ = viper.BindPFlag("briefing.include_history", briefCmd.Flags().Lookup("history"))
}

func runBrief(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	detail, err := detailFromConfig()
	if err != nil {
		return err
	}
	req := briefing.Request{
		Country:        briefCountry,
		Topic:          briefTopic,
		Detail:         detail,
		IncludeHistory: viper.GetBool("briefing.include_history"),
	}
	if err := req.Validate(); err != nil {
		return err
	}

	client, err := newGeminiClient(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, faint(fmt.Sprintf("Generating a %s briefing for %s...", req.Detail, req.Country)))
	b, err := client.Generate(ctx, req)
	if err != nil {
		return err
	}

	out, err := renderMarkdown(b.Summary)
	if err != nil {
		return err
	}
	fmt.Print(out)
	for _, s := range b.Sources {
		fmt.Printf("  %s %s\n", keyword(s.Title), faint(s.URI))
	}

	if !briefNoSave {
		if err := saveBriefing(b); err != nil {
			log.Warn("Unable to save briefing", "err", err)
			fmt.Fprintln(os.Stderr, "Could not save to history:", err)
		}
	}
	if briefCopy {
		if err := briefing.Copy(b.Summary, b.Sources); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Copied to clipboard.")
	}
	if briefPDF != "" {
		path, err := exportBriefing(ctx, b, briefPDF)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Wrote", path)
	}
	if briefRead {
		sp := newSpeech(client)
		defer sp.Close() //nolint:errcheck
		return readAloud(ctx, sp, briefAudioDir, b.Summary)
	}
	return nil
}

func saveBriefing(b briefing.Briefing) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	item, err := store.Add(history.NewItem(b))
	if err != nil {
		return err
	}
	log.Debug("Saved briefing", "id", item.ID)
	return nil
}

// exportBriefing writes the PDF to dest. A directory destination gets the
// default file name.
func exportBriefing(ctx context.Context, b briefing.Briefing, dest string) (string, error) {
	path := dest
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		path = filepath.Join(dest, export.Filename(b.Country, b.Topic))
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	flag, err := newCountriesClient().Flag(ctx, b.Country)
	if err != nil {
		log.Warn("Could not fetch country flag", "country", b.Country, "err", err)
	}

	if err := export.WriteFile(path, export.FromBriefing(b, flag, time.Now())); err != nil {
		return "", fmt.Errorf("failed to export PDF: %w", err)
	}
	return path, nil
}
