package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/envoy/internal/tts"
	"github.com/dgnsrekt/envoy/utils"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var (
	readWatch    bool
	readAudioDir string

	readCmd = &cobra.Command{
		Use:   "read [FILE|-]",
		Short: "Read a Markdown file aloud",
		Long: paragraph(fmt.Sprintf("\n%s a Markdown document paragraph by paragraph. Headings are read without their markers and horizontal rules are skipped. Press ctrl+c to stop.",
			keyword("Read aloud"))),
		Example: paragraph("envoy read briefing.md\ncat briefing.md | envoy read -\nenvoy read notes.md --watch"),
		Args:    cobra.MaximumNArgs(1),
		RunE:    runRead,
	}
)

func init() {
	readCmd.Flags().BoolVar(&readWatch, "watch", false, "start over whenever the file changes")
	readCmd.Flags().StringVar(&readAudioDir, "save-audio", "", "write speech to WAV files in this directory instead of playing it")
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runRead(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	path := "-"
	if len(args) == 1 {
		path = args[0]
	}
	if path == "-" && readWatch {
		return errors.New("--watch needs a file")
	}

	text, err := readSource(path)
	if err != nil {
		return err
	}

	client, err := newGeminiClient(ctx)
	if err != nil {
		return err
	}
	sp := newSpeech(client)
	defer sp.Close() //nolint:errcheck

	if readWatch {
		return watchAndRead(ctx, sp, readAudioDir, path, text)
	}
	return readAloud(ctx, sp, readAudioDir, text)
}

func readSource(path string) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(utils.ExpandPath(path))
	}
	if err != nil {
		return "", fmt.Errorf("unable to read %s: %w", path, err)
	}
	return string(utils.RemoveFrontmatter(b)), nil
}

func newReader(synth tts.Synthesizer, audioDir string) (*tts.Controller, error) {
	out, err := newOutput(audioDir)
	if err != nil {
		return nil, err
	}
	return tts.New(synth, out,
		tts.WithLogger(log.Default()),
		tts.OnProgress(func(p tts.Progress) {
			fmt.Fprintf(os.Stderr, "\r%s", faint(fmt.Sprintf("Reading %d/%d", p.Segment+1, p.Total)))
		}),
	)
}

// readAloud reads text to the end, or until ctx is cancelled.
func readAloud(ctx context.Context, synth tts.Synthesizer, audioDir, text string) error {
	if len(tts.Segments(text)) == 0 {
		fmt.Fprintln(os.Stderr, "Nothing to read.")
		return nil
	}

	ctrl, err := newReader(synth, audioDir)
	if err != nil {
		return err
	}
	defer ctrl.Close() //nolint:errcheck

	ctrl.SetText(text)
	ctrl.Toggle()

	done := make(chan struct{})
	go func() {
		ctrl.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		_ = ctrl.Close()
		<-done
	}
	fmt.Fprintln(os.Stderr)
	return ctrl.LastError()
}

// watchAndRead reads the file and starts over from the top each time it
// changes, until ctx is cancelled.
func watchAndRead(ctx context.Context, synth tts.Synthesizer, audioDir, path, text string) error {
	abs, err := filepath.Abs(utils.ExpandPath(path))
	if err != nil {
		return err
	}

	ctrl, err := newReader(synth, audioDir)
	if err != nil {
		return err
	}
	defer ctrl.Close() //nolint:errcheck

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unable to watch %s: %w", path, err)
	}
	defer w.Close() //nolint:errcheck
	// editors often replace the file, so watch its directory
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("unable to watch %s: %w", path, err)
	}

	ctrl.SetText(text)
	ctrl.Toggle()
	fmt.Fprintln(os.Stderr, faint("Watching "+path+" for changes. Press ctrl+c to stop."))

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr)
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			next, err := readSource(abs)
			if err != nil {
				log.Warn("Unable to reload file", "path", abs, "err", err)
				continue
			}
			if next == ctrl.Text() {
				continue
			}
			log.Debug("File changed, starting over", "path", abs)
			ctrl.SetText(next)
			ctrl.Toggle()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("File watcher error", "err", err)
		}
	}
}
