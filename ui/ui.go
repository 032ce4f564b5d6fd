// Package ui provides the interactive briefing application.
package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/envoy/internal/briefing"
	"github.com/dgnsrekt/envoy/internal/export"
	"github.com/dgnsrekt/envoy/internal/history"
	"github.com/dgnsrekt/envoy/internal/tts"
	te "github.com/muesli/termenv"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "copied!"
	flagTimeout          = time.Second * 5
	ellipsis             = "…"
)

var loadingMessages = []string{
	"Consulting diplomatic archives...",
	"Analyzing geopolitical data...",
	"Searching the web for latest updates...",
	"Formulating policy recommendations...",
	"Cross-referencing UN resolutions...",
	"Drafting country's official stance...",
	"Identifying key allies and blocs...",
	"Finalizing briefing document...",
}

// Run starts the application and blocks until the user quits or ctx is
// done. Read-aloud is always shut down before Run returns.
func Run(ctx context.Context, cfg Config, svc Services) error {
	log.Debug(
		"Starting envoy",
		"glamour",
		cfg.GlamourEnabled,
		"history",
		svc.History != nil,
	)

	m, err := newModel(ctx, cfg, svc)
	if err != nil {
		return err
	}
	defer m.shutdown()

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type briefingMsg struct {
	gen int
	b   briefing.Briefing
	err error
}

type statusMsg struct {
	text  string
	isErr bool
}

type (
	loadingTickMsg          struct{ gen int }
	flagMsg                 string
	statusMessageTimeoutMsg struct{}
)

type state int

const (
	stateForm state = iota
	stateLoading
	stateBriefing
	stateHistory
)

func (s state) String() string {
	return [...]string{
		"entering request",
		"generating briefing",
		"showing briefing",
		"browsing history",
	}[s]
}

// Common stuff we'll need to access in all models.
type commonModel struct {
	cfg      Config
	svc      Services
	playback *playback
	width    int
	height   int
}

type model struct {
	common *commonModel
	state  state

	// owns background work such as the history watcher
	ctx    context.Context
	cancel context.CancelFunc

	form    formModel
	pager   pagerModel
	history historyModel

	spinner    spinner.Model
	loadingMsg int

	// generation identifies the newest request so late results of a
	// cancelled one are dropped
	generation     int
	cancelGenerate context.CancelFunc
	hasBriefing    bool
}

func newModel(ctx context.Context, cfg Config, svc Services) (model, error) {
	if svc.Generator == nil {
		return model{}, errors.New("a briefing generator is required")
	}
	if cfg.GlamourStyle == styles.AutoStyle {
		if te.HasDarkBackground() {
			cfg.GlamourStyle = styles.DarkStyle
		} else {
			cfg.GlamourStyle = styles.LightStyle
		}
	}
	if cfg.LoadingMessageInterval <= 0 {
		cfg.LoadingMessageInterval = 2 * time.Second
	}
	pb, err := newPlayback(svc)
	if err != nil {
		return model{}, err
	}

	common := &commonModel{cfg: cfg, svc: svc, playback: pb}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	ctx, cancel := context.WithCancel(ctx)
	return model{
		common:  common,
		state:   stateForm,
		ctx:     ctx,
		cancel:  cancel,
		form:    newFormModel(common),
		pager:   newPagerModel(common),
		history: newHistoryModel(common),
		spinner: sp,
	}, nil
}

// shutdown stops read-aloud and background work. It is safe to call more
// than once.
func (m model) shutdown() {
	if m.cancelGenerate != nil {
		m.cancelGenerate()
	}
	m.cancel()
	m.common.playback.close()
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.common.playback.wait()}
	if m.common.svc.Countries != nil {
		cmds = append(cmds, loadCountries(m.ctx, m.common.svc.Countries))
	}
	if m.common.svc.History != nil {
		cmds = append(cmds, loadHistory(m.common.svc.History), watchHistory(m))
	}
	return tea.Batch(cmds...)
}

func (m model) quit() (tea.Model, tea.Cmd) {
	m.shutdown()
	return m, tea.Quit
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		switch m.state {
		case stateForm:
			return m.updateForm(msg)
		case stateLoading:
			if msg.String() == "esc" {
				m.stopGenerating()
				m.state = stateForm
			}
			return m, nil
		case stateBriefing:
			return m.updateBriefing(msg)
		case stateHistory:
			switch msg.String() {
			case "q":
				return m.quit()
			case "esc", "h":
				m.state = m.backState()
				return m, nil
			}
			var cmd tea.Cmd
			m.history, cmd = m.history.update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.common.width = msg.Width
		m.common.height = msg.Height
		m.form.setSize(msg.Width)
		m.pager.setSize(msg.Width, msg.Height)
		if m.hasBriefing {
			var cmd tea.Cmd
			m.pager, cmd = m.pager.update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case playbackMsg:
		return m, m.common.playback.wait()

	case countriesLoadedMsg:
		var cmd tea.Cmd
		m.form, cmd = m.form.update(msg)
		return m, cmd

	case briefingMsg:
		if msg.gen != m.generation || m.state != stateLoading {
			return m, nil
		}
		m.cancelGenerate = nil
		if msg.err != nil {
			log.Error("Briefing failed", "err", msg.err)
			m.form.err = msg.err
			m.state = stateForm
			return m, nil
		}
		return m, m.showBriefing(msg.b)

	case loadingTickMsg:
		if msg.gen != m.generation || m.state != stateLoading {
			return m, nil
		}
		m.loadingMsg = (m.loadingMsg + 1) % len(loadingMessages)
		return m, loadingTick(msg.gen, m.common.cfg.LoadingMessageInterval)

	case spinner.TickMsg:
		if m.state != stateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case historyLoadedMsg:
		m.history.setItems(msg)
		return m, nil

	case historyWatchMsg:
		return m, waitForHistoryChange(msg.ch)

	case historyChangedMsg:
		m.history.setItems(m.common.svc.History.List())
		return m, waitForHistoryChange(msg.ch)

	case historySelectedMsg:
		item := history.Item(msg)
		m.form.fill(item.Briefing().Request)
		return m, m.showBriefing(item.Briefing())

	case statusMsg:
		if !m.hasBriefing {
			return m, nil
		}
		return m, m.pager.showStatusMessage(msg.text, msg.isErr)

	case errMsg:
		log.Error("Error", "err", msg.err)
		if m.state == stateBriefing {
			return m, m.pager.showStatusMessage(msg.Error(), true)
		}
		m.form.err = msg.err
		return m, nil
	}

	var cmd tea.Cmd
	if m.state == stateForm {
		m.form, cmd = m.form.update(msg)
		cmds = append(cmds, cmd)
	}
	if m.hasBriefing {
		m.pager, cmd = m.pager.update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.form.acceptSuggestion() {
			return m, nil
		}
		return m.submit()
	case "ctrl+l":
		if m.common.svc.History != nil {
			m.state = stateHistory
		}
		return m, nil
	case "esc":
		if len(m.form.suggestions) == 0 && m.hasBriefing {
			m.state = stateBriefing
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m model) updateBriefing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	svc := m.common.svc
	doc := m.pager.doc

	switch msg.String() {
	case "q":
		return m.quit()
	case "esc":
		if m.pager.showHelp {
			m.pager.toggleHelp()
		}
		return m, nil
	case "r", " ":
		m.common.playback.ctrl.Toggle()
		return m, nil
	case "p":
		return m, pronounce(m.ctx, svc, doc.Country)
	case "c":
		if svc.Copy == nil {
			return m, nil
		}
		return m, copyBriefing(svc.Copy, doc)
	case "e":
		return m, exportBriefing(m.common.cfg.ExportDir, doc, m.pager.flagURL)
	case "h":
		if svc.History != nil {
			m.state = stateHistory
		}
		return m, nil
	case "n":
		m.state = stateForm
		return m, m.form.setFocus(fieldCountry)
	}

	var cmd tea.Cmd
	m.pager, cmd = m.pager.update(msg)
	return m, cmd
}

// submit validates the form and starts generating.
func (m model) submit() (tea.Model, tea.Cmd) {
	req := m.form.request()
	if err := req.Validate(); err != nil {
		m.form.err = err
		return m, nil
	}
	m.form.err = nil

	m.stopGenerating()
	m.generation++
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelGenerate = cancel
	m.state = stateLoading
	m.loadingMsg = 0

	log.Debug("Generating briefing", "country", req.Country, "topic", req.Topic, "detail", req.Detail)
	return m, tea.Batch(
		generate(ctx, m.common.svc, req, m.generation),
		loadingTick(m.generation, m.common.cfg.LoadingMessageInterval),
		m.spinner.Tick,
	)
}

func (m *model) stopGenerating() {
	if m.cancelGenerate != nil {
		m.cancelGenerate()
		m.cancelGenerate = nil
	}
}

// showBriefing switches to the pager. A new text stops any read-aloud in
// progress.
func (m *model) showBriefing(b briefing.Briefing) tea.Cmd {
	m.common.playback.ctrl.SetText(b.Summary)
	m.state = stateBriefing
	m.hasBriefing = true
	m.pager.unload()
	m.pager.setSize(m.common.width, m.common.height)
	cmds := []tea.Cmd{m.pager.load(b)}
	if m.common.svc.Flag != nil {
		cmds = append(cmds, fetchFlag(m.ctx, m.common.svc.Flag, b.Country))
	}
	return tea.Batch(cmds...)
}

func (m model) backState() state {
	if m.hasBriefing {
		return stateBriefing
	}
	return stateForm
}

func (m model) View() string {
	switch m.state {
	case stateLoading:
		return m.loadingView()
	case stateBriefing:
		return m.pager.View()
	case stateHistory:
		return "\n" + indent(m.history.view(), 2)
	default:
		return m.formView()
	}
}

func (m model) formView() string {
	s := fmt.Sprintf("%s %s\n\n%s\n%s",
		logoView(),
		titleStyle.Render("Model UN briefing"),
		m.form.view(),
		helpView(
			"tab", "next",
			"←/→", "detail",
			"space", "toggle",
			"enter", "generate",
			"ctrl+l", "history",
			"ctrl+c", "quit",
		),
	)
	return "\n" + indent(s, 2)
}

func (m model) loadingView() string {
	req := m.form.request()
	s := fmt.Sprintf("%s %s\n\n%s %s\n\n%s\n\n%s",
		logoView(),
		titleStyle.Render(req.Country+" · "+req.Topic),
		m.spinner.View(),
		loadingMessages[m.loadingMsg],
		subtleStyle.Render(fmt.Sprintf("%s briefing", req.Detail)),
		helpView("esc", "cancel"),
	)
	return "\n" + indent(s, 2)
}

// COMMANDS

func generate(ctx context.Context, svc Services, req briefing.Request, gen int) tea.Cmd {
	return func() tea.Msg {
		b, err := svc.Generator.Generate(ctx, req)
		if err != nil {
			return briefingMsg{gen: gen, err: err}
		}
		if svc.History != nil {
			if _, err := svc.History.Add(history.NewItem(b)); err != nil {
				log.Warn("Unable to save briefing to history", "err", err)
			}
		}
		return briefingMsg{gen: gen, b: b}
	}
}

func loadingTick(gen int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return loadingTickMsg{gen}
	})
}

func loadCountries(ctx context.Context, fn func(context.Context) ([]string, error)) tea.Cmd {
	return func() tea.Msg {
		names, err := fn(ctx)
		if err != nil {
			log.Warn("Country suggestions unavailable", "err", err)
			return nil
		}
		return countriesLoadedMsg(names)
	}
}

func fetchFlag(ctx context.Context, fn func(context.Context, string) (string, error), country string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, flagTimeout)
		defer cancel()
		url, err := fn(ctx, country)
		if err != nil {
			log.Warn("Unable to find flag", "country", country, "err", err)
			return nil
		}
		return flagMsg(url)
	}
}

func pronounce(ctx context.Context, svc Services, country string) tea.Cmd {
	return func() tea.Msg {
		if err := tts.Speak(ctx, svc.Speech, svc.Output, country); err != nil {
			log.Error("Pronunciation failed", "country", country, "err", err)
			return statusMsg{text: "Pronunciation unavailable", isErr: true}
		}
		return nil
	}
}

func copyBriefing(fn func(string, []briefing.Source) error, b briefing.Briefing) tea.Cmd {
	return func() tea.Msg {
		if err := fn(b.Summary, b.Sources); err != nil {
			log.Error("Copy failed", "err", err)
			return statusMsg{text: "Unable to copy to clipboard", isErr: true}
		}
		return statusMsg{text: "Copied to clipboard!"}
	}
}

func exportBriefing(dir string, b briefing.Briefing, flagURL string) tea.Cmd {
	return func() tea.Msg {
		path := filepath.Join(dir, export.Filename(b.Country, b.Topic))
		if err := export.WriteFile(path, export.FromBriefing(b, flagURL, time.Now())); err != nil {
			log.Error("Export failed", "path", path, "err", err)
			return statusMsg{text: "Export failed: " + err.Error(), isErr: true}
		}
		return statusMsg{text: "Saved " + path}
	}
}

func waitForStatusMessageTimeout(t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C
		return statusMessageTimeoutMsg{}
	}
}

// ETC

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}
