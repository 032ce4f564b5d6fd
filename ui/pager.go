package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/envoy/internal/briefing"
	"github.com/dgnsrekt/envoy/utils"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

const statusBarHeight = 1

var (
	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}

	statusBarScrollPosStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#949494", Dark: "#5A5A5A"}).
				Background(statusBarBg).
				Render

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarPlaybackStyle = lipgloss.NewStyle().
				Background(statusBarBg).
				Render

	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render

	helpViewStyle = lipgloss.NewStyle().
			Foreground(statusBarNoteFg).
			Background(lipgloss.AdaptiveColor{Light: "#f2f2f2", Dark: "#1B1B1B"}).
			Render
)

type contentRenderedMsg string

type pagerState int

const (
	pagerStateBrowse pagerState = iota
	pagerStateStatusMessage
)

type pagerModel struct {
	common   *commonModel
	viewport viewport.Model
	state    pagerState
	showHelp bool

	statusMessage      string
	statusMessageIsErr bool
	statusMessageTimer *time.Timer

	// The briefing being shown, kept unrendered so it can be re-rendered on
	// resize.
	doc     briefing.Briefing
	flagURL string
}

func newPagerModel(common *commonModel) pagerModel {
	vp := viewport.New(0, 0)
	return pagerModel{
		common:   common,
		state:    pagerStateBrowse,
		viewport: vp,
	}
}

func (m *pagerModel) setSize(w, h int) {
	m.viewport.Width = w
	m.viewport.Height = h - statusBarHeight
	if m.showHelp {
		m.viewport.Height -= strings.Count(m.helpView(), "\n") + 1
	}
}

func (m *pagerModel) setContent(s string) {
	m.viewport.SetContent(s)
}

func (m *pagerModel) toggleHelp() {
	m.showHelp = !m.showHelp
	m.setSize(m.common.width, m.common.height)
	if m.viewport.PastBottom() {
		m.viewport.GotoBottom()
	}
}

// load shows b and returns the command that renders it.
func (m *pagerModel) load(b briefing.Briefing) tea.Cmd {
	m.doc = b
	m.flagURL = ""
	m.viewport.GotoTop()
	return renderWithGlamour(*m, documentMarkdown(b))
}

func (m *pagerModel) showStatusMessage(msg string, isErr bool) tea.Cmd {
	m.state = pagerStateStatusMessage
	m.statusMessage = msg
	m.statusMessageIsErr = isErr
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)
	return waitForStatusMessageTimeout(m.statusMessageTimer)
}

func (m *pagerModel) unload() {
	if m.showHelp {
		m.toggleHelp()
	}
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.state = pagerStateBrowse
	m.viewport.SetContent("")
	m.viewport.YOffset = 0
}

func (m pagerModel) update(msg tea.Msg) (pagerModel, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "home", "g":
			m.viewport.GotoTop()
			return m, nil
		case "end", "G":
			m.viewport.GotoBottom()
			return m, nil
		case "d":
			m.viewport.HalfPageDown()
			return m, nil
		case "u":
			m.viewport.HalfPageUp()
			return m, nil
		case "?":
			m.toggleHelp()
			return m, nil
		}

	case contentRenderedMsg:
		m.setContent(string(msg))

	case flagMsg:
		m.flagURL = string(msg)

	case statusMessageTimeoutMsg:
		m.state = pagerStateBrowse

	case tea.WindowSizeMsg:
		return m, renderWithGlamour(m, documentMarkdown(m.doc))
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m pagerModel) View() string {
	var b strings.Builder
	fmt.Fprint(&b, m.viewport.View()+"\n")
	m.statusBarView(&b)
	if m.showHelp {
		fmt.Fprint(&b, "\n"+m.helpView())
	}
	return b.String()
}

func (m pagerModel) statusBarView(b *strings.Builder) {
	showStatusMessage := m.state == pagerStateStatusMessage

	logo := logoView()

	percent := math.Max(0, math.Min(1, m.viewport.ScrollPercent()))
	scrollPercent := statusBarScrollPosStyle(fmt.Sprintf(" %3.f%% ", percent*100))

	helpNote := statusBarHelpStyle(" ? Help ")

	var playing string
	if s := m.common.playback.statusView(); s != "" {
		playing = statusBarPlaybackStyle(" " + s + " ")
	}

	var note string
	if showStatusMessage {
		note = m.statusMessage
	} else {
		note = m.doc.Country + " · " + m.doc.Topic
		if m.flagURL != "" {
			note += " · " + m.flagURL
		}
	}
	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(playing)-
			ansi.PrintableRuneWidth(scrollPercent)-
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)

	style := statusBarNoteStyle
	switch {
	case showStatusMessage && m.statusMessageIsErr:
		style = lipgloss.NewStyle().Foreground(cream).Background(red).Render
	case showStatusMessage:
		style = statusBarMessageStyle
	}
	note = style(note)

	padding := max(0,
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(playing)-
			ansi.PrintableRuneWidth(scrollPercent)-
			ansi.PrintableRuneWidth(helpNote),
	)
	emptySpace := style(strings.Repeat(" ", padding))

	fmt.Fprintf(b, "%s%s%s%s%s%s",
		logo,
		note,
		emptySpace,
		playing,
		scrollPercent,
		helpNote,
	)
}

func (m pagerModel) helpView() string {
	col1 := []string{
		"g/home  go to top",
		"G/end   go to bottom",
		"d       ½ page down",
		"u       ½ page up",
		"?       close help",
	}
	col2 := []string{
		"r  read aloud / stop",
		"p  pronounce country",
		"c  copy to clipboard",
		"e  export PDF",
	}
	col3 := []string{
		"h  history",
		"n  new briefing",
		"q  quit",
	}

	var s strings.Builder
	rows := max(len(col1), len(col2), len(col3))
	for i := 0; i < rows; i++ {
		line := "  " + cell(col1, i, 24) + cell(col2, i, 26) + cell(col3, i, 0)
		line = truncate.String(line, uint(max(0, m.common.width))) //nolint:gosec
		pad := max(0, m.common.width-ansi.PrintableRuneWidth(line))
		s.WriteString(helpViewStyle(line + strings.Repeat(" ", pad)))
		if i+1 < rows {
			s.WriteString("\n")
		}
	}
	return s.String()
}

func cell(col []string, i, width int) string {
	var s string
	if i < len(col) {
		s = col[i]
	}
	if pad := width - ansi.PrintableRuneWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// documentMarkdown is the Markdown shown in the pager: the summary followed
// by its sources.
func documentMarkdown(b briefing.Briefing) string {
	if len(b.Sources) == 0 {
		return b.Summary
	}
	var s strings.Builder
	s.WriteString(b.Summary)
	s.WriteString("\n\n---\n\n### Sources\n\n")
	for _, src := range b.Sources {
		fmt.Fprintf(&s, "- [%s](%s)\n", src.Title, src.URI)
	}
	return s.String()
}

// COMMANDS

func renderWithGlamour(m pagerModel, md string) tea.Cmd {
	return func() tea.Msg {
		s, err := glamourRender(m, md)
		if err != nil {
			log.Error("error rendering with Glamour", "error", err)
			return errMsg{err}
		}
		return contentRenderedMsg(s)
	}
}

func glamourRender(m pagerModel, markdown string) (string, error) {
	if !m.common.cfg.GlamourEnabled {
		return markdown, nil
	}

	width := max(0, min(int(m.common.cfg.GlamourMaxWidth), m.viewport.Width)) //nolint:gosec
	r, err := glamour.NewTermRenderer(
		utils.GlamourStyle(m.common.cfg.GlamourStyle),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("error creating glamour renderer: %w", err)
	}

	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("error rendering markdown: %w", err)
	}
	return strings.TrimRight(out, "\n"), nil
}
