package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/envoy/internal/history"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

type (
	historyLoadedMsg   []history.Item
	historyWatchMsg    struct{ ch <-chan struct{} }
	historyChangedMsg  struct{ ch <-chan struct{} }
	historySelectedMsg history.Item
)

type historyModel struct {
	common *commonModel
	items  []history.Item
	cursor int
	offset int
}

func newHistoryModel(common *commonModel) historyModel {
	return historyModel{common: common}
}

func (m *historyModel) setItems(items []history.Item) {
	m.items = items
	if m.cursor >= len(items) {
		m.cursor = max(0, len(items)-1)
	}
}

func (m historyModel) selected() (history.Item, bool) {
	if len(m.items) == 0 {
		return history.Item{}, false
	}
	return m.items[m.cursor], true
}

// visibleRows is the number of items that fit on screen.
func (m historyModel) visibleRows() int {
	return max(1, m.common.height-6)
}

func (m historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = max(0, len(m.items)-1)
	case "enter":
		if item, ok := m.selected(); ok {
			return m, func() tea.Msg { return historySelectedMsg(item) }
		}
	case "d", "x":
		if item, ok := m.selected(); ok {
			return m, deleteHistoryItem(m.common.svc.History, item.ID)
		}
	}

	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	return m, nil
}

func (m historyModel) view() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", logoView(), titleStyle.Render("History"))

	if len(m.items) == 0 {
		fmt.Fprintf(&b, "  %s\n", subtleStyle.Render("No briefings yet."))
	}

	end := min(len(m.items), m.offset+m.visibleRows())
	for i := m.offset; i < end; i++ {
		item := m.items[i]
		when := humanize.Time(item.Timestamp)
		line := fmt.Sprintf("%s · %s", item.Country, item.Topic)
		line = runewidth.Truncate(line, max(10, m.common.width-len(when)-8), ellipsis)
		if i == m.cursor {
			fmt.Fprintf(&b, "%s %s %s\n", selectedStyle.Render("›"), selectedStyle.Render(line), dimStyle.Render(when))
		} else {
			fmt.Fprintf(&b, "  %s %s\n", line, dimStyle.Render(when))
		}
	}

	fmt.Fprintf(&b, "\n%s", helpView("enter", "open", "d", "delete", "esc", "back", "q", "quit"))
	return b.String()
}

// COMMANDS

func loadHistory(store *history.Store) tea.Cmd {
	return func() tea.Msg {
		if err := store.Load(); err != nil {
			log.Warn("Unable to load history", "err", err)
		}
		return historyLoadedMsg(store.List())
	}
}

func deleteHistoryItem(store *history.Store, id string) tea.Cmd {
	return func() tea.Msg {
		if err := store.Delete(id); err != nil {
			return errMsg{err}
		}
		return historyLoadedMsg(store.List())
	}
}

func watchHistory(m model) tea.Cmd {
	return func() tea.Msg {
		ch, err := m.common.svc.History.Watch(m.ctx)
		if err != nil {
			log.Warn("Unable to watch history", "err", err)
			return nil
		}
		return historyWatchMsg{ch}
	}
}

func waitForHistoryChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return historyChangedMsg{ch}
	}
}
