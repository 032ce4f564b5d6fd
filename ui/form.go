package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dgnsrekt/envoy/internal/briefing"
	"github.com/dgnsrekt/envoy/internal/countries"
)

const maxVisibleSuggestions = 5

type formField int

const (
	fieldCountry formField = iota
	fieldTopic
	fieldDetail
	fieldHistory
	fieldCount
)

type countriesLoadedMsg []string

type formModel struct {
	common *commonModel

	country textinput.Model
	topic   textinput.Model
	focus   formField

	detail         int
	includeHistory bool

	countries   []string
	suggestions []string
	suggestion  int

	err error
}

func newFormModel(common *commonModel) formModel {
	country := textinput.New()
	country.Placeholder = "e.g. Brazil"
	country.Prompt = ""
	country.CharLimit = 80
	country.Focus()

	topic := textinput.New()
	topic.Placeholder = "e.g. Climate finance for developing nations"
	topic.Prompt = ""
	topic.CharLimit = 200

	m := formModel{
		common:         common,
		country:        country,
		topic:          topic,
		detail:         1,
		includeHistory: common.cfg.IncludeHistory,
	}
	for i, l := range briefing.DetailLevels {
		if l == common.cfg.Detail {
			m.detail = i
		}
	}
	return m
}

func (m *formModel) setSize(w int) {
	inputWidth := max(20, min(60, w-16))
	m.country.Width = inputWidth
	m.topic.Width = inputWidth
}

// request returns the briefing request described by the form.
func (m formModel) request() briefing.Request {
	return briefing.Request{
		Country:        strings.TrimSpace(m.country.Value()),
		Topic:          strings.TrimSpace(m.topic.Value()),
		Detail:         briefing.DetailLevels[m.detail],
		IncludeHistory: m.includeHistory,
	}
}

// fill loads a previous request into the form.
func (m *formModel) fill(req briefing.Request) {
	m.country.SetValue(req.Country)
	m.topic.SetValue(req.Topic)
	for i, l := range briefing.DetailLevels {
		if l == req.Detail {
			m.detail = i
		}
	}
	m.includeHistory = req.IncludeHistory
	m.suggestions = nil
	m.err = nil
}

func (m *formModel) setFocus(f formField) tea.Cmd {
	m.focus = (f + fieldCount) % fieldCount
	m.country.Blur()
	m.topic.Blur()
	if m.focus != fieldCountry {
		m.suggestions = nil
	}
	switch m.focus {
	case fieldCountry:
		return m.country.Focus()
	case fieldTopic:
		return m.topic.Focus()
	}
	return nil
}

func (m *formModel) updateSuggestions() {
	m.suggestions = countries.Suggest(m.countries, m.country.Value(), 0)
	if len(m.suggestions) == 1 && strings.EqualFold(m.suggestions[0], strings.TrimSpace(m.country.Value())) {
		m.suggestions = nil
	}
	m.suggestion = 0
}

// acceptSuggestion copies the highlighted suggestion into the country field
// and reports whether there was one.
func (m *formModel) acceptSuggestion() bool {
	if m.focus != fieldCountry || len(m.suggestions) == 0 {
		return false
	}
	m.country.SetValue(m.suggestions[m.suggestion])
	m.country.CursorEnd()
	m.suggestions = nil
	return true
}

// update handles input while the form is shown. Enter is handled by the
// parent model.
func (m formModel) update(msg tea.Msg) (formModel, tea.Cmd) {
	switch msg := msg.(type) {
	case countriesLoadedMsg:
		m.countries = msg
		if m.focus == fieldCountry && m.country.Value() != "" {
			m.updateSuggestions()
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			if m.acceptSuggestion() {
				return m, nil
			}
			return m, m.setFocus(m.focus + 1)
		case "shift+tab":
			return m, m.setFocus(m.focus - 1)
		case "down", "ctrl+n":
			if m.focus == fieldCountry && len(m.suggestions) > 0 {
				m.suggestion = (m.suggestion + 1) % min(len(m.suggestions), maxVisibleSuggestions)
				return m, nil
			}
			return m, m.setFocus(m.focus + 1)
		case "up", "ctrl+p":
			if m.focus == fieldCountry && len(m.suggestions) > 0 {
				n := min(len(m.suggestions), maxVisibleSuggestions)
				m.suggestion = (m.suggestion + n - 1) % n
				return m, nil
			}
			return m, m.setFocus(m.focus - 1)
		case "esc":
			m.suggestions = nil
			return m, nil
		}

		switch m.focus {
		case fieldDetail:
			switch msg.String() {
			case "left", "h":
				m.detail = (m.detail + len(briefing.DetailLevels) - 1) % len(briefing.DetailLevels)
			case "right", "l", " ":
				m.detail = (m.detail + 1) % len(briefing.DetailLevels)
			}
			return m, nil
		case fieldHistory:
			if msg.String() == " " || msg.String() == "x" {
				m.includeHistory = !m.includeHistory
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case fieldCountry:
		before := m.country.Value()
		m.country, cmd = m.country.Update(msg)
		if m.country.Value() != before {
			m.err = nil
			m.updateSuggestions()
		}
	case fieldTopic:
		m.topic, cmd = m.topic.Update(msg)
	}
	return m, cmd
}

func (m formModel) view() string {
	var b strings.Builder

	label := func(f formField, s string) string {
		if m.focus == f {
			return focusedLabel.Render(s)
		}
		return labelStyle.Render(s)
	}

	fmt.Fprintf(&b, "%s %s\n", label(fieldCountry, "Country"), m.country.View())
	for i, s := range m.suggestions {
		if i == maxVisibleSuggestions {
			break
		}
		if i == m.suggestion {
			fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(""), selectedStyle.Render("› "+s))
		} else {
			fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(""), suggestStyle.Render("  "+s))
		}
	}
	fmt.Fprintf(&b, "%s %s\n", label(fieldTopic, "Topic"), m.topic.View())

	levels := make([]string, len(briefing.DetailLevels))
	for i, l := range briefing.DetailLevels {
		if i == m.detail {
			levels[i] = selectedStyle.Render("[" + string(l) + "]")
		} else {
			levels[i] = dimStyle.Render(" " + string(l) + " ")
		}
	}
	fmt.Fprintf(&b, "%s %s\n", label(fieldDetail, "Detail"), strings.Join(levels, " "))

	check := "[ ]"
	if m.includeHistory {
		check = "[x]"
	}
	fmt.Fprintf(&b, "%s %s %s\n", label(fieldHistory, "History"), check, dimStyle.Render("include historical background"))

	if m.err != nil {
		fmt.Fprintf(&b, "\n%s\n", errorStyle.Render(m.err.Error()))
	}
	return b.String()
}
