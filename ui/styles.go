package ui

import "github.com/charmbracelet/lipgloss"

// Colors.
var (
	normalDim = lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}
	gray      = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}
	midGray   = lipgloss.AdaptiveColor{Light: "#B2B2B2", Dark: "#4A4A4A"}
	cream     = lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}
	fuchsia   = lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}
	green     = lipgloss.Color("#04B575")
	red       = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	blue      = lipgloss.AdaptiveColor{Light: "#1E5AB4", Dark: "#00AAFF"}
)

var (
	logoStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(lipgloss.Color("#1E5AB4")).
			Bold(true)

	titleStyle = lipgloss.NewStyle().Bold(true)

	errorTitleStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(red).
			Padding(0, 1)

	errorStyle    = lipgloss.NewStyle().Foreground(red)
	subtleStyle   = lipgloss.NewStyle().Foreground(gray)
	dimStyle      = lipgloss.NewStyle().Foreground(normalDim)
	labelStyle    = lipgloss.NewStyle().Foreground(gray).Width(10)
	focusedLabel  = lipgloss.NewStyle().Foreground(fuchsia).Width(10)
	selectedStyle = lipgloss.NewStyle().Foreground(fuchsia)
	suggestStyle  = lipgloss.NewStyle().Foreground(midGray)
	playingStyle  = lipgloss.NewStyle().Foreground(green)
	loadingStyle  = lipgloss.NewStyle().Foreground(blue)
	spinnerStyle  = lipgloss.NewStyle().Foreground(fuchsia)
	helpKeyStyle  = lipgloss.NewStyle().Foreground(normalDim)
	helpDescStyle = lipgloss.NewStyle().Foreground(midGray)
	dividerStyle  = lipgloss.NewStyle().Foreground(midGray)
)

func logoView() string {
	return logoStyle.Render(" envoy ")
}

// helpView renders key/description pairs on one line.
func helpView(pairs ...string) string {
	var s string
	for i := 0; i+1 < len(pairs); i += 2 {
		if i > 0 {
			s += dividerStyle.Render(" • ")
		}
		s += helpKeyStyle.Render(pairs[i]) + " " + helpDescStyle.Render(pairs[i+1])
	}
	return s
}
