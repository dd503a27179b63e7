package tui

import (
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/severity"
	"github.com/charmbracelet/lipgloss"
)

// Color palette
const (
	colorPrimary = "#7D56F4"
	colorHigh    = "#FF4D4F"
	colorMedium  = "#FAAD14"
	colorLow     = "#04B575"
	colorInfo    = "#626262"
	colorText    = "#FAFAFA"
	colorBorder  = "#874BFD"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorPrimary)).
			MarginBottom(1)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorInfo))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorHigh))

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorBorder)).
			Padding(0, 1)

	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorText)).
			Background(lipgloss.Color(colorPrimary))

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color(colorHigh)).
			Padding(1, 3)

	CodeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorText)).
			PaddingLeft(2)
)

// SeverityStyle - единственное место, где уровень превращается в цвет.
func SeverityStyle(level severity.Level) lipgloss.Style {
	color := colorLow
	switch level {
	case severity.High:
		color = colorHigh
	case severity.Medium:
		color = colorMedium
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color))
}

// Score рисует оценку 0..100 цветом ее уровня.
func Score(score float64) string {
	return SeverityStyle(severity.Classify(score)).Render(formatScore(score))
}
