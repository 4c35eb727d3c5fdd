package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/unowned-ai/aquarium/pkg/tanks"
)

// UI styles and layout settings
// Color palette "Blue Moon" from https://gogh-co.github.io/Gogh/
const (
	colorGray     = "#353b52"
	colorWhite    = "#ffffff"
	colorGreen    = "#acfab4"
	colorGreenDim = "#b4c4b4"
	colorRed      = "#e61f44"
	colorRedDim   = "#d06178"
	colorPurple   = "#b9a3eb"
	colorBlue     = "#89ddff"
	colorYellow   = "#ffcb6b"

	marqueeTickDuration = time.Duration(time.Second / 20)

	bordersAndPaddingWidth = 4
	panelHeightPadding     = 3
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color(colorBlue)).
			Background(lipgloss.Color(colorGray)).
			Padding(0, 2).Align(lipgloss.Center)
	subtitleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color(colorBlue))
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorGray)).
			Background(lipgloss.Color(colorGreen))
	dangerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(colorGray)).
				Background(lipgloss.Color(colorRed))
	inactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorWhite))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorBlue))
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorWhite))
	logStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(colorPurple))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorGray))
)

// Function to colorize text based on its status
// 0 (default) - unknown, 1 - green, 2 - red, 3 - yellow
func TextStatusColorize(text string, status int) string {
	switch status {
	case 1:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreenDim)).Render(text)
	case 2:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorRedDim)).Render(text)
	case 3:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorYellow)).Render(text)
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)).Render(text)
	}
}

// healthStatusColor maps a fish's health to a TextStatusColorize status.
func healthStatusColor(h tanks.HealthStatus) int {
	switch h {
	case tanks.Healthy:
		return 1
	case tanks.Sick:
		return 2
	case tanks.Recovering:
		return 3
	}
	return 0
}

// Generates pointer symbol when line in focus
func generateLinePointer(isPoint bool, length int) string {
	if isPoint {
		return ">" + strings.Repeat(" ", length-1)
	}
	return strings.Repeat(" ", length)
}

// Create a padded version marquee text for scrolling
func (m model) marqueeText(text string, availableWidth int) string {
	if len(text) <= availableWidth || availableWidth <= 0 {
		return text
	}
	paddedText := text + "    " + text
	offset := m.marqueeOffset % (len(text) + bordersAndPaddingWidth)
	if offset+availableWidth <= len(paddedText) {
		text = paddedText[offset : offset+availableWidth]
	}
	return text
}

// truncate shortens text to width, marking the cut with two dots.
func truncate(text string, width int) string {
	if len(text) > width && width > 3 {
		return text[:width-2] + ".."
	}
	return text
}

func (m model) dynamicColumnWidth() (int, int, int) {
	var leftWidth, middleWidth, rightWidth int
	switch m.columnFocus {
	case 0: // Tanks column focused
		leftWidth = (m.width * 30) / 100   // 30%
		middleWidth = (m.width * 40) / 100 // 40%
	default: // Fish column focused
		leftWidth = (m.width * 20) / 100   // 20%
		middleWidth = (m.width * 40) / 100 // 40%
	}
	rightWidth = m.width - (leftWidth + middleWidth)
	return leftWidth, middleWidth, rightWidth
}
