package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"brvm/internal/dashboard"
)

// Styles.
var (
	headerBarStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	footerBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	symbolStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	symbolWlStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208")) // orange for watchlist
	gainStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	colHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	activeColStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	priceStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	valueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	errorRowStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	sectionStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	detailBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("12")).Padding(0, 2)
	highlightBG    = lipgloss.Color("236") // dark grey background
)

// hlStyle returns a copy of s with the highlight background applied when hl is true.
func hlStyle(s lipgloss.Style, hl bool) lipgloss.Style {
	if hl {
		return s.Background(highlightBG)
	}
	return s
}

func directionStyle(d dashboard.Direction) lipgloss.Style {
	switch d {
	case dashboard.Up:
		return gainStyle
	case dashboard.Down:
		return lossStyle
	default:
		return dimStyle
	}
}

// padOrTrunc pads s with spaces to width display cells, or truncates if
// longer.
func padOrTrunc(s string, width int) string {
	if width <= 0 {
		return ""
	}
	n := lipgloss.Width(s)
	if n == width {
		return s
	}
	if n < width {
		return s + strings.Repeat(" ", width-n)
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r)) > width {
		r = r[:len(r)-1]
	}
	out := string(r)
	return out + strings.Repeat(" ", width-lipgloss.Width(out))
}

// padLeft right-aligns s in width cells.
func padLeft(s string, width int) string {
	n := lipgloss.Width(s)
	if n >= width {
		return s
	}
	return strings.Repeat(" ", width-n) + s
}
