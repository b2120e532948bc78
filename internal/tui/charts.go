package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"brvm/internal/dashboard"
)

const (
	chartLabelWidth = 14
	chartMinWidth   = 36
)

// renderCharts lays the two charts side by side when the terminal is wide
// enough, stacked otherwise.
func (m *Model) renderCharts() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	half := width/2 - 2
	if half >= chartMinWidth {
		left := renderPerformers(m.charts.Performers, half)
		right := renderSectors(m.charts.Sectors, half)
		return lipgloss.JoinHorizontal(lipgloss.Top, lipgloss.NewStyle().Width(half+2).Render(left), right)
	}
	return renderPerformers(m.charts.Performers, width) + "\n\n" + renderSectors(m.charts.Sectors, width)
}

// renderPerformers draws one bar per performer, scaled to the largest
// absolute variation.
func renderPerformers(bars []dashboard.Bar, width int) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render(" Top performers "))
	b.WriteByte('\n')
	if len(bars) == 0 {
		b.WriteString(dimStyle.Render(dashboard.NoDataMessage))
		return b.String()
	}

	var maxAbs float64
	for _, bar := range bars {
		maxAbs = math.Max(maxAbs, math.Abs(bar.Variation))
	}
	barWidth := width - chartLabelWidth - 10
	if barWidth < 1 {
		barWidth = 1
	}
	for _, bar := range bars {
		n := 0
		if maxAbs > 0 {
			n = int(math.Round(math.Abs(bar.Variation) / maxAbs * float64(barWidth)))
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(bar.Color))
		b.WriteString(padOrTrunc(bar.Symbol, chartLabelWidth))
		b.WriteString(style.Render(strings.Repeat("█", n)))
		b.WriteString(style.Render(fmt.Sprintf(" %+.2f%%", bar.Variation)))
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// renderSectors draws the sector distribution as proportional bars.
func renderSectors(chart dashboard.SectorChart, width int) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render(" Sectors "))
	b.WriteByte('\n')
	if chart.Total == 0 {
		b.WriteString(dimStyle.Render(dashboard.NoDataMessage))
		return b.String()
	}

	barWidth := width - chartLabelWidth - 14
	if barWidth < 1 {
		barWidth = 1
	}
	for _, s := range chart.Slices {
		n := int(math.Round(s.Share * float64(barWidth)))
		if n == 0 && s.Count > 0 {
			n = 1
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color))
		b.WriteString(padOrTrunc(s.Sector, chartLabelWidth))
		b.WriteString(style.Render(strings.Repeat("█", n)))
		b.WriteString(fmt.Sprintf(" %d (%.1f%%)", s.Count, s.Share*100))
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}
