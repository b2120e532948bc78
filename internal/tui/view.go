package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"brvm/internal/dashboard"
)

// Column widths in display cells, in dashboard.Columns order.
var colWidths = []int{8, 26, 14, 14, 10, 11, 18}

const markWidth = 2

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	var b strings.Builder
	b.WriteString(m.headerBar())
	b.WriteByte('\n')
	b.WriteString(m.summaryLine())
	b.WriteByte('\n')
	b.WriteString(m.searchLine())
	b.WriteByte('\n')
	if m.detail != nil {
		b.WriteString(m.renderDetail())
	} else {
		b.WriteString(m.viewport.View())
	}
	b.WriteByte('\n')
	b.WriteString(m.footerBar())
	return b.String()
}

func (m Model) headerBar() string {
	parts := []string{" " + Title}

	ts := m.state.Timestamp()
	switch {
	case ts.IsZero() && m.state.Loaded():
		parts = append(parts, "updated -")
	case m.loading && ts.IsZero():
		parts = append(parts, "loading...")
	case ts.IsZero():
		parts = append(parts, "no data")
	default:
		parts = append(parts, fmt.Sprintf("updated %s (%s)", m.fmt.DateTime(ts), humanize.RelTime(ts, m.now(), "ago", "from now")))
	}
	if m.cal != nil {
		if m.cal.IsMarketOpen(m.now()) {
			parts = append(parts, "market open")
		} else {
			parts = append(parts, "market closed, opens "+m.fmt.DateTime(m.cal.NextOpen(m.now())))
		}
	}
	if m.sched != nil {
		if m.sched.Enabled() {
			parts = append(parts, "auto "+m.sched.Interval().String())
		} else {
			parts = append(parts, "auto off")
		}
	}
	parts = append(parts, "sort "+m.state.SortState().Label())

	return headerBarStyle.Render(padOrTrunc(strings.Join(parts, "  |  "), m.width))
}

func (m Model) summaryLine() string {
	s := m.summary
	if s.Count == 0 {
		return dimStyle.Render(padOrTrunc(" "+dashboard.NoDataMessage, m.width))
	}
	avg := dashboard.DirectionOf(s.AvgVariation)
	line := fmt.Sprintf(" %s stocks  vol %s  value %s  avg %s  %s %s %s",
		humanize.Comma(int64(s.Count)),
		humanize.Comma(s.TotalVolume),
		dashboard.FormatCompact(s.TotalValue),
		directionStyle(avg).Render(dashboard.FormatVariation(s.AvgVariation)),
		gainStyle.Render(fmt.Sprintf("%s%d", dashboard.Up.Glyph(), s.Advancers)),
		lossStyle.Render(fmt.Sprintf("%s%d", dashboard.Down.Glyph(), s.Decliners)),
		dimStyle.Render(fmt.Sprintf("%s%d", dashboard.Neutral.Glyph(), s.Unchanged)),
	)
	// Indices are appended while they fit.
	for _, idx := range m.indices {
		seg := fmt.Sprintf("  |  %s %s %s", idx.Name, humanize.CommafWithDigits(idx.Value, 2),
			directionStyle(dashboard.DirectionOf(idx.Change)).Render(dashboard.FormatVariation(idx.Change)))
		if m.width > 0 && lipgloss.Width(line+seg) > m.width {
			break
		}
		line += seg
	}
	return line
}

func (m Model) searchLine() string {
	if m.search.Focused() || m.search.Value() != "" {
		return m.search.View()
	}
	return dimStyle.Render(" press / to search")
}

func (m Model) footerBar() string {
	if m.note.active() {
		return noteStyles[m.note.level].Render(padOrTrunc(" "+m.note.text, m.width))
	}
	left := " " + m.help.ShortHelpView(keys.ShortHelp())
	right := fmt.Sprintf(" %3.f%% ", m.viewport.ScrollPercent()*100)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return footerBarStyle.Render(padOrTrunc(left, m.width))
	}
	return footerBarStyle.Render(left + strings.Repeat(" ", gap) + right)
}

// renderContent builds the scrollable body: table then charts.
func (m *Model) renderContent() string {
	var b strings.Builder
	b.WriteString(m.renderColumnHeader())
	b.WriteByte('\n')
	for i, row := range m.rows {
		b.WriteString(m.renderRow(row, i == m.selected))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(m.renderCharts())
	return b.String()
}

func (m *Model) renderColumnHeader() string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", markWidth))
	for i, cell := range m.header {
		title := fmt.Sprintf("%d %s", i+1, cell.Title())
		if cell.Column.Numeric {
			title = padLeft(title, colWidths[i])
		} else {
			title = padOrTrunc(title, colWidths[i])
		}
		style := colHeaderStyle
		if cell.Indicator != "" {
			style = activeColStyle
		}
		b.WriteString(style.Render(title))
		b.WriteByte(' ')
	}
	return b.String()
}

func (m *Model) renderRow(row dashboard.Row, selected bool) string {
	if row.Placeholder {
		text := row.Message
		if row.Retry {
			text += "  (enter or r to retry)"
			return hlStyle(errorRowStyle, selected).Render(padOrTrunc("  "+text, m.tableWidth()))
		}
		return hlStyle(dimStyle, selected).Render(padOrTrunc("  "+text, m.tableWidth()))
	}

	mark, sym := "  ", symbolStyle
	if m.watched[row.Symbol] {
		mark, sym = "★ ", symbolWlStyle
	}
	sp := hlStyle(lipgloss.NewStyle(), selected).Render(" ")
	cells := []string{
		hlStyle(symbolWlStyle, selected).Render(mark),
		hlStyle(sym, selected).Render(padOrTrunc(row.Symbol, colWidths[0])),
		hlStyle(priceStyle, selected).Render(padOrTrunc(row.Name, colWidths[1])),
		hlStyle(dimStyle, selected).Render(padOrTrunc(row.Sector, colWidths[2])),
		hlStyle(priceStyle, selected).Render(padLeft(row.Price, colWidths[3])),
		hlStyle(directionStyle(row.Direction), selected).Render(padLeft(row.Variation, colWidths[4])),
		hlStyle(priceStyle, selected).Render(padLeft(row.Volume, colWidths[5])),
		hlStyle(valueStyle, selected).Render(padLeft(row.Value, colWidths[6])),
	}
	return cells[0] + strings.Join(cells[1:], sp)
}

func (m *Model) tableWidth() int {
	w := markWidth
	for _, c := range colWidths {
		w += c + 1
	}
	return w
}

func (m Model) renderDetail() string {
	d := m.detail
	line := func(label, value string) string {
		return dimStyle.Render(padOrTrunc(label, 16)) + value
	}
	watch := dimStyle.Render("w add to watchlist")
	if m.watched[d.Symbol] {
		watch = symbolWlStyle.Render("★ in your watchlist") + dimStyle.Render("  x remove")
	}
	body := strings.Join([]string{
		symbolStyle.Render(d.Symbol) + "  " + d.Name,
		"",
		line("Sector", d.Sector),
		line("Price", d.Price),
		line("Variation", directionStyle(d.Direction).Render(d.Variation)),
		line("Volume", d.Volume),
		line("Value", d.Value),
		line("Open", d.Open),
		line("High", d.High),
		line("Low", d.Low),
		line("Previous close", d.PreviousClose),
		"",
		watch + dimStyle.Render("  esc close"),
	}, "\n")
	box := detailBoxStyle.Render(body)
	return lipgloss.Place(m.width, m.viewport.Height, lipgloss.Center, lipgloss.Center, box)
}
