package export

import (
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"brvm/internal/dashboard"
)

// PrintFilename returns the printable table name for now's date (UTC).
func PrintFilename(now time.Time) string {
	return "brvm_" + now.UTC().Format("2006-01-02") + ".txt"
}

// WriteTable renders rows as a plain bordered table under a title line.
func WriteTable(w io.Writer, title string, header []dashboard.HeaderCell, rows []dashboard.Row) error {
	t := table.New().Border(lipgloss.NormalBorder())

	titles := make([]string, len(header))
	for i, h := range header {
		titles[i] = h.Title()
	}
	t = t.Headers(titles...)

	for _, r := range rows {
		if r.Placeholder {
			t = t.Row(r.Message)
			continue
		}
		t = t.Row(r.Symbol, r.Name, r.Sector, r.Price, r.Variation, r.Volume, r.Value)
	}

	out := t.Render()
	if title != "" {
		out = title + "\n\n" + out
	}
	_, err := io.WriteString(w, out+"\n")
	return err
}

// PrintFile writes the printable table to PrintFilename(now) inside dir.
func PrintFile(dir, title string, header []dashboard.HeaderCell, rows []dashboard.Row, now time.Time) (string, error) {
	return writeFile(dir, PrintFilename(now), func(w io.Writer) error {
		return WriteTable(w, title, header, rows)
	})
}
