package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type noteLevel int

const (
	levelInfo noteLevel = iota
	levelSuccess
	levelWarning
	levelError
)

var noteStyles = map[noteLevel]lipgloss.Style{
	levelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4")),
	levelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("10")),
	levelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("11")),
	levelError:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("9")),
}

// notification is a transient status line.
type notification struct {
	level noteLevel
	text  string
}

func (n notification) active() bool { return n.text != "" }

type noteExpiredMsg struct{ seq int }

// notify shows text until the configured TTL elapses or a newer
// notification replaces it.
func (m *Model) notify(level noteLevel, text string) tea.Cmd {
	m.noteSeq++
	m.note = notification{level: level, text: text}
	seq := m.noteSeq
	return tea.Tick(m.settings.NotificationTTL, func(time.Time) tea.Msg {
		return noteExpiredMsg{seq: seq}
	})
}

func (m *Model) expireNote(msg noteExpiredMsg) {
	if msg.seq == m.noteSeq {
		m.note = notification{}
	}
}
