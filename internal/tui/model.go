// Package tui is the terminal dashboard: a bubbletea program over the
// dashboard state, loader, watchlist and auto-refresh scheduler.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"brvm/internal/dashboard"
	"brvm/internal/domain"
	"brvm/internal/export"
	"brvm/internal/loader"
	"brvm/internal/refresh"
	"brvm/internal/util"
	"brvm/internal/watchlist"
)

// Title is shown in the header bar and on printed tables.
const Title = "BRVM Observatory"

// Loader fetches a snapshot and, on success, replaces the shared state.
type Loader interface {
	Load(ctx context.Context, force bool) (*domain.Snapshot, error)
}

// Settings are the tunables of the dashboard.
type Settings struct {
	ChartSize       int
	SearchDebounce  time.Duration
	NotificationTTL time.Duration
	LoadTimeout     time.Duration
	ExportDir       string
}

// Deps are the collaborators of the dashboard. Watchlist and Calendar may be
// nil.
type Deps struct {
	State     *dashboard.State
	Loader    Loader
	Watchlist *watchlist.Watchlist
	Scheduler *refresh.Scheduler
	Ticks     <-chan struct{} // one value per scheduler tick
	Formatter *dashboard.Formatter
	Calendar  *util.TradingCalendar
	Logger    *slog.Logger
	Settings  Settings
}

// Messages.
type (
	loadedMsg struct {
		snap  *domain.Snapshot
		force bool
	}
	loadFailedMsg struct{ err error }
	refreshTickMsg struct{}
	debounceMsg    struct{ seq int }

	watchlistLoadedMsg struct {
		symbols []string
		err     error
	}
	watchStatusMsg struct {
		symbol  string
		watched bool
		err     error
	}
	watchlistChangedMsg struct {
		symbol  string
		outcome watchlist.Outcome
		err     error
	}
	exportedMsg struct {
		what string
		path string
		err  error
	}
)

// Model is the bubbletea model of the dashboard.
type Model struct {
	state    *dashboard.State
	loader   Loader
	watch    *watchlist.Watchlist
	sched    *refresh.Scheduler
	ticks    <-chan struct{}
	fmt      *dashboard.Formatter
	cal      *util.TradingCalendar
	log      *slog.Logger
	settings Settings
	now      func() time.Time

	search    textinput.Model
	term      string
	searchSeq int
	help      help.Model

	viewport viewport.Model
	ready    bool
	width    int
	height   int

	header   []dashboard.HeaderCell
	rows     []dashboard.Row
	selected int
	loadErr  error // cleared when the table is next redrawn from state
	loading  bool
	charts   dashboard.Charts
	summary  dashboard.Summary
	indices  []domain.MarketIndex
	watched  map[string]bool
	detail   *dashboard.Detail

	note    notification
	noteSeq int
}

// New builds the dashboard model. The first load is issued by Init.
func New(d Deps) Model {
	s := d.Settings
	if s.ChartSize <= 0 {
		s.ChartSize = dashboard.DefaultChartSize
	}
	if s.SearchDebounce <= 0 {
		s.SearchDebounce = 300 * time.Millisecond
	}
	if s.NotificationTTL <= 0 {
		s.NotificationTTL = 5 * time.Second
	}
	if s.LoadTimeout <= 0 {
		s.LoadTimeout = 30 * time.Second
	}
	if s.ExportDir == "" {
		s.ExportDir = "."
	}
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "symbol or company"
	ti.CharLimit = 64

	m := Model{
		state:    d.State,
		loader:   d.Loader,
		watch:    d.Watchlist,
		sched:    d.Scheduler,
		ticks:    d.Ticks,
		fmt:      d.Formatter,
		cal:      d.Calendar,
		log:      log,
		settings: s,
		now:      time.Now,
		search:   ti,
		help:     help.New(),
		watched:  make(map[string]bool),
		loading:  true,
	}
	m.redraw()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(false), m.loadWatchlistCmd(), waitForTick(m.ticks))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.search.Focused() {
			cmd := m.updateSearch(msg)
			return m, cmd
		}
		if m.detail != nil && (msg.String() == "esc" || msg.String() == "enter") {
			m.detail = nil
			return m, nil
		}
		for _, a := range dispatch {
			if key.Matches(msg, a.binding) {
				cmd := a.run(&m, msg)
				return m, cmd
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		vpHeight := m.height - 4 // header + summary + search + footer
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.search.Width = m.width - 4
		m.redraw()
		return m, nil

	case loadedMsg:
		m.loading = false
		m.loadErr = nil
		records := m.state.Records()
		m.charts = dashboard.BuildCharts(records, m.settings.ChartSize)
		m.summary = dashboard.Summarize(records)
		if msg.snap != nil {
			m.indices = msg.snap.Indices
		}
		m.redraw()
		m.log.Info("snapshot loaded", "stocks", len(records), "force", msg.force)
		if msg.force {
			return m, m.notify(levelSuccess, "Data refreshed")
		}
		return m, nil

	case loadFailedMsg:
		m.loading = false
		m.loadErr = msg.err
		m.log.Error("loading snapshot", "error", msg.err)
		m.redraw()
		return m, m.notify(levelError, "Failed to load data: "+errorText(msg.err))

	case refreshTickMsg:
		m.loading = true
		return m, tea.Batch(m.loadCmd(false), waitForTick(m.ticks))

	case debounceMsg:
		if msg.seq == m.searchSeq {
			m.applySearch(m.search.Value())
		}
		return m, nil

	case noteExpiredMsg:
		m.expireNote(msg)
		return m, nil

	case watchlistLoadedMsg:
		if msg.err != nil {
			m.log.Warn("loading watchlist", "error", msg.err)
			return m, nil
		}
		for _, s := range msg.symbols {
			m.watched[s] = true
		}
		m.redraw()
		return m, nil

	case watchStatusMsg:
		if msg.err != nil {
			m.log.Warn("checking watchlist", "symbol", msg.symbol, "error", msg.err)
			return m, nil
		}
		if m.watched[msg.symbol] != msg.watched {
			if msg.watched {
				m.watched[msg.symbol] = true
			} else {
				delete(m.watched, msg.symbol)
			}
			m.redraw()
		}
		return m, nil

	case watchlistChangedMsg:
		return m, m.watchlistChanged(msg)

	case exportedMsg:
		if errors.Is(msg.err, export.ErrNothingToExport) {
			return m, m.notify(levelWarning, "No data to export")
		}
		if msg.err != nil {
			m.log.Error("export failed", "what", msg.what, "error", msg.err)
			return m, m.notify(levelError, fmt.Sprintf("%s failed: %v", msg.what, msg.err))
		}
		m.log.Info("exported", "what", msg.what, "path", msg.path)
		return m, m.notify(levelSuccess, fmt.Sprintf("%s written to %s", msg.what, msg.path))
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// --- commands ---

func (m *Model) loadCmd(force bool) tea.Cmd {
	l, timeout := m.loader, m.settings.LoadTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		snap, err := l.Load(ctx, force)
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return loadedMsg{snap: snap, force: force}
	}
}

func (m *Model) loadWatchlistCmd() tea.Cmd {
	wl := m.watch
	if wl == nil {
		return nil
	}
	return func() tea.Msg {
		symbols, err := wl.List(context.Background())
		return watchlistLoadedMsg{symbols: symbols, err: err}
	}
}

// waitForTick relays one scheduler tick into the program.
func waitForTick(ticks <-chan struct{}) tea.Cmd {
	if ticks == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ticks; !ok {
			return nil
		}
		return refreshTickMsg{}
	}
}

// errorText maps a load error to the message shown to the user.
func errorText(err error) string {
	switch {
	case errors.Is(err, loader.ErrFormat):
		return "Invalid data format"
	case errors.Is(err, loader.ErrNetwork):
		return "Data unavailable"
	default:
		return "Unable to load data"
	}
}

// --- state projection ---

// redraw rebuilds the header and rows from state and refreshes the viewport.
func (m *Model) redraw() {
	m.header = dashboard.Header(dashboard.Columns, m.state.SortState())
	if m.loadErr != nil {
		m.rows = []dashboard.Row{dashboard.ErrorRow(errorText(m.loadErr))}
	} else {
		m.rows = dashboard.Rows(dashboard.Filter(m.state.Records(), m.term), m.fmt)
	}
	if m.selected >= len(m.rows) {
		m.selected = len(m.rows) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	if m.ready {
		m.viewport.SetContent(m.renderContent())
		m.ensureVisible()
	}
}

func (m *Model) selectedRow() (dashboard.Row, bool) {
	if m.selected < 0 || m.selected >= len(m.rows) {
		return dashboard.Row{}, false
	}
	return m.rows[m.selected], true
}

// ensureVisible scrolls the viewport so the selected row is on screen. The
// table starts one line below the column header.
func (m *Model) ensureVisible() {
	line := m.selected + 1
	if line < m.viewport.YOffset+1 {
		m.viewport.SetYOffset(line - 1)
	} else if line >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(line - m.viewport.Height + 1)
	}
}

// --- search ---

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.search.Blur()
		m.search.SetValue("")
		m.searchSeq++
		m.applySearch("")
		return nil
	case "enter":
		m.search.Blur()
		m.searchSeq++
		m.applySearch(m.search.Value())
		return nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return cmd
	}
	m.searchSeq++
	seq := m.searchSeq
	debounce := tea.Tick(m.settings.SearchDebounce, func(time.Time) tea.Msg {
		return debounceMsg{seq: seq}
	})
	return tea.Batch(cmd, debounce)
}

func (m *Model) applySearch(term string) {
	m.term = term
	m.loadErr = nil
	m.selected = 0
	m.redraw()
}

// --- key handlers ---

func (m *Model) quit(tea.KeyMsg) tea.Cmd {
	if m.sched != nil {
		m.sched.Stop()
	}
	return tea.Quit
}

func (m *Model) focusSearch(tea.KeyMsg) tea.Cmd {
	m.detail = nil
	return m.search.Focus()
}

func (m *Model) clearSearch(tea.KeyMsg) tea.Cmd {
	if m.term == "" && m.search.Value() == "" {
		return nil
	}
	m.search.SetValue("")
	m.searchSeq++
	m.applySearch("")
	return nil
}

func (m *Model) moveUp(tea.KeyMsg) tea.Cmd {
	if m.selected > 0 {
		m.selected--
		m.viewport.SetContent(m.renderContent())
		m.ensureVisible()
	}
	return nil
}

func (m *Model) moveDown(tea.KeyMsg) tea.Cmd {
	if m.selected < len(m.rows)-1 {
		m.selected++
		m.viewport.SetContent(m.renderContent())
		m.ensureVisible()
	}
	return nil
}

// sortByKey sorts by the column whose 1-based position matches the key.
func (m *Model) sortByKey(msg tea.KeyMsg) tea.Cmd {
	s := msg.String()
	if len(s) != 1 {
		return nil
	}
	idx := int(s[0] - '1')
	if idx < 0 || idx >= len(dashboard.Columns) {
		return nil
	}
	col := dashboard.Columns[idx]
	st := m.state.Sort(col.Field, col.Numeric)
	m.loadErr = nil
	m.redraw()
	m.log.Debug("sorted", "field", st.Field, "ascending", st.Ascending)
	return nil
}

// activateRow runs the details action of the selected row, or forces a
// reload when the selected row is the error row.
func (m *Model) activateRow(tea.KeyMsg) tea.Cmd {
	row, ok := m.selectedRow()
	if !ok {
		return nil
	}
	if row.Retry {
		m.loading = true
		return m.loadCmd(true)
	}
	return m.runRowAction(row, dashboard.ActionDetails)
}

func (m *Model) watchSelected(tea.KeyMsg) tea.Cmd {
	if m.detail != nil {
		return m.addToWatchlist(m.detail.Symbol)
	}
	row, ok := m.selectedRow()
	if !ok {
		return nil
	}
	return m.runRowAction(row, dashboard.ActionWatch)
}

func (m *Model) unwatchSelected(tea.KeyMsg) tea.Cmd {
	symbol := ""
	if m.detail != nil {
		symbol = m.detail.Symbol
	} else if row, ok := m.selectedRow(); ok && !row.Placeholder {
		symbol = row.Symbol
	}
	if symbol == "" || m.watch == nil {
		return nil
	}
	wl := m.watch
	return func() tea.Msg {
		out, err := wl.Remove(context.Background(), symbol)
		return watchlistChangedMsg{symbol: symbol, outcome: out, err: err}
	}
}

func (m *Model) runRowAction(row dashboard.Row, action dashboard.Action) tea.Cmd {
	for _, a := range row.Actions {
		if a.Action != action {
			continue
		}
		if h, ok := rowActions[a.Action]; ok {
			return h(m, a.Symbol)
		}
	}
	return nil
}

func (m *Model) forceRefresh(tea.KeyMsg) tea.Cmd {
	m.loading = true
	return m.loadCmd(true)
}

func (m *Model) toggleAutoRefresh(tea.KeyMsg) tea.Cmd {
	if m.sched == nil {
		return nil
	}
	if m.sched.Toggle(!m.sched.Enabled()) {
		return m.notify(levelInfo, fmt.Sprintf("Auto-refresh enabled (every %s)", m.sched.Interval()))
	}
	return m.notify(levelInfo, "Auto-refresh disabled")
}

func (m *Model) exportCSV(tea.KeyMsg) tea.Cmd {
	records := m.state.Records()
	if len(records) == 0 {
		return m.notify(levelWarning, "No data to export")
	}
	dir, now := m.settings.ExportDir, m.now()
	return func() tea.Msg {
		path, err := export.ExportCSV(dir, records, now)
		return exportedMsg{what: "CSV export", path: path, err: err}
	}
}

func (m *Model) printTable(tea.KeyMsg) tea.Cmd {
	header := m.header
	rows := m.rows
	dir, now := m.settings.ExportDir, m.now()
	title := Title + " - " + m.fmt.DateTime(m.state.Timestamp())
	return func() tea.Msg {
		path, err := export.PrintFile(dir, title, header, rows, now)
		return exportedMsg{what: "Printable table", path: path, err: err}
	}
}

// --- row actions ---

func (m *Model) showDetail(symbol string) tea.Cmd {
	d, ok := dashboard.DetailFor(m.state.Records(), symbol, m.fmt)
	if !ok {
		return nil
	}
	m.detail = &d
	if m.watch == nil {
		return nil
	}
	// The store may have changed behind us, so re-check the star.
	wl := m.watch
	return func() tea.Msg {
		ok, err := wl.Contains(context.Background(), symbol)
		return watchStatusMsg{symbol: symbol, watched: ok, err: err}
	}
}

func (m *Model) addToWatchlist(symbol string) tea.Cmd {
	if m.watch == nil {
		return m.notify(levelWarning, "Watchlist unavailable")
	}
	wl := m.watch
	return func() tea.Msg {
		out, err := wl.Add(context.Background(), symbol)
		return watchlistChangedMsg{symbol: symbol, outcome: out, err: err}
	}
}

func (m *Model) watchlistChanged(msg watchlistChangedMsg) tea.Cmd {
	if msg.err != nil {
		m.log.Error("updating watchlist", "symbol", msg.symbol, "error", msg.err)
		return m.notify(levelError, "Watchlist update failed: "+msg.err.Error())
	}
	switch msg.outcome {
	case watchlist.Added:
		m.watched[msg.symbol] = true
		m.redraw()
		return m.notify(levelSuccess, msg.symbol+" added to your watchlist")
	case watchlist.AlreadyPresent:
		return m.notify(levelInfo, msg.symbol+" is already in your watchlist")
	case watchlist.Removed:
		delete(m.watched, msg.symbol)
		m.redraw()
		return m.notify(levelInfo, msg.symbol+" removed from your watchlist")
	default:
		return m.notify(levelInfo, msg.symbol+" is not in your watchlist")
	}
}
