// Package tui implements an interactive statement browser on bubbletea.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/statement-flow/internal/cli"
	"github.com/Veraticus/statement-flow/internal/filter"
	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/Veraticus/statement-flow/internal/statement"
	"github.com/Veraticus/statement-flow/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// State represents what the browser is currently accepting input for.
type State int

const (
	StateBrowse State = iota
	StateSearch
)

// Lines used around the table by the header, footer and status line.
const chromeHeight = 14

// Model holds the browser state.
type Model struct {
	ctx      context.Context
	session  *statement.Session
	lastErr  error
	theme    themes.Theme
	keymap   KeyMap
	config   Config
	status   string
	view     statement.View
	help     help.Model
	search   textinput.Model
	spinner  spinner.Model
	table    table.Model
	width    int
	height   int
	state    State
	busy     bool
	quitting bool
}

// New creates a browser over session. Fetch commands run with ctx.
func New(ctx context.Context, session *statement.Session, opts ...Option) (Model, error) {
	if session == nil {
		return Model{}, fmt.Errorf("statement session is required")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "name, document, end-to-end or description"
	search.CharLimit = 120

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = cfg.Theme.StatusInfo

	tbl := table.New(table.WithFocused(true))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderForeground(cfg.Theme.Border).
		Foreground(cfg.Theme.Primary).
		Bold(true)
	styles.Selected = cfg.Theme.Selected
	tbl.SetStyles(styles)

	h := help.New()
	h.ShowAll = false

	m := Model{
		ctx:     ctx,
		session: session,
		theme:   cfg.Theme,
		keymap:  DefaultKeyMap(),
		config:  cfg,
		help:    h,
		search:  search,
		spinner: sp,
		table:   tbl,
		width:   cfg.Width,
		height:  cfg.Height,
		state:   StateBrowse,
	}
	m.resize()
	m.sync()
	return m, nil
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.restoreCache())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == StateSearch {
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.sync()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case restoredMsg:
		if msg.err != nil {
			m.lastErr = msg.err
		}
		m.sync()
		if msg.count == 0 && m.config.FetchOnStart {
			m.busy = true
			m.status = "Fetching statement…"
			return m, m.reload()
		}
		if msg.count > 0 {
			m.status = fmt.Sprintf("Restored %d cached transactions", msg.count)
		}
		return m, nil

	case fetchDoneMsg:
		m.busy = false
		m.handleFetchDone(msg)
		m.sync()
		return m, nil
	}

	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil

	case key.Matches(msg, m.keymap.NextPage):
		p := m.view.Pagination
		if p.CurrentPage < p.TotalPages {
			m.session.SetPage(p.CurrentPage + 1)
			m.sync()
			return m, nil
		}
		if m.view.RemoteHasMore && !m.busy {
			m.busy = true
			m.status = "Loading more…"
			return m, m.loadMore()
		}
		return m, nil

	case key.Matches(msg, m.keymap.PrevPage):
		if p := m.view.Pagination; p.CurrentPage > 1 {
			m.session.SetPage(p.CurrentPage - 1)
			m.sync()
		}
		return m, nil

	case key.Matches(msg, m.keymap.CycleSort):
		by := nextSortField(m.view.SortBy)
		order := m.view.Order
		if by != filter.SortNone && order == filter.OrderNone {
			order = filter.OrderDesc
		}
		m.session.SetSort(by, order)
		m.sync()
		return m, nil

	case key.Matches(msg, m.keymap.CycleOrder):
		order := filter.OrderDesc
		if m.view.Order == filter.OrderDesc {
			order = filter.OrderAsc
		}
		m.session.SetSort(m.view.SortBy, order)
		m.sync()
		return m, nil

	case key.Matches(msg, m.keymap.CycleType):
		c := m.session.Criteria()
		c.Type = nextTypeFilter(c.Type)
		m.applyCriteria(c)
		return m, nil

	case key.Matches(msg, m.keymap.ClearSearch):
		m.applyCriteria(filter.Criteria{Location: m.session.Criteria().Location})
		m.status = "Filters cleared"
		return m, nil

	case key.Matches(msg, m.keymap.Search):
		m.state = StateSearch
		m.search.SetValue(m.session.Criteria().Search)
		m.search.CursorEnd()
		return m, m.search.Focus()

	case key.Matches(msg, m.keymap.ToggleE2E):
		m.config.ShowEndToEnd = !m.config.ShowEndToEnd
		m.sync()
		return m, nil

	case key.Matches(msg, m.keymap.Refresh):
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.status = "Fetching new transactions…"
		return m, m.refresh()

	case key.Matches(msg, m.keymap.Reload):
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.status = "Reloading statement…"
		return m, m.reload()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Cancel):
		m.state = StateBrowse
		m.search.Blur()
		return m, nil

	case key.Matches(msg, m.keymap.Submit):
		c := m.session.Criteria()
		c.Search = strings.TrimSpace(m.search.Value())
		m.state = StateBrowse
		m.search.Blur()
		m.applyCriteria(c)
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// applyCriteria installs c on the session. Rejected criteria leave the view
// unchanged and surface the error.
func (m *Model) applyCriteria(c filter.Criteria) {
	if err := m.session.ApplyCriteria(c); err != nil {
		m.lastErr = err
		return
	}
	m.lastErr = nil
	m.sync()
}

func (m *Model) handleFetchDone(msg fetchDoneMsg) {
	if msg.err != nil {
		if errors.Is(msg.err, statement.ErrStaleRequest) {
			m.status = "Discarded an outdated result"
			return
		}
		m.lastErr = msg.err
		m.status = ""
		return
	}
	m.lastErr = nil

	res := msg.result
	switch msg.mode {
	case model.FetchModeRefresh:
		m.status = fmt.Sprintf("%d new transactions", msg.added)
	default:
		m.status = fmt.Sprintf("Loaded %d transactions", len(res.Transactions))
	}
	if res.Suppressed > 0 {
		m.status += fmt.Sprintf(", %d hidden", res.Suppressed)
	}
	if res.GuardTriggered {
		m.status += fmt.Sprintf(", stopped after %d calls", res.Calls)
	}
}

// sync pulls a fresh view from the session into the table.
func (m *Model) sync() {
	m.view = m.session.View()
	opts := m.tableOptions()
	// Rows wider than the columns cannot be rendered, so drop them first.
	m.table.SetRows(nil)
	m.table.SetColumns(m.columns(opts))

	rows := make([]table.Row, 0, len(m.view.Transactions))
	for _, t := range m.view.Transactions {
		rows = append(rows, table.Row(cli.StatementRow(t, opts)))
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m *Model) resize() {
	m.table.SetHeight(max(m.height-chromeHeight, 3))
	m.table.SetWidth(m.width)
	m.help.Width = m.width
	m.search.Width = max(m.width-4, 10)
}

func (m Model) tableOptions() cli.TableOptions {
	opts := cli.TableOptions{
		Location:     m.config.Location,
		ShowEndToEnd: m.config.ShowEndToEnd,
	}
	opts.NameWidth = max(m.width-fixedColumnsWidth(opts)-2*len(cli.StatementHeaders(opts)), 12)
	return opts
}

var columnWidths = map[string]int{
	"Date":       16,
	"Type":       6,
	"Document":   18,
	"Amount":     16,
	"Status":     9,
	"End-to-end": 32,
}

func fixedColumnsWidth(opts cli.TableOptions) int {
	total := 0
	for _, h := range cli.StatementHeaders(opts) {
		total += columnWidths[h]
	}
	return total
}

func (m Model) columns(opts cli.TableOptions) []table.Column {
	headers := cli.StatementHeaders(opts)
	cols := make([]table.Column, 0, len(headers))
	for _, h := range headers {
		w, ok := columnWidths[h]
		if !ok {
			w = opts.NameWidth
		}
		cols = append(cols, table.Column{Title: h, Width: w})
	}
	return cols
}

// Selected returns the transaction under the cursor.
func (m Model) Selected() (model.Transaction, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.view.Transactions) {
		return model.Transaction{}, false
	}
	return m.view.Transactions[i], true
}

func nextSortField(f filter.SortField) filter.SortField {
	switch f {
	case filter.SortDate:
		return filter.SortValue
	case filter.SortValue:
		return filter.SortNone
	default:
		return filter.SortDate
	}
}

func nextTypeFilter(f filter.TypeFilter) filter.TypeFilter {
	switch f {
	case filter.TypeAny:
		return filter.TypeCredit
	case filter.TypeCredit:
		return filter.TypeDebit
	default:
		return filter.TypeAny
	}
}
