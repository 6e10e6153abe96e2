package tui

import (
	"github.com/Veraticus/statement-flow/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

// restoreCache loads the cached collection for the session scope.
func (m Model) restoreCache() tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		n, err := session.Restore(ctx)
		return restoredMsg{count: n, err: err}
	}
}

// reload replaces the collection with a fresh accumulation.
func (m Model) reload() tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		res, err := session.Reload(ctx)
		return fetchDoneMsg{mode: model.FetchModeReload, result: res, err: err}
	}
}

// refresh merges records newer than the loaded set.
func (m Model) refresh() tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		res, added, err := session.Refresh(ctx)
		return fetchDoneMsg{mode: model.FetchModeRefresh, result: res, added: added, err: err}
	}
}

// loadMore extends the reload target by one provider page.
func (m Model) loadMore() tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		res, err := session.LoadMore(ctx)
		return fetchDoneMsg{mode: model.FetchModeReload, result: res, err: err}
	}
}
