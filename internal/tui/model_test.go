package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Veraticus/statement-flow/internal/filter"
	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/Veraticus/statement-flow/internal/provider"
	"github.com/Veraticus/statement-flow/internal/statement"
	"github.com/Veraticus/statement-flow/internal/testutil/records"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedSource serves a fixed record list in provider pages.
type pagedSource struct {
	err     error
	records []model.RawRecord
	mu      sync.Mutex
}

func (s *pagedSource) ListTransactions(_ context.Context, q filter.Query) (*statement.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	start := min(q.Offset, len(s.records))
	end := min(start+q.Limit, len(s.records))
	return &statement.Page{
		Records:    s.records[start:end],
		Pagination: model.Pagination{Total: len(s.records), HasMore: end < len(s.records)},
	}, nil
}

func mixedRecords(t *testing.T) []model.RawRecord {
	t.Helper()
	return records.NewBuilder(t, model.ProviderCorpX).
		Credit(10, records.DocumentA).
		Debit(20, records.DocumentB).
		Credit(30, records.DocumentA).
		Debit(40, records.DocumentB).
		Credit(50, records.DocumentA).
		Build()
}

func newTestBrowser(t *testing.T, source statement.Source, limit int) Model {
	t.Helper()
	session, err := statement.NewSession(statement.SessionConfig{
		Source:        source,
		Adapter:       provider.CorpX(),
		Noise:         provider.DefaultNoiseConfig(),
		Limit:         limit,
		PageSize:      2,
		FetchPageSize: limit,
	})
	require.NoError(t, err)

	m, err := New(context.Background(), session, WithSize(140, 40), WithAltScreen(false))
	require.NoError(t, err)
	return m
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok, "Update returned %T", next)
	return nm, cmd
}

func press(t *testing.T, m Model, keys string) (Model, tea.Cmd) {
	t.Helper()
	return send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)})
}

// loaded returns a browser that went through the empty-cache start up.
func loaded(t *testing.T, source statement.Source, limit int) Model {
	t.Helper()
	m := newTestBrowser(t, source, limit)
	m, cmd := send(t, m, restoredMsg{})
	require.NotNil(t, cmd, "empty cache should trigger a reload")
	assert.True(t, m.busy)

	m, _ = send(t, m, cmd())
	require.False(t, m.busy)
	require.NoError(t, m.lastErr)
	return m
}

func rowIDs(m Model) []string {
	ids := make([]string, 0, len(m.view.Transactions))
	for _, txn := range m.view.Transactions {
		ids = append(ids, txn.ID)
	}
	return ids
}

func TestNew_RequiresSession(t *testing.T) {
	_, err := New(context.Background(), nil)
	assert.Error(t, err)
}

func TestModel_ReloadsWhenCacheEmpty(t *testing.T) {
	m := loaded(t, &pagedSource{records: mixedRecords(t)}, 100)

	assert.Equal(t, StateBrowse, m.state)
	assert.Equal(t, []string{"corpx-1", "corpx-2"}, rowIDs(m))
	assert.Len(t, m.table.Rows(), 2)
	assert.Equal(t, 5, m.view.Loaded)
	assert.Equal(t, "Loaded 5 transactions", m.status)
}

func TestModel_NoFetchWhenCacheRestored(t *testing.T) {
	m := newTestBrowser(t, &pagedSource{}, 100)
	m, cmd := send(t, m, restoredMsg{count: 3})
	assert.Nil(t, cmd)
	assert.False(t, m.busy)
	assert.Contains(t, m.status, "Restored 3")
}

func TestModel_Paging(t *testing.T) {
	m := loaded(t, &pagedSource{records: mixedRecords(t)}, 100)
	require.Equal(t, 3, m.view.Pagination.TotalPages)

	m, _ = press(t, m, "n")
	assert.Equal(t, 2, m.view.Pagination.CurrentPage)
	assert.Equal(t, []string{"corpx-3", "corpx-4"}, rowIDs(m))

	m, _ = press(t, m, "n")
	assert.Equal(t, []string{"corpx-5"}, rowIDs(m))

	// Last page with nothing left remotely stays put
	m, cmd := press(t, m, "n")
	assert.Nil(t, cmd)
	assert.Equal(t, 3, m.view.Pagination.CurrentPage)

	m, _ = press(t, m, "p")
	m, _ = press(t, m, "p")
	m, _ = press(t, m, "p")
	assert.Equal(t, 1, m.view.Pagination.CurrentPage)
}

func TestModel_NextPageLoadsMoreFromProvider(t *testing.T) {
	source := &pagedSource{records: mixedRecords(t)}
	m := loaded(t, source, 2)
	require.True(t, m.view.RemoteHasMore)
	require.Equal(t, 1, m.view.Pagination.TotalPages)

	m, cmd := press(t, m, "n")
	require.NotNil(t, cmd)
	assert.True(t, m.busy)

	m, _ = send(t, m, cmd())
	assert.False(t, m.busy)
	assert.Equal(t, 4, m.view.Loaded)
	assert.Equal(t, 2, m.view.Pagination.TotalPages)
}

func TestModel_CycleTypeFilter(t *testing.T) {
	m := loaded(t, &pagedSource{records: mixedRecords(t)}, 100)

	m, _ = press(t, m, "t")
	assert.Equal(t, filter.TypeCredit, m.view.Criteria.Type)
	assert.Equal(t, 3, m.view.Pagination.Total)
	assert.Equal(t, 3, m.view.Metrics.CreditCount)
	assert.Zero(t, m.view.Metrics.DebitCount)

	m, _ = press(t, m, "t")
	assert.Equal(t, filter.TypeDebit, m.view.Criteria.Type)
	assert.Equal(t, []string{"corpx-2", "corpx-4"}, rowIDs(m))

	m, _ = press(t, m, "t")
	assert.Equal(t, filter.TypeAny, m.view.Criteria.Type)
	assert.Equal(t, 5, m.view.Pagination.Total)
}

func TestModel_CycleSort(t *testing.T) {
	m := loaded(t, &pagedSource{records: mixedRecords(t)}, 100)
	require.Equal(t, filter.SortDate, m.view.SortBy)

	m, _ = press(t, m, "s")
	assert.Equal(t, filter.SortValue, m.view.SortBy)
	assert.Equal(t, filter.OrderDesc, m.view.Order)
	assert.Equal(t, []string{"corpx-5", "corpx-4"}, rowIDs(m))

	m, _ = press(t, m, "o")
	assert.Equal(t, filter.OrderAsc, m.view.Order)
	assert.Equal(t, []string{"corpx-1", "corpx-2"}, rowIDs(m))

	m, _ = press(t, m, "s")
	assert.Equal(t, filter.SortNone, m.view.SortBy)
	m, _ = press(t, m, "s")
	assert.Equal(t, filter.SortDate, m.view.SortBy)
}

func TestModel_Search(t *testing.T) {
	m := loaded(t, &pagedSource{records: mixedRecords(t)}, 100)

	m, cmd := press(t, m, "/")
	assert.Equal(t, StateSearch, m.state)
	assert.NotNil(t, cmd)

	// Keys go to the input while searching
	m, _ = press(t, m, "Counterparty 3")
	assert.Equal(t, 5, m.view.Pagination.Total)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, StateBrowse, m.state)
	assert.Equal(t, "Counterparty 3", m.view.Criteria.Search)
	assert.Equal(t, []string{"corpx-3"}, rowIDs(m))

	m, _ = press(t, m, "c")
	assert.Empty(t, m.view.Criteria.Search)
	assert.Equal(t, 5, m.view.Pagination.Total)
}

func TestModel_SearchCancel(t *testing.T) {
	m := loaded(t, &pagedSource{records: mixedRecords(t)}, 100)

	m, _ = press(t, m, "/")
	m, _ = press(t, m, "zzz")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, StateBrowse, m.state)
	assert.Empty(t, m.view.Criteria.Search)
	assert.Equal(t, 5, m.view.Pagination.Total)
}

func TestModel_Refresh(t *testing.T) {
	source := &pagedSource{records: mixedRecords(t)}
	m := loaded(t, source, 100)

	m, cmd := press(t, m, "r")
	require.NotNil(t, cmd)
	assert.True(t, m.busy)

	// A second refresh is ignored while one is running
	_, again := press(t, m, "r")
	assert.Nil(t, again)

	m, _ = send(t, m, cmd())
	assert.False(t, m.busy)
	assert.Equal(t, "0 new transactions", m.status)
	assert.Equal(t, 5, m.view.Loaded)
}

func TestModel_FetchErrorIsShown(t *testing.T) {
	source := &pagedSource{records: mixedRecords(t)}
	m := loaded(t, source, 100)

	source.mu.Lock()
	source.err = errors.New("provider unavailable")
	source.mu.Unlock()

	m, cmd := press(t, m, "R")
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())

	require.Error(t, m.lastErr)
	assert.Equal(t, 5, m.view.Loaded, "failed reload keeps the collection")
	assert.Contains(t, m.View(), "provider unavailable")
}

func TestModel_StaleResultIsNotAnError(t *testing.T) {
	m := newTestBrowser(t, &pagedSource{}, 100)
	m, _ = send(t, m, fetchDoneMsg{err: statement.ErrStaleRequest, mode: model.FetchModeReload})
	assert.NoError(t, m.lastErr)
	assert.Equal(t, "Discarded an outdated result", m.status)
}

func TestModel_ToggleEndToEndColumn(t *testing.T) {
	m := loaded(t, &pagedSource{records: mixedRecords(t)}, 100)
	require.Len(t, m.table.Columns(), 6)

	m, _ = press(t, m, "e")
	assert.Len(t, m.table.Columns(), 7)
	assert.Len(t, m.table.Rows()[0], 7)

	m, _ = press(t, m, "e")
	assert.Len(t, m.table.Columns(), 6)
	assert.Len(t, m.table.Rows()[0], 6)
}

func TestModel_WindowResize(t *testing.T) {
	m := loaded(t, &pagedSource{records: mixedRecords(t)}, 100)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 20})
	assert.Equal(t, 80, m.width)
	assert.Equal(t, 20, m.height)
	assert.Contains(t, m.View(), "Counterparty 1")
}

func TestModel_Quit(t *testing.T) {
	m := loaded(t, &pagedSource{records: mixedRecords(t)}, 100)
	m, cmd := press(t, m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

func TestModel_View(t *testing.T) {
	m := loaded(t, &pagedSource{records: mixedRecords(t)}, 100)
	out := m.View()

	assert.Contains(t, out, "Statement")
	assert.Contains(t, out, "all accounts")
	assert.Contains(t, out, "Counterparty 1")
	assert.Contains(t, out, "Summary")
	assert.Contains(t, out, "Page 1 of 3 (5 transactions)")
}

func TestDescribeView(t *testing.T) {
	tests := []struct {
		name  string
		want  string
		c     filter.Criteria
		by    filter.SortField
		order filter.SortOrder
	}{
		{name: "default", by: filter.SortDate, order: filter.OrderDesc, want: "by date desc"},
		{name: "unsorted", want: "unsorted"},
		{
			name:  "filters",
			c:     filter.Criteria{Type: filter.TypeDebit, Search: "pix"},
			by:    filter.SortValue,
			order: filter.OrderAsc,
			want:  `by value asc · debit only · search "pix"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeView(tt.c, tt.by, tt.order))
		})
	}
}
