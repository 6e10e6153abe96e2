package statement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/statement-flow/internal/filter"
	"github.com/Veraticus/statement-flow/internal/metrics"
	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/Veraticus/statement-flow/internal/provider"
)

// ErrStaleRequest is returned when a fetch finished after the session moved on
// to newer criteria, scope, or a newer reload. Its result was discarded.
var ErrStaleRequest = errors.New("stale statement request")

// DefaultViewPageSize is the number of rows shown per view page.
const DefaultViewPageSize = 20

// Store persists the canonical collection between runs.
type Store interface {
	ReplaceTransactions(ctx context.Context, scope string, ts []model.Transaction) error
	LoadTransactions(ctx context.Context, scope string) ([]model.Transaction, error)
	RecordFetch(ctx context.Context, rec *model.FetchRecord) error
}

// Scope names the cache partition for a provider and account.
func Scope(kind model.ProviderKind, account model.Account) string {
	doc := provider.SanitizeDocument(account.Document)
	if doc == "" {
		doc = "all"
	}
	return fmt.Sprintf("%s:%s", kind, doc)
}

// SessionConfig configures a Session.
type SessionConfig struct {
	Source   Source
	Adapter  *provider.Adapter
	Store    Store
	Logger   *slog.Logger
	Progress ProgressFunc
	Now      func() time.Time
	Noise    provider.NoiseConfig
	Account  model.Account
	// Limit is the number of visible records a reload aims for.
	Limit         int
	PageSize      int
	FetchPageSize int
	MaxIterations int
}

// View is a rendered snapshot of the session.
type View struct {
	Criteria     filter.Criteria
	Transactions []model.Transaction
	SortBy       filter.SortField
	Order        filter.SortOrder
	Account      model.Account
	Metrics      model.Metrics
	Pagination   model.Pagination
	Loaded       int
	// RemoteHasMore is set when the provider holds records beyond the loaded set.
	RemoteHasMore bool
}

// Session owns the canonical transaction collection and the view state over
// it. All methods are safe for concurrent use. Fetches run without holding the
// lock and commit only if nothing newer happened meanwhile.
//
// A reload narrowed by remote filters leaves a partial collection. Partial
// collections are shown but never written over the cached statement.
type Session struct {
	store         Store
	source        Source
	adapter       *provider.Adapter
	logger        *slog.Logger
	progress      ProgressFunc
	now           func() time.Time
	criteria      filter.Criteria
	account       model.Account
	sortBy        filter.SortField
	order         filter.SortOrder
	all           []model.Transaction
	noise         provider.NoiseConfig
	generation    uint64
	limit         int
	page          int
	pageSize      int
	fetchPageSize int
	maxIterations int
	remoteHasMore bool
	partial       bool
	mu            sync.Mutex
	// persistMu orders cache writes the same way as the commits they follow.
	// It is always taken before mu.
	persistMu sync.Mutex
}

// NewSession creates a session. Source and Adapter are required; Store is optional.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("statement source is required")
	}
	if cfg.Adapter == nil {
		return nil, fmt.Errorf("provider adapter is required")
	}

	s := &Session{
		store:         cfg.Store,
		source:        cfg.Source,
		adapter:       cfg.Adapter,
		logger:        cfg.Logger,
		progress:      cfg.Progress,
		now:           cfg.Now,
		noise:         cfg.Noise,
		account:       cfg.Account,
		limit:         cfg.Limit,
		pageSize:      cfg.PageSize,
		fetchPageSize: cfg.FetchPageSize,
		maxIterations: cfg.MaxIterations,
		sortBy:        filter.SortDate,
		order:         filter.OrderDesc,
		page:          1,
	}
	if s.logger == nil {
		s.logger = slog.Default().With("component", "session")
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.limit <= 0 {
		s.limit = DefaultLimit
	}
	if s.pageSize <= 0 {
		s.pageSize = DefaultViewPageSize
	}
	if s.fetchPageSize <= 0 {
		s.fetchPageSize = DefaultPageSize
	}
	if s.maxIterations <= 0 {
		s.maxIterations = DefaultMaxIterations
	}
	return s, nil
}

// Scope returns the cache partition of the current account scope.
func (s *Session) Scope() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Scope(s.adapter.Kind, s.account)
}

// suppressionLocked returns the suppression context for the current scope.
func (s *Session) suppressionLocked() provider.SuppressionContext {
	return provider.SuppressionContext{AccountDocument: s.account.Document, Noise: s.noise}
}

// beginLocked snapshots what a fetch needs.
func (s *Session) beginLocked() (*Fetcher, filter.Query, int, uint64) {
	q := filter.RemoteQuery(s.criteria)
	q.AccountID = s.account.ID
	if s.sortBy == filter.SortDate {
		q.Order = s.order
	}

	f := NewFetcher(s.source, s.adapter,
		WithSuppression(s.suppressionLocked()),
		WithMaxIterations(s.maxIterations),
		WithPageSize(s.fetchPageSize),
		WithProgress(s.progress),
		WithClock(s.now),
		WithLogger(s.logger),
	)
	return f, q, s.limit, s.generation
}

// Reload replaces the collection with a fresh accumulation. On error the
// collection is left as it was.
func (s *Session) Reload(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	s.generation++
	f, q, limit, gen := s.beginLocked()
	s.mu.Unlock()

	res, err := f.Accumulate(ctx, limit, q)
	if err != nil {
		return res, err
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		s.logger.Debug("Discarding superseded reload", "generation", gen)
		return res, ErrStaleRequest
	}
	s.all = append([]model.Transaction(nil), res.Transactions...)
	filter.ByDateDesc(s.all)
	s.remoteHasMore = res.Pagination.HasMore
	s.page = 1
	s.partial = q.Narrowed()
	scope, snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, scope, snapshot, model.FetchModeReload, res, len(res.Transactions))
	return res, nil
}

// Refresh fetches the newest records and merges the unseen ones into the
// collection. It returns the fetch result and the number of records added.
func (s *Session) Refresh(ctx context.Context) (*Result, int, error) {
	s.mu.Lock()
	f, q, limit, gen := s.beginLocked()
	s.mu.Unlock()

	res, err := f.Accumulate(ctx, limit, q)
	if err != nil {
		return res, 0, err
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		s.logger.Debug("Discarding superseded refresh", "generation", gen)
		return res, 0, ErrStaleRequest
	}
	merged, added := Merge(s.all, res.Transactions)
	s.all = merged
	scope, snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("Merged statement refresh", "added", added, "total", len(snapshot))
	s.persist(ctx, scope, snapshot, model.FetchModeRefresh, res, added)
	return res, added, nil
}

// LoadMore raises the reload target by one fetch page and reloads.
func (s *Session) LoadMore(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	s.limit += s.fetchPageSize
	s.mu.Unlock()
	return s.Reload(ctx)
}

// MergeRecords normalizes records from a non-remote origin, such as an
// imported statement file, and merges them into the collection.
func (s *Session) MergeRecords(ctx context.Context, adapter *provider.Adapter, records []model.RawRecord) (int, error) {
	if adapter == nil {
		adapter = s.adapter
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	normalized := provider.NormalizeAll(adapter, records, s.now())
	kept, dropped := provider.Apply(adapter, normalized, s.suppressionLocked())
	s.generation++
	merged, added := Merge(s.all, kept)
	s.all = merged
	scope, snapshot := s.snapshotLocked()
	s.mu.Unlock()

	res := &Result{Transactions: kept, Fetched: len(records), Suppressed: dropped}
	return added, s.persistErr(ctx, scope, snapshot, model.FetchModeImport, res, added)
}

// Restore loads the cached collection for the current scope.
func (s *Session) Restore(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, nil
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	scope := s.Scope()
	ts, err := s.store.LoadTransactions(ctx, scope)
	if err != nil {
		return 0, fmt.Errorf("failed to restore statement cache %s: %w", scope, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.all = ts
	s.partial = false
	filter.ByDateDesc(s.all)
	s.page = 1
	return len(ts), nil
}

// ApplyCriteria validates and installs new criteria. Invalid criteria are
// rejected and leave the session unchanged.
func (s *Session) ApplyCriteria(c filter.Criteria) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = c
	s.page = 1
	s.generation++
	return nil
}

// Criteria returns the active criteria.
func (s *Session) Criteria() filter.Criteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria
}

// SetSort sets the sort field and order.
func (s *Session) SetSort(by filter.SortField, order filter.SortOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortBy = by
	s.order = order
}

// SetPage moves the view to page n, clamped to the available pages.
func (s *Session) SetPage(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = max(n, 1)
}

// SetPageSize changes the rows per page and returns to the first page.
func (s *Session) SetPageSize(n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageSize = n
	s.page = 1
}

// SetAccountScope restricts the view to one account. The zero Account means
// all accounts. Narrowing applies immediately; widening needs a Reload.
func (s *Session) SetAccountScope(account model.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = account
	s.page = 1
	s.generation++
	// The loaded collection belongs to the previous scope until reloaded or restored.
	s.partial = true
}

// Transactions returns a copy of the full canonical collection.
func (s *Session) Transactions() []model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Transaction(nil), s.all...)
}

// Filtered returns the whole filtered and sorted set, unpaged.
func (s *Session) Filtered() []model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filteredLocked()
}

func (s *Session) filteredLocked() []model.Transaction {
	visible, _ := provider.Apply(s.adapter, s.all, s.suppressionLocked())
	return filter.Sort(filter.Apply(visible, s.criteria), s.sortBy, s.order)
}

// View renders the current page. Metrics cover the whole filtered set.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := s.filteredLocked()
	total := len(filtered)
	totalPages := (total + s.pageSize - 1) / s.pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	if s.page > totalPages {
		s.page = totalPages
	}

	start := (s.page - 1) * s.pageSize
	end := min(start+s.pageSize, total)

	return View{
		Criteria:     s.criteria,
		Transactions: append([]model.Transaction(nil), filtered[start:end]...),
		SortBy:       s.sortBy,
		Order:        s.order,
		Account:      s.account,
		Metrics:      metrics.Aggregate(filtered),
		Loaded:       len(s.all),
		Pagination: model.Pagination{
			Total:       total,
			Limit:       s.pageSize,
			Offset:      start,
			CurrentPage: s.page,
			TotalPages:  totalPages,
			HasMore:     s.page < totalPages || s.remoteHasMore,
		},
		RemoteHasMore: s.remoteHasMore,
	}
}

// snapshotLocked returns the cache scope and a copy of the collection to write
// there, or a nil copy when the collection is partial.
func (s *Session) snapshotLocked() (string, []model.Transaction) {
	scope := Scope(s.adapter.Kind, s.account)
	if s.partial {
		return scope, nil
	}
	return scope, append([]model.Transaction{}, s.all...)
}

// persist writes the collection and a fetch log entry. Cache failures are
// logged; the in-memory collection stays authoritative.
func (s *Session) persist(ctx context.Context, scope string, ts []model.Transaction, mode model.FetchMode, res *Result, added int) {
	if err := s.persistErr(ctx, scope, ts, mode, res, added); err != nil {
		s.logger.Warn("Failed to update statement cache", "scope", scope, "error", err)
	}
}

func (s *Session) persistErr(ctx context.Context, scope string, ts []model.Transaction, mode model.FetchMode, res *Result, added int) error {
	if s.store == nil {
		return nil
	}
	if ts == nil {
		s.logger.Debug("Keeping cached statement; collection is narrowed by filters", "scope", scope)
	} else if err := s.store.ReplaceTransactions(ctx, scope, ts); err != nil {
		return fmt.Errorf("failed to cache transactions: %w", err)
	}
	rec := &model.FetchRecord{
		CreatedAt:      s.now(),
		Scope:          scope,
		Mode:           mode,
		Fetched:        res.Fetched,
		Added:          added,
		Calls:          res.Calls,
		Suppressed:     res.Suppressed,
		GuardTriggered: res.GuardTriggered,
	}
	if err := s.store.RecordFetch(ctx, rec); err != nil {
		return fmt.Errorf("failed to record fetch: %w", err)
	}
	return nil
}
