package statement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/statement-flow/internal/filter"
	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/Veraticus/statement-flow/internal/provider"
)

// Fetch loop defaults.
const (
	DefaultMaxIterations = 10
	DefaultPageSize      = 100
	DefaultLimit         = 100
)

// FetchError reports a remote failure part way through accumulation.
type FetchError struct {
	Err    error
	Call   int
	Offset int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch page %d at offset %d: %v", e.Call, e.Offset, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Result is what one accumulation produced.
type Result struct {
	Transactions   []model.Transaction
	Pagination     model.Pagination
	Calls          int
	Fetched        int
	Suppressed     int
	NextOffset     int
	GuardTriggered bool
}

// PageProgress is reported after every page.
type PageProgress struct {
	Call        int
	Offset      int
	Received    int
	Kept        int
	Accumulated int
	Limit       int
	Total       int
}

// ProgressFunc observes accumulation page by page.
type ProgressFunc func(PageProgress)

// Fetcher drives a Source until enough visible records are accumulated.
type Fetcher struct {
	source        Source
	adapter       *provider.Adapter
	logger        *slog.Logger
	progress      ProgressFunc
	now           func() time.Time
	suppression   provider.SuppressionContext
	maxIterations int
	pageSize      int
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMaxIterations bounds the number of remote calls per accumulation.
func WithMaxIterations(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxIterations = n
		}
	}
}

// WithPageSize sets how many records each call asks for.
func WithPageSize(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.pageSize = n
		}
	}
}

// WithSuppression sets the noise rules and account scope.
func WithSuppression(sc provider.SuppressionContext) Option {
	return func(f *Fetcher) {
		f.suppression = sc
	}
}

// WithProgress registers a per-page observer.
func WithProgress(fn ProgressFunc) Option {
	return func(f *Fetcher) {
		f.progress = fn
	}
}

// WithClock overrides the fallback timestamp source used by normalization.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		if now != nil {
			f.now = now
		}
	}
}

// WithLogger replaces the component logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFetcher creates a fetcher reading from source through adapter.
func NewFetcher(source Source, adapter *provider.Adapter, opts ...Option) *Fetcher {
	f := &Fetcher{
		source:        source,
		adapter:       adapter,
		logger:        slog.Default().With("component", "statement"),
		now:           time.Now,
		maxIterations: DefaultMaxIterations,
		pageSize:      DefaultPageSize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Suppression returns the suppression context in use.
func (f *Fetcher) Suppression() provider.SuppressionContext {
	return f.suppression
}

// Accumulate fetches pages starting at q.Offset until limit visible records
// are collected, the source runs out, or the iteration guard is reached.
// A limit of zero or less means no target. Reaching the guard is not an
// error: the result is returned with HasMore set. On a remote failure the
// partial result is returned together with a *FetchError.
func (f *Fetcher) Accumulate(ctx context.Context, limit int, q filter.Query) (*Result, error) {
	res := &Result{}
	offset := q.Offset
	size := f.pageSize
	if limit > 0 && limit < size {
		size = limit
	}

	for call := 1; ; call++ {
		if call > f.maxIterations {
			res.GuardTriggered = true
			res.Pagination.HasMore = true
			f.logger.Warn("Iteration guard reached, returning partial statement",
				"calls", res.Calls,
				"accumulated", len(res.Transactions),
				"limit", limit)
			break
		}

		if err := ctx.Err(); err != nil {
			return res, &FetchError{Err: err, Call: call, Offset: offset}
		}

		page, err := f.source.ListTransactions(ctx, q.WithPage(size, offset))
		res.Calls++
		if err != nil {
			f.logger.Error("Statement page fetch failed",
				"call", call,
				"offset", offset,
				"error", err)
			return res, &FetchError{Err: err, Call: call, Offset: offset}
		}
		if page == nil {
			page = &Page{}
		}

		normalized := provider.NormalizeAll(f.adapter, page.Records, f.now())
		kept, dropped := provider.Apply(f.adapter, normalized, f.suppression)

		res.Fetched += len(page.Records)
		res.Suppressed += dropped
		res.Transactions = append(res.Transactions, kept...)
		res.Pagination = page.Pagination

		f.logger.Debug("Fetched statement page",
			"call", call,
			"offset", offset,
			"received", len(page.Records),
			"kept", len(kept),
			"total", page.Pagination.Total)

		if f.progress != nil {
			f.progress(PageProgress{
				Call:        call,
				Offset:      offset,
				Received:    len(page.Records),
				Kept:        len(kept),
				Accumulated: len(res.Transactions),
				Limit:       limit,
				Total:       page.Pagination.Total,
			})
		}

		next := offset + len(page.Records)
		if page.NextOffset > offset {
			next = page.NextOffset
		}
		offset = next

		if limit > 0 && len(res.Transactions) >= limit {
			if len(res.Transactions) > limit {
				res.Transactions = res.Transactions[:limit]
				res.Pagination.HasMore = true
			}
			break
		}

		if !page.Pagination.HasMore || len(page.Records) == 0 {
			res.Pagination.HasMore = false
			break
		}
	}

	res.NextOffset = offset
	f.logger.Info("Accumulated statement",
		"transactions", len(res.Transactions),
		"calls", res.Calls,
		"suppressed", res.Suppressed,
		"guard_triggered", res.GuardTriggered)

	return res, nil
}
