// Package statement accumulates paginated provider listings into a canonical
// transaction collection and keeps that collection consistent across reloads,
// incremental refreshes, and criteria changes.
package statement

import (
	"context"

	"github.com/Veraticus/statement-flow/internal/filter"
	"github.com/Veraticus/statement-flow/internal/model"
)

// Source is a remote paginated transaction listing.
type Source interface {
	ListTransactions(ctx context.Context, q filter.Query) (*Page, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, q filter.Query) (*Page, error)

// ListTransactions calls f.
func (f SourceFunc) ListTransactions(ctx context.Context, q filter.Query) (*Page, error) {
	return f(ctx, q)
}

// Page is one response from a Source.
type Page struct {
	Records    []model.RawRecord
	Pagination model.Pagination
	// NextOffset is the provider's cursor hint. Zero means offset plus page length.
	NextOffset int
}
