// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/statement-flow/internal/model"
)

// Storage defines the contract for the local statement cache.
type Storage interface {
	// Canonical collection operations, keyed by view scope
	ReplaceTransactions(ctx context.Context, scope string, transactions []model.Transaction) error
	LoadTransactions(ctx context.Context, scope string) ([]model.Transaction, error)
	CountTransactions(ctx context.Context, scope string) (int, error)

	// Fetch history
	RecordFetch(ctx context.Context, record *model.FetchRecord) error
	RecentFetches(ctx context.Context, scope string, limit int) ([]model.FetchRecord, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
