// Package testutil provides shared helpers for tests that need a real statement cache.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/Veraticus/statement-flow/internal/storage"
)

// TestDB represents a migrated in-memory statement cache.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	// Seed maps scopes to the collection stored before the test runs.
	Seed           map[string][]model.Transaction
	SkipMigrations bool
}

// SetupTestDB creates a new in-memory test database.
// It automatically handles migrations and cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// SetupTestDBWithOptions creates a test database with custom options.
//
// Example:
//
//	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
//		Seed: map[string][]model.Transaction{"corpx:all": cached},
//	})
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	for scope, txns := range opts.Seed {
		if err := store.ReplaceTransactions(ctx, scope, txns); err != nil {
			t.Fatalf("failed to seed scope %q: %v", scope, err)
		}
	}

	return &TestDB{Storage: store, t: t}
}

// MustLoad returns the cached collection for scope or fails the test.
func (db *TestDB) MustLoad(scope string) []model.Transaction {
	db.t.Helper()
	txns, err := db.Storage.LoadTransactions(context.Background(), scope)
	if err != nil {
		db.t.Fatalf("failed to load scope %q: %v", scope, err)
	}
	return txns
}

// MustFetches returns the fetch history for scope or fails the test.
func (db *TestDB) MustFetches(scope string) []model.FetchRecord {
	db.t.Helper()
	recs, err := db.Storage.RecentFetches(context.Background(), scope, 100)
	if err != nil {
		db.t.Fatalf("failed to load fetch history for %q: %v", scope, err)
	}
	return recs
}
