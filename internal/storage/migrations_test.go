package storage

import (
	"context"
	"testing"
)

func TestMigrations_AreOrderedAndComplete(t *testing.T) {
	for i, m := range migrations {
		if m.Version != i+1 {
			t.Errorf("migration at index %d has version %d, want %d", i, m.Version, i+1)
		}
		if m.Description == "" {
			t.Errorf("migration %d has no description", m.Version)
		}
	}
	if last := migrations[len(migrations)-1].Version; last != ExpectedSchemaVersion {
		t.Errorf("last migration is %d, ExpectedSchemaVersion is %d", last, ExpectedSchemaVersion)
	}
}

func TestMigrations_CreateTablesAndIndexes(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	objects := []struct {
		kind string
		name string
	}{
		{"table", "statement_transactions"},
		{"table", "fetch_log"},
		{"index", "idx_statement_transactions_scope_date"},
		{"index", "idx_statement_transactions_e2e"},
		{"index", "idx_fetch_log_scope"},
	}

	for _, obj := range objects {
		var count int
		err := store.db.QueryRowContext(context.Background(),
			`SELECT COUNT(*) FROM sqlite_master WHERE type = ? AND name = ?`,
			obj.kind, obj.name).Scan(&count)
		if err != nil {
			t.Fatalf("Failed to check %s %s: %v", obj.kind, obj.name, err)
		}
		if count != 1 {
			t.Errorf("%s %s was not created", obj.kind, obj.name)
		}
	}
}
