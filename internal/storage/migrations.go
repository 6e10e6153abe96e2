package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial statement cache",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS statement_transactions (
					scope TEXT NOT NULL,
					position INTEGER NOT NULL,
					id TEXT NOT NULL,
					merge_key TEXT NOT NULL,
					provider TEXT NOT NULL,
					date_time TEXT NOT NULL,
					date_unix INTEGER NOT NULL,
					value REAL NOT NULL,
					type TEXT NOT NULL,
					status TEXT NOT NULL,
					counterparty_name TEXT,
					counterparty_document TEXT,
					document TEXT,
					payer_document TEXT,
					beneficiary_document TEXT,
					end_to_end TEXT,
					description TEXT,
					original_description TEXT,
					raw TEXT,
					PRIMARY KEY (scope, position)
				)`,
				`CREATE INDEX idx_statement_transactions_scope_date ON statement_transactions(scope, date_unix DESC)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Add fetch history",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS fetch_log (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					scope TEXT NOT NULL,
					mode TEXT NOT NULL,
					fetched INTEGER NOT NULL DEFAULT 0,
					added INTEGER NOT NULL DEFAULT 0,
					calls INTEGER NOT NULL DEFAULT 0,
					suppressed INTEGER NOT NULL DEFAULT 0,
					guard_triggered INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_fetch_log_scope ON fetch_log(scope, created_at DESC)`,
			)
		},
	},
	{
		Version:     3,
		Description: "Index end-to-end codes for verification lookups",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE INDEX IF NOT EXISTS idx_statement_transactions_e2e ON statement_transactions(end_to_end)`,
			)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// SchemaVersion returns the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
