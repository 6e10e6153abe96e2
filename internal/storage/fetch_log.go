package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/statement-flow/internal/model"
)

// RecordFetch appends an entry to the fetch history and sets its ID.
func (s *SQLiteStorage) RecordFetch(ctx context.Context, rec *model.FetchRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateFetchRecord(rec); err != nil {
		return err
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO fetch_log (scope, mode, fetched, added, calls, suppressed, guard_triggered, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Scope, string(rec.Mode), rec.Fetched, rec.Added, rec.Calls, rec.Suppressed,
		rec.GuardTriggered, rec.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record fetch: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get fetch ID: %w", err)
	}
	rec.ID = id
	return nil
}

// RecentFetches returns up to limit history entries, newest first. An empty
// scope returns entries for every scope.
func (s *SQLiteStorage) RecentFetches(ctx context.Context, scope string, limit int) ([]model.FetchRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, scope, mode, fetched, added, calls, suppressed, guard_triggered, created_at
		FROM fetch_log
	`
	args := []any{}
	if scope != "" {
		query += ` WHERE scope = ?`
		args = append(args, scope)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fetch history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.FetchRecord
	for rows.Next() {
		var (
			rec  model.FetchRecord
			mode string
		)
		if err := rows.Scan(&rec.ID, &rec.Scope, &mode, &rec.Fetched, &rec.Added, &rec.Calls,
			&rec.Suppressed, &rec.GuardTriggered, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fetch record: %w", err)
		}
		rec.Mode = model.FetchMode(mode)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fetch history: %w", err)
	}
	return records, nil
}
