package storage

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/statement-flow/internal/model"
)

const transactionColumns = `id, provider, date_time, value, type, status,
	counterparty_name, counterparty_document, document, payer_document,
	beneficiary_document, end_to_end, description, original_description, raw`

// ReplaceTransactions swaps the cached collection for scope in one transaction.
// The slice order is preserved for rows sharing a timestamp.
func (s *SQLiteStorage) ReplaceTransactions(ctx context.Context, scope string, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(scope, "scope"); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM statement_transactions WHERE scope = ?`, scope); err != nil {
		return fmt.Errorf("failed to clear scope %s: %w", scope, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO statement_transactions (
			scope, position, merge_key, date_unix, `+transactionColumns+`
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, txn := range transactions {
		raw, err := encodeRaw(txn.Raw)
		if err != nil {
			return fmt.Errorf("failed to encode raw record for %s: %w", txn.ID, err)
		}

		_, err = stmt.ExecContext(ctx,
			scope, i, txn.MergeKey(), txn.DateTime.UnixNano(),
			txn.ID, string(txn.Provider), txn.DateTime.Format(time.RFC3339Nano), txn.Value,
			string(txn.Type), string(txn.Status),
			txn.CounterpartyName, txn.CounterpartyDocument, txn.Document, txn.PayerDocument,
			txn.BeneficiaryDocument, txn.EndToEndCode, txn.Description, txn.OriginalDescription, raw,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}
	}

	return tx.Commit()
}

// LoadTransactions returns the cached collection for scope, newest first.
func (s *SQLiteStorage) LoadTransactions(ctx context.Context, scope string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(scope, "scope"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM statement_transactions
		WHERE scope = ?
		ORDER BY date_unix DESC, position ASC
	`, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransactions(rows)
}

// FindByEndToEnd returns every cached transaction carrying the given code,
// across all scopes.
func (s *SQLiteStorage) FindByEndToEnd(ctx context.Context, code string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)
	if err := validateString(code, "code"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM statement_transactions
		WHERE end_to_end = ? COLLATE NOCASE
		ORDER BY date_unix DESC, scope ASC
	`, code)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransactions(rows)
}

// CountTransactions returns the number of cached transactions for scope.
func (s *SQLiteStorage) CountTransactions(ctx context.Context, scope string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(scope, "scope"); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM statement_transactions WHERE scope = ?`, scope).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var transactions []model.Transaction
	for rows.Next() {
		var (
			txn                                             model.Transaction
			provider, dateTime, txnType, status             string
			counterpartyName, counterpartyDoc, document     sql.NullString
			payerDoc, beneficiaryDoc, endToEnd, description sql.NullString
			originalDescription, raw                        sql.NullString
		)

		err := rows.Scan(
			&txn.ID, &provider, &dateTime, &txn.Value, &txnType, &status,
			&counterpartyName, &counterpartyDoc, &document, &payerDoc,
			&beneficiaryDoc, &endToEnd, &description, &originalDescription, &raw,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		txn.DateTime, err = time.Parse(time.RFC3339Nano, dateTime)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date for %s: %w", txn.ID, err)
		}
		txn.Provider = model.ProviderKind(provider)
		txn.Type = model.TransactionType(txnType)
		txn.Status = model.Status(status)
		txn.CounterpartyName = counterpartyName.String
		txn.CounterpartyDocument = counterpartyDoc.String
		txn.Document = document.String
		txn.PayerDocument = payerDoc.String
		txn.BeneficiaryDocument = beneficiaryDoc.String
		txn.EndToEndCode = endToEnd.String
		txn.Description = description.String
		txn.OriginalDescription = originalDescription.String

		if raw.Valid && raw.String != "" {
			txn.Raw, err = decodeRaw(raw.String)
			if err != nil {
				return nil, fmt.Errorf("failed to decode raw record for %s: %w", txn.ID, err)
			}
		}

		transactions = append(transactions, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}

func encodeRaw(raw model.RawRecord) (sql.NullString, error) {
	if raw == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeRaw(data string) (model.RawRecord, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	var raw model.RawRecord
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}
