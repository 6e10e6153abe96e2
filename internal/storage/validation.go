// Package storage provides the local statement cache backed by SQLite.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/statement-flow/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidFetchRecord = errors.New("invalid fetch record")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions. An empty slice is
// valid and clears the scope.
func validateTransactions(transactions []model.Transaction) error {
	for i := range transactions {
		if err := validateTransaction(&transactions[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.DateTime.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.Provider == "" {
		return fmt.Errorf("%w: missing provider", ErrInvalidTransaction)
	}
	if txn.Type != model.TypeCredit && txn.Type != model.TypeDebit {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, txn.Type)
	}
	return nil
}

// validateFetchRecord validates a fetch history entry.
func validateFetchRecord(rec *model.FetchRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: fetch record", ErrNilParameter)
	}
	if err := validateString(rec.Scope, "scope"); err != nil {
		return err
	}
	switch rec.Mode {
	case model.FetchModeReload, model.FetchModeRefresh, model.FetchModeImport:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidFetchRecord, rec.Mode)
	}
	if rec.Fetched < 0 || rec.Added < 0 || rec.Calls < 0 || rec.Suppressed < 0 {
		return fmt.Errorf("%w: counts must not be negative", ErrInvalidFetchRecord)
	}
	return nil
}
