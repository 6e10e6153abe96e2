// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"strings"
	"time"
)

// TransactionType is the direction of money movement relative to the statement owner.
type TransactionType string

// Transaction type constants.
const (
	TypeDebit  TransactionType = "DEBIT"
	TypeCredit TransactionType = "CREDIT"
)

// Status is the normalized settlement status of a transaction.
type Status string

// Transaction status constants.
const (
	StatusSuccess    Status = "SUCCESS"
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusFailed     Status = "FAILED"
	StatusCancelled  Status = "CANCELLED"
	StatusUnknown    Status = "UNKNOWN"
)

// UnidentifiedCounterparty is shown when a provider omits the counterparty name.
const UnidentifiedCounterparty = "unidentified"

// Transaction is the canonical shape every provider record is normalized into.
type Transaction struct {
	DateTime             time.Time
	Raw                  RawRecord
	ID                   string
	CounterpartyName     string
	CounterpartyDocument string
	Document             string
	PayerDocument        string
	BeneficiaryDocument  string
	EndToEndCode         string
	Description          string
	OriginalDescription  string
	Type                 TransactionType
	Status               Status
	Provider             ProviderKind
	Value                float64
}

// IsCredit reports whether money came in.
func (t Transaction) IsCredit() bool {
	return t.Type == TypeCredit
}

// IsDebit reports whether money went out.
func (t Transaction) IsDebit() bool {
	return t.Type == TypeDebit
}

// MergeKey identifies the underlying record across repeated fetches.
// The end-to-end code wins; records without one fall back to timestamp plus value.
func (t Transaction) MergeKey() string {
	if code := strings.TrimSpace(t.EndToEndCode); code != "" {
		return "e2e:" + code
	}
	return fmt.Sprintf("dv:%s|%.2f", t.DateTime.UTC().Format(time.RFC3339Nano), t.Value)
}
