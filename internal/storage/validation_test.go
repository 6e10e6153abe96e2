package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/statement-flow/internal/model"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name    string
		str     string
		wantErr bool
	}{
		{name: "valid string", str: "corpx:all", wantErr: false},
		{name: "empty string", str: "", wantErr: true},
		{name: "whitespace only", str: " \t\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.str, "scope")
			if (err != nil) != tt.wantErr {
				t.Errorf("validateString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), "scope") {
				t.Errorf("error %q does not name the parameter", err)
			}
		})
	}
}

func TestValidateTransaction(t *testing.T) {
	valid := model.Transaction{
		ID:       "t1",
		DateTime: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		Type:     model.TypeDebit,
		Provider: model.ProviderTCR,
	}

	tests := []struct {
		txn    *model.Transaction
		name   string
		errMsg string
	}{
		{name: "valid", txn: &valid},
		{name: "nil", txn: nil, errMsg: "cannot be nil"},
		{name: "missing ID", txn: func() *model.Transaction { t := valid; t.ID = ""; return &t }(), errMsg: "missing ID"},
		{name: "missing date", txn: func() *model.Transaction { t := valid; t.DateTime = time.Time{}; return &t }(), errMsg: "missing date"},
		{name: "missing provider", txn: func() *model.Transaction { t := valid; t.Provider = ""; return &t }(), errMsg: "missing provider"},
		{name: "unknown type", txn: func() *model.Transaction { t := valid; t.Type = "TRANSFER"; return &t }(), errMsg: "unknown type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTransaction(tt.txn)
			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %v, want containing %q", err, tt.errMsg)
			}
		})
	}
}

func TestValidateTransactions(t *testing.T) {
	if err := validateTransactions(nil); err != nil {
		t.Errorf("nil slice should be valid: %v", err)
	}

	txns := createTestTransactions(3)
	txns[2].Provider = ""
	err := validateTransactions(txns)
	if !errors.Is(err, ErrInvalidTransaction) {
		t.Fatalf("expected ErrInvalidTransaction, got %v", err)
	}
	if !strings.Contains(err.Error(), "index 2") {
		t.Errorf("error %q does not name the index", err)
	}
}
