package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTransactions() []model.Transaction {
	base := time.Date(2025, 3, 10, 15, 4, 5, 0, time.UTC)
	return []model.Transaction{
		{
			ID:                   "corpx-1",
			DateTime:             base,
			Value:                1234.5,
			Type:                 model.TypeCredit,
			Status:               model.StatusSuccess,
			Provider:             model.ProviderCorpX,
			CounterpartyName:     "Padaria, Doces & Cia",
			CounterpartyDocument: "11111111000111",
			EndToEndCode:         "E00000000000000000000001",
			Description:          `PIX "recebido"`,
		},
		{
			ID:       "corpx-2",
			DateTime: base.Add(-time.Hour),
			Value:    0.1 + 0.2,
			Type:     model.TypeDebit,
			Status:   model.StatusPending,
			Provider: model.ProviderCorpX,
		},
	}
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTransactions(), Options{}))

	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 3)
	assert.Equal(t, Columns, rows[0])

	assert.Equal(t, []string{
		"2025-03-10T15:04:05Z",
		"corpx-1",
		"CREDIT",
		"SUCCESS",
		"1234.50",
		"Padaria, Doces & Cia",
		"11111111000111",
		"E00000000000000000000001",
		`PIX "recebido"`,
		"corpx",
	}, rows[1])

	assert.Equal(t, "0.30", rows[2][4])
	assert.Equal(t, "DEBIT", rows[2][2])
}

func TestWriteCSV_SignedAndLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTransactions(), Options{Location: loc, Signed: true}))

	rows := readCSV(t, buf.Bytes())
	assert.Equal(t, "2025-03-10T12:04:05-03:00", rows[1][0])
	assert.Equal(t, "1234.50", rows[1][4])
	assert.Equal(t, "-0.30", rows[2][4])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil, Options{}))
	rows := readCSV(t, buf.Bytes())
	assert.Equal(t, [][]string{Columns}, rows)
}

func TestAmount(t *testing.T) {
	tests := []struct {
		name   string
		want   string
		value  float64
		typ    model.TransactionType
		signed bool
	}{
		{name: "whole", value: 10, typ: model.TypeCredit, want: "10.00"},
		{name: "rounds half up", value: 2.675, typ: model.TypeCredit, want: "2.68"},
		{name: "unsigned debit", value: 5.5, typ: model.TypeDebit, want: "5.50"},
		{name: "signed debit", value: 5.5, typ: model.TypeDebit, signed: true, want: "-5.50"},
		{name: "signed credit", value: 5.5, typ: model.TypeCredit, signed: true, want: "5.50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := model.Transaction{Value: tt.value, Type: tt.typ}
			assert.Equal(t, tt.want, Amount(txn, tt.signed))
		})
	}
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "march.csv")
	require.NoError(t, WriteCSVFile(path, sampleTransactions(), Options{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, readCSV(t, data), 3)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}
