package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/Veraticus/statement-flow/internal/statement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		name string
		want string
		in   float64
	}{
		{name: "zero", in: 0, want: "R$ 0,00"},
		{name: "cents", in: 12.5, want: "R$ 12,50"},
		{name: "negative", in: -0.5, want: "-R$ 0,50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBRL(tt.in))
		})
	}
}

func TestFormatSignedAmount(t *testing.T) {
	assert.Equal(t, "+R$ 10,00", FormatSignedAmount(model.Transaction{Type: model.TypeCredit, Value: 10}))
	assert.Equal(t, "-R$ 0,50", FormatSignedAmount(model.Transaction{Type: model.TypeDebit, Value: 0.5}))
}

func TestFormatDocument(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12345678909", "123.456.789-09"},
		{"11222333000181", "11.222.333/0001-81"},
		{"11.222.333/0001-81", "11.222.333/0001-81"},
		{"123", "123"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDocument(tt.in))
		})
	}
}

func TestFormatDateTime(t *testing.T) {
	ts := time.Date(2025, 3, 10, 15, 4, 0, 0, time.UTC)
	saoPaulo := time.FixedZone("BRT", -3*60*60)

	assert.Equal(t, "10/03/2025 12:04", FormatDateTime(ts, saoPaulo))
	assert.Equal(t, "10/03/2025 15:04", FormatDateTime(ts, time.UTC))
	assert.Empty(t, FormatDateTime(time.Time{}, time.UTC))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "Joã…", Truncate("João da Silva", 4))
	assert.Equal(t, "…", Truncate("abc", 1))
	assert.Equal(t, "abc", Truncate("abc", 0))
}

func TestRenderStatementTable(t *testing.T) {
	ts := []model.Transaction{
		{
			DateTime:             time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
			Type:                 model.TypeCredit,
			Value:                100,
			CounterpartyName:     "Cliente A",
			CounterpartyDocument: "11222333000181",
			Status:               model.StatusSuccess,
			EndToEndCode:         "E00000000000000000000000001",
		},
		{
			DateTime:         time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC),
			Type:             model.TypeDebit,
			Value:            7.25,
			CounterpartyName: "Fornecedor B",
			Status:           model.StatusPending,
		},
	}

	var buf bytes.Buffer
	RenderStatementTable(&buf, ts, TableOptions{Location: time.UTC, ShowEndToEnd: true})
	out := buf.String()

	assert.Contains(t, strings.ToUpper(out), "COUNTERPARTY")
	assert.Contains(t, out, "Cliente A")
	assert.Contains(t, out, "11.222.333/0001-81")
	assert.Contains(t, out, "+R$ 100,00")
	assert.Contains(t, out, "-R$ 7,25")
	assert.Contains(t, out, "E00000000000000000000000001")
	assert.Contains(t, out, "10/03/2025 12:00")
}

func TestStatementRow_HidesEndToEndByDefault(t *testing.T) {
	row := StatementRow(model.Transaction{EndToEndCode: "E1"}, TableOptions{})
	assert.Len(t, row, len(StatementHeaders(TableOptions{})))
	assert.NotContains(t, row, "E1")
}

func TestRenderMetrics(t *testing.T) {
	out := RenderMetrics(
		model.Metrics{CreditCount: 2, CreditSum: 150, DebitCount: 1, DebitSum: 0.5, Net: 149.5},
		model.Pagination{Total: 3, CurrentPage: 1, TotalPages: 1},
	)

	assert.Contains(t, out, "R$ 150,00 (2)")
	assert.Contains(t, out, "R$ 0,50 (1)")
	assert.Contains(t, out, "R$ 149,50")
	assert.Contains(t, out, "Page 1 of 1 (3 transactions)")
}

func TestFormatPagination(t *testing.T) {
	assert.Equal(t, "Page 1 of 1 (0 transactions)", FormatPagination(model.Pagination{}))
	assert.Equal(t, "Page 2 of 5 (100 transactions), more available",
		FormatPagination(model.Pagination{Total: 100, CurrentPage: 2, TotalPages: 5, HasMore: true}))
}

func TestFetchProgress_Observe(t *testing.T) {
	var buf bytes.Buffer
	p := NewFetchProgress(&buf, 100, "Fetching")

	var fn statement.ProgressFunc = p.Observe
	fn(statement.PageProgress{Call: 1, Received: 80, Kept: 70, Accumulated: 70, Limit: 100})
	fn(statement.PageProgress{Call: 2, Received: 40, Kept: 30, Accumulated: 100, Limit: 100})
	p.Finish()

	require.Equal(t, 100, p.Accumulated())
	assert.NotEmpty(t, buf.String())
}
