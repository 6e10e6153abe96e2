package cli

import (
	"io"
	"time"

	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/olekukonko/tablewriter"
)

// TableOptions tunes how statement rows are rendered.
type TableOptions struct {
	Location  *time.Location
	NameWidth int
	// ShowEndToEnd adds the end-to-end code column.
	ShowEndToEnd bool
}

// StatementHeaders returns the column titles used by RenderStatementTable.
func StatementHeaders(opts TableOptions) []string {
	headers := []string{"Date", "Type", "Counterparty", "Document", "Amount", "Status"}
	if opts.ShowEndToEnd {
		headers = append(headers, "End-to-end")
	}
	return headers
}

// StatementRow renders one transaction as table cells.
func StatementRow(t model.Transaction, opts TableOptions) []string {
	width := opts.NameWidth
	if width <= 0 {
		width = 32
	}
	row := []string{
		FormatDateTime(t.DateTime, opts.Location),
		string(t.Type),
		Truncate(t.CounterpartyName, width),
		FormatDocument(t.CounterpartyDocument),
		FormatSignedAmount(t),
		string(t.Status),
	}
	if opts.ShowEndToEnd {
		row = append(row, t.EndToEndCode)
	}
	return row
}

// RenderStatementTable writes transactions as an ASCII table.
func RenderStatementTable(w io.Writer, ts []model.Transaction, opts TableOptions) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(StatementHeaders(opts))
	table.SetAutoWrapText(false)
	table.SetBorder(true)

	for _, t := range ts {
		table.Append(StatementRow(t, opts))
	}
	table.Render()
}
