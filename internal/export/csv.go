// Package export writes statement views to files for spreadsheets and accountants.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/shopspring/decimal"
)

// Columns is the CSV header row.
var Columns = []string{
	"date",
	"id",
	"type",
	"status",
	"amount",
	"counterparty_name",
	"counterparty_document",
	"end_to_end",
	"description",
	"provider",
}

// Options tunes CSV output.
type Options struct {
	// Location is the zone dates are written in; UTC when nil.
	Location *time.Location
	// Signed writes debits as negative amounts.
	Signed bool
}

// WriteCSV writes a header and one row per transaction in the given order.
func WriteCSV(w io.Writer, ts []model.Transaction, opts Options) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i, t := range ts {
		if err := cw.Write(row(t, opts)); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// WriteCSVFile writes the CSV to path, creating parent directories. A failed
// export leaves any existing file at path untouched.
func WriteCSVFile(path string, ts []model.Transaction, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := WriteCSV(tmp, ts, opts); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move export into place: %w", err)
	}
	return nil
}

func row(t model.Transaction, opts Options) []string {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	date := ""
	if !t.DateTime.IsZero() {
		date = t.DateTime.In(loc).Format(time.RFC3339)
	}
	return []string{
		date,
		t.ID,
		string(t.Type),
		string(t.Status),
		Amount(t, opts.Signed),
		t.CounterpartyName,
		t.CounterpartyDocument,
		t.EndToEndCode,
		t.Description,
		string(t.Provider),
	}
}

// Amount renders a value with exactly two decimals.
func Amount(t model.Transaction, signed bool) string {
	d := decimal.NewFromFloat(t.Value).Round(2)
	if signed && t.IsDebit() {
		d = d.Neg()
	}
	return d.StringFixed(2)
}
