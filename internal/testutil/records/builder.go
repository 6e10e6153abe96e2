package records

import (
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/statement-flow/internal/model"
)

// BaseTime is the timestamp of the first built record. Later records are one
// hour older each, so built lists are newest first like provider listings.
var BaseTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// Well-known test documents.
const (
	DocumentA     = "11111111000111"
	DocumentB     = "22222222000122"
	DecoyDocument = "33333333000133"
	OwnDocument   = "55555555000155"
)

// EndToEnd returns a well-formed end-to-end code for n.
func EndToEnd(n int) string {
	return fmt.Sprintf("E%024d", n)
}

// Builder constructs raw provider records.
type Builder struct {
	t       *testing.T
	kind    model.ProviderKind
	records []model.RawRecord
	prefix  string
	seq     int
}

// NewBuilder creates a builder emitting records in kind's field layout.
func NewBuilder(t *testing.T, kind model.ProviderKind) *Builder {
	t.Helper()
	return &Builder{t: t, kind: kind, prefix: string(kind)}
}

// WithIDPrefix changes the prefix of generated ids.
func (b *Builder) WithIDPrefix(prefix string) *Builder {
	b.prefix = prefix
	return b
}

// Credit appends an incoming transfer from the payer document.
func (b *Builder) Credit(value float64, payerDocument string) *Builder {
	return b.add(model.TypeCredit, value, payerDocument)
}

// Debit appends an outgoing transfer to the beneficiary document.
func (b *Builder) Debit(value float64, beneficiaryDocument string) *Builder {
	return b.add(model.TypeDebit, value, beneficiaryDocument)
}

// Credits appends n credits of the same value from distinct payers.
func (b *Builder) Credits(n int, value float64) *Builder {
	for i := 0; i < n; i++ {
		b.Credit(value, fmt.Sprintf("%014d", b.seq+1))
	}
	return b
}

// WithEndToEnd sets the end-to-end code of the last record.
func (b *Builder) WithEndToEnd(code string) *Builder {
	return b.set(map[model.ProviderKind]string{
		model.ProviderCorpX: "endToEnd",
		model.ProviderTCR:   "endToEndId",
		model.ProviderOFX:   "correctFitId",
	}, code)
}

// WithDescription sets the description of the last record.
func (b *Builder) WithDescription(desc string) *Builder {
	return b.set(map[model.ProviderKind]string{
		model.ProviderCorpX: "descricao",
		model.ProviderTCR:   "description",
		model.ProviderOFX:   "memo",
	}, desc)
}

// WithAccountDocument sets the statement owner document of the last record.
func (b *Builder) WithAccountDocument(doc string) *Builder {
	return b.set(map[model.ProviderKind]string{
		model.ProviderCorpX: "documento",
		model.ProviderTCR:   "document",
		model.ProviderOFX:   "accountDocument",
	}, doc)
}

// At sets the timestamp of the last record.
func (b *Builder) At(ts time.Time) *Builder {
	return b.set(map[model.ProviderKind]string{
		model.ProviderCorpX: "transactionDatetime",
		model.ProviderTCR:   "transactionDatetimeUtc",
		model.ProviderOFX:   "posted",
	}, ts.Format(time.RFC3339))
}

// Build returns copies of the records built so far.
func (b *Builder) Build() []model.RawRecord {
	out := make([]model.RawRecord, len(b.records))
	for i, r := range b.records {
		out[i] = r.Clone()
	}
	return out
}

func (b *Builder) set(fields map[model.ProviderKind]string, value string) *Builder {
	b.t.Helper()
	if len(b.records) == 0 {
		b.t.Fatal("records builder: no record to modify")
	}
	field, ok := fields[b.kind]
	if !ok {
		b.t.Fatalf("records builder: unsupported provider %q", b.kind)
	}
	b.records[len(b.records)-1][field] = value
	return b
}

func (b *Builder) add(typ model.TransactionType, value float64, counterpartyDocument string) *Builder {
	b.t.Helper()
	b.seq++
	id := fmt.Sprintf("%s-%d", b.prefix, b.seq)
	ts := BaseTime.Add(-time.Duration(b.seq-1) * time.Hour).Format(time.RFC3339)
	name := fmt.Sprintf("Counterparty %d", b.seq)

	var r model.RawRecord
	switch b.kind {
	case model.ProviderCorpX:
		r = model.RawRecord{
			"idTransacao":         id,
			"transactionDatetime": ts,
			"valor":               value,
			"status":              "EFETIVADO",
		}
		if typ == model.TypeDebit {
			r["tipo"] = "D"
			r["valor"] = -value
			r["nomeBeneficiario"] = name
			r["documentoBeneficiario"] = counterpartyDocument
		} else {
			r["tipo"] = "C"
			r["nomePagador"] = name
			r["documentoPagador"] = counterpartyDocument
		}
	case model.ProviderTCR:
		party := map[string]any{"name": name, "document": counterpartyDocument}
		r = model.RawRecord{
			"id":                     id,
			"transactionDatetimeUtc": ts,
			"amount":                 value,
			"status":                 "COMPLETED",
		}
		if typ == model.TypeDebit {
			r["type"] = "debit"
			r["beneficiary"] = party
		} else {
			r["type"] = "credit"
			r["payer"] = party
		}
	case model.ProviderOFX:
		r = model.RawRecord{
			"fitId":  id,
			"posted": ts,
			"amount": value,
			"payee":  name,
		}
		if typ == model.TypeDebit {
			r["direction"] = "debit"
			r["amount"] = -value
		} else {
			r["direction"] = "credit"
		}
	default:
		b.t.Fatalf("records builder: unsupported provider %q", b.kind)
	}

	b.records = append(b.records, r)
	return b
}

// Split cuts records into consecutive pages of the given sizes. Records left
// over after the listed sizes are dropped.
func Split(records []model.RawRecord, sizes ...int) [][]model.RawRecord {
	pages := make([][]model.RawRecord, 0, len(sizes))
	start := 0
	for _, size := range sizes {
		end := min(start+size, len(records))
		pages = append(pages, records[start:end])
		start = end
	}
	return pages
}
