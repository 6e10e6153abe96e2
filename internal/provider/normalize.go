package provider

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// dateLayouts are tried in order after RFC 3339.
var dateLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"20060102150405",
	"20060102",
}

// Normalize maps one raw record into a canonical transaction. It never fails:
// every attribute degrades to a fallback so one malformed record cannot stop
// the rest of a page from rendering.
func Normalize(a *Adapter, raw model.RawRecord, now time.Time) model.Transaction {
	if a == nil {
		a = &Adapter{Fields: FieldMap{}}
	}
	fields := a.Fields

	magnitude, amountNegative := parseAmount(fields, raw)
	description := fields.First(raw, AttrDescription)

	txnType := resolveType(a, raw, description, amountNegative)

	t := model.Transaction{
		ID:                  resolveID(a, raw, now),
		DateTime:            parseDate(fields.First(raw, AttrDate), now),
		Value:               magnitude,
		Type:                txnType,
		Document:            SanitizeDocument(fields.First(raw, AttrDocument)),
		PayerDocument:       SanitizeDocument(fields.First(raw, AttrPayerDocument)),
		BeneficiaryDocument: SanitizeDocument(fields.First(raw, AttrBeneficiaryDocument)),
		EndToEndCode:        fields.First(raw, AttrEndToEnd),
		Description:         description,
		OriginalDescription: fields.First(raw, AttrOriginalDescription),
		Status:              NormalizeStatus(fields.First(raw, AttrStatus)),
		Provider:            a.Kind,
		Raw:                 raw.Clone(),
	}

	// The counterparty is whoever is on the other side of the movement
	var name, doc string
	if txnType == model.TypeCredit {
		name, doc = fields.First(raw, AttrPayerName), t.PayerDocument
	} else {
		name, doc = fields.First(raw, AttrBeneficiaryName), t.BeneficiaryDocument
	}
	if name == "" {
		name = model.UnidentifiedCounterparty
	}
	if doc == "" {
		doc = t.Document
	}
	t.CounterpartyName = name
	t.CounterpartyDocument = doc

	return t
}

// NormalizeAll normalizes a page of raw records, preserving order.
func NormalizeAll(a *Adapter, records []model.RawRecord, now time.Time) []model.Transaction {
	out := make([]model.Transaction, 0, len(records))
	for _, raw := range records {
		out = append(out, Normalize(a, raw, now))
	}
	return out
}

func resolveID(a *Adapter, raw model.RawRecord, now time.Time) string {
	if id := a.Fields.First(raw, AttrID); id != "" {
		return id
	}
	if mov := a.Fields.First(raw, AttrMovementNumber); mov != "" {
		return mov
	}
	kind := string(a.Kind)
	if kind == "" {
		kind = "txn"
	}
	return fmt.Sprintf("%s-%d", kind, now.UnixNano())
}

// parseAmount returns the magnitude and whether the raw amount was negative.
// Unparseable amounts become zero.
func parseAmount(fields FieldMap, raw model.RawRecord) (float64, bool) {
	v, ok := fields.FirstValue(raw, AttrValue)
	if !ok {
		return 0, false
	}

	var d decimal.Decimal
	var err error
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, false
		}
		d = decimal.NewFromFloat(val)
	case json.Number:
		d, err = decimal.NewFromString(val.String())
	case int:
		d = decimal.NewFromInt(int64(val))
	case int64:
		d = decimal.NewFromInt(val)
	default:
		d, err = ParseAmountString(model.ScalarString(v))
	}
	if err != nil {
		return 0, false
	}

	f, _ := d.Abs().Float64()
	return f, d.IsNegative()
}

// ParseAmountString accepts "1234.56", "-10", "1.234,56", "R$ 1.234,56" and "1,234.56".
func ParseAmountString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0 && lastComma > lastDot:
		// 1.234,56
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastComma >= 0 && lastDot >= 0:
		// 1,234.56
		s = strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		// 1234,56
		s = strings.ReplaceAll(s, ",", ".")
	}

	return decimal.NewFromString(s)
}

func parseDate(s string, now time.Time) time.Time {
	if s == "" {
		return now
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return now
}

// resolveType reads the discriminator, then description keywords, then the sign
// of the raw amount. Anything still undecided is a credit.
func resolveType(a *Adapter, raw model.RawRecord, description string, negative bool) model.TransactionType {
	if marker := strings.ToLower(a.Fields.First(raw, AttrType)); marker != "" {
		if containsFold(a.DebitMarkers, marker) {
			return model.TypeDebit
		}
		if containsFold(a.CreditMarkers, marker) {
			return model.TypeCredit
		}
	}

	if description != "" {
		folded := foldText(description)
		for _, kw := range a.DebitKeywords {
			if strings.Contains(folded, foldText(kw)) {
				return model.TypeDebit
			}
		}
		for _, kw := range a.CreditKeywords {
			if strings.Contains(folded, foldText(kw)) {
				return model.TypeCredit
			}
		}
	}

	if negative {
		return model.TypeDebit
	}
	return model.TypeCredit
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}

// foldText upper-cases and strips diacritics so "Depósito" matches "DEPOSITO".
func foldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToUpper(out)
}
