package cli

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/Veraticus/statement-flow/internal/provider"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DateTimeLayout is how timestamps are shown in tables.
const DateTimeLayout = "02/01/2006 15:04"

var brl = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders an amount as Brazilian reais, e.g. "R$ 1.234,56".
func FormatBRL(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + "R$ " + brl.Sprintf("%.2f", v)
}

// FormatSignedAmount renders a transaction value with its direction sign.
func FormatSignedAmount(t model.Transaction) string {
	if t.IsDebit() {
		return "-" + FormatBRL(t.Value)
	}
	return "+" + FormatBRL(t.Value)
}

// StyleAmount colors a signed amount by direction.
func StyleAmount(t model.Transaction) string {
	if t.IsDebit() {
		return DebitStyle.Render(FormatSignedAmount(t))
	}
	return CreditStyle.Render(FormatSignedAmount(t))
}

// FormatDocument masks a CPF or CNPJ in its usual punctuation. Other shapes
// are returned unchanged.
func FormatDocument(doc string) string {
	d := provider.SanitizeDocument(doc)
	switch provider.DocumentType(d) {
	case provider.DocumentTypeCPF:
		return fmt.Sprintf("%s.%s.%s-%s", d[0:3], d[3:6], d[6:9], d[9:11])
	case provider.DocumentTypeCNPJ:
		return fmt.Sprintf("%s.%s.%s/%s-%s", d[0:2], d[2:5], d[5:8], d[8:12], d[12:14])
	default:
		return doc
	}
}

// FormatDateTime renders a timestamp in loc, or local time when loc is nil.
func FormatDateTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateTimeLayout)
}

// Truncate shortens s to at most width runes, marking the cut with "…".
func Truncate(s string, width int) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:width-1])) + "…"
}
