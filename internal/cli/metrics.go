package cli

import (
	"fmt"
	"strings"

	"github.com/Veraticus/statement-flow/internal/model"
)

// RenderMetrics summarizes the filtered view in a box.
func RenderMetrics(m model.Metrics, p model.Pagination) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s (%d)\n", CreditStyle.Render("Credits:"), FormatBRL(m.CreditSum), m.CreditCount)
	fmt.Fprintf(&b, "%s %s (%d)\n", DebitStyle.Render("Debits: "), FormatBRL(m.DebitSum), m.DebitCount)

	net := FormatBRL(m.Net)
	if m.Net < 0 {
		net = DebitStyle.Render(net)
	} else {
		net = CreditStyle.Render(net)
	}
	fmt.Fprintf(&b, "%s %s\n", BoldStyle.Render("Net:    "), net)
	b.WriteString(SubtleStyle.Render(FormatPagination(p)))

	return RenderBox(ChartIcon+" Summary", b.String())
}

// FormatPagination renders "page X of Y (N transactions)".
func FormatPagination(p model.Pagination) string {
	pages := p.TotalPages
	if pages == 0 {
		pages = 1
	}
	current := p.CurrentPage
	if current == 0 {
		current = 1
	}
	s := fmt.Sprintf("Page %d of %d (%d transactions)", current, pages, p.Total)
	if p.HasMore {
		s += ", more available"
	}
	return s
}
