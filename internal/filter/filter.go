package filter

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/Veraticus/statement-flow/internal/provider"
)

// exactTolerance is how close a value must be to ExactAmount to match.
const exactTolerance = 0.01

var endToEndPattern = regexp.MustCompile(`^E\d{20,}`)

// IsEndToEndCode reports whether a free-text query looks like a payment
// network end-to-end identifier. It is a heuristic on user intent.
func IsEndToEndCode(query string) bool {
	return endToEndPattern.MatchString(strings.TrimSpace(query))
}

// Apply returns the transactions that satisfy every active constraint in c,
// in their original relative order. Callers should Validate c first.
func Apply(ts []model.Transaction, c Criteria) []model.Transaction {
	out := make([]model.Transaction, 0, len(ts))
	m := newMatcher(c)
	for _, t := range ts {
		if m.match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Match reports whether a single transaction satisfies c.
func Match(t model.Transaction, c Criteria) bool {
	return newMatcher(c).match(t)
}

// matcher holds criteria with day bounds and queries precomputed.
type matcher struct {
	from      *time.Time
	to        *time.Time
	min       *float64
	max       *float64
	exact     *float64
	typ       TypeFilter
	search    string
	e2e       string
	name      string
	nameDigit string
	desc      string
}

func newMatcher(c Criteria) matcher {
	m := matcher{typ: c.Type}
	if c.From != nil {
		from := c.dayStart(*c.From)
		m.from = &from
	}
	if c.To != nil {
		to := c.dayEnd(*c.To)
		m.to = &to
	}
	if c.exactActive() {
		m.exact = c.ExactAmount
	} else {
		m.min, m.max = c.MinAmount, c.MaxAmount
	}

	if q := strings.TrimSpace(c.Search); q != "" {
		if IsEndToEndCode(q) {
			m.e2e = q
		} else {
			m.search = strings.ToLower(q)
		}
	}
	if q := strings.TrimSpace(c.SearchName); q != "" {
		m.name = strings.ToLower(q)
		m.nameDigit = provider.SanitizeDocument(q)
	}
	if q := strings.TrimSpace(c.SearchDescription); q != "" {
		m.desc = strings.ToLower(q)
	}
	return m
}

func (m matcher) match(t model.Transaction) bool {
	if m.from != nil && t.DateTime.Before(*m.from) {
		return false
	}
	if m.to != nil && t.DateTime.After(*m.to) {
		return false
	}
	if !m.typ.Matches(t.Type) {
		return false
	}

	if m.exact != nil {
		if math.Abs(t.Value-*m.exact) >= exactTolerance {
			return false
		}
	} else {
		if m.min != nil && t.Value < *m.min {
			return false
		}
		if m.max != nil && t.Value > *m.max {
			return false
		}
	}

	if m.e2e != "" && !strings.EqualFold(strings.TrimSpace(t.EndToEndCode), m.e2e) {
		return false
	}
	if m.search != "" && !matchesText(t, m.search) {
		return false
	}
	if m.name != "" && !m.matchesName(t) {
		return false
	}
	if m.desc != "" && !containsAny(m.desc, t.Description, t.CounterpartyName, t.OriginalDescription) {
		return false
	}
	return true
}

// matchesText is the generic free-text search across the visible columns.
func matchesText(t model.Transaction, q string) bool {
	if containsAny(q, t.CounterpartyName, t.CounterpartyDocument, t.EndToEndCode, t.Description) {
		return true
	}
	for _, v := range valueStrings(t.Value) {
		if strings.Contains(v, q) {
			return true
		}
	}
	return false
}

func (m matcher) matchesName(t model.Transaction) bool {
	if containsAny(m.name, t.CounterpartyName, t.CounterpartyDocument) {
		return true
	}
	return m.nameDigit != "" && strings.Contains(t.CounterpartyDocument, m.nameDigit)
}

func containsAny(q string, fields ...string) bool {
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// valueStrings renders a magnitude the ways a user might type it.
func valueStrings(v float64) []string {
	v = math.Abs(v)
	fixed := strconv.FormatFloat(v, 'f', 2, 64)
	return []string{
		strconv.FormatFloat(v, 'f', -1, 64),
		fixed,
		strings.Replace(fixed, ".", ",", 1),
	}
}
