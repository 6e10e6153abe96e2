// Package filter narrows and orders a canonical transaction list.
//
// Criteria are AND-combined inclusion predicates. Every field is optional and
// an unset field never constrains the result. Filtering and sorting return new
// slices and never mutate their input.
package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/statement-flow/internal/model"
)

// ErrInvalidCriteria is returned by Validate for user input that cannot be applied.
var ErrInvalidCriteria = errors.New("invalid filter criteria")

// TypeFilter restricts the direction of matching transactions.
type TypeFilter string

// Type filter values.
const (
	TypeAny    TypeFilter = ""
	TypeDebit  TypeFilter = "debit"
	TypeCredit TypeFilter = "credit"
)

// ParseTypeFilter accepts "", "any", "all", "debit", "credit" in any case.
func ParseTypeFilter(s string) (TypeFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any", "all":
		return TypeAny, nil
	case "debit", "d", "debito":
		return TypeDebit, nil
	case "credit", "c", "credito":
		return TypeCredit, nil
	default:
		return TypeAny, fmt.Errorf("%w: unknown transaction type %q", ErrInvalidCriteria, s)
	}
}

// Matches reports whether a transaction type passes the filter.
func (f TypeFilter) Matches(t model.TransactionType) bool {
	switch f {
	case TypeDebit:
		return t == model.TypeDebit
	case TypeCredit:
		return t == model.TypeCredit
	default:
		return true
	}
}

// Criteria is the set of user-selected constraints on a transaction view.
type Criteria struct {
	From              *time.Time
	To                *time.Time
	MinAmount         *float64
	MaxAmount         *float64
	ExactAmount       *float64
	Location          *time.Location
	Type              TypeFilter
	Search            string
	SearchName        string
	SearchDescription string
}

// Validate rejects contradictory or malformed criteria.
func (c Criteria) Validate() error {
	switch c.Type {
	case TypeAny, TypeDebit, TypeCredit:
	default:
		return fmt.Errorf("%w: unknown transaction type %q", ErrInvalidCriteria, c.Type)
	}

	amounts := []struct {
		value *float64
		name  string
	}{
		{c.MinAmount, "min amount"},
		{c.MaxAmount, "max amount"},
		{c.ExactAmount, "exact amount"},
	}
	for _, a := range amounts {
		if a.value != nil && *a.value < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidCriteria, a.name)
		}
	}

	if !c.exactActive() && c.MinAmount != nil && c.MaxAmount != nil && *c.MinAmount > *c.MaxAmount {
		return fmt.Errorf("%w: min amount %.2f is greater than max amount %.2f",
			ErrInvalidCriteria, *c.MinAmount, *c.MaxAmount)
	}

	if c.From != nil && c.To != nil {
		from, to := c.dayStart(*c.From), c.dayEnd(*c.To)
		if from.After(to) {
			return fmt.Errorf("%w: start date %s is after end date %s",
				ErrInvalidCriteria, c.From.Format(time.DateOnly), c.To.Format(time.DateOnly))
		}
	}

	return nil
}

// IsZero reports whether the criteria constrain nothing.
func (c Criteria) IsZero() bool {
	return c.From == nil && c.To == nil && c.Type == TypeAny &&
		c.MinAmount == nil && c.MaxAmount == nil && !c.exactActive() &&
		strings.TrimSpace(c.Search) == "" &&
		strings.TrimSpace(c.SearchName) == "" &&
		strings.TrimSpace(c.SearchDescription) == ""
}

// exactActive reports whether the exact amount overrides the range.
func (c Criteria) exactActive() bool {
	return c.ExactAmount != nil && *c.ExactAmount != 0
}

func (c Criteria) location() *time.Location {
	if c.Location != nil {
		return c.Location
	}
	return time.Local
}

// dayStart floors t to 00:00:00.000 of its calendar day in the criteria location.
func (c Criteria) dayStart(t time.Time) time.Time {
	loc := c.location()
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// dayEnd ceils t to 23:59:59.999 of its calendar day in the criteria location.
func (c Criteria) dayEnd(t time.Time) time.Time {
	loc := c.location()
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)
}

// Float returns a pointer to v, for building criteria literals.
func Float(v float64) *float64 {
	return &v
}

// Date returns a pointer to midnight of the given day in loc.
func Date(year int, month time.Month, day int, loc *time.Location) *time.Time {
	if loc == nil {
		loc = time.Local
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	return &t
}
