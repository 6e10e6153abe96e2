package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/statement-flow/internal/model"
)

// SortField selects the sort key.
type SortField string

// Sort fields.
const (
	SortNone  SortField = ""
	SortDate  SortField = "date"
	SortValue SortField = "value"
)

// SortOrder selects the sort direction.
type SortOrder string

// Sort orders.
const (
	OrderNone SortOrder = ""
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ParseSortField accepts none, date, value and amount.
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SortNone, nil
	case "date", "datetime":
		return SortDate, nil
	case "value", "amount":
		return SortValue, nil
	default:
		return SortNone, fmt.Errorf("%w: unknown sort field %q", ErrInvalidCriteria, s)
	}
}

// ParseSortOrder accepts none, asc and desc.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return OrderNone, nil
	case "asc", "ascending":
		return OrderAsc, nil
	case "desc", "descending":
		return OrderDesc, nil
	default:
		return OrderNone, fmt.Errorf("%w: unknown sort order %q", ErrInvalidCriteria, s)
	}
}

// Sort returns a sorted copy of ts. With no field or no order the copy keeps
// the input order.
func Sort(ts []model.Transaction, by SortField, order SortOrder) []model.Transaction {
	out := make([]model.Transaction, len(ts))
	copy(out, ts)

	if by == SortNone || order == OrderNone {
		return out
	}

	var less func(a, b model.Transaction) bool
	switch by {
	case SortDate:
		less = func(a, b model.Transaction) bool { return a.DateTime.Before(b.DateTime) }
	case SortValue:
		less = func(a, b model.Transaction) bool { return a.Value < b.Value }
	default:
		return out
	}

	if order == OrderDesc {
		asc := less
		less = func(a, b model.Transaction) bool { return asc(b, a) }
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// ByDateDesc sorts ts in place, newest first, keeping the relative order of ties.
func ByDateDesc(ts []model.Transaction) {
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].DateTime.After(ts[j].DateTime) })
}
