package filter

import (
	"strings"
	"time"
)

// Query is the parameter set of a remote transaction listing call.
// Nil or empty fields are not sent.
type Query struct {
	StartDate       *time.Time
	EndDate         *time.Time
	MinAmount       *float64
	MaxAmount       *float64
	ExactAmount     *float64
	TransactionType TypeFilter
	Search          string
	EndToEnd        string
	Order           SortOrder
	AccountID       string
	Limit           int
	Offset          int
}

// RemoteQuery translates criteria into remote listing parameters so the
// provider can narrow results before they are paged back. An end-to-end shaped
// search is sent as an end-to-end lookup instead of a text search, and an
// active exact amount replaces the range.
func RemoteQuery(c Criteria) Query {
	q := Query{TransactionType: c.Type}
	if c.From != nil {
		from := c.dayStart(*c.From)
		q.StartDate = &from
	}
	if c.To != nil {
		to := c.dayEnd(*c.To)
		q.EndDate = &to
	}

	if c.exactActive() {
		q.ExactAmount = c.ExactAmount
	} else {
		q.MinAmount, q.MaxAmount = c.MinAmount, c.MaxAmount
	}

	if s := strings.TrimSpace(c.Search); s != "" {
		if IsEndToEndCode(s) {
			q.EndToEnd = s
		} else {
			q.Search = s
		}
	}
	return q
}

// Narrowed reports whether q asks the remote for less than the account's
// whole statement.
func (q Query) Narrowed() bool {
	return q.StartDate != nil || q.EndDate != nil ||
		q.MinAmount != nil || q.MaxAmount != nil || q.ExactAmount != nil ||
		q.TransactionType != TypeAny || q.Search != "" || q.EndToEnd != ""
}

// WithPage returns a copy of q positioned at offset with the given page size.
func (q Query) WithPage(limit, offset int) Query {
	q.Limit = limit
	q.Offset = offset
	return q
}
