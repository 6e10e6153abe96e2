package model

// Metrics summarizes a filtered transaction list per direction.
type Metrics struct {
	CreditCount int
	DebitCount  int
	CreditSum   float64
	DebitSum    float64
	Net         float64
}

// Count returns the number of transactions the metrics cover.
func (m Metrics) Count() int {
	return m.CreditCount + m.DebitCount
}

// Pagination describes where a page sits in a larger result.
type Pagination struct {
	Total       int
	Limit       int
	Offset      int
	CurrentPage int
	TotalPages  int
	HasMore     bool
}
