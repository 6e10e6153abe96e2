// Package metrics summarizes transaction lists per direction.
package metrics

import (
	"math"

	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/shopspring/decimal"
)

// Accumulator sums transactions one at a time. Amounts are held as decimals
// so long lists of cents do not drift.
type Accumulator struct {
	creditSum   decimal.Decimal
	debitSum    decimal.Decimal
	creditCount int
	debitCount  int
}

// Add folds one transaction into the totals.
func (a *Accumulator) Add(t model.Transaction) {
	v := decimal.Zero
	if !math.IsNaN(t.Value) && !math.IsInf(t.Value, 0) {
		v = decimal.NewFromFloat(t.Value).Abs()
	}
	if t.Type == model.TypeDebit {
		a.debitCount++
		a.debitSum = a.debitSum.Add(v)
		return
	}
	a.creditCount++
	a.creditSum = a.creditSum.Add(v)
}

// Metrics returns the totals accumulated so far.
func (a *Accumulator) Metrics() model.Metrics {
	credit, _ := a.creditSum.Round(2).Float64()
	debit, _ := a.debitSum.Round(2).Float64()
	net, _ := a.creditSum.Sub(a.debitSum).Round(2).Float64()
	return model.Metrics{
		CreditCount: a.creditCount,
		DebitCount:  a.debitCount,
		CreditSum:   credit,
		DebitSum:    debit,
		Net:         net,
	}
}

// Aggregate computes counts and sums per type in a single pass over ts.
func Aggregate(ts []model.Transaction) model.Metrics {
	var acc Accumulator
	for _, t := range ts {
		acc.Add(t)
	}
	return acc.Metrics()
}
