package metrics

import (
	"math"
	"testing"

	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name string
		ts   []model.Transaction
		want model.Metrics
	}{
		{
			name: "empty",
			ts:   nil,
			want: model.Metrics{},
		},
		{
			name: "mixed directions",
			ts: []model.Transaction{
				{Type: model.TypeCredit, Value: 100},
				{Type: model.TypeDebit, Value: 30.5},
				{Type: model.TypeCredit, Value: 50},
				{Type: model.TypeDebit, Value: 0.5},
			},
			want: model.Metrics{CreditCount: 2, DebitCount: 2, CreditSum: 150, DebitSum: 31, Net: 119},
		},
		{
			name: "cents do not drift",
			ts: []model.Transaction{
				{Type: model.TypeCredit, Value: 0.1},
				{Type: model.TypeCredit, Value: 0.2},
				{Type: model.TypeDebit, Value: 0.3},
			},
			want: model.Metrics{CreditCount: 2, DebitCount: 1, CreditSum: 0.3, DebitSum: 0.3, Net: 0},
		},
		{
			name: "non-finite values count as zero",
			ts: []model.Transaction{
				{Type: model.TypeDebit, Value: math.NaN()},
				{Type: model.TypeCredit, Value: math.Inf(1)},
			},
			want: model.Metrics{CreditCount: 1, DebitCount: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Aggregate(tt.ts))
		})
	}
}

func TestAggregate_Additivity(t *testing.T) {
	ts := make([]model.Transaction, 0, 250)
	for i := 0; i < 250; i++ {
		typ := model.TypeCredit
		if i%3 == 0 {
			typ = model.TypeDebit
		}
		ts = append(ts, model.Transaction{Type: typ, Value: float64(i) * 1.07})
	}

	m := Aggregate(ts)

	assert.Equal(t, len(ts), m.CreditCount+m.DebitCount)
	assert.Equal(t, len(ts), m.Count())
	assert.InDelta(t, m.CreditSum-m.DebitSum, m.Net, 1e-9)
}

func TestAccumulator_MatchesAggregate(t *testing.T) {
	ts := []model.Transaction{
		{Type: model.TypeCredit, Value: 12.34},
		{Type: model.TypeDebit, Value: 5.67},
	}

	var acc Accumulator
	for _, txn := range ts {
		acc.Add(txn)
	}

	assert.Equal(t, Aggregate(ts), acc.Metrics())
}
