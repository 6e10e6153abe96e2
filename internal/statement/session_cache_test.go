package statement

import (
	"context"
	"testing"

	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/Veraticus/statement-flow/internal/testutil"
	"github.com/Veraticus/statement-flow/internal/testutil/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_SQLiteCacheSurvivesRestart(t *testing.T) {
	db := testutil.SetupTestDB(t)
	raw := records.FixtureDecoy.Records(t, model.ProviderCorpX)

	first := newTestSession(t, &switchableSource{records: raw}, db.Storage, records.FixtureDecoy.Noise())
	res, err := first.Reload(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2)

	cached := db.MustLoad("corpx:all")
	assert.Equal(t, []string{"corpx-1", "corpx-3"}, idsOf(cached))

	history := db.MustFetches("corpx:all")
	require.Len(t, history, 1)
	assert.Equal(t, model.FetchModeReload, history[0].Mode)
	assert.Equal(t, 1, history[0].Suppressed)

	second := newTestSession(t, &switchableSource{}, db.Storage, records.FixtureDecoy.Noise())
	n, err := second.Restore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, idsOf(first.Transactions()), idsOf(second.Transactions()))
	assert.InDelta(t, 150.0, second.View().Metrics.CreditSum, 0.001)
}
