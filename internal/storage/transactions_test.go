package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/statement-flow/internal/model"
)

func TestSQLiteStorage_ReplaceAndLoadRoundTrip(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	want := createTestTransactions(3)
	if err := store.ReplaceTransactions(ctx, "corpx:all", want); err != nil {
		t.Fatalf("ReplaceTransactions failed: %v", err)
	}

	got, err := store.LoadTransactions(ctx, "corpx:all")
	if err != nil {
		t.Fatalf("LoadTransactions failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("loaded %d transactions, want %d", len(got), len(want))
	}

	for i := range want {
		w, g := want[i], got[i]
		if g.ID != w.ID {
			t.Errorf("[%d] ID = %q, want %q", i, g.ID, w.ID)
		}
		if !g.DateTime.Equal(w.DateTime) {
			t.Errorf("[%d] DateTime = %v, want %v", i, g.DateTime, w.DateTime)
		}
		if g.Value != w.Value || g.Type != w.Type || g.Status != w.Status || g.Provider != w.Provider {
			t.Errorf("[%d] got %+v, want %+v", i, g, w)
		}
		if g.EndToEndCode != w.EndToEndCode || g.CounterpartyName != w.CounterpartyName {
			t.Errorf("[%d] counterparty fields differ: %+v", i, g)
		}
		if g.MergeKey() != w.MergeKey() {
			t.Errorf("[%d] MergeKey = %q, want %q", i, g.MergeKey(), w.MergeKey())
		}
		if g.Raw["valor"] != json.Number("10.50") {
			t.Errorf("[%d] raw valor = %#v, want json.Number 10.50", i, g.Raw["valor"])
		}
	}
}

func TestSQLiteStorage_LoadOrdersNewestFirst(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txns := createTestTransactions(3)
	// Store oldest first; a tie keeps slice order
	txns[0].DateTime, txns[2].DateTime = txns[2].DateTime, txns[0].DateTime
	txns[1].DateTime = txns[2].DateTime

	if err := store.ReplaceTransactions(ctx, "tcr:all", txns); err != nil {
		t.Fatalf("ReplaceTransactions failed: %v", err)
	}
	got, err := store.LoadTransactions(ctx, "tcr:all")
	if err != nil {
		t.Fatalf("LoadTransactions failed: %v", err)
	}

	ids := []string{got[0].ID, got[1].ID, got[2].ID}
	want := []string{"txn-2", "txn-3", "txn-1"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("order = %v, want %v", ids, want)
		}
	}
}

func TestSQLiteStorage_ReplaceIsWholesaleAndScoped(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.ReplaceTransactions(ctx, "corpx:all", createTestTransactions(4)); err != nil {
		t.Fatalf("ReplaceTransactions failed: %v", err)
	}
	if err := store.ReplaceTransactions(ctx, "tcr:all", createTestTransactions(2)); err != nil {
		t.Fatalf("ReplaceTransactions failed: %v", err)
	}
	if err := store.ReplaceTransactions(ctx, "corpx:all", createTestTransactions(1)); err != nil {
		t.Fatalf("ReplaceTransactions failed: %v", err)
	}

	tests := []struct {
		scope string
		want  int
	}{
		{"corpx:all", 1},
		{"tcr:all", 2},
		{"ofx:all", 0},
	}
	for _, tt := range tests {
		count, err := store.CountTransactions(ctx, tt.scope)
		if err != nil {
			t.Fatalf("CountTransactions(%s) failed: %v", tt.scope, err)
		}
		if count != tt.want {
			t.Errorf("CountTransactions(%s) = %d, want %d", tt.scope, count, tt.want)
		}
	}

	if err := store.ReplaceTransactions(ctx, "tcr:all", nil); err != nil {
		t.Fatalf("clearing scope failed: %v", err)
	}
	got, err := store.LoadTransactions(ctx, "tcr:all")
	if err != nil {
		t.Fatalf("LoadTransactions failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty scope, got %d", len(got))
	}
}

func TestSQLiteStorage_ReplaceRejectsInvalidAndKeepsPrevious(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.ReplaceTransactions(ctx, "corpx:all", createTestTransactions(2)); err != nil {
		t.Fatalf("ReplaceTransactions failed: %v", err)
	}

	bad := createTestTransactions(2)
	bad[1].ID = ""
	err := store.ReplaceTransactions(ctx, "corpx:all", bad)
	if !errors.Is(err, ErrInvalidTransaction) {
		t.Fatalf("expected ErrInvalidTransaction, got %v", err)
	}

	count, err := store.CountTransactions(ctx, "corpx:all")
	if err != nil {
		t.Fatalf("CountTransactions failed: %v", err)
	}
	if count != 2 {
		t.Errorf("previous collection lost: count = %d", count)
	}

	if err := store.ReplaceTransactions(ctx, "", nil); !errors.Is(err, ErrEmptyString) {
		t.Errorf("expected ErrEmptyString for empty scope, got %v", err)
	}
}

func TestSQLiteStorage_DuplicateIDsWithinScope(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txns := createTestTransactions(2)
	txns[1].ID = txns[0].ID
	if err := store.ReplaceTransactions(ctx, "tcr:all", txns); err != nil {
		t.Fatalf("ReplaceTransactions failed: %v", err)
	}

	count, err := store.CountTransactions(ctx, "tcr:all")
	if err != nil {
		t.Fatalf("CountTransactions failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestSQLiteStorage_FindByEndToEnd(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txns := createTestTransactions(3)
	if err := store.ReplaceTransactions(ctx, "corpx:all", txns); err != nil {
		t.Fatalf("ReplaceTransactions failed: %v", err)
	}
	if err := store.ReplaceTransactions(ctx, "corpx:11111111000111", txns[:1]); err != nil {
		t.Fatalf("ReplaceTransactions failed: %v", err)
	}

	got, err := store.FindByEndToEnd(ctx, " "+txns[0].EndToEndCode+" ")
	if err != nil {
		t.Fatalf("FindByEndToEnd failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("found %d, want 2 (one per scope)", len(got))
	}

	got, err = store.FindByEndToEnd(ctx, "E999")
	if err != nil {
		t.Fatalf("FindByEndToEnd failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("found %d for unknown code", len(got))
	}
}

func TestSQLiteStorage_FetchHistory(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	records := []*model.FetchRecord{
		{Scope: "corpx:all", Mode: model.FetchModeReload, Fetched: 120, Added: 100, Calls: 2, Suppressed: 20, CreatedAt: testBase},
		{Scope: "corpx:all", Mode: model.FetchModeRefresh, Fetched: 100, Added: 3, Calls: 1, CreatedAt: testBase.Add(time.Minute)},
		{Scope: "tcr:all", Mode: model.FetchModeReload, Fetched: 10, Calls: 10, GuardTriggered: true, CreatedAt: testBase.Add(2 * time.Minute)},
	}
	for _, rec := range records {
		if err := store.RecordFetch(ctx, rec); err != nil {
			t.Fatalf("RecordFetch failed: %v", err)
		}
		if rec.ID == 0 {
			t.Error("RecordFetch did not set ID")
		}
	}

	all, err := store.RecentFetches(ctx, "", 10)
	if err != nil {
		t.Fatalf("RecentFetches failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d entries, want 3", len(all))
	}
	if all[0].Scope != "tcr:all" || !all[0].GuardTriggered {
		t.Errorf("newest entry = %+v", all[0])
	}

	corpx, err := store.RecentFetches(ctx, "corpx:all", 1)
	if err != nil {
		t.Fatalf("RecentFetches failed: %v", err)
	}
	if len(corpx) != 1 || corpx[0].Mode != model.FetchModeRefresh || corpx[0].Added != 3 {
		t.Errorf("scoped history = %+v", corpx)
	}
	if !corpx[0].CreatedAt.Equal(testBase.Add(time.Minute)) {
		t.Errorf("CreatedAt = %v", corpx[0].CreatedAt)
	}
}

func TestSQLiteStorage_RecordFetchValidation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		rec  *model.FetchRecord
		name string
	}{
		{name: "nil record", rec: nil},
		{name: "empty scope", rec: &model.FetchRecord{Mode: model.FetchModeReload}},
		{name: "unknown mode", rec: &model.FetchRecord{Scope: "tcr:all", Mode: "full"}},
		{name: "negative count", rec: &model.FetchRecord{Scope: "tcr:all", Mode: model.FetchModeReload, Added: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.RecordFetch(ctx, tt.rec); err == nil {
				t.Error("expected error")
			}
		})
	}
}
