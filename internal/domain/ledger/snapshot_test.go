package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
)

func lastEntryFor(key entity.GroupKey) *entity.LedgerEntry {
	return &entity.LedgerEntry{
		ID:             id.New(),
		CompanyID:      key.CompanyID,
		WarehouseID:    key.WarehouseID,
		ProductID:      key.ProductID,
		CounterpartyID: key.CounterpartyID,
		Custody:        key.Custody,
		GeneralClosing: entity.Balance{
			Quantity: types.MustDecimal("42"),
			Weight:   types.MustDecimal("84"),
			UnitCost: types.MustDecimal("3"),
		},
		TrackedClosing: entity.Balance{
			Quantity: types.MustDecimal("42"),
			Weight:   types.MustDecimal("84"),
			UnitCost: types.MustDecimal("3"),
		},
	}
}

func fastUpserter(snapshots SnapshotRepository) *Upserter {
	u := NewUpserter(snapshots)
	u.backoff = time.Millisecond
	return u
}

func TestUpsertGeneral_InsertsThenUpdates(t *testing.T) {
	repo := newMemSnapshotRepo()
	u := fastUpserter(repo)
	key := testKey()

	if err := u.UpsertGeneral(context.Background(), key, lastEntryFor(key)); err != nil {
		t.Fatalf("insert path failed: %v", err)
	}
	snap, ok := repo.general[key.String()]
	if !ok {
		t.Fatal("snapshot not inserted")
	}
	assertDecimal(t, "inserted qty", snap.Balance.Quantity, "42")

	second := lastEntryFor(key)
	second.GeneralClosing.Quantity = types.MustDecimal("7")
	if err := u.UpsertGeneral(context.Background(), key, second); err != nil {
		t.Fatalf("update path failed: %v", err)
	}
	snap = repo.general[key.String()]
	assertDecimal(t, "updated qty", snap.Balance.Quantity, "7")
	if snap.LastEntryID != second.ID {
		t.Errorf("last entry id not refreshed")
	}
}

func TestUpsertGeneral_RetriesTransientFailure(t *testing.T) {
	repo := newMemSnapshotRepo()
	repo.failsLeft = 2
	repo.failErr = errors.New("unique constraint violated")

	u := fastUpserter(repo)
	key := testKey()

	// Two failures then success: within the three-attempt budget.
	if err := u.UpsertGeneral(context.Background(), key, lastEntryFor(key)); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if _, ok := repo.general[key.String()]; !ok {
		t.Error("snapshot missing after retried upsert")
	}
}

func TestUpsertGeneral_ExhaustedRetriesIsPersistenceError(t *testing.T) {
	repo := newMemSnapshotRepo()
	repo.failsLeft = 3
	repo.failErr = errors.New("deadlock detected")

	u := fastUpserter(repo)
	key := testKey()

	err := u.UpsertGeneral(context.Background(), key, lastEntryFor(key))
	if err == nil {
		t.Fatal("expected persistence error after exhausted retries")
	}
	if !apperror.IsPersistence(err) {
		t.Errorf("error = %v, want persistence", err)
	}
	if !errors.Is(err, repo.failErr) {
		t.Errorf("underlying error not preserved: %v", err)
	}
}

func TestUpsertDetailed_KeyedByTrackingTuple(t *testing.T) {
	repo := newMemSnapshotRepo()
	u := fastUpserter(repo)

	base := testKey()
	keyA := entity.TrackedKey{GroupKey: base, Tracking: entity.Tracking{Lot: "A"}}
	keyB := entity.TrackedKey{GroupKey: base, Tracking: entity.Tracking{Lot: "B"}}

	if err := u.UpsertDetailed(context.Background(), keyA, lastEntryFor(base)); err != nil {
		t.Fatalf("upsert lot A failed: %v", err)
	}
	if err := u.UpsertDetailed(context.Background(), keyB, lastEntryFor(base)); err != nil {
		t.Fatalf("upsert lot B failed: %v", err)
	}

	if len(repo.detailed) != 2 {
		t.Errorf("detailed snapshots = %d, want 2 (one per lot)", len(repo.detailed))
	}
}

func TestUpsert_ContextCancelledDuringBackoff(t *testing.T) {
	repo := newMemSnapshotRepo()
	repo.failsLeft = 3
	repo.failErr = errors.New("transient")

	u := NewUpserter(repo)
	key := testKey()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := u.UpsertGeneral(ctx, key, lastEntryFor(key))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
