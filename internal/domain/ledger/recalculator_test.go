package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
)

var (
	testCompany   = id.MustParse("018f0000-0000-7000-8000-000000000001")
	testWarehouse = id.MustParse("018f0000-0000-7000-8000-000000000002")
	testProduct   = id.MustParse("018f0000-0000-7000-8000-000000000003")
)

func testKey() entity.GroupKey {
	return entity.NewGroupKey(testCompany, testWarehouse, testProduct, id.Nil(), false)
}

func ingressEntry(key entity.GroupKey, date time.Time, qty, cost string) entity.LedgerEntry {
	return entity.LedgerEntry{
		ID:             id.New(),
		CompanyID:      key.CompanyID,
		WarehouseID:    key.WarehouseID,
		ProductID:      key.ProductID,
		CounterpartyID: key.CounterpartyID,
		Custody:        key.Custody,
		DocumentID:     id.New(),
		DetailLineID:   id.New(),
		DocumentDate:   date,
		Direction:      entity.DirectionIngress,
		QuantityIn:     types.MustDecimal(qty),
		WeightIn:       types.Zero(),
		UnitCostIn:     types.MustDecimal(cost),
	}
}

func egressEntry(key entity.GroupKey, date time.Time, qty string) entity.LedgerEntry {
	return entity.LedgerEntry{
		ID:             id.New(),
		CompanyID:      key.CompanyID,
		WarehouseID:    key.WarehouseID,
		ProductID:      key.ProductID,
		CounterpartyID: key.CounterpartyID,
		Custody:        key.Custody,
		DocumentID:     id.New(),
		DetailLineID:   id.New(),
		DocumentDate:   date,
		Direction:      entity.DirectionEgress,
		QuantityOut:    types.MustDecimal(qty),
		WeightOut:      types.Zero(),
	}
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(types.MustDecimal(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

func TestRecalculateGeneral_WeightedAverage(t *testing.T) {
	key := testKey()
	repo := &memEntryRepo{entries: []entity.LedgerEntry{
		ingressEntry(key, day("2026-01-01"), "100", "10"),
		ingressEntry(key, day("2026-01-02"), "50", "16"),
		egressEntry(key, day("2026-01-03"), "30"),
	}}

	recalc := NewRecalculator(repo)
	last, err := recalc.RecalculateGeneral(context.Background(), key)
	if err != nil {
		t.Fatalf("RecalculateGeneral failed: %v", err)
	}
	if last == nil {
		t.Fatal("expected last entry, got nil")
	}

	// 100 @ 10 + 50 @ 16 = 1800 over 150 units -> average 12.
	assertDecimal(t, "opening avg before egress", last.GeneralOpening.UnitCost, "12")
	// Egress inherits the running average.
	assertDecimal(t, "unit_cost_out", last.UnitCostOut, "12")
	// 150 - 30 = 120 units at unchanged average.
	assertDecimal(t, "closing qty", last.GeneralClosing.Quantity, "120")
	assertDecimal(t, "closing avg", last.GeneralClosing.UnitCost, "12")
}

func TestRecalculateGeneral_Conservation(t *testing.T) {
	key := testKey()
	repo := &memEntryRepo{entries: []entity.LedgerEntry{
		ingressEntry(key, day("2026-01-01"), "10", "5"),
		egressEntry(key, day("2026-01-02"), "4"),
		ingressEntry(key, day("2026-01-03"), "6", "8"),
		egressEntry(key, day("2026-01-04"), "12"),
	}}

	recalc := NewRecalculator(repo)
	last, err := recalc.RecalculateGeneral(context.Background(), key)
	if err != nil {
		t.Fatalf("RecalculateGeneral failed: %v", err)
	}

	// Closing quantity must equal the signed sum of all movements.
	sum := types.Zero()
	for _, e := range repo.entries {
		sum = sum.Add(e.SignedQuantity())
	}
	if !last.GeneralClosing.Quantity.Equal(sum) {
		t.Errorf("closing qty %s != signed sum %s", last.GeneralClosing.Quantity, sum)
	}

	// Each entry's opening must chain from the previous closing.
	ordered, _ := repo.ListByGroupKey(context.Background(), key)
	SortReplay(ordered)
	for i := 1; i < len(ordered); i++ {
		prev, cur := ordered[i-1], ordered[i]
		if !cur.GeneralOpening.Quantity.Equal(prev.GeneralClosing.Quantity) {
			t.Errorf("entry %d opening %s != previous closing %s",
				i, cur.GeneralOpening.Quantity, prev.GeneralClosing.Quantity)
		}
	}
}

func TestRecalculateGeneral_ZeroQuantityAverageIsZero(t *testing.T) {
	key := testKey()
	repo := &memEntryRepo{entries: []entity.LedgerEntry{
		ingressEntry(key, day("2026-01-01"), "10", "7"),
		egressEntry(key, day("2026-01-02"), "10"),
	}}

	recalc := NewRecalculator(repo)
	last, err := recalc.RecalculateGeneral(context.Background(), key)
	if err != nil {
		t.Fatalf("RecalculateGeneral failed: %v", err)
	}

	assertDecimal(t, "closing qty", last.GeneralClosing.Quantity, "0")
	assertDecimal(t, "closing avg at zero stock", last.GeneralClosing.UnitCost, "0")
}

func TestRecalculateGeneral_NegativeBalanceAverageIsZero(t *testing.T) {
	key := testKey()
	repo := &memEntryRepo{entries: []entity.LedgerEntry{
		egressEntry(key, day("2026-01-01"), "5"),
	}}

	recalc := NewRecalculator(repo)
	last, err := recalc.RecalculateGeneral(context.Background(), key)
	if err != nil {
		t.Fatalf("RecalculateGeneral failed: %v", err)
	}

	// The engine does not block negative stock; the average is pinned to
	// zero rather than going undefined.
	assertDecimal(t, "closing qty", last.GeneralClosing.Quantity, "-5")
	assertDecimal(t, "closing avg", last.GeneralClosing.UnitCost, "0")
}

func TestRecalculateGeneral_EmptyKeyReturnsNil(t *testing.T) {
	repo := &memEntryRepo{}
	recalc := NewRecalculator(repo)

	last, err := recalc.RecalculateGeneral(context.Background(), testKey())
	if err != nil {
		t.Fatalf("RecalculateGeneral failed: %v", err)
	}
	if last != nil {
		t.Errorf("expected nil for empty key, got %+v", last)
	}
}

func TestRecalculateGeneral_FullReplayRewritesOlderEntries(t *testing.T) {
	key := testKey()
	older := ingressEntry(key, day("2026-01-01"), "100", "10")
	repo := &memEntryRepo{entries: []entity.LedgerEntry{older}}
	recalc := NewRecalculator(repo)

	if _, err := recalc.RecalculateGeneral(context.Background(), key); err != nil {
		t.Fatalf("first replay failed: %v", err)
	}

	// A new ingress lands earlier in replay order than the existing entry.
	backdated := ingressEntry(key, day("2025-12-15"), "100", "20")
	repo.entries = append(repo.entries, backdated)

	if _, err := recalc.RecalculateGeneral(context.Background(), key); err != nil {
		t.Fatalf("second replay failed: %v", err)
	}

	for _, e := range repo.entries {
		if e.ID == older.ID {
			// The older entry now opens after the backdated receipt.
			assertDecimal(t, "older entry opening qty", e.GeneralOpening.Quantity, "100")
			assertDecimal(t, "older entry opening avg", e.GeneralOpening.UnitCost, "20")
			assertDecimal(t, "older entry closing avg", e.GeneralClosing.UnitCost, "15")
		}
	}
}

func TestRecalculateTracked_SeparatesLots(t *testing.T) {
	key := testKey()
	lotA := ingressEntry(key, day("2026-01-01"), "10", "5")
	lotA.Tracking = entity.Tracking{Lot: "A"}
	lotB := ingressEntry(key, day("2026-01-01"), "20", "9")
	lotB.Tracking = entity.Tracking{Lot: "B"}

	repo := &memEntryRepo{entries: []entity.LedgerEntry{lotA, lotB}}
	recalc := NewRecalculator(repo)

	last, err := recalc.RecalculateTracked(context.Background(), entity.TrackedKey{
		GroupKey: key,
		Tracking: entity.Tracking{Lot: "A"},
	})
	if err != nil {
		t.Fatalf("RecalculateTracked failed: %v", err)
	}

	// Only lot A participates in this replay.
	assertDecimal(t, "lot A closing qty", last.TrackedClosing.Quantity, "10")
	assertDecimal(t, "lot A closing avg", last.TrackedClosing.UnitCost, "5")
}
