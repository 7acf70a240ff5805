package ledger

import (
	"context"
	"fmt"

	"kardex/internal/core/entity"
	"kardex/internal/core/types"

	"github.com/shopspring/decimal"
)

// Recalculator re-derives running balances for a grouping key by replaying
// its entire ledger history in CompareReplay order. Every entry of the key is
// rewritten with its computed opening/closing balance, including entries from
// older documents: the recompute is a full replay, not an incremental patch.
//
// Callers must serialize invocations per grouping key; concurrent replays of
// the same key race. The engine acquires a per-key lock before the
// transaction opens.
type Recalculator struct {
	entries EntryRepository
}

// NewRecalculator creates a new balance recalculator.
func NewRecalculator(entries EntryRepository) *Recalculator {
	return &Recalculator{entries: entries}
}

// RecalculateGeneral replays the coarse grouping key and rewrites the general
// balance columns of every entry. Returns the chronologically last entry, or
// nil when the key has no history.
func (r *Recalculator) RecalculateGeneral(ctx context.Context, key entity.GroupKey) (*entity.LedgerEntry, error) {
	entries, err := r.entries.ListByGroupKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("list entries for group key: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	SortReplay(entries)
	replay(entries, general)

	if err := r.entries.UpdateGeneralBalances(ctx, entries); err != nil {
		return nil, fmt.Errorf("update general balances: %w", err)
	}

	return &entries[len(entries)-1], nil
}

// RecalculateTracked replays the full grouping key and rewrites the tracked
// balance columns. Returns the chronologically last entry, or nil when the
// key has no history.
func (r *Recalculator) RecalculateTracked(ctx context.Context, key entity.TrackedKey) (*entity.LedgerEntry, error) {
	entries, err := r.entries.ListByTrackedKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("list entries for tracked key: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	SortReplay(entries)
	replay(entries, tracked)

	if err := r.entries.UpdateTrackedBalances(ctx, entries); err != nil {
		return nil, fmt.Errorf("update tracked balances: %w", err)
	}

	return &entries[len(entries)-1], nil
}

// grouping selects which balance column group a replay writes.
type grouping int

const (
	general grouping = iota
	tracked
)

// replay walks the ordered sequence maintaining running quantity, weight and
// total cost. On ingress the total cost grows by qty_in * unit_cost_in and
// the weighted average is recomputed. On egress the cost removed is
// qty_out * average-at-that-point: egress always inherits the current
// average, never a cost of its own.
func replay(entries []entity.LedgerEntry, g grouping) {
	qty := types.Zero()
	weight := types.Zero()
	totalCost := types.Zero()

	for i := range entries {
		e := &entries[i]

		opening := entity.Balance{
			Quantity: qty,
			Weight:   weight,
			UnitCost: averageCost(totalCost, qty),
		}

		switch e.Direction {
		case entity.DirectionIngress:
			qty = qty.Add(e.QuantityIn)
			weight = weight.Add(e.WeightIn)
			totalCost = totalCost.Add(e.QuantityIn.Mul(e.UnitCostIn))
		case entity.DirectionEgress:
			qty = qty.Sub(e.QuantityOut)
			weight = weight.Sub(e.WeightOut)
			totalCost = totalCost.Sub(e.QuantityOut.Mul(opening.UnitCost))
			if g == general {
				// The general replay is the authoritative costing pass.
				e.UnitCostOut = opening.UnitCost
			}
		}

		closing := entity.Balance{
			Quantity: qty,
			Weight:   weight,
			UnitCost: averageCost(totalCost, qty),
		}

		switch g {
		case general:
			e.GeneralOpening = opening
			e.GeneralClosing = closing
		case tracked:
			e.TrackedOpening = opening
			e.TrackedClosing = closing
		}
	}
}

// averageCost is totalCost / qty, zero when the balance is empty or negative.
func averageCost(totalCost, qty decimal.Decimal) decimal.Decimal {
	if !qty.IsPositive() {
		return decimal.Zero
	}
	return totalCost.Div(qty)
}
