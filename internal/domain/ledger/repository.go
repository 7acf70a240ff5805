// Package ledger implements the warehouse perpetual-inventory ledger engine:
// entry generation from closed movement documents, full-history balance
// replay per grouping key, and denormalized balance snapshot projection.
package ledger

import (
	"context"

	"kardex/internal/core/entity"
	"kardex/internal/core/id"
)

// NaturalKey identifies the one ledger entry a (document, line, warehouse)
// combination may own.
type NaturalKey struct {
	CompanyID    id.ID
	WarehouseID  id.ID
	DocumentID   id.ID
	DetailLineID id.ID
	Custody      bool
}

// EntryRepository persists ledger entries.
type EntryRepository interface {
	// FindByNaturalKey returns every entry matching the natural key.
	// More than one result is a duplicity signal handled by the generator.
	FindByNaturalKey(ctx context.Context, key NaturalKey) ([]entity.LedgerEntry, error)

	// Create inserts a new entry. Balance fields are written as-is.
	Create(ctx context.Context, e *entity.LedgerEntry) error

	// Update rewrites facts and dimensions of an existing entry in place.
	Update(ctx context.Context, e *entity.LedgerEntry) error

	// ListByGroupKey returns all entries sharing the coarse grouping key,
	// in no particular order. The recalculator owns the replay ordering.
	ListByGroupKey(ctx context.Context, key entity.GroupKey) ([]entity.LedgerEntry, error)

	// ListByTrackedKey returns all entries sharing the full grouping key.
	ListByTrackedKey(ctx context.Context, key entity.TrackedKey) ([]entity.LedgerEntry, error)

	// UpdateGeneralBalances rewrites the general opening/closing balance
	// columns (and unit_cost_out) of the given entries.
	UpdateGeneralBalances(ctx context.Context, entries []entity.LedgerEntry) error

	// UpdateTrackedBalances rewrites the tracked opening/closing balance
	// columns of the given entries.
	UpdateTrackedBalances(ctx context.Context, entries []entity.LedgerEntry) error
}

// SnapshotRepository persists the two balance projections.
// Find methods return nil (no error) when the key has no row yet; the
// upserter implements find -> update-or-insert on top of them because
// insert-or-update-on-conflict over composite keys is unreliable across
// engines.
type SnapshotRepository interface {
	FindDetailed(ctx context.Context, key entity.TrackedKey) (*entity.DetailedBalance, error)
	InsertDetailed(ctx context.Context, b *entity.DetailedBalance) error
	UpdateDetailed(ctx context.Context, b *entity.DetailedBalance) error

	FindGeneral(ctx context.Context, key entity.GroupKey) (*entity.GeneralBalance, error)
	InsertGeneral(ctx context.Context, b *entity.GeneralBalance) error
	UpdateGeneral(ctx context.Context, b *entity.GeneralBalance) error
}
