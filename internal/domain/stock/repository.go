package stock

import (
	"context"

	"kardex/internal/core/entity"
	"kardex/internal/core/id"
)

// BalanceFilter narrows snapshot queries.
type BalanceFilter struct {
	ExcludeZero bool
	ProductIDs  []id.ID
}

// Repository provides read access to the persisted balance snapshots.
// Snapshots are written only by the ledger engine; this side never mutates.
type Repository interface {
	// GetGeneral returns the general balance for a grouping key, or a
	// zero balance when the key has no snapshot yet.
	GetGeneral(ctx context.Context, key entity.GroupKey) (entity.GeneralBalance, error)

	// ListGeneralByWarehouse returns general balances for a warehouse.
	ListGeneralByWarehouse(ctx context.Context, companyID, warehouseID id.ID, filter BalanceFilter) ([]entity.GeneralBalance, error)

	// ListDetailedByKey returns the detailed balances under a coarse
	// grouping key, one row per tracking tuple.
	ListDetailedByKey(ctx context.Context, key entity.GroupKey) ([]entity.DetailedBalance, error)
}
