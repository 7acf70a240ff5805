// Package stock provides balance queries over the ledger snapshots.
// This is the read side other services use to validate stock before closing
// an egress document; the ledger engine itself never blocks negative stock.
package stock

import (
	"context"
	"fmt"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
	"kardex/internal/domain/ledger"
)

// Service provides business operations over balance snapshots.
type Service struct {
	repo    Repository
	entries ledger.EntryRepository
}

// NewService creates a new stock query service.
func NewService(repo Repository, entries ledger.EntryRepository) *Service {
	return &Service{
		repo:    repo,
		entries: entries,
	}
}

// Requirement is one stock check request.
type Requirement struct {
	Key         entity.GroupKey
	RequiredQty types.Quantity
}

// CheckAvailability validates that each requirement is covered by the
// current general balance. Returns an insufficient-stock error on the first
// shortage.
func (s *Service) CheckAvailability(ctx context.Context, requirements []Requirement) error {
	for _, req := range requirements {
		balance, err := s.repo.GetGeneral(ctx, req.Key)
		if err != nil {
			return fmt.Errorf("get balance for %s: %w", req.Key.ProductID, err)
		}

		if balance.Balance.Quantity.LessThan(req.RequiredQty) {
			return apperror.NewInsufficientStock(
				req.Key.ProductID.String(),
				req.RequiredQty.InexactFloat64(),
				balance.Balance.Quantity.InexactFloat64(),
			)
		}
	}

	return nil
}

// GetBalance returns the general balance for a grouping key.
func (s *Service) GetBalance(ctx context.Context, key entity.GroupKey) (entity.GeneralBalance, error) {
	return s.repo.GetGeneral(ctx, key)
}

// GetWarehouseStock returns all non-zero general balances in a warehouse.
func (s *Service) GetWarehouseStock(ctx context.Context, companyID, warehouseID id.ID) ([]entity.GeneralBalance, error) {
	return s.repo.ListGeneralByWarehouse(ctx, companyID, warehouseID, BalanceFilter{
		ExcludeZero: true,
	})
}

// GetDetailedStock returns the per-tracking-tuple balances under a coarse
// grouping key.
func (s *Service) GetDetailedStock(ctx context.Context, key entity.GroupKey) ([]entity.DetailedBalance, error) {
	return s.repo.ListDetailedByKey(ctx, key)
}

// GetLedgerHistory returns the full ledger history of a grouping key in
// replay order, for reconciliation.
func (s *Service) GetLedgerHistory(ctx context.Context, key entity.GroupKey) ([]entity.LedgerEntry, error) {
	entries, err := s.entries.ListByGroupKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("list ledger history: %w", err)
	}
	ledger.SortReplay(entries)
	return entries, nil
}
