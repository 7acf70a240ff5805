package stock

import (
	"context"
	"testing"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
)

type memRepo struct {
	general map[string]entity.GeneralBalance
}

func (r *memRepo) GetGeneral(_ context.Context, key entity.GroupKey) (entity.GeneralBalance, error) {
	if b, ok := r.general[key.String()]; ok {
		return b, nil
	}
	return entity.GeneralBalance{Key: key, Balance: entity.ZeroBalance()}, nil
}

func (r *memRepo) ListGeneralByWarehouse(_ context.Context, companyID, warehouseID id.ID, filter BalanceFilter) ([]entity.GeneralBalance, error) {
	var out []entity.GeneralBalance
	for _, b := range r.general {
		if b.Key.CompanyID != companyID || b.Key.WarehouseID != warehouseID {
			continue
		}
		if filter.ExcludeZero && b.Balance.Quantity.IsZero() {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *memRepo) ListDetailedByKey(_ context.Context, _ entity.GroupKey) ([]entity.DetailedBalance, error) {
	return nil, nil
}

func seedKey(qty string) (*memRepo, entity.GroupKey) {
	company := id.MustParse("018f0000-0000-7000-8000-000000000001")
	warehouse := id.MustParse("018f0000-0000-7000-8000-000000000002")
	product := id.MustParse("018f0000-0000-7000-8000-000000000003")

	key := entity.NewGroupKey(company, warehouse, product, id.Nil(), false)
	repo := &memRepo{general: map[string]entity.GeneralBalance{
		key.String(): {
			Key: key,
			Balance: entity.Balance{
				Quantity: types.MustDecimal(qty),
				Weight:   types.Zero(),
				UnitCost: types.MustDecimal("10"),
			},
		},
	}}
	return repo, key
}

func TestCheckAvailability_Sufficient(t *testing.T) {
	repo, key := seedKey("100")
	svc := NewService(repo, nil)

	err := svc.CheckAvailability(context.Background(), []Requirement{
		{Key: key, RequiredQty: types.MustDecimal("100")},
	})
	if err != nil {
		t.Errorf("expected available, got %v", err)
	}
}

func TestCheckAvailability_Shortage(t *testing.T) {
	repo, key := seedKey("30")
	svc := NewService(repo, nil)

	err := svc.CheckAvailability(context.Background(), []Requirement{
		{Key: key, RequiredQty: types.MustDecimal("31")},
	})
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeInsufficientStock {
		t.Errorf("error = %v, want %s", err, apperror.CodeInsufficientStock)
	}
}

func TestCheckAvailability_UnknownKeyIsZeroStock(t *testing.T) {
	repo, key := seedKey("10")
	svc := NewService(repo, nil)

	other := key
	other.ProductID = id.New()

	err := svc.CheckAvailability(context.Background(), []Requirement{
		{Key: other, RequiredQty: types.MustDecimal("1")},
	})
	if err == nil {
		t.Fatal("expected shortage for unseeded key")
	}
}

func TestGetWarehouseStock_ExcludesZeroBalances(t *testing.T) {
	repo, key := seedKey("100")

	zeroKey := key
	zeroKey.ProductID = id.New()
	repo.general[zeroKey.String()] = entity.GeneralBalance{
		Key:     zeroKey,
		Balance: entity.ZeroBalance(),
	}

	svc := NewService(repo, nil)
	balances, err := svc.GetWarehouseStock(context.Background(), key.CompanyID, key.WarehouseID)
	if err != nil {
		t.Fatalf("GetWarehouseStock failed: %v", err)
	}

	if len(balances) != 1 {
		t.Errorf("balances = %d, want 1 (zero rows excluded)", len(balances))
	}
}
