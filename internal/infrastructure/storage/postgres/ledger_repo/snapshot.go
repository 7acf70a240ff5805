package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/domain/ledger"
	"kardex/internal/domain/stock"
	"kardex/internal/infrastructure/storage/postgres"
)

const (
	detailedTable = "kardex_balance_detailed"
	generalTable  = "kardex_balance_general"
)

// generalRow is the flat scan target for kardex_balance_general.
type generalRow struct {
	CompanyID      id.ID `db:"company_id"`
	WarehouseID    id.ID `db:"warehouse_id"`
	ProductID      id.ID `db:"product_id"`
	CounterpartyID id.ID `db:"counterparty_id"`
	Custody        bool  `db:"custody"`

	Quantity decimal.Decimal `db:"quantity"`
	Weight   decimal.Decimal `db:"weight"`
	UnitCost decimal.Decimal `db:"unit_cost"`

	LastEntryID id.ID     `db:"last_entry_id"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *generalRow) toEntity() entity.GeneralBalance {
	return entity.GeneralBalance{
		Key: entity.GroupKey{
			CompanyID:      r.CompanyID,
			WarehouseID:    r.WarehouseID,
			ProductID:      r.ProductID,
			CounterpartyID: r.CounterpartyID,
			Custody:        r.Custody,
		},
		Balance: entity.Balance{
			Quantity: r.Quantity,
			Weight:   r.Weight,
			UnitCost: r.UnitCost,
		},
		LastEntryID: r.LastEntryID,
		UpdatedAt:   r.UpdatedAt,
	}
}

// detailedRow is the flat scan target for kardex_balance_detailed.
type detailedRow struct {
	generalRow

	Lot              string     `db:"lot"`
	ProductionDate   *time.Time `db:"production_date"`
	ExpiryDate       *time.Time `db:"expiry_date"`
	ReceiptDate      *time.Time `db:"receipt_date"`
	ContainerNumber  string     `db:"container_number"`
	SerialNumber     string     `db:"serial_number"`
	MerchandiseState string     `db:"merchandise_state"`
	QualityState     string     `db:"quality_state"`
}

func (r *detailedRow) toEntity() entity.DetailedBalance {
	general := r.generalRow.toEntity()
	return entity.DetailedBalance{
		Key: entity.TrackedKey{
			GroupKey: general.Key,
			Tracking: entity.Tracking{
				Lot:              r.Lot,
				ProductionDate:   r.ProductionDate,
				ExpiryDate:       r.ExpiryDate,
				ReceiptDate:      r.ReceiptDate,
				ContainerNumber:  r.ContainerNumber,
				SerialNumber:     r.SerialNumber,
				MerchandiseState: r.MerchandiseState,
				QualityState:     r.QualityState,
			},
		},
		Balance:     general.Balance,
		LastEntryID: general.LastEntryID,
		UpdatedAt:   general.UpdatedAt,
	}
}

var generalColumns = []string{
	"company_id", "warehouse_id", "product_id", "counterparty_id", "custody",
	"quantity", "weight", "unit_cost", "last_entry_id", "updated_at",
}

var detailedColumns = append(append([]string{}, generalColumns...),
	"lot", "production_date", "expiry_date", "receipt_date",
	"container_number", "serial_number", "merchandise_state", "quality_state",
)

// SnapshotRepo implements ledger.SnapshotRepository and stock.Repository.
// The ledger engine is the only writer; the stock service only reads.
type SnapshotRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewSnapshotRepo creates a new balance snapshot repository.
func NewSnapshotRepo(txManager *postgres.TxManager) *SnapshotRepo {
	return &SnapshotRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// --- ledger.SnapshotRepository ---

// FindDetailed returns the detailed snapshot row for the key, nil when absent.
func (r *SnapshotRepo) FindDetailed(ctx context.Context, key entity.TrackedKey) (*entity.DetailedBalance, error) {
	q := r.builder.Select(detailedColumns...).From(detailedTable).
		Where(groupKeyEq(key.GroupKey)).
		Where(trackingEq(key.Tracking)).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row detailedRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find detailed balance: %w", err)
	}

	b := row.toEntity()
	return &b, nil
}

// InsertDetailed inserts a new detailed snapshot row.
func (r *SnapshotRepo) InsertDetailed(ctx context.Context, b *entity.DetailedBalance) error {
	q := r.builder.Insert(detailedTable).
		Columns(detailedColumns...).
		Values(
			b.Key.CompanyID, b.Key.WarehouseID, b.Key.ProductID, b.Key.CounterpartyID, b.Key.Custody,
			b.Balance.Quantity, b.Balance.Weight, b.Balance.UnitCost, b.LastEntryID, b.UpdatedAt,
			b.Key.Tracking.Lot, b.Key.Tracking.ProductionDate, b.Key.Tracking.ExpiryDate, b.Key.Tracking.ReceiptDate,
			b.Key.Tracking.ContainerNumber, b.Key.Tracking.SerialNumber, b.Key.Tracking.MerchandiseState, b.Key.Tracking.QualityState,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert detailed balance: %w", err)
	}
	return nil
}

// UpdateDetailed rewrites the balance of an existing detailed snapshot row.
func (r *SnapshotRepo) UpdateDetailed(ctx context.Context, b *entity.DetailedBalance) error {
	q := r.builder.Update(detailedTable).
		Set("quantity", b.Balance.Quantity).
		Set("weight", b.Balance.Weight).
		Set("unit_cost", b.Balance.UnitCost).
		Set("last_entry_id", b.LastEntryID).
		Set("updated_at", b.UpdatedAt).
		Where(groupKeyEq(b.Key.GroupKey)).
		Where(trackingEq(b.Key.Tracking))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("update detailed balance: %w", err)
	}
	return nil
}

// FindGeneral returns the general snapshot row for the key, nil when absent.
func (r *SnapshotRepo) FindGeneral(ctx context.Context, key entity.GroupKey) (*entity.GeneralBalance, error) {
	q := r.builder.Select(generalColumns...).From(generalTable).
		Where(groupKeyEq(key)).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row generalRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find general balance: %w", err)
	}

	b := row.toEntity()
	return &b, nil
}

// InsertGeneral inserts a new general snapshot row.
func (r *SnapshotRepo) InsertGeneral(ctx context.Context, b *entity.GeneralBalance) error {
	q := r.builder.Insert(generalTable).
		Columns(generalColumns...).
		Values(
			b.Key.CompanyID, b.Key.WarehouseID, b.Key.ProductID, b.Key.CounterpartyID, b.Key.Custody,
			b.Balance.Quantity, b.Balance.Weight, b.Balance.UnitCost, b.LastEntryID, b.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert general balance: %w", err)
	}
	return nil
}

// UpdateGeneral rewrites the balance of an existing general snapshot row.
func (r *SnapshotRepo) UpdateGeneral(ctx context.Context, b *entity.GeneralBalance) error {
	q := r.builder.Update(generalTable).
		Set("quantity", b.Balance.Quantity).
		Set("weight", b.Balance.Weight).
		Set("unit_cost", b.Balance.UnitCost).
		Set("last_entry_id", b.LastEntryID).
		Set("updated_at", b.UpdatedAt).
		Where(groupKeyEq(b.Key))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("update general balance: %w", err)
	}
	return nil
}

// --- stock.Repository ---

// GetGeneral returns the general balance, zero-valued when absent.
func (r *SnapshotRepo) GetGeneral(ctx context.Context, key entity.GroupKey) (entity.GeneralBalance, error) {
	found, err := r.FindGeneral(ctx, key)
	if err != nil {
		return entity.GeneralBalance{}, err
	}
	if found == nil {
		return entity.GeneralBalance{
			Key:     key,
			Balance: entity.ZeroBalance(),
		}, nil
	}
	return *found, nil
}

// ListGeneralByWarehouse returns general balances for a warehouse.
func (r *SnapshotRepo) ListGeneralByWarehouse(ctx context.Context, companyID, warehouseID id.ID, filter stock.BalanceFilter) ([]entity.GeneralBalance, error) {
	q := r.builder.Select(generalColumns...).From(generalTable).
		Where(squirrel.Eq{
			"company_id":   companyID,
			"warehouse_id": warehouseID,
		})

	if filter.ExcludeZero {
		q = q.Where(squirrel.NotEq{"quantity": 0})
	}
	if len(filter.ProductIDs) > 0 {
		q = q.Where(squirrel.Eq{"product_id": filter.ProductIDs})
	}

	q = q.OrderBy("product_id", "counterparty_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []generalRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select general balances: %w", err)
	}

	balances := make([]entity.GeneralBalance, 0, len(rows))
	for i := range rows {
		balances = append(balances, rows[i].toEntity())
	}
	return balances, nil
}

// ListDetailedByKey returns the detailed balances under a coarse grouping key.
func (r *SnapshotRepo) ListDetailedByKey(ctx context.Context, key entity.GroupKey) ([]entity.DetailedBalance, error) {
	q := r.builder.Select(detailedColumns...).From(detailedTable).
		Where(groupKeyEq(key)).
		OrderBy("lot", "receipt_date", "expiry_date")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []detailedRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select detailed balances: %w", err)
	}

	balances := make([]entity.DetailedBalance, 0, len(rows))
	for i := range rows {
		balances = append(balances, rows[i].toEntity())
	}
	return balances, nil
}

// Ensure interface compliance.
var (
	_ ledger.SnapshotRepository = (*SnapshotRepo)(nil)
	_ stock.Repository          = (*SnapshotRepo)(nil)
)
