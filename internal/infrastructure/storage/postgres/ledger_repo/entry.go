// Package ledger_repo provides PostgreSQL implementations for the ledger
// engine repositories.
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
	"kardex/internal/infrastructure/storage/postgres"
)

const entriesTable = "kardex_entries"

var entryColumns = []string{
	"id",
	"company_id", "warehouse_id", "product_id", "counterparty_id", "custody",
	"document_id", "detail_line_id", "document_date",
	"lot", "production_date", "expiry_date", "receipt_date",
	"container_number", "serial_number", "merchandise_state", "quality_state",
	"direction",
	"quantity_in", "quantity_out", "weight_in", "weight_out",
	"unit_cost_in", "unit_cost_out",
	"gen_open_qty", "gen_open_weight", "gen_open_cost",
	"gen_close_qty", "gen_close_weight", "gen_close_cost",
	"trk_open_qty", "trk_open_weight", "trk_open_cost",
	"trk_close_qty", "trk_close_weight", "trk_close_cost",
	"created_at", "updated_at",
}

// entryRow is the flat scan target for kardex_entries.
type entryRow struct {
	ID id.ID `db:"id"`

	CompanyID      id.ID `db:"company_id"`
	WarehouseID    id.ID `db:"warehouse_id"`
	ProductID      id.ID `db:"product_id"`
	CounterpartyID id.ID `db:"counterparty_id"`
	Custody        bool  `db:"custody"`

	DocumentID   id.ID     `db:"document_id"`
	DetailLineID id.ID     `db:"detail_line_id"`
	DocumentDate time.Time `db:"document_date"`

	Lot              string     `db:"lot"`
	ProductionDate   *time.Time `db:"production_date"`
	ExpiryDate       *time.Time `db:"expiry_date"`
	ReceiptDate      *time.Time `db:"receipt_date"`
	ContainerNumber  string     `db:"container_number"`
	SerialNumber     string     `db:"serial_number"`
	MerchandiseState string     `db:"merchandise_state"`
	QualityState     string     `db:"quality_state"`

	Direction   string          `db:"direction"`
	QuantityIn  decimal.Decimal `db:"quantity_in"`
	QuantityOut decimal.Decimal `db:"quantity_out"`
	WeightIn    decimal.Decimal `db:"weight_in"`
	WeightOut   decimal.Decimal `db:"weight_out"`
	UnitCostIn  decimal.Decimal `db:"unit_cost_in"`
	UnitCostOut decimal.Decimal `db:"unit_cost_out"`

	GenOpenQty     decimal.Decimal `db:"gen_open_qty"`
	GenOpenWeight  decimal.Decimal `db:"gen_open_weight"`
	GenOpenCost    decimal.Decimal `db:"gen_open_cost"`
	GenCloseQty    decimal.Decimal `db:"gen_close_qty"`
	GenCloseWeight decimal.Decimal `db:"gen_close_weight"`
	GenCloseCost   decimal.Decimal `db:"gen_close_cost"`

	TrkOpenQty     decimal.Decimal `db:"trk_open_qty"`
	TrkOpenWeight  decimal.Decimal `db:"trk_open_weight"`
	TrkOpenCost    decimal.Decimal `db:"trk_open_cost"`
	TrkCloseQty    decimal.Decimal `db:"trk_close_qty"`
	TrkCloseWeight decimal.Decimal `db:"trk_close_weight"`
	TrkCloseCost   decimal.Decimal `db:"trk_close_cost"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *entryRow) toEntity() entity.LedgerEntry {
	return entity.LedgerEntry{
		ID:             r.ID,
		CompanyID:      r.CompanyID,
		WarehouseID:    r.WarehouseID,
		ProductID:      r.ProductID,
		CounterpartyID: r.CounterpartyID,
		Custody:        r.Custody,
		DocumentID:     r.DocumentID,
		DetailLineID:   r.DetailLineID,
		DocumentDate:   r.DocumentDate,
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
		Direction:   entity.Direction(r.Direction),
		QuantityIn:  r.QuantityIn,
		QuantityOut: r.QuantityOut,
		WeightIn:    r.WeightIn,
		WeightOut:   r.WeightOut,
		UnitCostIn:  r.UnitCostIn,
		UnitCostOut: r.UnitCostOut,
		GeneralOpening: entity.Balance{Quantity: r.GenOpenQty, Weight: r.GenOpenWeight, UnitCost: r.GenOpenCost},
		GeneralClosing: entity.Balance{Quantity: r.GenCloseQty, Weight: r.GenCloseWeight, UnitCost: r.GenCloseCost},
		TrackedOpening: entity.Balance{Quantity: r.TrkOpenQty, Weight: r.TrkOpenWeight, UnitCost: r.TrkOpenCost},
		TrackedClosing: entity.Balance{Quantity: r.TrkCloseQty, Weight: r.TrkCloseWeight, UnitCost: r.TrkCloseCost},
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func entryValues(e *entity.LedgerEntry) []any {
	return []any{
		e.ID,
		e.CompanyID, e.WarehouseID, e.ProductID, e.CounterpartyID, e.Custody,
		e.DocumentID, e.DetailLineID, e.DocumentDate,
		e.Lot, e.ProductionDate, e.ExpiryDate, e.ReceiptDate,
		e.ContainerNumber, e.SerialNumber, e.MerchandiseState, e.QualityState,
		string(e.Direction),
		e.QuantityIn, e.QuantityOut, e.WeightIn, e.WeightOut,
		e.UnitCostIn, e.UnitCostOut,
		e.GeneralOpening.Quantity, e.GeneralOpening.Weight, e.GeneralOpening.UnitCost,
		e.GeneralClosing.Quantity, e.GeneralClosing.Weight, e.GeneralClosing.UnitCost,
		e.TrackedOpening.Quantity, e.TrackedOpening.Weight, e.TrackedOpening.UnitCost,
		e.TrackedClosing.Quantity, e.TrackedClosing.Weight, e.TrackedClosing.UnitCost,
		e.CreatedAt, e.UpdatedAt,
	}
}

// EntryRepo implements ledger.EntryRepository.
type EntryRepo struct {
	txManager *postgres.TxManager
	batch     *postgres.BatchExecutor
	builder   squirrel.StatementBuilderType
}

// NewEntryRepo creates a new ledger entry repository.
func NewEntryRepo(txManager *postgres.TxManager) *EntryRepo {
	return &EntryRepo{
		txManager: txManager,
		batch:     postgres.NewBatchExecutor(txManager),
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// FindByNaturalKey returns every entry matching the natural key.
func (r *EntryRepo) FindByNaturalKey(ctx context.Context, key ledger.NaturalKey) ([]entity.LedgerEntry, error) {
	q := r.builder.Select(entryColumns...).From(entriesTable).
		Where(squirrel.Eq{
			"company_id":     key.CompanyID,
			"warehouse_id":   key.WarehouseID,
			"document_id":    key.DocumentID,
			"detail_line_id": key.DetailLineID,
			"custody":        key.Custody,
		}).
		OrderBy("created_at")

	return r.selectEntries(ctx, q)
}

// Create inserts a new entry.
func (r *EntryRepo) Create(ctx context.Context, e *entity.LedgerEntry) error {
	q := r.builder.Insert(entriesTable).
		Columns(entryColumns...).
		Values(entryValues(e)...)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	return nil
}

// Update rewrites facts and dimensions of an existing entry in place.
func (r *EntryRepo) Update(ctx context.Context, e *entity.LedgerEntry) error {
	q := r.builder.Update(entriesTable).
		Set("company_id", e.CompanyID).
		Set("warehouse_id", e.WarehouseID).
		Set("product_id", e.ProductID).
		Set("counterparty_id", e.CounterpartyID).
		Set("custody", e.Custody).
		Set("document_date", e.DocumentDate).
		Set("lot", e.Lot).
		Set("production_date", e.ProductionDate).
		Set("expiry_date", e.ExpiryDate).
		Set("receipt_date", e.ReceiptDate).
		Set("container_number", e.ContainerNumber).
		Set("serial_number", e.SerialNumber).
		Set("merchandise_state", e.MerchandiseState).
		Set("quality_state", e.QualityState).
		Set("direction", string(e.Direction)).
		Set("quantity_in", e.QuantityIn).
		Set("quantity_out", e.QuantityOut).
		Set("weight_in", e.WeightIn).
		Set("weight_out", e.WeightOut).
		Set("unit_cost_in", e.UnitCostIn).
		Set("unit_cost_out", e.UnitCostOut).
		Set("updated_at", e.UpdatedAt).
		Where(squirrel.Eq{"id": e.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("update entry: %w", err)
	}

	return nil
}

// ListByGroupKey returns all entries sharing the coarse grouping key.
func (r *EntryRepo) ListByGroupKey(ctx context.Context, key entity.GroupKey) ([]entity.LedgerEntry, error) {
	q := r.builder.Select(entryColumns...).From(entriesTable).
		Where(groupKeyEq(key))

	return r.selectEntries(ctx, q)
}

// ListByTrackedKey returns all entries sharing the full grouping key.
func (r *EntryRepo) ListByTrackedKey(ctx context.Context, key entity.TrackedKey) ([]entity.LedgerEntry, error) {
	q := r.builder.Select(entryColumns...).From(entriesTable).
		Where(groupKeyEq(key.GroupKey)).
		Where(trackingEq(key.Tracking))

	return r.selectEntries(ctx, q)
}

// UpdateGeneralBalances rewrites the general balance columns of the entries
// in one batch round-trip.
func (r *EntryRepo) UpdateGeneralBalances(ctx context.Context, entries []entity.LedgerEntry) error {
	queries := make([]postgres.BatchQuery, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		q := r.builder.Update(entriesTable).
			Set("unit_cost_out", e.UnitCostOut).
			Set("gen_open_qty", e.GeneralOpening.Quantity).
			Set("gen_open_weight", e.GeneralOpening.Weight).
			Set("gen_open_cost", e.GeneralOpening.UnitCost).
			Set("gen_close_qty", e.GeneralClosing.Quantity).
			Set("gen_close_weight", e.GeneralClosing.Weight).
			Set("gen_close_cost", e.GeneralClosing.UnitCost).
			Where(squirrel.Eq{"id": e.ID})

		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build balance update: %w", err)
		}
		queries = append(queries, postgres.BatchQuery{SQL: sql, Args: args})
	}

	if err := r.batch.ExecuteBatch(ctx, queries); err != nil {
		return fmt.Errorf("update general balances: %w", err)
	}
	return nil
}

// UpdateTrackedBalances rewrites the tracked balance columns of the entries
// in one batch round-trip.
func (r *EntryRepo) UpdateTrackedBalances(ctx context.Context, entries []entity.LedgerEntry) error {
	queries := make([]postgres.BatchQuery, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		q := r.builder.Update(entriesTable).
			Set("trk_open_qty", e.TrackedOpening.Quantity).
			Set("trk_open_weight", e.TrackedOpening.Weight).
			Set("trk_open_cost", e.TrackedOpening.UnitCost).
			Set("trk_close_qty", e.TrackedClosing.Quantity).
			Set("trk_close_weight", e.TrackedClosing.Weight).
			Set("trk_close_cost", e.TrackedClosing.UnitCost).
			Where(squirrel.Eq{"id": e.ID})

		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build balance update: %w", err)
		}
		queries = append(queries, postgres.BatchQuery{SQL: sql, Args: args})
	}

	if err := r.batch.ExecuteBatch(ctx, queries); err != nil {
		return fmt.Errorf("update tracked balances: %w", err)
	}
	return nil
}

func (r *EntryRepo) selectEntries(ctx context.Context, q squirrel.SelectBuilder) ([]entity.LedgerEntry, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []entryRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}

	entries := make([]entity.LedgerEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, rows[i].toEntity())
	}

	return entries, nil
}

func groupKeyEq(key entity.GroupKey) squirrel.Eq {
	return squirrel.Eq{
		"company_id":      key.CompanyID,
		"warehouse_id":    key.WarehouseID,
		"product_id":      key.ProductID,
		"counterparty_id": key.CounterpartyID,
		"custody":         key.Custody,
	}
}

// trackingEq matches the tracking tuple; nil dates compare as IS NULL.
func trackingEq(t entity.Tracking) squirrel.Eq {
	return squirrel.Eq{
		"lot":               t.Lot,
		"production_date":   t.ProductionDate,
		"expiry_date":       t.ExpiryDate,
		"receipt_date":      t.ReceiptDate,
		"container_number":  t.ContainerNumber,
		"serial_number":     t.SerialNumber,
		"merchandise_state": t.MerchandiseState,
		"quality_state":     t.QualityState,
	}
}

// Ensure interface compliance.
var _ ledger.EntryRepository = (*EntryRepo)(nil)
