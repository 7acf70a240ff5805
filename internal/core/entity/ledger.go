// Package entity provides core domain entities.
package entity

import (
	"time"

	"kardex/internal/core/id"
	"kardex/internal/core/types"
)

// Direction defines movement direction for ledger entries.
type Direction string

const (
	// DirectionIngress increases balance (goods received into the warehouse)
	DirectionIngress Direction = "ingress"
	// DirectionEgress decreases balance (goods issued out of the warehouse)
	DirectionEgress Direction = "egress"
)

// Balance is one running-balance snapshot: quantity, weight and
// weighted-average unit cost at a point in the replayed history.
type Balance struct {
	Quantity types.Quantity `json:"quantity"`
	Weight   types.Weight   `json:"weight"`
	UnitCost types.Money    `json:"unitCost"`
}

// ZeroBalance returns an all-zero balance.
func ZeroBalance() Balance {
	return Balance{
		Quantity: types.Zero(),
		Weight:   types.Zero(),
		UnitCost: types.Zero(),
	}
}

// LedgerEntry is one fact record of inventory movement (a Kardex row).
// At most one entry may exist per (document, detail line, warehouse);
// more than one is a duplicity - a data-corruption signal.
//
// Entries are created by the generator with zero balance fields; the balance
// recalculator rewrites every entry of a touched grouping key with its
// computed opening/closing balances, once for the general grouping and once
// for the tracked grouping.
type LedgerEntry struct {
	ID id.ID `db:"id" json:"id"`

	// Grouping dimensions
	CompanyID      id.ID `db:"company_id" json:"companyId"`
	WarehouseID    id.ID `db:"warehouse_id" json:"warehouseId"`
	ProductID      id.ID `db:"product_id" json:"productId"`
	CounterpartyID id.ID `db:"counterparty_id" json:"counterpartyId"`
	Custody        bool  `db:"custody" json:"custody"`

	// Provenance
	DocumentID   id.ID     `db:"document_id" json:"documentId"`
	DetailLineID id.ID     `db:"detail_line_id" json:"detailLineId"`
	DocumentDate time.Time `db:"document_date" json:"documentDate"`

	// Tracking dimensions
	Tracking

	// Facts
	Direction   Direction      `db:"direction" json:"direction"`
	QuantityIn  types.Quantity `db:"quantity_in" json:"quantityIn"`
	QuantityOut types.Quantity `db:"quantity_out" json:"quantityOut"`
	WeightIn    types.Weight   `db:"weight_in" json:"weightIn"`
	WeightOut   types.Weight   `db:"weight_out" json:"weightOut"`
	UnitCostIn  types.Money    `db:"unit_cost_in" json:"unitCostIn"`
	UnitCostOut types.Money    `db:"unit_cost_out" json:"unitCostOut"`

	// Balances computed by the recalculator (general grouping)
	GeneralOpening Balance `db:"-" json:"generalOpening"`
	GeneralClosing Balance `db:"-" json:"generalClosing"`

	// Balances computed by the recalculator (tracked grouping)
	TrackedOpening Balance `db:"-" json:"trackedOpening"`
	TrackedClosing Balance `db:"-" json:"trackedClosing"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// GroupKey returns the coarse grouping key of the entry.
func (e *LedgerEntry) GroupKey() GroupKey {
	return GroupKey{
		CompanyID:      e.CompanyID,
		WarehouseID:    e.WarehouseID,
		ProductID:      e.ProductID,
		CounterpartyID: e.CounterpartyID,
		Custody:        e.Custody,
	}
}

// TrackedKey returns the full grouping key including tracking dimensions.
func (e *LedgerEntry) TrackedKey() TrackedKey {
	return TrackedKey{GroupKey: e.GroupKey(), Tracking: e.Tracking}
}

// SignedQuantity returns the quantity with sign based on direction.
// Ingress = positive, egress = negative.
func (e *LedgerEntry) SignedQuantity() types.Quantity {
	if e.Direction == DirectionEgress {
		return e.QuantityOut.Neg()
	}
	return e.QuantityIn
}

// SignedWeight returns the weight with sign based on direction.
func (e *LedgerEntry) SignedWeight() types.Weight {
	if e.Direction == DirectionEgress {
		return e.WeightOut.Neg()
	}
	return e.WeightIn
}
