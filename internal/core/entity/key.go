package entity

import (
	"strings"

	"kardex/internal/core/id"
)

// OwnerCounterparty is the sentinel counterparty recorded for owned
// merchandise (custody = false). Owned stock never separates balances by
// counterparty, so every owned grouping key carries this fixed value.
// A sentinel instead of NULL keeps the composite unique keys non-nullable.
var OwnerCounterparty = id.MustParse("00000000-0000-0000-0000-000000000001")

// GroupKey is the coarse grouping key balances are computed per:
// company, warehouse, product, counterparty, custody.
type GroupKey struct {
	CompanyID      id.ID `db:"company_id" json:"companyId"`
	WarehouseID    id.ID `db:"warehouse_id" json:"warehouseId"`
	ProductID      id.ID `db:"product_id" json:"productId"`
	CounterpartyID id.ID `db:"counterparty_id" json:"counterpartyId"`
	Custody        bool  `db:"custody" json:"custody"`
}

// NewGroupKey builds a grouping key applying the custody rule: for owned
// merchandise the counterparty dimension is forced to OwnerCounterparty.
func NewGroupKey(companyID, warehouseID, productID, counterpartyID id.ID, custody bool) GroupKey {
	if !custody {
		counterpartyID = OwnerCounterparty
	} else if id.IsNil(counterpartyID) {
		counterpartyID = OwnerCounterparty
	}
	return GroupKey{
		CompanyID:      companyID,
		WarehouseID:    warehouseID,
		ProductID:      productID,
		CounterpartyID: counterpartyID,
		Custody:        custody,
	}
}

// String renders a stable representation, used for map keys and lock names.
func (k GroupKey) String() string {
	var b strings.Builder
	b.WriteString(k.CompanyID.String())
	b.WriteByte('|')
	b.WriteString(k.WarehouseID.String())
	b.WriteByte('|')
	b.WriteString(k.ProductID.String())
	b.WriteByte('|')
	b.WriteString(k.CounterpartyID.String())
	b.WriteByte('|')
	if k.Custody {
		b.WriteString("custody")
	} else {
		b.WriteString("owned")
	}
	return b.String()
}

// TrackedKey is the full grouping key: GroupKey plus the tracking tuple.
type TrackedKey struct {
	GroupKey
	Tracking Tracking
}

// String renders a stable representation including tracking dimensions.
func (k TrackedKey) String() string {
	return k.GroupKey.String() + "|" + k.Tracking.CanonicalString()
}
