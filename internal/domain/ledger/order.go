package ledger

import (
	"sort"
	"strings"

	"kardex/internal/core/entity"
	"kardex/internal/core/id"
)

// CompareReplay is the replay ordering of ledger entries within a grouping
// key. The tuple is, in order:
//
//	warehouse, document date, direction (ingress before egress),
//	lot, receipt date (FIFO), production date, expiry date (FEFO),
//	container number, serial number, merchandise state, quality state,
//	entry id
//
// Ingress is applied before egress on the same date so an issue that arrives
// together with its covering receipt does not produce a spurious negative
// balance. The trailing entry id (UUIDv7, creation-ordered) makes the order
// total.
func CompareReplay(a, b *entity.LedgerEntry) int {
	if c := id.Compare(a.WarehouseID, b.WarehouseID); c != 0 {
		return c
	}
	if a.DocumentDate.Before(b.DocumentDate) {
		return -1
	}
	if a.DocumentDate.After(b.DocumentDate) {
		return 1
	}
	if c := compareDirection(a.Direction, b.Direction); c != 0 {
		return c
	}
	if c := strings.Compare(a.Lot, b.Lot); c != 0 {
		return c
	}
	if c := entity.CompareDatePtr(a.ReceiptDate, b.ReceiptDate); c != 0 {
		return c
	}
	if c := entity.CompareDatePtr(a.ProductionDate, b.ProductionDate); c != 0 {
		return c
	}
	if c := entity.CompareDatePtr(a.ExpiryDate, b.ExpiryDate); c != 0 {
		return c
	}
	if c := strings.Compare(a.ContainerNumber, b.ContainerNumber); c != 0 {
		return c
	}
	if c := strings.Compare(a.SerialNumber, b.SerialNumber); c != 0 {
		return c
	}
	if c := strings.Compare(a.MerchandiseState, b.MerchandiseState); c != 0 {
		return c
	}
	if c := strings.Compare(a.QualityState, b.QualityState); c != 0 {
		return c
	}
	return id.Compare(a.ID, b.ID)
}

func compareDirection(a, b entity.Direction) int {
	if a == b {
		return 0
	}
	if a == entity.DirectionIngress {
		return -1
	}
	return 1
}

// SortReplay orders entries in place by CompareReplay.
func SortReplay(entries []entity.LedgerEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return CompareReplay(&entries[i], &entries[j]) < 0
	})
}
