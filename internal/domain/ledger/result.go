package ledger

import (
	"kardex/internal/core/id"
)

// DuplicityError marks a detail line whose natural key matched more than one
// existing ledger entry. The line is skipped, never merged; the rest of the
// document still completes.
type DuplicityError struct {
	DocumentID   id.ID `json:"documentId"`
	DetailLineID id.ID `json:"detailLineId"`
	WarehouseID  id.ID `json:"warehouseId"`
	Count        int   `json:"count"`
}

// Result summarizes one ledger generation run for a movement document.
type Result struct {
	DocumentID               id.ID            `json:"documentId"`
	EntriesCreated           int              `json:"entriesCreated"`
	EntriesUpdated           int              `json:"entriesUpdated"`
	DetailedSnapshotsUpdated int              `json:"detailedSnapshotsUpdated"`
	GeneralSnapshotsUpdated  int              `json:"generalSnapshotsUpdated"`
	DuplicityErrors          []DuplicityError `json:"duplicityErrors"`
}
