package dto

import (
	"kardex/internal/domain/ledger"
)

// DuplicityErrorResponse describes one contained duplicity finding.
type DuplicityErrorResponse struct {
	DocumentID   string `json:"documentId"`
	DetailLineID string `json:"detailLineId"`
	WarehouseID  string `json:"warehouseId"`
	Count        int    `json:"count"`
}

// GenerateLedgerResponse summarizes one ledger generation run.
type GenerateLedgerResponse struct {
	DocumentID               string                   `json:"documentId"`
	EntriesCreated           int                      `json:"entriesCreated"`
	EntriesUpdated           int                      `json:"entriesUpdated"`
	DetailedSnapshotsUpdated int                      `json:"detailedSnapshotsUpdated"`
	GeneralSnapshotsUpdated  int                      `json:"generalSnapshotsUpdated"`
	DuplicityErrors          []DuplicityErrorResponse `json:"duplicityErrors,omitempty"`
}

// FromLedgerResult creates GenerateLedgerResponse from ledger.Result.
func FromLedgerResult(r *ledger.Result) GenerateLedgerResponse {
	resp := GenerateLedgerResponse{
		DocumentID:               r.DocumentID.String(),
		EntriesCreated:           r.EntriesCreated,
		EntriesUpdated:           r.EntriesUpdated,
		DetailedSnapshotsUpdated: r.DetailedSnapshotsUpdated,
		GeneralSnapshotsUpdated:  r.GeneralSnapshotsUpdated,
	}
	for _, d := range r.DuplicityErrors {
		resp.DuplicityErrors = append(resp.DuplicityErrors, DuplicityErrorResponse{
			DocumentID:   d.DocumentID.String(),
			DetailLineID: d.DetailLineID.String(),
			WarehouseID:  d.WarehouseID.String(),
			Count:        d.Count,
		})
	}
	return resp
}
