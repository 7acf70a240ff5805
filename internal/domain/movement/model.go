// Package movement provides the read side of warehouse movement documents.
// Documents are created and closed by the external movement CRUD service;
// the ledger engine only reads closed documents and advances their status
// once ledger generation succeeds.
package movement

import (
	"time"

	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
)

// Status is the lifecycle state of a movement document.
type Status string

const (
	// StatusPending - document is being edited, not ledger-bearing yet
	StatusPending Status = "pending"
	// StatusClosed - document reached its terminal business state and is
	// ready for ledger generation
	StatusClosed Status = "closed"
	// StatusLedgerGenerated - ledger entries have been derived at least once
	StatusLedgerGenerated Status = "ledger_generated"
	// StatusVoided - document was annulled, never ledger-bearing
	StatusVoided Status = "voided"
)

// Document is a warehouse movement document header (goods receipt, issue or
// transfer) with its detail lines.
type Document struct {
	ID             id.ID     `db:"id" json:"id"`
	CompanyID      id.ID     `db:"company_id" json:"companyId"`
	DocumentType   string    `db:"document_type" json:"documentType"`
	Number         string    `db:"number" json:"number"`
	ConceptID      id.ID     `db:"concept_id" json:"conceptId"`
	Date           time.Time `db:"date" json:"date"`
	CounterpartyID id.ID     `db:"counterparty_id" json:"counterpartyId"`
	Custody        bool      `db:"custody" json:"custody"`
	Status         Status    `db:"status" json:"status"`

	Lines []DetailLine `db:"-" json:"lines"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// IsLedgerBearing reports whether the document may produce ledger entries.
// Regeneration of an already generated document is allowed (idempotent).
func (d *Document) IsLedgerBearing() bool {
	return d.Status == StatusClosed || d.Status == StatusLedgerGenerated
}

// DetailLine is one line of a movement document. Immutable once the document
// is closed.
type DetailLine struct {
	ID         id.ID `db:"id" json:"id"`
	DocumentID id.ID `db:"document_id" json:"documentId"`
	LineNo     int   `db:"line_no" json:"lineNo"`

	ProductID id.ID          `db:"product_id" json:"productId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	Weight    types.Weight   `db:"weight" json:"weight"`

	// UnitCost is optional; nil means the cost is resolved later by the
	// balance recalculator (egress always inherits the running average).
	UnitCost *types.Money `db:"unit_cost" json:"unitCost,omitempty"`

	// Custody overrides the header flag per line.
	Custody bool `db:"custody" json:"custody"`

	// CounterpartyID overrides the header counterparty; Nil inherits it.
	CounterpartyID id.ID `db:"counterparty_id" json:"counterpartyId"`

	entity.Tracking
}

// EffectiveCounterparty resolves the line counterparty against the header.
func (l *DetailLine) EffectiveCounterparty(doc *Document) id.ID {
	if !id.IsNil(l.CounterpartyID) {
		return l.CounterpartyID
	}
	return doc.CounterpartyID
}

// Concept is master data defining which sides of a movement are
// ledger-bearing. A single detail line produces zero, one or two ledger
// entries depending on the two flags.
type Concept struct {
	ID   id.ID  `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`

	CarriesOriginLedger bool   `db:"carries_origin_ledger" json:"carriesOriginLedger"`
	OriginWarehouseID   *id.ID `db:"origin_warehouse_id" json:"originWarehouseId,omitempty"`

	CarriesDestinationLedger bool   `db:"carries_destination_ledger" json:"carriesDestinationLedger"`
	DestinationWarehouseID   *id.ID `db:"destination_warehouse_id" json:"destinationWarehouseId,omitempty"`
}
