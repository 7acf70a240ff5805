package movement

import (
	"context"

	"kardex/internal/core/id"
)

// Repository provides read access to movement documents and their lines.
// The ledger engine never creates or mutates documents, except for the
// status transition closed -> ledger_generated after successful generation.
type Repository interface {
	// GetByID loads a document header with its detail lines.
	GetByID(ctx context.Context, documentID id.ID) (*Document, error)

	// MarkLedgerGenerated transitions the document status after a
	// successful ledger generation. Called inside the generation
	// transaction.
	MarkLedgerGenerated(ctx context.Context, documentID id.ID) error
}

// ConceptRepository provides concept master-data lookups.
type ConceptRepository interface {
	GetByID(ctx context.Context, conceptID id.ID) (*Concept, error)
}
