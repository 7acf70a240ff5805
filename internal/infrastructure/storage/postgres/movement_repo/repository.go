// Package movement_repo implements PostgreSQL persistence for movement
// documents and concepts.
package movement_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
	"kardex/internal/domain/movement"
	"kardex/internal/infrastructure/storage/postgres"
)

const (
	documentsTable = "doc_movements"
	linesTable     = "doc_movement_lines"
	conceptsTable  = "cat_concepts"
)

var documentColumns = []string{
	"id", "company_id", "document_type", "number", "concept_id", "date",
	"counterparty_id", "custody", "status", "created_at", "updated_at",
}

var lineColumns = []string{
	"id", "document_id", "line_no", "product_id", "quantity", "weight",
	"unit_cost", "custody", "counterparty_id",
	"lot", "production_date", "expiry_date", "receipt_date",
	"container_number", "serial_number", "merchandise_state", "quality_state",
}

var conceptColumns = []string{
	"id", "code", "name",
	"carries_origin_ledger", "origin_warehouse_id",
	"carries_destination_ledger", "destination_warehouse_id",
}

// lineRow is the flat scan target for doc_movement_lines.
type lineRow struct {
	ID         id.ID `db:"id"`
	DocumentID id.ID `db:"document_id"`
	LineNo     int   `db:"line_no"`

	ProductID id.ID          `db:"product_id"`
	Quantity  types.Quantity `db:"quantity"`
	Weight    types.Weight   `db:"weight"`
	UnitCost  *types.Money   `db:"unit_cost"`

	Custody        bool  `db:"custody"`
	CounterpartyID id.ID `db:"counterparty_id"`

	Lot              string     `db:"lot"`
	ProductionDate   *time.Time `db:"production_date"`
	ExpiryDate       *time.Time `db:"expiry_date"`
	ReceiptDate      *time.Time `db:"receipt_date"`
	ContainerNumber  string     `db:"container_number"`
	SerialNumber     string     `db:"serial_number"`
	MerchandiseState string     `db:"merchandise_state"`
	QualityState     string     `db:"quality_state"`
}

func (r *lineRow) toEntity() movement.DetailLine {
	return movement.DetailLine{
		ID:             r.ID,
		DocumentID:     r.DocumentID,
		LineNo:         r.LineNo,
		ProductID:      r.ProductID,
		Quantity:       r.Quantity,
		Weight:         r.Weight,
		UnitCost:       r.UnitCost,
		Custody:        r.Custody,
		CounterpartyID: r.CounterpartyID,
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
	}
}

// DocumentRepo implements movement.Repository.
type DocumentRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewDocumentRepo creates a new movement document repository.
func NewDocumentRepo(txManager *postgres.TxManager) *DocumentRepo {
	return &DocumentRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByID loads a document header with its detail lines ordered by line_no.
func (r *DocumentRepo) GetByID(ctx context.Context, documentID id.ID) (*movement.Document, error) {
	q := r.builder.Select(documentColumns...).From(documentsTable).
		Where(squirrel.Eq{"id": documentID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var doc movement.Document
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("movement document", documentID.String())
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	lines, err := r.listLines(ctx, documentID)
	if err != nil {
		return nil, err
	}
	doc.Lines = lines

	return &doc, nil
}

func (r *DocumentRepo) listLines(ctx context.Context, documentID id.ID) ([]movement.DetailLine, error) {
	q := r.builder.Select(lineColumns...).From(linesTable).
		Where(squirrel.Eq{"document_id": documentID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []lineRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select lines: %w", err)
	}

	lines := make([]movement.DetailLine, 0, len(rows))
	for i := range rows {
		lines = append(lines, rows[i].toEntity())
	}
	return lines, nil
}

// MarkLedgerGenerated advances a closed document to ledger_generated. The
// status predicate keeps the write idempotent and refuses regressions from
// any other state.
func (r *DocumentRepo) MarkLedgerGenerated(ctx context.Context, documentID id.ID) error {
	q := r.builder.Update(documentsTable).
		Set("status", movement.StatusLedgerGenerated).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{
			"id":     documentID,
			"status": []movement.Status{movement.StatusClosed, movement.StatusLedgerGenerated},
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("mark ledger generated: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("movement document", documentID.String())
	}
	return nil
}

// ConceptRepo implements movement.ConceptRepository.
type ConceptRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewConceptRepo creates a new concept repository.
func NewConceptRepo(txManager *postgres.TxManager) *ConceptRepo {
	return &ConceptRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByID loads a concept by id.
func (r *ConceptRepo) GetByID(ctx context.Context, conceptID id.ID) (*movement.Concept, error) {
	q := r.builder.Select(conceptColumns...).From(conceptsTable).
		Where(squirrel.Eq{"id": conceptID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var concept movement.Concept
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &concept, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("concept", conceptID.String())
		}
		return nil, fmt.Errorf("get concept: %w", err)
	}
	return &concept, nil
}

// Ensure interface compliance.
var (
	_ movement.Repository        = (*DocumentRepo)(nil)
	_ movement.ConceptRepository = (*ConceptRepo)(nil)
)
