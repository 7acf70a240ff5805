package ledger

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/tx"
	"kardex/internal/domain/movement"
	"kardex/pkg/logger"
)

var tracer = otel.Tracer("kardex/ledger")

// Engine is the ledger engine entry point. One call per closed movement
// document: entry generation, both balance recalculations and both snapshot
// upserts run inside a single transaction, all-or-nothing per document.
type Engine struct {
	documents movement.Repository
	concepts  movement.ConceptRepository
	entries   EntryRepository
	snapshots SnapshotRepository
	txManager tx.Manager
	locker    KeyLocker

	generator *Generator
	recalc    *Recalculator
	upserter  *Upserter
}

// EngineConfig configures the ledger engine.
type EngineConfig struct {
	Documents movement.Repository
	Concepts  movement.ConceptRepository
	Entries   EntryRepository
	Snapshots SnapshotRepository
	TxManager tx.Manager
	Locker    KeyLocker // optional, defaults to NoopLocker
}

// NewEngine creates a new ledger engine.
func NewEngine(cfg EngineConfig) *Engine {
	locker := cfg.Locker
	if locker == nil {
		locker = NoopLocker{}
	}
	return &Engine{
		documents: cfg.Documents,
		concepts:  cfg.Concepts,
		entries:   cfg.Entries,
		snapshots: cfg.Snapshots,
		txManager: cfg.TxManager,
		locker:    locker,
		generator: NewGenerator(cfg.Entries),
		recalc:    NewRecalculator(cfg.Entries),
		upserter:  NewUpserter(cfg.Snapshots),
	}
}

// GenerateForMovement derives ledger entries for the closed movement
// document, replays balances for every grouping key touched and refreshes
// both snapshot projections. Idempotent: a second call on unchanged data
// updates the same entries in place.
func (e *Engine) GenerateForMovement(ctx context.Context, movementID id.ID) (*Result, error) {
	ctx, span := tracer.Start(ctx, "ledger.generate",
		trace.WithAttributes(attribute.String("movement.id", movementID.String())))
	defer span.End()

	doc, err := e.documents.GetByID(ctx, movementID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewValidation("movement document not found").
				WithDetail("movement_id", movementID.String())
		}
		return nil, fmt.Errorf("load movement: %w", err)
	}

	if !doc.IsLedgerBearing() {
		return nil, apperror.NewBusinessRule(apperror.CodeDocumentNotClosed,
			"movement document must be closed before ledger generation").
			WithDetail("movement_id", movementID.String()).
			WithDetail("status", string(doc.Status))
	}

	if len(doc.Lines) == 0 {
		return nil, apperror.NewValidation("movement document has no detail lines").
			WithDetail("movement_id", movementID.String())
	}

	concept, err := e.concepts.GetByID(ctx, doc.ConceptID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewValidation("movement concept not found").
				WithDetail("concept_id", doc.ConceptID.String())
		}
		return nil, fmt.Errorf("load concept: %w", err)
	}

	// Serialize per grouping key before the transaction opens: the replay
	// is only correct when invocations touching the same key do not
	// interleave.
	release, err := e.lockKeys(ctx, doc, concept)
	if err != nil {
		return nil, err
	}
	defer release()

	var result *Result
	err = e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		result, err = e.generateInTx(ctx, doc, concept)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "ledger generated for movement",
		"movement_id", doc.ID,
		"entries_created", result.EntriesCreated,
		"entries_updated", result.EntriesUpdated,
		"general_snapshots", result.GeneralSnapshotsUpdated,
		"detailed_snapshots", result.DetailedSnapshotsUpdated,
		"duplicity_errors", len(result.DuplicityErrors),
	)

	return result, nil
}

// generateInTx runs the full pipeline inside the document transaction:
// entry writes, then balance reads and rewrites, then snapshot writes.
func (e *Engine) generateInTx(ctx context.Context, doc *movement.Document, concept *movement.Concept) (*Result, error) {
	outcome, err := e.generator.Generate(ctx, doc, concept)
	if err != nil {
		return nil, err
	}

	// Replay in deterministic key order.
	sortGroupKeys(outcome.GeneralKeys)
	sortTrackedKeys(outcome.TrackedKeys)

	lastGeneral := make(map[entity.GroupKey]*entity.LedgerEntry, len(outcome.GeneralKeys))
	for _, key := range outcome.GeneralKeys {
		last, err := e.recalc.RecalculateGeneral(ctx, key)
		if err != nil {
			return nil, err
		}
		lastGeneral[key] = last
	}

	lastTracked := make(map[string]*entity.LedgerEntry, len(outcome.TrackedKeys))
	for _, key := range outcome.TrackedKeys {
		last, err := e.recalc.RecalculateTracked(ctx, key)
		if err != nil {
			return nil, err
		}
		lastTracked[key.String()] = last
	}

	result := &Result{
		DocumentID:      doc.ID,
		EntriesCreated:  outcome.Created,
		EntriesUpdated:  outcome.Updated,
		DuplicityErrors: outcome.Duplicity,
	}

	for _, key := range outcome.GeneralKeys {
		last := lastGeneral[key]
		if last == nil {
			continue
		}
		if err := e.upserter.UpsertGeneral(ctx, key, last); err != nil {
			return nil, err
		}
		result.GeneralSnapshotsUpdated++
	}

	for _, key := range outcome.TrackedKeys {
		last := lastTracked[key.String()]
		if last == nil {
			continue
		}
		if err := e.upserter.UpsertDetailed(ctx, key, last); err != nil {
			return nil, err
		}
		result.DetailedSnapshotsUpdated++
	}

	if doc.Status == movement.StatusClosed {
		if err := e.documents.MarkLedgerGenerated(ctx, doc.ID); err != nil {
			return nil, fmt.Errorf("mark ledger generated: %w", err)
		}
	}

	return result, nil
}

// lockKeys acquires the per-key locks for every general grouping key the
// document can touch, in sorted order to avoid lock-ordering deadlocks.
func (e *Engine) lockKeys(ctx context.Context, doc *movement.Document, concept *movement.Concept) (func(), error) {
	seen := make(map[entity.GroupKey]struct{})
	var keys []entity.GroupKey

	add := func(warehouseID id.ID, line *movement.DetailLine) {
		key := entity.NewGroupKey(doc.CompanyID, warehouseID, line.ProductID, line.EffectiveCounterparty(doc), line.Custody)
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}

	for i := range doc.Lines {
		line := &doc.Lines[i]
		if concept.CarriesOriginLedger && concept.OriginWarehouseID != nil {
			add(*concept.OriginWarehouseID, line)
		}
		if concept.CarriesDestinationLedger && concept.DestinationWarehouseID != nil {
			add(*concept.DestinationWarehouseID, line)
		}
	}

	sortGroupKeys(keys)

	releases := make([]func(), 0, len(keys))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}

	for _, key := range keys {
		release, err := e.locker.Lock(ctx, "kardex:key:"+key.String())
		if err != nil {
			releaseAll()
			return nil, err
		}
		releases = append(releases, release)
	}

	return releaseAll, nil
}

func sortGroupKeys(keys []entity.GroupKey) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
}

func sortTrackedKeys(keys []entity.TrackedKey) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
}
