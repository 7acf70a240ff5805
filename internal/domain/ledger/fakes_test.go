package ledger

import (
	"context"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/domain/movement"
)

// In-memory fakes shared by the engine, generator and recalculator tests.

type memEntryRepo struct {
	entries []entity.LedgerEntry
}

func (r *memEntryRepo) FindByNaturalKey(_ context.Context, key NaturalKey) ([]entity.LedgerEntry, error) {
	var out []entity.LedgerEntry
	for _, e := range r.entries {
		if e.CompanyID == key.CompanyID &&
			e.WarehouseID == key.WarehouseID &&
			e.DocumentID == key.DocumentID &&
			e.DetailLineID == key.DetailLineID &&
			e.Custody == key.Custody {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memEntryRepo) Create(_ context.Context, e *entity.LedgerEntry) error {
	r.entries = append(r.entries, *e)
	return nil
}

func (r *memEntryRepo) Update(_ context.Context, e *entity.LedgerEntry) error {
	for i := range r.entries {
		if r.entries[i].ID == e.ID {
			// Balance columns are owned by the recalculator, keep them.
			gen0, gen1 := r.entries[i].GeneralOpening, r.entries[i].GeneralClosing
			trk0, trk1 := r.entries[i].TrackedOpening, r.entries[i].TrackedClosing
			r.entries[i] = *e
			r.entries[i].GeneralOpening, r.entries[i].GeneralClosing = gen0, gen1
			r.entries[i].TrackedOpening, r.entries[i].TrackedClosing = trk0, trk1
			return nil
		}
	}
	return apperror.NewNotFound("ledger entry", e.ID.String())
}

func (r *memEntryRepo) ListByGroupKey(_ context.Context, key entity.GroupKey) ([]entity.LedgerEntry, error) {
	var out []entity.LedgerEntry
	for _, e := range r.entries {
		if e.GroupKey() == key {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memEntryRepo) ListByTrackedKey(_ context.Context, key entity.TrackedKey) ([]entity.LedgerEntry, error) {
	var out []entity.LedgerEntry
	for _, e := range r.entries {
		if e.TrackedKey().String() == key.String() {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memEntryRepo) UpdateGeneralBalances(_ context.Context, entries []entity.LedgerEntry) error {
	for _, e := range entries {
		for i := range r.entries {
			if r.entries[i].ID == e.ID {
				r.entries[i].UnitCostOut = e.UnitCostOut
				r.entries[i].GeneralOpening = e.GeneralOpening
				r.entries[i].GeneralClosing = e.GeneralClosing
			}
		}
	}
	return nil
}

func (r *memEntryRepo) UpdateTrackedBalances(_ context.Context, entries []entity.LedgerEntry) error {
	for _, e := range entries {
		for i := range r.entries {
			if r.entries[i].ID == e.ID {
				r.entries[i].TrackedOpening = e.TrackedOpening
				r.entries[i].TrackedClosing = e.TrackedClosing
			}
		}
	}
	return nil
}

type memSnapshotRepo struct {
	detailed map[string]entity.DetailedBalance
	general  map[string]entity.GeneralBalance

	// failsLeft makes the next N writes fail, for retry tests.
	failsLeft int
	failErr   error
}

func newMemSnapshotRepo() *memSnapshotRepo {
	return &memSnapshotRepo{
		detailed: make(map[string]entity.DetailedBalance),
		general:  make(map[string]entity.GeneralBalance),
	}
}

func (r *memSnapshotRepo) failing() error {
	if r.failsLeft > 0 {
		r.failsLeft--
		return r.failErr
	}
	return nil
}

func (r *memSnapshotRepo) FindDetailed(_ context.Context, key entity.TrackedKey) (*entity.DetailedBalance, error) {
	if b, ok := r.detailed[key.String()]; ok {
		return &b, nil
	}
	return nil, nil
}

func (r *memSnapshotRepo) InsertDetailed(_ context.Context, b *entity.DetailedBalance) error {
	if err := r.failing(); err != nil {
		return err
	}
	r.detailed[b.Key.String()] = *b
	return nil
}

func (r *memSnapshotRepo) UpdateDetailed(_ context.Context, b *entity.DetailedBalance) error {
	if err := r.failing(); err != nil {
		return err
	}
	r.detailed[b.Key.String()] = *b
	return nil
}

func (r *memSnapshotRepo) FindGeneral(_ context.Context, key entity.GroupKey) (*entity.GeneralBalance, error) {
	if b, ok := r.general[key.String()]; ok {
		return &b, nil
	}
	return nil, nil
}

func (r *memSnapshotRepo) InsertGeneral(_ context.Context, b *entity.GeneralBalance) error {
	if err := r.failing(); err != nil {
		return err
	}
	r.general[b.Key.String()] = *b
	return nil
}

func (r *memSnapshotRepo) UpdateGeneral(_ context.Context, b *entity.GeneralBalance) error {
	if err := r.failing(); err != nil {
		return err
	}
	r.general[b.Key.String()] = *b
	return nil
}

type memDocumentRepo struct {
	docs map[id.ID]*movement.Document
}

func (r *memDocumentRepo) GetByID(_ context.Context, documentID id.ID) (*movement.Document, error) {
	doc, ok := r.docs[documentID]
	if !ok {
		return nil, apperror.NewNotFound("movement document", documentID.String())
	}
	copied := *doc
	return &copied, nil
}

func (r *memDocumentRepo) MarkLedgerGenerated(_ context.Context, documentID id.ID) error {
	doc, ok := r.docs[documentID]
	if !ok {
		return apperror.NewNotFound("movement document", documentID.String())
	}
	doc.Status = movement.StatusLedgerGenerated
	return nil
}

type memConceptRepo struct {
	concepts map[id.ID]*movement.Concept
}

func (r *memConceptRepo) GetByID(_ context.Context, conceptID id.ID) (*movement.Concept, error) {
	c, ok := r.concepts[conceptID]
	if !ok {
		return nil, apperror.NewNotFound("concept", conceptID.String())
	}
	return c, nil
}

type passthroughTxManager struct{}

func (passthroughTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
