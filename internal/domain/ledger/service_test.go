package ledger

import (
	"context"
	"testing"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
	"kardex/internal/domain/movement"
)

type engineFixture struct {
	engine    *Engine
	entries   *memEntryRepo
	snapshots *memSnapshotRepo
	documents *memDocumentRepo
	concepts  *memConceptRepo
}

func newEngineFixture() *engineFixture {
	f := &engineFixture{
		entries:   &memEntryRepo{},
		snapshots: newMemSnapshotRepo(),
		documents: &memDocumentRepo{docs: make(map[id.ID]*movement.Document)},
		concepts:  &memConceptRepo{concepts: make(map[id.ID]*movement.Concept)},
	}
	f.engine = NewEngine(EngineConfig{
		Documents: f.documents,
		Concepts:  f.concepts,
		Entries:   f.entries,
		Snapshots: f.snapshots,
		TxManager: passthroughTxManager{},
	})
	return f
}

// receiptConcept carries ledger on the destination side only.
func (f *engineFixture) receiptConcept(warehouseID id.ID) id.ID {
	conceptID := id.New()
	f.concepts.concepts[conceptID] = &movement.Concept{
		ID:                       conceptID,
		Code:                     "RCV",
		Name:                     "goods receipt",
		CarriesDestinationLedger: true,
		DestinationWarehouseID:   &warehouseID,
	}
	return conceptID
}

func (f *engineFixture) issueConcept(warehouseID id.ID) id.ID {
	conceptID := id.New()
	f.concepts.concepts[conceptID] = &movement.Concept{
		ID:                  conceptID,
		Code:                "ISS",
		Name:                "goods issue",
		CarriesOriginLedger: true,
		OriginWarehouseID:   &warehouseID,
	}
	return conceptID
}

func (f *engineFixture) addDocument(conceptID id.ID, status movement.Status, lines ...movement.DetailLine) id.ID {
	docID := id.New()
	for i := range lines {
		lines[i].ID = id.New()
		lines[i].DocumentID = docID
		lines[i].LineNo = i + 1
	}
	f.documents.docs[docID] = &movement.Document{
		ID:           docID,
		CompanyID:    testCompany,
		DocumentType: "movement",
		Number:       "M-0001",
		ConceptID:    conceptID,
		Date:         day("2026-01-10"),
		Status:       status,
		Lines:        lines,
	}
	return docID
}

func costPtr(s string) *types.Money {
	d := types.MustDecimal(s)
	return &d
}

func TestGenerateForMovement_CreatesEntriesAndSnapshots(t *testing.T) {
	f := newEngineFixture()
	conceptID := f.receiptConcept(testWarehouse)
	docID := f.addDocument(conceptID, movement.StatusClosed, movement.DetailLine{
		ProductID: testProduct,
		Quantity:  types.MustDecimal("100"),
		Weight:    types.MustDecimal("200"),
		UnitCost:  costPtr("10"),
	})

	result, err := f.engine.GenerateForMovement(context.Background(), docID)
	if err != nil {
		t.Fatalf("GenerateForMovement failed: %v", err)
	}

	if result.EntriesCreated != 1 {
		t.Errorf("EntriesCreated = %d, want 1", result.EntriesCreated)
	}
	if result.GeneralSnapshotsUpdated != 1 {
		t.Errorf("GeneralSnapshotsUpdated = %d, want 1", result.GeneralSnapshotsUpdated)
	}
	if result.DetailedSnapshotsUpdated != 1 {
		t.Errorf("DetailedSnapshotsUpdated = %d, want 1", result.DetailedSnapshotsUpdated)
	}
	if len(result.DuplicityErrors) != 0 {
		t.Errorf("unexpected duplicity errors: %v", result.DuplicityErrors)
	}

	snap, ok := f.snapshots.general[testKey().String()]
	if !ok {
		t.Fatal("general snapshot missing")
	}
	assertDecimal(t, "snapshot qty", snap.Balance.Quantity, "100")
	assertDecimal(t, "snapshot avg cost", snap.Balance.UnitCost, "10")

	if f.documents.docs[docID].Status != movement.StatusLedgerGenerated {
		t.Errorf("document status = %s, want %s", f.documents.docs[docID].Status, movement.StatusLedgerGenerated)
	}
}

func TestGenerateForMovement_Idempotent(t *testing.T) {
	f := newEngineFixture()
	conceptID := f.receiptConcept(testWarehouse)
	docID := f.addDocument(conceptID, movement.StatusClosed, movement.DetailLine{
		ProductID: testProduct,
		Quantity:  types.MustDecimal("100"),
		UnitCost:  costPtr("10"),
	})

	if _, err := f.engine.GenerateForMovement(context.Background(), docID); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	result, err := f.engine.GenerateForMovement(context.Background(), docID)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if result.EntriesCreated != 0 || result.EntriesUpdated != 1 {
		t.Errorf("second run created=%d updated=%d, want 0/1", result.EntriesCreated, result.EntriesUpdated)
	}
	if len(f.entries.entries) != 1 {
		t.Errorf("entry count = %d, want 1 (no duplicates)", len(f.entries.entries))
	}

	snap := f.snapshots.general[testKey().String()]
	assertDecimal(t, "snapshot qty unchanged", snap.Balance.Quantity, "100")
}

func TestGenerateForMovement_DuplicityContained(t *testing.T) {
	f := newEngineFixture()
	conceptID := f.receiptConcept(testWarehouse)
	docID := f.addDocument(conceptID, movement.StatusClosed,
		movement.DetailLine{ProductID: testProduct, Quantity: types.MustDecimal("10"), UnitCost: costPtr("5")},
		movement.DetailLine{ProductID: testProduct, Quantity: types.MustDecimal("20"), UnitCost: costPtr("5")},
	)

	// Seed two conflicting entries for the first line.
	doc := f.documents.docs[docID]
	badLine := doc.Lines[0]
	for i := 0; i < 2; i++ {
		f.entries.entries = append(f.entries.entries, entity.LedgerEntry{
			ID:           id.New(),
			CompanyID:    doc.CompanyID,
			WarehouseID:  testWarehouse,
			ProductID:    badLine.ProductID,
			DocumentID:   docID,
			DetailLineID: badLine.ID,
		})
	}

	result, err := f.engine.GenerateForMovement(context.Background(), docID)
	if err != nil {
		t.Fatalf("GenerateForMovement failed: %v", err)
	}

	if len(result.DuplicityErrors) != 1 {
		t.Fatalf("duplicity errors = %d, want 1", len(result.DuplicityErrors))
	}
	dup := result.DuplicityErrors[0]
	if dup.DetailLineID != badLine.ID || dup.Count != 2 {
		t.Errorf("unexpected duplicity error: %+v", dup)
	}
	// The healthy line still produced its entry.
	if result.EntriesCreated != 1 {
		t.Errorf("EntriesCreated = %d, want 1", result.EntriesCreated)
	}
}

func TestGenerateForMovement_RejectsUnclosedDocument(t *testing.T) {
	f := newEngineFixture()
	conceptID := f.receiptConcept(testWarehouse)
	docID := f.addDocument(conceptID, movement.StatusPending, movement.DetailLine{
		ProductID: testProduct,
		Quantity:  types.MustDecimal("1"),
	})

	_, err := f.engine.GenerateForMovement(context.Background(), docID)
	if err == nil {
		t.Fatal("expected error for pending document")
	}
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeDocumentNotClosed {
		t.Errorf("error = %v, want code %s", err, apperror.CodeDocumentNotClosed)
	}
}

func TestGenerateForMovement_RejectsUnknownDocument(t *testing.T) {
	f := newEngineFixture()

	_, err := f.engine.GenerateForMovement(context.Background(), id.New())
	if err == nil {
		t.Fatal("expected error for unknown document")
	}
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeValidation {
		t.Errorf("error = %v, want validation", err)
	}
}

func TestGenerateForMovement_RejectsEmptyDocument(t *testing.T) {
	f := newEngineFixture()
	conceptID := f.receiptConcept(testWarehouse)
	docID := f.addDocument(conceptID, movement.StatusClosed)

	_, err := f.engine.GenerateForMovement(context.Background(), docID)
	if err == nil {
		t.Fatal("expected error for document without lines")
	}
	if appErr, ok := apperror.AsAppError(err); !ok || appErr.Code != apperror.CodeValidation {
		t.Errorf("error = %v, want validation", err)
	}
}

func TestGenerateForMovement_CustodySeparation(t *testing.T) {
	f := newEngineFixture()
	customer := id.MustParse("018f0000-0000-7000-8000-0000000000cc")
	conceptID := f.receiptConcept(testWarehouse)

	docID := f.addDocument(conceptID, movement.StatusClosed,
		movement.DetailLine{ProductID: testProduct, Quantity: types.MustDecimal("60"), UnitCost: costPtr("10")},
		movement.DetailLine{ProductID: testProduct, Quantity: types.MustDecimal("40"), UnitCost: costPtr("10"),
			Custody: true, CounterpartyID: customer},
	)

	result, err := f.engine.GenerateForMovement(context.Background(), docID)
	if err != nil {
		t.Fatalf("GenerateForMovement failed: %v", err)
	}
	if result.GeneralSnapshotsUpdated != 2 {
		t.Fatalf("GeneralSnapshotsUpdated = %d, want 2 (owned and custody keys)", result.GeneralSnapshotsUpdated)
	}

	owned := f.snapshots.general[testKey().String()]
	assertDecimal(t, "owned qty", owned.Balance.Quantity, "60")
	if owned.Key.CounterpartyID != entity.OwnerCounterparty {
		t.Errorf("owned key counterparty = %s, want sentinel", owned.Key.CounterpartyID)
	}

	custodyKey := entity.NewGroupKey(testCompany, testWarehouse, testProduct, customer, true)
	held := f.snapshots.general[custodyKey.String()]
	assertDecimal(t, "custody qty", held.Balance.Quantity, "40")
}

func TestGenerateForMovement_IssueInheritsAverageCost(t *testing.T) {
	f := newEngineFixture()

	receiptID := f.receiptConcept(testWarehouse)
	issueID := f.issueConcept(testWarehouse)

	receipt := f.addDocument(receiptID, movement.StatusClosed, movement.DetailLine{
		ProductID: testProduct,
		Quantity:  types.MustDecimal("100"),
		UnitCost:  costPtr("10"),
	})
	if _, err := f.engine.GenerateForMovement(context.Background(), receipt); err != nil {
		t.Fatalf("receipt generation failed: %v", err)
	}

	issue := f.addDocument(issueID, movement.StatusClosed, movement.DetailLine{
		ProductID: testProduct,
		Quantity:  types.MustDecimal("30"),
	})
	f.documents.docs[issue].Date = day("2026-01-20")

	if _, err := f.engine.GenerateForMovement(context.Background(), issue); err != nil {
		t.Fatalf("issue generation failed: %v", err)
	}

	snap := f.snapshots.general[testKey().String()]
	assertDecimal(t, "remaining qty", snap.Balance.Quantity, "70")
	assertDecimal(t, "average preserved", snap.Balance.UnitCost, "10")

	for _, e := range f.entries.entries {
		if e.Direction == entity.DirectionEgress {
			assertDecimal(t, "egress cost", e.UnitCostOut, "10")
		}
	}
}
