package ledger

import (
	"context"
	"fmt"
	"time"

	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
	"kardex/internal/domain/movement"
	"kardex/pkg/logger"
)

// Generator derives ledger entries from a closed movement document.
// Generation is idempotent per (document, line, warehouse): an existing entry
// matching the natural key is updated in place, not duplicated.
type Generator struct {
	entries EntryRepository
}

// NewGenerator creates a new ledger entry generator.
func NewGenerator(entries EntryRepository) *Generator {
	return &Generator{entries: entries}
}

// Outcome reports what one generation pass produced and which grouping keys
// it touched. The recalculator replays exactly these keys.
type Outcome struct {
	Created   int
	Updated   int
	Duplicity []DuplicityError

	GeneralKeys []entity.GroupKey
	TrackedKeys []entity.TrackedKey
}

// Generate creates or refreshes ledger entries for every detail line of the
// document. A line produces an egress entry on the concept's origin
// warehouse and/or an ingress entry on its destination warehouse. A natural
// key matching more than one existing entry records a duplicity error for
// that line and skips it; the rest of the document still completes.
func (g *Generator) Generate(ctx context.Context, doc *movement.Document, concept *movement.Concept) (*Outcome, error) {
	out := &Outcome{}
	generalSeen := make(map[entity.GroupKey]struct{})
	trackedSeen := make(map[string]struct{})

	for i := range doc.Lines {
		line := &doc.Lines[i]

		if concept.CarriesOriginLedger && concept.OriginWarehouseID != nil {
			if err := g.generateSide(ctx, doc, line, *concept.OriginWarehouseID, entity.DirectionEgress, out, generalSeen, trackedSeen); err != nil {
				return nil, err
			}
		}

		if concept.CarriesDestinationLedger && concept.DestinationWarehouseID != nil {
			if err := g.generateSide(ctx, doc, line, *concept.DestinationWarehouseID, entity.DirectionIngress, out, generalSeen, trackedSeen); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

func (g *Generator) generateSide(
	ctx context.Context,
	doc *movement.Document,
	line *movement.DetailLine,
	warehouseID id.ID,
	direction entity.Direction,
	out *Outcome,
	generalSeen map[entity.GroupKey]struct{},
	trackedSeen map[string]struct{},
) error {
	natural := NaturalKey{
		CompanyID:    doc.CompanyID,
		WarehouseID:  warehouseID,
		DocumentID:   doc.ID,
		DetailLineID: line.ID,
		Custody:      line.Custody,
	}

	existing, err := g.entries.FindByNaturalKey(ctx, natural)
	if err != nil {
		return fmt.Errorf("find entry by natural key: %w", err)
	}

	if len(existing) > 1 {
		logger.Warn(ctx, "ledger duplicity detected",
			"document_id", doc.ID,
			"line_id", line.ID,
			"warehouse_id", warehouseID,
			"count", len(existing),
		)
		out.Duplicity = append(out.Duplicity, DuplicityError{
			DocumentID:   doc.ID,
			DetailLineID: line.ID,
			WarehouseID:  warehouseID,
			Count:        len(existing),
		})
		return nil
	}

	key := entity.NewGroupKey(doc.CompanyID, warehouseID, line.ProductID, line.EffectiveCounterparty(doc), line.Custody)

	now := time.Now().UTC()
	var e entity.LedgerEntry
	if len(existing) == 1 {
		e = existing[0]
	} else {
		e = entity.LedgerEntry{ID: id.New(), CreatedAt: now}
	}

	e.CompanyID = key.CompanyID
	e.WarehouseID = key.WarehouseID
	e.ProductID = key.ProductID
	e.CounterpartyID = key.CounterpartyID
	e.Custody = key.Custody
	e.DocumentID = doc.ID
	e.DetailLineID = line.ID
	e.DocumentDate = doc.Date
	e.Tracking = line.Tracking
	e.Direction = direction
	e.UpdatedAt = now

	switch direction {
	case entity.DirectionIngress:
		e.QuantityIn = line.Quantity
		e.WeightIn = line.Weight
		e.QuantityOut = types.Zero()
		e.WeightOut = types.Zero()
		e.UnitCostOut = types.Zero()
		if line.UnitCost != nil {
			e.UnitCostIn = *line.UnitCost
		} else {
			e.UnitCostIn = types.Zero()
		}
	case entity.DirectionEgress:
		// Egress never carries its own cost; the recalculator resolves
		// unit_cost_out from the running average.
		e.QuantityOut = line.Quantity
		e.WeightOut = line.Weight
		e.QuantityIn = types.Zero()
		e.WeightIn = types.Zero()
		e.UnitCostIn = types.Zero()
		e.UnitCostOut = types.Zero()
	}

	if len(existing) == 1 {
		if err := g.entries.Update(ctx, &e); err != nil {
			return fmt.Errorf("update entry %s: %w", e.ID, err)
		}
		out.Updated++
	} else {
		if err := g.entries.Create(ctx, &e); err != nil {
			return fmt.Errorf("create entry: %w", err)
		}
		out.Created++
	}

	if _, ok := generalSeen[key]; !ok {
		generalSeen[key] = struct{}{}
		out.GeneralKeys = append(out.GeneralKeys, key)
	}
	tracked := entity.TrackedKey{GroupKey: key, Tracking: line.Tracking}
	if _, ok := trackedSeen[tracked.String()]; !ok {
		trackedSeen[tracked.String()] = struct{}{}
		out.TrackedKeys = append(out.TrackedKeys, tracked)
	}

	return nil
}
