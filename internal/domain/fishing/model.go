// Package fishing provides the catch tonnage roll-up: catch record -> trip ->
// season, recomputed from the leaf upward whenever a catch changes.
package fishing

import (
	"time"

	"kardex/internal/core/id"
	"kardex/internal/core/types"
)

// CatchRecord is the leaf: one landed catch with its tonnage.
type CatchRecord struct {
	ID       id.ID        `db:"id" json:"id"`
	TripID   id.ID        `db:"trip_id" json:"tripId"`
	Species  string       `db:"species" json:"species"`
	Tonnage  types.Weight `db:"tonnage" json:"tonnage"`
	CaughtAt time.Time    `db:"caught_at" json:"caughtAt"`
}

// Trip is one fishing trip; its total tonnage is the sum of its catches.
type Trip struct {
	ID           id.ID        `db:"id" json:"id"`
	SeasonID     id.ID        `db:"season_id" json:"seasonId"`
	VesselName   string       `db:"vessel_name" json:"vesselName"`
	TotalTonnage types.Weight `db:"total_tonnage" json:"totalTonnage"`
	DepartedAt   time.Time    `db:"departed_at" json:"departedAt"`
}

// Season groups trips; its total tonnage is the sum of its trips.
type Season struct {
	ID           id.ID        `db:"id" json:"id"`
	Name         string       `db:"name" json:"name"`
	TotalTonnage types.Weight `db:"total_tonnage" json:"totalTonnage"`
}
