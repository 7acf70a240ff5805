package fishing

import (
	"context"

	"kardex/internal/core/id"
	"kardex/internal/core/types"
)

// Repository persists the tonnage aggregates.
type Repository interface {
	GetCatch(ctx context.Context, catchID id.ID) (*CatchRecord, error)
	GetTrip(ctx context.Context, tripID id.ID) (*Trip, error)

	// SumCatchTonnage re-sums the current catches of a trip.
	SumCatchTonnage(ctx context.Context, tripID id.ID) (types.Weight, error)

	// SumTripTonnage re-sums the current trip totals of a season.
	SumTripTonnage(ctx context.Context, seasonID id.ID) (types.Weight, error)

	UpdateTripTonnage(ctx context.Context, tripID id.ID, total types.Weight) error
	UpdateSeasonTonnage(ctx context.Context, seasonID id.ID, total types.Weight) error
}
