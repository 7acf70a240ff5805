package fishing

import (
	"context"
	"fmt"

	"kardex/internal/core/apperror"
	"kardex/internal/core/id"
	"kardex/internal/core/tx"
	"kardex/pkg/logger"
)

// Service recomputes derived tonnage totals. Each level re-sums its
// immediate children and writes the new total; only the cascade entry points
// continue to the next level up.
//
// No transaction spans the whole cascade: each level's read+write is its own
// unit. A failure partway leaves lower levels updated and upper levels stale
// until retried, which is acceptable because every level is idempotent and
// safely re-runnable.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new tonnage recalculation service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// RecalculateTonnage recomputes only the trip owning the catch. Used when
// the caller already plans to recompute the season itself.
func (s *Service) RecalculateTonnage(ctx context.Context, catchID id.ID) error {
	return s.recalculateFromCatch(ctx, catchID, false)
}

// RecalculateTonnageCascade recomputes the trip owning the catch and then
// its season.
func (s *Service) RecalculateTonnageCascade(ctx context.Context, catchID id.ID) error {
	return s.recalculateFromCatch(ctx, catchID, true)
}

func (s *Service) recalculateFromCatch(ctx context.Context, catchID id.ID, cascade bool) error {
	catch, err := s.repo.GetCatch(ctx, catchID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewValidation("catch record not found").
				WithDetail("catch_id", catchID.String())
		}
		return fmt.Errorf("load catch: %w", err)
	}

	return s.RecalculateTripTonnage(ctx, catch.TripID, cascade)
}

// RecalculateTripTonnage re-sums the catches of a trip and writes the total.
// With cascade it then recomputes the owning season.
func (s *Service) RecalculateTripTonnage(ctx context.Context, tripID id.ID, cascade bool) error {
	trip, err := s.repo.GetTrip(ctx, tripID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewValidation("trip not found").
				WithDetail("trip_id", tripID.String())
		}
		return fmt.Errorf("load trip: %w", err)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		total, err := s.repo.SumCatchTonnage(ctx, tripID)
		if err != nil {
			return fmt.Errorf("sum catch tonnage: %w", err)
		}
		if err := s.repo.UpdateTripTonnage(ctx, tripID, total); err != nil {
			return fmt.Errorf("update trip tonnage: %w", err)
		}
		logger.Debug(ctx, "trip tonnage recalculated",
			"trip_id", tripID,
			"total", total,
		)
		return nil
	})
	if err != nil {
		return err
	}

	if !cascade {
		return nil
	}

	return s.RecalculateSeasonTonnage(ctx, trip.SeasonID)
}

// RecalculateSeasonTonnage re-sums the trip totals of a season and writes
// the total. Top of the cascade; never continues upward.
func (s *Service) RecalculateSeasonTonnage(ctx context.Context, seasonID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		total, err := s.repo.SumTripTonnage(ctx, seasonID)
		if err != nil {
			return fmt.Errorf("sum trip tonnage: %w", err)
		}
		if err := s.repo.UpdateSeasonTonnage(ctx, seasonID, total); err != nil {
			return fmt.Errorf("update season tonnage: %w", err)
		}
		logger.Debug(ctx, "season tonnage recalculated",
			"season_id", seasonID,
			"total", total,
		)
		return nil
	})
}
