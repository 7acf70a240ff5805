// Package fishing_repo implements PostgreSQL persistence for the catch
// tonnage aggregates.
package fishing_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"kardex/internal/core/apperror"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
	"kardex/internal/domain/fishing"
	"kardex/internal/infrastructure/storage/postgres"
)

const (
	catchesTable = "fsh_catches"
	tripsTable   = "fsh_trips"
	seasonsTable = "fsh_seasons"
)

// Repo implements fishing.Repository.
type Repo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewRepo creates a new tonnage aggregate repository.
func NewRepo(txManager *postgres.TxManager) *Repo {
	return &Repo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetCatch loads a catch record by id.
func (r *Repo) GetCatch(ctx context.Context, catchID id.ID) (*fishing.CatchRecord, error) {
	q := r.builder.
		Select("id", "trip_id", "species", "tonnage", "caught_at").
		From(catchesTable).
		Where(squirrel.Eq{"id": catchID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c fishing.CatchRecord
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("catch record", catchID.String())
		}
		return nil, fmt.Errorf("get catch: %w", err)
	}
	return &c, nil
}

// GetTrip loads a trip by id.
func (r *Repo) GetTrip(ctx context.Context, tripID id.ID) (*fishing.Trip, error) {
	q := r.builder.
		Select("id", "season_id", "vessel_name", "total_tonnage", "departed_at").
		From(tripsTable).
		Where(squirrel.Eq{"id": tripID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var t fishing.Trip
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("trip", tripID.String())
		}
		return nil, fmt.Errorf("get trip: %w", err)
	}
	return &t, nil
}

// SumCatchTonnage re-sums the current catches of a trip from the leaf rows.
func (r *Repo) SumCatchTonnage(ctx context.Context, tripID id.ID) (types.Weight, error) {
	q := r.builder.
		Select("COALESCE(SUM(tonnage), 0) AS total").
		From(catchesTable).
		Where(squirrel.Eq{"trip_id": tripID})

	return r.sumQuery(ctx, q)
}

// SumTripTonnage re-sums the current trip totals of a season.
func (r *Repo) SumTripTonnage(ctx context.Context, seasonID id.ID) (types.Weight, error) {
	q := r.builder.
		Select("COALESCE(SUM(total_tonnage), 0) AS total").
		From(tripsTable).
		Where(squirrel.Eq{"season_id": seasonID})

	return r.sumQuery(ctx, q)
}

func (r *Repo) sumQuery(ctx context.Context, q squirrel.SelectBuilder) (types.Weight, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build query: %w", err)
	}

	var total types.Weight
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &total, sql, args...); err != nil {
		return types.Zero(), fmt.Errorf("sum tonnage: %w", err)
	}
	return total, nil
}

// UpdateTripTonnage rewrites the stored trip total.
func (r *Repo) UpdateTripTonnage(ctx context.Context, tripID id.ID, total types.Weight) error {
	return r.updateTotal(ctx, tripsTable, "trip", tripID, total)
}

// UpdateSeasonTonnage rewrites the stored season total.
func (r *Repo) UpdateSeasonTonnage(ctx context.Context, seasonID id.ID, total types.Weight) error {
	return r.updateTotal(ctx, seasonsTable, "season", seasonID, total)
}

func (r *Repo) updateTotal(ctx context.Context, table, name string, aggID id.ID, total types.Weight) error {
	q := r.builder.Update(table).
		Set("total_tonnage", total).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": aggID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s tonnage: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(name, aggID.String())
	}
	return nil
}

var _ fishing.Repository = (*Repo)(nil)
