package ledger

import (
	"context"
	"time"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/pkg/logger"
)

const (
	upsertAttempts    = 3
	upsertBackoffBase = 50 * time.Millisecond
)

// Upserter projects the closing balance of the chronologically last ledger
// entry of a grouping key into the detailed and general snapshot tables.
//
// The upsert is find-matching-row then update-or-insert, wrapped in a bounded
// retry with exponential backoff to absorb write races from concurrent
// documents touching the same key. Exhausting retries raises a persistence
// error for that key only.
type Upserter struct {
	snapshots SnapshotRepository
	attempts  int
	backoff   time.Duration
}

// NewUpserter creates a snapshot upserter with production retry settings.
func NewUpserter(snapshots SnapshotRepository) *Upserter {
	return &Upserter{
		snapshots: snapshots,
		attempts:  upsertAttempts,
		backoff:   upsertBackoffBase,
	}
}

// UpsertDetailed writes the tracked closing balance of last for the key.
func (u *Upserter) UpsertDetailed(ctx context.Context, key entity.TrackedKey, last *entity.LedgerEntry) error {
	return u.withRetry(ctx, key.String(), func(ctx context.Context) error {
		existing, err := u.snapshots.FindDetailed(ctx, key)
		if err != nil {
			return err
		}

		snap := entity.DetailedBalance{
			Key:         key,
			Balance:     last.TrackedClosing,
			LastEntryID: last.ID,
			UpdatedAt:   time.Now().UTC(),
		}

		if existing != nil {
			return u.snapshots.UpdateDetailed(ctx, &snap)
		}
		return u.snapshots.InsertDetailed(ctx, &snap)
	})
}

// UpsertGeneral writes the general closing balance of last for the key,
// including the weighted-average unit cost.
func (u *Upserter) UpsertGeneral(ctx context.Context, key entity.GroupKey, last *entity.LedgerEntry) error {
	return u.withRetry(ctx, key.String(), func(ctx context.Context) error {
		existing, err := u.snapshots.FindGeneral(ctx, key)
		if err != nil {
			return err
		}

		snap := entity.GeneralBalance{
			Key:         key,
			Balance:     last.GeneralClosing,
			LastEntryID: last.ID,
			UpdatedAt:   time.Now().UTC(),
		}

		if existing != nil {
			return u.snapshots.UpdateGeneral(ctx, &snap)
		}
		return u.snapshots.InsertGeneral(ctx, &snap)
	})
}

// withRetry runs fn up to u.attempts times with exponential backoff.
func (u *Upserter) withRetry(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	var lastErr error
	backoff := u.backoff

	for attempt := 1; attempt <= u.attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt == u.attempts {
			break
		}

		logger.Warn(ctx, "snapshot upsert failed, retrying",
			"key", key,
			"attempt", attempt,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return apperror.NewPersistence("snapshot upsert exhausted retries", lastErr).
		WithDetail("key", key).
		WithDetail("attempts", u.attempts)
}
