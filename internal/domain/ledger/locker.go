package ledger

import (
	"context"
)

// KeyLocker serializes ledger work per grouping key. The balance recalculator
// replays full history on every invocation, so two concurrent replays of the
// same key race; the engine locks every general grouping key a document
// touches before opening its transaction.
//
// The redislock-backed implementation lives in infrastructure/locking. A
// single-writer deployment may use NoopLocker.
type KeyLocker interface {
	// Lock acquires the named lock and returns its release function.
	Lock(ctx context.Context, key string) (release func(), err error)
}

// NoopLocker performs no locking. For tests and deployments where callers
// serialize documents themselves.
type NoopLocker struct{}

// Lock implements KeyLocker.
func (NoopLocker) Lock(ctx context.Context, key string) (func(), error) {
	return func() {}, nil
}
