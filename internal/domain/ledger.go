package domain

import "context"

// Ledger records source-market ids that have already been consumed by a
// transform run, making repeated runs over overlapping batches idempotent.
// The ledger is owned by the caller; the transform engine only reads and
// appends. Implementations must tolerate a single writer per run but need no
// further locking discipline.
type Ledger interface {
	// Contains reports whether the given source-record id has already been
	// consumed by a previous run.
	Contains(ctx context.Context, id string) (bool, error)
	// Add marks the given source-record id as consumed.
	Add(ctx context.Context, id string) error
}
