package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/domain"
)

// ledgerKey is the set holding every consumed source-market id.
const ledgerKey = "pipeline:processed"

var _ domain.Ledger = (*Ledger)(nil)

// Ledger implements domain.Ledger on a Redis set. Compared with the postgres
// ledger it trades durability guarantees for cheap membership checks, which
// suits deployments that already treat Redis as persistent.
type Ledger struct {
	rdb *redis.Client
}

// NewLedger creates a Ledger backed by the given Client.
func NewLedger(c *Client) *Ledger {
	return &Ledger{rdb: c.Underlying()}
}

// Contains reports whether the market id has been consumed by a previous run.
func (l *Ledger) Contains(ctx context.Context, id string) (bool, error) {
	ok, err := l.rdb.SIsMember(ctx, ledgerKey, id).Result()
	if err != nil {
		return false, fmt.Errorf("redis: ledger contains %s: %w", id, err)
	}
	return ok, nil
}

// Add marks the market id as consumed. Re-adding an id is a no-op.
func (l *Ledger) Add(ctx context.Context, id string) error {
	if err := l.rdb.SAdd(ctx, ledgerKey, id).Err(); err != nil {
		return fmt.Errorf("redis: ledger add %s: %w", id, err)
	}
	return nil
}
