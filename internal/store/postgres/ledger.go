package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/domain"
)

var _ domain.Ledger = (*Ledger)(nil)

// Ledger implements domain.Ledger on the processed_markets table, giving the
// transform engine durable idempotence across runs and deployments.
type Ledger struct {
	pool *pgxpool.Pool
}

// NewLedger creates a new Ledger backed by the given connection pool.
func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

// Contains reports whether the market id has been consumed by a previous run.
func (l *Ledger) Contains(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := l.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM processed_markets WHERE market_id = $1)", id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres: ledger contains %s: %w", id, err)
	}
	return exists, nil
}

// Add marks the market id as consumed. Re-adding an id is a no-op.
func (l *Ledger) Add(ctx context.Context, id string) error {
	_, err := l.pool.Exec(ctx,
		"INSERT INTO processed_markets (market_id) VALUES ($1) ON CONFLICT (market_id) DO NOTHING", id,
	)
	if err != nil {
		return fmt.Errorf("postgres: ledger add %s: %w", id, err)
	}
	return nil
}
