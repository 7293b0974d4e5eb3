package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/domain"
)

var _ domain.MarketStore = (*MarketStore)(nil)

// MarketStore implements domain.MarketStore using PostgreSQL. Option lists and
// image maps are stored as JSONB. Rows land here when an approved pending
// market is promoted; the pipeline itself provisions the store but no run mode
// writes to it, since approval consumption lives outside this service.
type MarketStore struct {
	pool *pgxpool.Pool
}

// NewMarketStore creates a new MarketStore backed by the given connection pool.
func NewMarketStore(pool *pgxpool.Pool) *MarketStore {
	return &MarketStore{pool: pool}
}

// Upsert inserts the market or refreshes it when it already exists.
func (s *MarketStore) Upsert(ctx context.Context, m domain.Market) error {
	optionsJSON, imagesJSON, err := encodeOptions(m.Options, m.OptionImages)
	if err != nil {
		return fmt.Errorf("postgres: encode market %s: %w", m.ID, err)
	}

	const query = `
		INSERT INTO markets (id, question, event_id, category, options, option_images,
		                     original_market_id, expiry, status)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			question      = EXCLUDED.question,
			event_id      = EXCLUDED.event_id,
			category      = EXCLUDED.category,
			options       = EXCLUDED.options,
			option_images = EXCLUDED.option_images,
			expiry        = EXCLUDED.expiry,
			status        = EXCLUDED.status,
			updated_at    = NOW()`
	_, err = s.pool.Exec(ctx, query,
		m.ID, m.Question, m.EventID, m.Category, optionsJSON, imagesJSON,
		m.OriginalMarketID, nullableTime(m.Expiry), m.Status,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert market %s: %w", m.ID, err)
	}
	return nil
}

// GetByID returns the market with the given id, or domain.ErrNotFound.
func (s *MarketStore) GetByID(ctx context.Context, id string) (domain.Market, error) {
	const query = `
		SELECT id, question, COALESCE(event_id, ''), category, options, option_images,
		       original_market_id, COALESCE(expiry, 'epoch'::timestamptz), status,
		       created_at, updated_at
		FROM markets WHERE id = $1`

	m, err := scanMarket(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Market{}, fmt.Errorf("postgres: market %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Market{}, fmt.Errorf("postgres: get market %s: %w", id, err)
	}
	return m, nil
}

// ListByEvent returns all markets linked to the given event.
func (s *MarketStore) ListByEvent(ctx context.Context, eventID string) ([]domain.Market, error) {
	const query = `
		SELECT id, question, COALESCE(event_id, ''), category, options, option_images,
		       original_market_id, COALESCE(expiry, 'epoch'::timestamptz), status,
		       created_at, updated_at
		FROM markets WHERE event_id = $1 ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list markets for event %s: %w", eventID, err)
	}
	defer rows.Close()

	var markets []domain.Market
	for rows.Next() {
		m, err := scanMarket(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan market: %w", err)
		}
		markets = append(markets, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list markets rows: %w", err)
	}
	return markets, nil
}

// Count returns the total number of stored markets.
func (s *MarketStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM markets").Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count markets: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMarket(row rowScanner) (domain.Market, error) {
	var m domain.Market
	var optionsJSON, imagesJSON []byte

	err := row.Scan(
		&m.ID, &m.Question, &m.EventID, &m.Category, &optionsJSON, &imagesJSON,
		&m.OriginalMarketID, &m.Expiry, &m.Status, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return domain.Market{}, err
	}
	if err := decodeOptions(optionsJSON, imagesJSON, &m.Options, &m.OptionImages); err != nil {
		return domain.Market{}, err
	}
	return m, nil
}
