package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/domain"
)

var _ domain.PendingMarketStore = (*PendingMarketStore)(nil)

// PendingMarketStore implements domain.PendingMarketStore using PostgreSQL.
type PendingMarketStore struct {
	pool *pgxpool.Pool
}

// NewPendingMarketStore creates a new PendingMarketStore backed by the given
// connection pool.
func NewPendingMarketStore(pool *pgxpool.Pool) *PendingMarketStore {
	return &PendingMarketStore{pool: pool}
}

// Insert stores a new pending market. Inserting an id that already exists
// returns domain.ErrAlreadyExists.
func (s *PendingMarketStore) Insert(ctx context.Context, pm domain.PendingMarket) error {
	optionsJSON, imagesJSON, err := encodeOptions(pm.Options, pm.OptionImages)
	if err != nil {
		return fmt.Errorf("postgres: encode pending market %s: %w", pm.PolyID, err)
	}
	sourceIDs := pm.SourceIDs
	if sourceIDs == nil {
		sourceIDs = []string{}
	}
	sourceJSON, err := json.Marshal(sourceIDs)
	if err != nil {
		return fmt.Errorf("postgres: encode pending market %s: %w", pm.PolyID, err)
	}

	const query = `
		INSERT INTO pending_markets (poly_id, question, event_id, event_name, category,
		                             needs_manual, banner_url, icon_url, options,
		                             option_images, source_ids, expiry)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (poly_id) DO NOTHING`
	tag, err := s.pool.Exec(ctx, query,
		pm.PolyID, pm.Question, pm.EventID, pm.EventName, pm.Category,
		pm.NeedsManual, pm.BannerURL, pm.IconURL, optionsJSON, imagesJSON,
		sourceJSON, nullableTime(pm.Expiry),
	)
	if err != nil {
		return fmt.Errorf("postgres: insert pending market %s: %w", pm.PolyID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: pending market %s: %w", pm.PolyID, domain.ErrAlreadyExists)
	}
	return nil
}

// Exists reports whether a pending market with the given id is stored.
func (s *PendingMarketStore) Exists(ctx context.Context, polyID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM pending_markets WHERE poly_id = $1)", polyID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres: pending market exists %s: %w", polyID, err)
	}
	return exists, nil
}

// GetByPolyID returns the pending market with the given id, or
// domain.ErrNotFound.
func (s *PendingMarketStore) GetByPolyID(ctx context.Context, polyID string) (domain.PendingMarket, error) {
	pm, err := s.scanOne(s.pool.QueryRow(ctx, selectPending+" WHERE poly_id = $1", polyID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PendingMarket{}, fmt.Errorf("postgres: pending market %s: %w", polyID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.PendingMarket{}, fmt.Errorf("postgres: get pending market %s: %w", polyID, err)
	}
	return pm, nil
}

// ListUnposted returns pending markets not yet posted for approval, oldest
// first.
func (s *PendingMarketStore) ListUnposted(ctx context.Context, limit int) ([]domain.PendingMarket, error) {
	query := selectPending + " WHERE NOT posted ORDER BY created_at"
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list unposted pending markets: %w", err)
	}
	defer rows.Close()

	var out []domain.PendingMarket
	for rows.Next() {
		pm, err := s.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan pending market: %w", err)
		}
		out = append(out, pm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list unposted rows: %w", err)
	}
	return out, nil
}

// MarkPosted records that the pending market has been posted for approval.
func (s *PendingMarketStore) MarkPosted(ctx context.Context, polyID, slackMessageID string) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE pending_markets SET posted = TRUE, slack_message_id = $2 WHERE poly_id = $1",
		polyID, slackMessageID,
	)
	if err != nil {
		return fmt.Errorf("postgres: mark posted %s: %w", polyID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: pending market %s: %w", polyID, domain.ErrNotFound)
	}
	return nil
}

const selectPending = `
	SELECT poly_id, question, event_id, event_name, category, needs_manual,
	       banner_url, icon_url, options, option_images, source_ids,
	       COALESCE(expiry, 'epoch'::timestamptz), posted, slack_message_id, created_at
	FROM pending_markets`

func (s *PendingMarketStore) scanOne(row rowScanner) (domain.PendingMarket, error) {
	var pm domain.PendingMarket
	var optionsJSON, imagesJSON, sourceJSON []byte

	err := row.Scan(
		&pm.PolyID, &pm.Question, &pm.EventID, &pm.EventName, &pm.Category,
		&pm.NeedsManual, &pm.BannerURL, &pm.IconURL, &optionsJSON, &imagesJSON,
		&sourceJSON, &pm.Expiry, &pm.Posted, &pm.SlackMessageID, &pm.CreatedAt,
	)
	if err != nil {
		return domain.PendingMarket{}, err
	}
	if err := decodeOptions(optionsJSON, imagesJSON, &pm.Options, &pm.OptionImages); err != nil {
		return domain.PendingMarket{}, err
	}
	if len(sourceJSON) > 0 {
		if err := json.Unmarshal(sourceJSON, &pm.SourceIDs); err != nil {
			return domain.PendingMarket{}, err
		}
	}
	return pm, nil
}
