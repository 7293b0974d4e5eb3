package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/domain"
)

var _ domain.EventStore = (*EventStore)(nil)

// EventStore implements domain.EventStore using PostgreSQL.
type EventStore struct {
	pool *pgxpool.Pool
}

// NewEventStore creates a new EventStore backed by the given connection pool.
func NewEventStore(pool *pgxpool.Pool) *EventStore {
	return &EventStore{pool: pool}
}

// Upsert inserts the event or refreshes its metadata when it already exists.
func (s *EventStore) Upsert(ctx context.Context, e domain.Event) error {
	const query = `
		INSERT INTO events (id, title, category, banner_url, icon_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			title      = EXCLUDED.title,
			category   = EXCLUDED.category,
			banner_url = EXCLUDED.banner_url,
			icon_url   = EXCLUDED.icon_url,
			updated_at = NOW()`
	if _, err := s.pool.Exec(ctx, query, e.ID, e.Title, e.Category, e.BannerURL, e.IconURL); err != nil {
		return fmt.Errorf("postgres: upsert event %s: %w", e.ID, err)
	}
	return nil
}

// GetByID returns the event with the given id, or domain.ErrNotFound.
func (s *EventStore) GetByID(ctx context.Context, id string) (domain.Event, error) {
	const query = `
		SELECT id, title, category, banner_url, icon_url, created_at, updated_at
		FROM events WHERE id = $1`

	var e domain.Event
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.Title, &e.Category, &e.BannerURL, &e.IconURL, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Event{}, fmt.Errorf("postgres: event %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Event{}, fmt.Errorf("postgres: get event %s: %w", id, err)
	}
	return e, nil
}

// List returns events ordered by creation time, newest first.
func (s *EventStore) List(ctx context.Context, opts domain.ListOpts) ([]domain.Event, error) {
	query := `
		SELECT id, title, category, banner_url, icon_url, created_at, updated_at
		FROM events WHERE 1=1`
	args := []any{}
	argIdx := 1

	if opts.Since != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *opts.Since)
		argIdx++
	}
	if opts.Until != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, *opts.Until)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Category, &e.BannerURL, &e.IconURL, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list events rows: %w", err)
	}
	return events, nil
}
