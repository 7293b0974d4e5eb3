package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination and filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// EventStore persists events extracted from market batches.
type EventStore interface {
	Upsert(ctx context.Context, e Event) error
	GetByID(ctx context.Context, id string) (Event, error)
	List(ctx context.Context, opts ListOpts) ([]Event, error)
}

// MarketStore persists approved markets.
type MarketStore interface {
	Upsert(ctx context.Context, m Market) error
	GetByID(ctx context.Context, id string) (Market, error)
	ListByEvent(ctx context.Context, eventID string) ([]Market, error)
	Count(ctx context.Context) (int64, error)
}

// PendingMarketStore persists markets awaiting approval.
type PendingMarketStore interface {
	Insert(ctx context.Context, pm PendingMarket) error
	Exists(ctx context.Context, polyID string) (bool, error)
	GetByPolyID(ctx context.Context, polyID string) (PendingMarket, error)
	ListUnposted(ctx context.Context, limit int) ([]PendingMarket, error)
	MarkPosted(ctx context.Context, polyID, slackMessageID string) error
}

// AuditEntry is a single audit log row.
type AuditEntry struct {
	ID        int64
	Event     string
	Detail    map[string]any
	CreatedAt time.Time
}

// AuditStore persists an append-only audit log of pipeline runs.
type AuditStore interface {
	Log(ctx context.Context, event string, detail map[string]any) error
	List(ctx context.Context, opts ListOpts) ([]AuditEntry, error)
}
