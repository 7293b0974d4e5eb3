// Package pipeline coordinates a full run: fetch raw markets from the source
// API, archive the batch, transform it, categorize the output, persist pending
// markets, and post them for approval.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/domain"
)

// MarketSource retrieves open markets from an external API.
type MarketSource interface {
	ListOpenMarkets(ctx context.Context, pageSize int) ([]domain.RawMarket, error)
}

// Fetcher pulls the current open-market batch and filters it down to records
// the transform engine can work with.
type Fetcher struct {
	source   MarketSource
	pageSize int
	now      func() time.Time
	logger   *slog.Logger
}

// NewFetcher creates a Fetcher reading from the given source.
func NewFetcher(source MarketSource, pageSize int, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		source:   source,
		pageSize: pageSize,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "fetcher")),
	}
}

// Fetch returns the filtered batch. Records are dropped when they are closed,
// archived, inactive, expired, missing an id or question, or missing both
// market image and icon; drops are counted, not logged individually, since a
// normal batch sheds hundreds of stale records.
func (f *Fetcher) Fetch(ctx context.Context) ([]domain.RawMarket, error) {
	records, err := f.source.ListOpenMarkets(ctx, f.pageSize)
	if err != nil {
		return nil, fmt.Errorf("pipeline: fetch markets: %w", err)
	}

	now := f.now()
	kept := make([]domain.RawMarket, 0, len(records))
	dropped := 0
	for _, rec := range records {
		if !f.eligible(rec, now) {
			dropped++
			continue
		}
		kept = append(kept, rec)
	}

	f.logger.Info("fetched market batch",
		slog.Int("total", len(records)),
		slog.Int("kept", len(kept)),
		slog.Int("dropped", dropped),
	)
	return kept, nil
}

func (f *Fetcher) eligible(rec domain.RawMarket, now time.Time) bool {
	if rec.ID == "" || rec.Question == "" {
		return false
	}
	if rec.Closed || rec.Archived || !rec.Active {
		return false
	}
	if rec.Expired(now) {
		return false
	}
	if rec.Image == "" && rec.Icon == "" {
		return false
	}
	return true
}
