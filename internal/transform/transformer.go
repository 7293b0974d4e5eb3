// Package transform implements the market-transformation engine: it extracts
// entities from binary market questions, groups near-duplicate markets that
// describe one underlying event, synthesizes multi-option markets from
// qualifying groups, resolves a dedicated image per option, and keeps the
// whole process idempotent through a consumed-id ledger.
package transform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/domain"
)

// Engine runs the full transformation over a batch of raw markets.
type Engine struct {
	grouper     *Grouper
	synthesizer *Synthesizer
	resolver    *Resolver
	logger      *slog.Logger
}

// NewEngine wires an Engine from the given extractor. Pass DefaultRules and a
// config-supplied vocabulary in production.
func NewEngine(extractor *Extractor, logger *slog.Logger) *Engine {
	return &Engine{
		grouper:     NewGrouper(extractor, logger),
		synthesizer: NewSynthesizer(logger),
		resolver:    NewResolver(logger),
		logger:      logger.With(slog.String("component", "transform_engine")),
	}
}

// Transform converts a batch of raw markets into transformed output markets,
// skipping records the ledger has already consumed and marking every consumed
// source id afterwards. Running the same batch twice therefore yields no
// output on the second run.
//
// A ledger read failure degrades to treating the record as new, with a
// warning; a ledger write failure aborts the run so the caller can retry the
// batch without losing idempotence.
func (e *Engine) Transform(ctx context.Context, records []domain.RawMarket, ledger domain.Ledger) ([]domain.TransformedMarket, error) {
	fresh := make([]domain.RawMarket, 0, len(records))
	for _, rec := range records {
		consumed, err := ledger.Contains(ctx, rec.ID)
		if err != nil {
			e.logger.Warn("ledger lookup failed, treating record as new",
				slog.String("market_id", rec.ID),
				slog.String("error", err.Error()),
			)
			consumed = false
		}
		if !consumed {
			fresh = append(fresh, rec)
		}
	}

	groups := e.grouper.Group(fresh)

	var out []domain.TransformedMarket
	for _, g := range groups {
		out = append(out, e.synthesizer.Synthesize(g)...)
	}

	// Image resolution searches the full input batch, not just fresh records:
	// a record consumed in an earlier run can still be the only donor of an
	// option's dedicated image.
	e.resolver.Resolve(records, out)

	for _, m := range out {
		var ids []string
		switch m.Kind {
		case domain.KindBinary:
			ids = []string{m.Binary.ID}
		case domain.KindMultiOption:
			ids = m.MultiOption.SourceIDs
		}
		for _, id := range ids {
			if err := ledger.Add(ctx, id); err != nil {
				return nil, fmt.Errorf("transform: mark consumed %s: %w", id, err)
			}
		}
	}

	e.logger.Info("transform run complete",
		slog.Int("input", len(records)),
		slog.Int("fresh", len(fresh)),
		slog.Int("output", len(out)),
	)
	return out, nil
}
