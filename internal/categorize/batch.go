package categorize

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/domain"
)

// Batch categorizes every transformed market concurrently, bounded by limit
// goroutines, and writes the result into each market's Category field. Markets
// that already carry a source category keep it when it is a valid label. A
// categorizer failure for one market degrades that market to news with the
// manual-review flag instead of failing the batch; only context cancellation
// aborts.
func Batch(ctx context.Context, c domain.Categorizer, markets []domain.TransformedMarket, limit int, logger *slog.Logger) ([]domain.CategoryResult, error) {
	if limit < 1 {
		limit = 1
	}
	logger = logger.With(slog.String("component", "categorizer"))

	results := make([]domain.CategoryResult, len(markets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := range markets {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			question, description, existing := marketText(markets[i])
			if domain.ValidCategories[existing] {
				results[i] = domain.CategoryResult{Category: existing}
				return nil
			}

			res, err := c.Categorize(ctx, question, description)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Warn("categorization failed, flagging for manual review",
					slog.String("question", question),
					slog.String("error", err.Error()),
				)
				res = domain.CategoryResult{Category: domain.CategoryNews, NeedsManual: true}
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range markets {
		applyCategory(&markets[i], results[i].Category)
	}
	return results, nil
}

func marketText(m domain.TransformedMarket) (question, description, existing string) {
	switch m.Kind {
	case domain.KindBinary:
		return m.Binary.Question, m.Binary.Description, strings.ToLower(m.Binary.Category)
	case domain.KindMultiOption:
		return m.MultiOption.Title, "", strings.ToLower(m.MultiOption.Category)
	}
	return "", "", ""
}

func applyCategory(m *domain.TransformedMarket, category string) {
	switch m.Kind {
	case domain.KindBinary:
		m.Binary.Category = category
	case domain.KindMultiOption:
		m.MultiOption.Category = category
	}
}
