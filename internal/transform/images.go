package transform

import (
	"log/slog"

	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/domain"
)

// Resolver assigns a dedicated image to each option of a synthesized
// multi-option market. The event banner is never used as an option image and
// the same image is never assigned to two options of one market; an option
// with no dedicated image anywhere in the batch stays unresolved so
// downstream consumers can surface it instead of shipping a wrong picture.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(logger *slog.Logger) *Resolver {
	return &Resolver{logger: logger.With(slog.String("component", "image_resolver"))}
}

// Resolve fills OptionImages in place for every multi-option market in
// markets. batch is the full input batch, including records already consumed
// by earlier runs; it widens the search when a group's own members carry no
// usable image for an option.
func (r *Resolver) Resolve(batch []domain.RawMarket, markets []domain.TransformedMarket) {
	byID := make(map[string]domain.RawMarket, len(batch))
	for _, rec := range batch {
		byID[rec.ID] = rec
	}

	for _, m := range markets {
		if m.Kind != domain.KindMultiOption {
			continue
		}
		r.resolveMarket(m.MultiOption, byID, batch)
	}
}

func (r *Resolver) resolveMarket(m *domain.MultiOptionMarket, byID map[string]domain.RawMarket, batch []domain.RawMarket) {
	used := make(map[string]bool)
	for _, opt := range m.Options {
		url := r.findImage(opt, m, byID, batch, used)
		if url == "" {
			m.OptionImages[opt] = domain.OptionImage{}
			r.logger.Warn("no dedicated image for option",
				slog.String("market_id", m.ID),
				slog.String("option", opt),
			)
			continue
		}
		used[url] = true
		m.OptionImages[opt] = domain.OptionImage{URL: url, Resolved: true}
	}
}

// findImage searches for a usable image for one option: member markets whose
// question names the option first, then the full batch. Only records that
// actually name the option are considered, so an option never inherits a
// sibling's picture. A candidate is usable when it is non-empty, differs from
// the event banner, and has not been assigned to a sibling option.
func (r *Resolver) findImage(option string, m *domain.MultiOptionMarket, byID map[string]domain.RawMarket, batch []domain.RawMarket, used map[string]bool) string {
	usable := func(url string) bool {
		return url != "" && url != m.Banner && !used[url]
	}

	for _, id := range m.SourceIDs {
		rec, ok := byID[id]
		if ok && containsFold(rec.Question, option) && usable(rec.Image) {
			return rec.Image
		}
	}
	for _, rec := range batch {
		if containsFold(rec.Question, option) && usable(rec.Image) {
			return rec.Image
		}
	}
	return ""
}
