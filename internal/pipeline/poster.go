package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/domain"
)

// ApprovalPoster posts a pending market to the approval channel and seeds
// moderator reactions on the resulting message.
type ApprovalPoster interface {
	PostMarket(ctx context.Context, pm domain.PendingMarket) (string, error)
	AddReaction(ctx context.Context, messageID, name string) error
}

// Poster drains unposted pending markets into the approval channel. Each
// message gets approve/reject reactions and the store row is marked with the
// message id, so a crashed run resumes where it stopped.
type Poster struct {
	pending domain.PendingMarketStore
	slack   ApprovalPoster
	audit   domain.AuditStore
	logger  *slog.Logger
}

// NewPoster creates a Poster.
func NewPoster(pending domain.PendingMarketStore, slack ApprovalPoster, audit domain.AuditStore, logger *slog.Logger) *Poster {
	return &Poster{
		pending: pending,
		slack:   slack,
		audit:   audit,
		logger:  logger.With(slog.String("component", "poster")),
	}
}

// Run posts up to limit unposted pending markets (0 means no limit) and
// returns how many were posted. A failure on one market stops the run so the
// remaining markets are retried next time in order.
func (p *Poster) Run(ctx context.Context, limit int) (int, error) {
	pending, err := p.pending.ListUnposted(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("pipeline: list unposted: %w", err)
	}

	posted := 0
	for _, pm := range pending {
		messageID, err := p.slack.PostMarket(ctx, pm)
		if err != nil {
			return posted, fmt.Errorf("pipeline: post market %s: %w", pm.PolyID, err)
		}

		for _, reaction := range []string{"white_check_mark", "x"} {
			if err := p.slack.AddReaction(ctx, messageID, reaction); err != nil {
				p.logger.Warn("seeding reaction failed",
					slog.String("poly_id", pm.PolyID),
					slog.String("reaction", reaction),
					slog.String("error", err.Error()),
				)
			}
		}

		if err := p.pending.MarkPosted(ctx, pm.PolyID, messageID); err != nil {
			return posted, fmt.Errorf("pipeline: mark posted %s: %w", pm.PolyID, err)
		}

		if p.audit != nil {
			_ = p.audit.Log(ctx, "market_posted", map[string]any{
				"poly_id":          pm.PolyID,
				"slack_message_id": messageID,
			})
		}

		posted++
		p.logger.Info("posted pending market",
			slog.String("poly_id", pm.PolyID),
			slog.String("slack_message_id", messageID),
		)
	}

	return posted, nil
}
