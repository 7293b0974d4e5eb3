package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/categorize"
	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/domain"
	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/notify"
	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/transform"
)

// runLockKey serializes pipeline runs across replicas.
const runLockKey = "pipeline:run"

// Deps bundles the collaborators an Orchestrator needs. Archiver, Locks,
// Audit, and Notifier are optional; a nil value disables that concern.
type Deps struct {
	Fetcher     *Fetcher
	Archiver    *Archiver
	Engine      *transform.Engine
	Ledger      domain.Ledger
	Categorizer domain.Categorizer
	Concurrency int
	Events      domain.EventStore
	Pending     domain.PendingMarketStore
	Audit       domain.AuditStore
	Poster      *Poster
	Locks       domain.LockManager
	LockTTL     time.Duration
	Interval    time.Duration
	Notifier    *notify.Notifier
	Logger      *slog.Logger
}

// Orchestrator drives complete pipeline runs: fetch, archive, transform,
// categorize, persist, post.
type Orchestrator struct {
	deps   Deps
	logger *slog.Logger
}

// NewOrchestrator creates an Orchestrator from its dependencies.
func NewOrchestrator(deps Deps) *Orchestrator {
	return &Orchestrator{
		deps:   deps,
		logger: deps.Logger.With(slog.String("component", "orchestrator")),
	}
}

// RunOnce executes a single end-to-end run under the distributed lock. A held
// lock means another replica is mid-run; that is reported as an error so the
// operator sees it, but daily mode treats it as a skipped tick.
func (o *Orchestrator) RunOnce(ctx context.Context) error {
	if o.deps.Locks != nil {
		unlock, err := o.deps.Locks.Acquire(ctx, runLockKey, o.deps.LockTTL)
		if err != nil {
			return fmt.Errorf("pipeline: acquire run lock: %w", err)
		}
		defer unlock()
	}

	batch, err := o.deps.Fetcher.Fetch(ctx)
	if err != nil {
		o.notify(ctx, "run_failed", "Pipeline run failed", err.Error())
		return err
	}
	if len(batch) == 0 {
		o.logger.Info("no eligible markets in batch, nothing to do")
		return nil
	}

	if o.deps.Archiver != nil {
		if _, err := o.deps.Archiver.Archive(ctx, batch); err != nil {
			// Archival is best effort; the run still has the live batch.
			o.logger.Error("batch archive failed", slog.String("error", err.Error()))
		}
	}

	return o.process(ctx, batch)
}

// RunDaily runs immediately and then once per configured interval until the
// context is cancelled. A failed or skipped run never stops the loop.
func (o *Orchestrator) RunDaily(ctx context.Context) error {
	o.logger.Info("starting daily pipeline loop", slog.Duration("interval", o.deps.Interval))

	if err := o.RunOnce(ctx); err != nil {
		o.logRunError(err)
	}

	ticker := time.NewTicker(o.deps.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("daily pipeline loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := o.RunOnce(ctx); err != nil {
				o.logRunError(err)
			}
		}
	}
}

// Replay re-runs the transform half of the pipeline against an archived batch.
// The ledger still applies, so replaying a batch that was already consumed
// produces nothing unless the ledger was reset first.
func (o *Orchestrator) Replay(ctx context.Context, reader domain.BlobReader, key string) error {
	batch, err := LoadBatch(ctx, reader, key)
	if err != nil {
		return err
	}
	o.logger.Info("replaying archived batch", slog.String("key", key), slog.Int("records", len(batch)))
	return o.process(ctx, batch)
}

// process runs transform, categorize, persist, and post over one batch.
func (o *Orchestrator) process(ctx context.Context, batch []domain.RawMarket) error {
	out, err := o.deps.Engine.Transform(ctx, batch, o.deps.Ledger)
	if err != nil {
		o.notify(ctx, "run_failed", "Pipeline run failed", err.Error())
		return err
	}
	if len(out) == 0 {
		o.logger.Info("batch fully consumed by previous runs")
		return nil
	}

	results, err := categorize.Batch(ctx, o.deps.Categorizer, out, o.deps.Concurrency, o.logger)
	if err != nil {
		o.notify(ctx, "run_failed", "Pipeline run failed", err.Error())
		return fmt.Errorf("pipeline: categorize batch: %w", err)
	}

	stored, manual := 0, 0
	for i, m := range out {
		pm := toPending(m, results[i].NeedsManual)
		if pm.NeedsManual {
			manual++
		}

		if err := o.upsertEvent(ctx, m); err != nil {
			o.logger.Error("event upsert failed",
				slog.String("event_id", pm.EventID),
				slog.String("error", err.Error()),
			)
		}

		err := o.deps.Pending.Insert(ctx, pm)
		switch {
		case errors.Is(err, domain.ErrAlreadyExists):
			continue
		case err != nil:
			o.notify(ctx, "run_failed", "Pipeline run failed", err.Error())
			return fmt.Errorf("pipeline: store pending market %s: %w", pm.PolyID, err)
		}
		stored++
	}

	if o.deps.Audit != nil {
		_ = o.deps.Audit.Log(ctx, "run_complete", map[string]any{
			"batch_size":    len(batch),
			"transformed":   len(out),
			"stored":        stored,
			"manual_review": manual,
		})
	}

	posted := 0
	if o.deps.Poster != nil {
		posted, err = o.deps.Poster.Run(ctx, 0)
		if err != nil {
			o.notify(ctx, "run_failed", "Pipeline run failed", err.Error())
			return err
		}
	}

	o.logger.Info("pipeline run complete",
		slog.Int("batch_size", len(batch)),
		slog.Int("transformed", len(out)),
		slog.Int("stored", stored),
		slog.Int("posted", posted),
		slog.Int("manual_review", manual),
	)
	o.notify(ctx, "run_complete", "Pipeline run complete",
		fmt.Sprintf("%d markets transformed, %d stored, %d posted, %d need manual review",
			len(out), stored, posted, manual))
	if manual > 0 {
		o.notify(ctx, "manual_review", "Markets need manual review",
			fmt.Sprintf("%d markets were stored with the manual-review flag", manual))
	}
	return nil
}

func (o *Orchestrator) upsertEvent(ctx context.Context, m domain.TransformedMarket) error {
	if o.deps.Events == nil || m.Kind != domain.KindMultiOption || m.MultiOption.EventID == "" {
		return nil
	}
	mo := m.MultiOption
	return o.deps.Events.Upsert(ctx, domain.Event{
		ID:        mo.EventID,
		Title:     mo.Title,
		Category:  mo.Category,
		BannerURL: mo.Banner,
		IconURL:   mo.Icon,
	})
}

func (o *Orchestrator) logRunError(err error) {
	if errors.Is(err, domain.ErrLockHeld) {
		o.logger.Warn("skipping run, lock held by another replica")
		return
	}
	o.logger.Error("pipeline run failed", slog.String("error", err.Error()))
}

func (o *Orchestrator) notify(ctx context.Context, event, title, message string) {
	if o.deps.Notifier == nil {
		return
	}
	if err := o.deps.Notifier.Notify(ctx, event, title, message); err != nil {
		o.logger.Warn("notification failed", slog.String("error", err.Error()))
	}
}

// toPending maps a transformed market onto the persistence model the approval
// flow works with.
func toPending(m domain.TransformedMarket, needsManual bool) domain.PendingMarket {
	switch m.Kind {
	case domain.KindMultiOption:
		mo := m.MultiOption
		return domain.PendingMarket{
			PolyID:       mo.ID,
			Question:     mo.Title,
			EventID:      mo.EventID,
			EventName:    mo.Title,
			Category:     mo.Category,
			NeedsManual:  needsManual || hasUnresolvedImage(mo),
			BannerURL:    mo.Banner,
			IconURL:      mo.Icon,
			Options:      mo.Options,
			OptionImages: mo.OptionImages,
			SourceIDs:    mo.SourceIDs,
			Expiry:       mo.EndDate,
		}
	default:
		b := m.Binary
		return domain.PendingMarket{
			PolyID:      b.ID,
			Question:    b.Question,
			EventID:     b.EventID,
			EventName:   b.EventTitle,
			Category:    b.Category,
			NeedsManual: needsManual,
			BannerURL:   b.Image,
			IconURL:     b.Icon,
			Options:     b.Outcomes,
			SourceIDs:   []string{b.ID},
			Expiry:      b.EndDate,
		}
	}
}

// hasUnresolvedImage reports whether any option is missing a dedicated image.
// Such markets always go through manual review so nobody approves a market
// with a blank or wrong option picture.
func hasUnresolvedImage(mo *domain.MultiOptionMarket) bool {
	for _, opt := range mo.Options {
		if !mo.OptionImages[opt].Resolved {
			return true
		}
	}
	return false
}
