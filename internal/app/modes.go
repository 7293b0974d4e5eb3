package app

import (
	"context"
	"fmt"
	"log/slog"
)

// OnceMode runs a single fetch-transform-post cycle and exits.
func (a *App) OnceMode(ctx context.Context, deps *Dependencies) error {
	return deps.Orchestrator.RunOnce(ctx)
}

// DailyMode runs an immediate cycle and then repeats on the configured
// interval until the context is cancelled.
func (a *App) DailyMode(ctx context.Context, deps *Dependencies) error {
	return deps.Orchestrator.RunDaily(ctx)
}

// PostMode skips fetching and transformation and only drains pending markets
// that were stored by a previous run but never made it to the approval
// channel.
func (a *App) PostMode(ctx context.Context, deps *Dependencies) error {
	if deps.Poster == nil {
		return fmt.Errorf("app: post mode requires a slack bot token")
	}
	posted, err := deps.Poster.Run(ctx, 0)
	if err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "post mode complete", slog.Int("posted", posted))
	return nil
}

// ReplayMode re-runs the transform half of the pipeline against an archived
// raw batch instead of a live fetch.
func (a *App) ReplayMode(ctx context.Context, deps *Dependencies) error {
	if deps.BlobReader == nil {
		return fmt.Errorf("app: replay mode requires object storage")
	}
	return deps.Orchestrator.Replay(ctx, deps.BlobReader, a.cfg.Pipeline.ReplayKey)
}
