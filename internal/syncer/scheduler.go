package syncer

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	custom_errors "github-activity-sync/internal/errors"
	"github-activity-sync/internal/model"
)

// Start runs a standard-mode sync for every account, immediately and then on
// every tick of the configured interval, until ctx is cancelled. A zero
// interval disables the scheduler.
func (s *Syncer) Start(ctx context.Context) {
	if s.opts.Interval <= 0 {
		s.logger.Info("Periodic sync disabled")
		return
	}
	s.logger.Info("Starting syncer", "interval", s.opts.Interval.String(), "concurrency", s.opts.Concurrency)
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	s.runSyncCycle(ctx) // Initial sync

	for {
		select {
		case <-ticker.C:
			s.runSyncCycle(ctx)
		case <-ctx.Done():
			s.logger.Info("Syncer shutting down", "reason", ctx.Err())
			return
		}
	}
}

// runSyncCycle syncs all accounts, at most Concurrency at a time. Each
// account's own sync stays sequential.
func (s *Syncer) runSyncCycle(ctx context.Context) {
	s.logger.Info("Starting new sync cycle")
	accounts, err := s.store.Queries().ListAccounts(ctx)
	if err != nil {
		s.logger.Error("Failed to list accounts", "error", err)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	for _, account := range accounts {
		account := account
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			_, err := s.Sync(gctx, account.ID, SyncRequest{Mode: model.ModeStandard})
			switch {
			case err == nil, errors.Is(err, context.Canceled):
			case errors.Is(err, custom_errors.ErrSyncInProgress):
				s.logger.Info("Skipping account with a sync already running", "account_id", account.ID)
			default:
				s.logger.Error("Failed to sync account", "account_id", account.ID, "error", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error("Sync cycle finished with an error", "error", err)
	} else {
		s.logger.Info("Sync cycle finished", "accounts", len(accounts))
	}
}
