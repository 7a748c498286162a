// internal/syncer/syncer.go
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github-activity-sync/internal/aggregator"
	"github-activity-sync/internal/database"
	custom_errors "github-activity-sync/internal/errors"
	"github-activity-sync/internal/metrics"
	"github-activity-sync/internal/model"
)

// Source is the upstream activity API as seen by one account's token.
type Source interface {
	ListRepositories(ctx context.Context) ([]model.Repository, error)
	FetchEvents(ctx context.Context, w model.SyncWindow) ([]model.Activity, error)
	CurrentLogin(ctx context.Context) (string, error)
	SearchCommitTimes(ctx context.Context, login string, w model.SyncWindow) ([]time.Time, error)
	SearchPullRequestTimes(ctx context.Context, login string, w model.SyncWindow) ([]time.Time, error)
	SearchIssueTimes(ctx context.Context, login string, w model.SyncWindow) ([]time.Time, error)
	StarTimes(ctx context.Context, repos []model.Repository, w model.SyncWindow) ([]time.Time, error)
}

// SourceFactory builds a Source authenticated with an account's token.
type SourceFactory func(token string) (Source, error)

// Store hands out queriers, either standalone or bound to a transaction.
type Store interface {
	Queries() database.Querier
	InTx(ctx context.Context, fn func(q database.Querier) error) error
}

// Options holds the orchestrator's settings.
type Options struct {
	StandardLookbackDays int
	DeepLookbackDays     int
	LockTTL              time.Duration
	Interval             time.Duration
	Concurrency          int
	// Now defaults to time.Now.
	Now func() time.Time
}

// Summary is the result of a successful sync.
type Summary struct {
	Repositories int
	StatsUpdated int
	Window       model.SyncWindow
}

// Syncer orchestrates fetching, aggregating and storing activity.
type Syncer struct {
	store     Store
	newSource SourceFactory
	locker    Locker
	logger    *slog.Logger
	metrics   *metrics.Metrics
	opts      Options
}

// NewSyncer creates a new Syncer instance.
func NewSyncer(store Store, newSource SourceFactory, locker Locker, logger *slog.Logger, m *metrics.Metrics, opts Options) *Syncer {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if locker == nil {
		locker = NewMemoryLocker()
	}
	return &Syncer{
		store:     store,
		newSource: newSource,
		locker:    locker,
		logger:    logger,
		metrics:   m,
		opts:      opts,
	}
}

// Sync runs one full sync for the account. The window is validated before the
// account is loaded or any upstream call is made. Pipeline failures are
// returned as *errors.StageError.
func (s *Syncer) Sync(ctx context.Context, accountID int64, req SyncRequest) (*Summary, error) {
	window, err := ResolveWindow(req, s.opts, s.opts.Now().UTC())
	if err != nil {
		return nil, &custom_errors.StageError{Stage: custom_errors.StageResolveWindow, Err: err}
	}

	account, err := s.store.Queries().GetAccount(ctx, accountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, custom_errors.ErrAccountNotFound
	} else if err != nil {
		return nil, fmt.Errorf("load account %d: %w", accountID, err)
	}

	release, err := s.locker.Acquire(ctx, accountLockKey(accountID), s.opts.LockTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	logger := s.logger.With(
		"account_id", account.ID,
		"sync_id", uuid.NewString(),
		"mode", string(window.Mode),
		"window", window.String(),
	)
	logger.Info("Starting sync")

	started := time.Now()
	summary, err := s.run(ctx, logger, account, window)
	s.metrics.ObserveSync(string(window.Mode), err, time.Since(started))
	if err != nil {
		logger.Error("Sync failed", "error", err)
		return nil, err
	}

	logger.Info("Sync finished",
		"repos_count", summary.Repositories,
		"stats_updated", summary.StatsUpdated,
		"duration", time.Since(started).String(),
	)
	return summary, nil
}

func (s *Syncer) run(ctx context.Context, logger *slog.Logger, account database.Account, window model.SyncWindow) (*Summary, error) {
	src, err := s.newSource(account.AccessToken)
	if err != nil {
		return nil, &custom_errors.StageError{Stage: custom_errors.StageFetchRepositories, Err: err}
	}

	repos, err := src.ListRepositories(ctx)
	if err != nil {
		return nil, &custom_errors.StageError{Stage: custom_errors.StageFetchRepositories, Err: err}
	}
	logger.Info("Fetched repositories", "count", len(repos))

	// Repositories are committed on their own, before any activity is fetched.
	err = s.store.InTx(ctx, func(q database.Querier) error {
		return s.reconcileRepositories(ctx, q, account.ID, repos)
	})
	if err != nil {
		return nil, &custom_errors.StageError{Stage: custom_errors.StageReconcileRepositories, Err: err}
	}

	var stats model.DailyStats
	switch window.Mode {
	case model.ModeDeep:
		stats, err = s.collectDeep(ctx, logger, src, repos, window)
	default:
		stats, err = s.collectStandard(ctx, logger, src, window)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("Aggregated daily stats", "days", len(stats))

	var written int
	err = s.store.InTx(ctx, func(q database.Querier) error {
		var err error
		written, err = s.reconcileDailyStats(ctx, q, account.ID, stats)
		return err
	})
	if err != nil {
		return nil, &custom_errors.StageError{Stage: custom_errors.StageReconcileDailyStats, ReposCommitted: true, Err: err}
	}
	s.metrics.AddDailyStatsWritten(written)

	return &Summary{
		Repositories: len(repos),
		StatsUpdated: written,
		Window:       window,
	}, nil
}

// collectStandard aggregates the recent activity feed.
func (s *Syncer) collectStandard(ctx context.Context, logger *slog.Logger, src Source, window model.SyncWindow) (model.DailyStats, error) {
	activities, err := src.FetchEvents(ctx, window)
	if err != nil {
		return nil, afterRepos(custom_errors.StageFetchEvents, err)
	}
	logger.Info("Fetched events", "count", len(activities), "types", activityHistogram(activities))
	return aggregator.Classify(activities), nil
}

// collectDeep aggregates search hits and stargazer timestamps over the window.
func (s *Syncer) collectDeep(ctx context.Context, logger *slog.Logger, src Source, repos []model.Repository, window model.SyncWindow) (model.DailyStats, error) {
	login, err := src.CurrentLogin(ctx)
	if err != nil {
		return nil, afterRepos(custom_errors.StageResolveUsername, err)
	}

	commits, err := src.SearchCommitTimes(ctx, login, window)
	if err != nil {
		return nil, afterRepos(custom_errors.StageFetchCommitRange, err)
	}
	prs, err := src.SearchPullRequestTimes(ctx, login, window)
	if err != nil {
		return nil, afterRepos(custom_errors.StageFetchPRRange, err)
	}
	issues, err := src.SearchIssueTimes(ctx, login, window)
	if err != nil {
		return nil, afterRepos(custom_errors.StageFetchIssueRange, err)
	}
	stars, err := src.StarTimes(ctx, repos, window)
	if err != nil {
		return nil, afterRepos(custom_errors.StageFetchStarRange, err)
	}

	logger.Info("Fetched activity history",
		"login", login,
		"commits", len(commits),
		"pull_requests", len(prs),
		"issues", len(issues),
		"stars", len(stars),
		"chunks", len(window.MonthChunks()),
	)
	return aggregator.CountTimestamps(commits, prs, issues, stars), nil
}

func afterRepos(stage custom_errors.Stage, err error) error {
	return &custom_errors.StageError{Stage: stage, ReposCommitted: true, Err: err}
}

func activityHistogram(activities []model.Activity) map[string]int {
	hist := make(map[string]int)
	for _, a := range activities {
		hist[activityKind(a)]++
	}
	return hist
}

func activityKind(a model.Activity) string {
	switch a := a.(type) {
	case model.PushActivity:
		return "PushEvent"
	case model.PullRequestActivity:
		return "PullRequestEvent"
	case model.IssueActivity:
		return "IssuesEvent"
	case model.WatchActivity:
		return "WatchEvent"
	case model.PublicActivity:
		return "PublicEvent"
	case model.UnknownActivity:
		return a.Type
	}
	return "unknown"
}
