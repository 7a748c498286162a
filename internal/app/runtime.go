// Package app wires configuration into the components shared by the service
// and the command line tool.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github-activity-sync/internal/config"
	"github-activity-sync/internal/database"
	"github-activity-sync/internal/github"
	"github-activity-sync/internal/metrics"
	"github-activity-sync/internal/syncer"
)

// Runtime bundles the long-lived components built from one configuration.
type Runtime struct {
	Pool    *pgxpool.Pool
	Store   *database.Store
	Syncer  *syncer.Syncer
	Metrics *metrics.Metrics

	cfg    *config.Config
	logger *slog.Logger
	redis  *redis.Client
}

// NewRuntime connects to the database, picks a lock backend and builds the syncer.
func NewRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	pool, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("Database connection established")

	rt := &Runtime{
		Pool:    pool,
		Store:   database.NewStore(pool),
		Metrics: metrics.New(),
		cfg:     cfg,
		logger:  logger,
	}

	var locker syncer.Locker
	locker, rt.redis = newLocker(ctx, cfg, logger)

	rt.Syncer = syncer.NewSyncer(
		rt.Store,
		SourceFactory(GithubOptions(cfg), logger, rt.Metrics),
		locker,
		logger,
		rt.Metrics,
		SyncerOptions(cfg),
	)
	return rt, nil
}

// Close releases the database pool and the Redis client.
func (rt *Runtime) Close() {
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
	rt.Pool.Close()
}

// GithubOptions maps configuration onto the upstream client settings.
func GithubOptions(cfg *config.Config) github.Options {
	return github.Options{
		BaseURL:        cfg.GithubAPIBaseURL,
		GraphQLURL:     cfg.GithubGraphQLURL,
		PageSize:       cfg.GithubPageSize,
		RESTTimeout:    cfg.RESTTimeout,
		SearchTimeout:  cfg.SearchTimeout,
		GraphQLTimeout: cfg.GraphQLTimeout,
	}
}

// SyncerOptions maps configuration onto the orchestrator settings.
func SyncerOptions(cfg *config.Config) syncer.Options {
	return syncer.Options{
		StandardLookbackDays: cfg.StandardLookbackDays,
		DeepLookbackDays:     cfg.DeepLookbackDays,
		LockTTL:              cfg.SyncLockTTL,
		Interval:             cfg.SyncInterval,
		Concurrency:          cfg.SyncConcurrency,
	}
}

// SourceFactory builds an upstream client per account token.
func SourceFactory(opts github.Options, logger *slog.Logger, m *metrics.Metrics) syncer.SourceFactory {
	return func(token string) (syncer.Source, error) {
		client, err := github.NewClient(token, opts, logger, m)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// newLocker uses Redis when REDIS_URL is set and reachable, and an in-process
// locker otherwise.
func newLocker(ctx context.Context, cfg *config.Config, logger *slog.Logger) (syncer.Locker, *redis.Client) {
	if cfg.RedisURL == "" {
		return syncer.NewMemoryLocker(), nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn("Invalid REDIS_URL; falling back to in-process sync locks", "error", err)
		return syncer.NewMemoryLocker(), nil
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		logger.Warn("Redis unreachable; falling back to in-process sync locks", "error", err)
		return syncer.NewMemoryLocker(), nil
	}

	logger.Info("Using Redis for sync locks", "addr", opts.Addr)
	return syncer.NewRedisLocker(client, logger), client
}

// BootstrapAccount resolves the identity behind token and stores it as an
// account, returning the stored row.
func (rt *Runtime) BootstrapAccount(ctx context.Context, token string) (database.Account, error) {
	client, err := github.NewClient(token, GithubOptions(rt.cfg), rt.logger, rt.Metrics)
	if err != nil {
		return database.Account{}, err
	}
	user, err := client.CurrentUser(ctx)
	if err != nil {
		return database.Account{}, fmt.Errorf("resolve token owner: %w", err)
	}
	return rt.Store.Queries().UpsertAccount(ctx, database.UpsertAccountParams{
		GithubID:    user.GithubID,
		Login:       user.Login,
		AccessToken: token,
	})
}

// RunMigrations applies every pending migration from path.
func RunMigrations(path, dbURL string) error {
	m, err := migrate.New(path, dbURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// SetLogLevel maps a LOG_LEVEL value onto the level variable.
func SetLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}
