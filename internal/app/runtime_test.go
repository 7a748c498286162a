package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github-activity-sync/internal/config"
	"github-activity-sync/internal/syncer"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("in-process without REDIS_URL", func(t *testing.T) {
		locker, client := newLocker(ctx, &config.Config{}, discardLogger())

		assert.IsType(t, &syncer.MemoryLocker{}, locker)
		assert.Nil(t, client)
	})

	t.Run("redis when reachable", func(t *testing.T) {
		mr := miniredis.RunT(t)

		locker, client := newLocker(ctx, &config.Config{RedisURL: "redis://" + mr.Addr() + "/0"}, discardLogger())
		require.NotNil(t, client)
		defer client.Close()

		assert.IsType(t, &syncer.RedisLocker{}, locker)
		release, err := locker.Acquire(ctx, "account:1", time.Minute)
		require.NoError(t, err)
		assert.True(t, mr.Exists("activity-sync:lock:account:1"))
		release()
	})

	t.Run("falls back when redis is down", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		locker, client := newLocker(ctx, &config.Config{RedisURL: "redis://" + addr}, discardLogger())

		assert.IsType(t, &syncer.MemoryLocker{}, locker)
		assert.Nil(t, client)
	})

	t.Run("falls back on a malformed url", func(t *testing.T) {
		locker, client := newLocker(ctx, &config.Config{RedisURL: "http://not-redis"}, discardLogger())

		assert.IsType(t, &syncer.MemoryLocker{}, locker)
		assert.Nil(t, client)
	})
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{
		GithubAPIBaseURL:     "https://ghe.example.com/api/v3/",
		GithubGraphQLURL:     "https://ghe.example.com/api/graphql",
		GithubPageSize:       50,
		RESTTimeout:          time.Second,
		SearchTimeout:        2 * time.Second,
		GraphQLTimeout:       3 * time.Second,
		StandardLookbackDays: 14,
		DeepLookbackDays:     200,
		SyncLockTTL:          time.Minute,
		SyncInterval:         time.Hour,
		SyncConcurrency:      3,
	}

	gh := GithubOptions(cfg)
	assert.Equal(t, "https://ghe.example.com/api/v3/", gh.BaseURL)
	assert.Equal(t, 50, gh.PageSize)
	assert.Equal(t, 3*time.Second, gh.GraphQLTimeout)

	so := SyncerOptions(cfg)
	assert.Equal(t, 14, so.StandardLookbackDays)
	assert.Equal(t, 200, so.DeepLookbackDays)
	assert.Equal(t, 3, so.Concurrency)
	assert.Equal(t, time.Hour, so.Interval)

	src, err := SourceFactory(gh, discardLogger(), nil)("token")
	require.NoError(t, err)
	assert.NotNil(t, src)
}

func TestSetLogLevel(t *testing.T) {
	var v slog.LevelVar
	for level, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	} {
		SetLogLevel(level, &v)
		assert.Equal(t, want, v.Level(), level)
	}
}
