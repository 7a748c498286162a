//go:build integration

// cmd/service/integration_test.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github-activity-sync/internal/api"
	"github-activity-sync/internal/app"
	"github-activity-sync/internal/database"
	"github-activity-sync/internal/github"
	"github-activity-sync/internal/metrics"
	"github-activity-sync/internal/model"
	"github-activity-sync/internal/syncer"
)

func setupTestDatabase(ctx context.Context, t *testing.T) (*pgxpool.Pool, func()) {
	// Start a postgres container
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test-db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	// Get the connection string
	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Run migrations
	require.NoError(t, app.RunMigrations("file://../../migrations", connStr))

	// Create a connection pool
	dbpool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	// Teardown function to be called by the test
	teardown := func() {
		dbpool.Close()
		err := pgContainer.Terminate(ctx)
		require.NoError(t, err)
	}

	return dbpool, teardown
}

// fakeGitHub serves the REST and GraphQL endpoints a sync touches.
func fakeGitHub(t *testing.T, repoName string) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"id": 4242, "login": "octo"}`)
	})
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[{"id": 123, "name": %q, "full_name": "octo/%s", "language": "Go", "html_url": "https://github.com/octo/%s"}]`, repoName, repoName, repoName)
	})
	mux.HandleFunc("/users/octo/events", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `[
			{"type": "PushEvent", "created_at": "2025-01-06T10:00:00Z", "payload": {"commits": [{"sha": "a"}, {"sha": "b"}]}},
			{"type": "PushEvent", "created_at": "2025-01-05T12:00:00Z", "payload": {"commits": []}},
			{"type": "PullRequestEvent", "created_at": "2025-01-05T11:00:00Z", "payload": {"action": "opened"}},
			{"type": "WatchEvent", "created_at": "2024-12-01T00:00:00Z", "payload": {}}
		]`)
	})
	mux.HandleFunc("/search/commits", func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Query().Get("q"), "2025-01-01..") {
			fmt.Fprintln(w, `{"items": [{"commit": {"author": {"date": "2025-01-06T10:00:00Z"}}}]}`)
			return
		}
		fmt.Fprintln(w, `{"items": []}`)
	})
	mux.HandleFunc("/search/issues", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"items": []}`)
	})
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"data": {"repository": {"stargazers": {"pageInfo": {"hasNextPage": false}, "edges": [{"starredAt": "2024-12-31T08:00:00Z"}]}}}}`)
	})
	return httptest.NewServer(mux)
}

func TestSyncer_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	dbpool, teardown := setupTestDatabase(ctx, t)
	defer teardown()

	server := fakeGitHub(t, "hello")
	defer server.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m := metrics.New()
	store := database.NewStore(dbpool)
	ghOpts := github.Options{BaseURL: server.URL, GraphQLURL: server.URL + "/graphql", PageSize: 100}

	account, err := store.Queries().UpsertAccount(ctx, database.UpsertAccountParams{GithubID: 4242, Login: "octo", AccessToken: "gho_test"})
	require.NoError(t, err)

	appSyncer := syncer.NewSyncer(store, app.SourceFactory(ghOpts, logger, m), syncer.NewMemoryLocker(), logger, m, syncer.Options{
		StandardLookbackDays: 90,
		DeepLookbackDays:     365,
		LockTTL:              time.Minute,
		Now:                  func() time.Time { return time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC) },
	})

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	// --- ACT ---
	// Two identical standard syncs must leave identical rows behind.
	for i := 0; i < 2; i++ {
		summary, err := appSyncer.Sync(ctx, account.ID, syncer.SyncRequest{From: &from, To: &to})
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Repositories)
		assert.Equal(t, 2, summary.StatsUpdated)
	}

	// --- ASSERT ---
	q := store.Queries()
	repos, err := q.ListRepositoriesByAccount(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, int64(123), repos[0].RepoID)
	assert.Equal(t, "Go", repos[0].Language.String)

	stats, err := q.ListDailyStats(ctx, database.ListDailyStatsParams{
		AccountID: account.ID,
		FromDate:  database.Date(from),
		ToDate:    database.Date(to),
	})
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "2025-01-05", model.FormatDate(stats[0].Date.Time))
	assert.Equal(t, int32(1), stats[0].CommitCount)
	assert.Equal(t, int32(1), stats[0].PrCount)
	assert.Equal(t, "2025-01-06", model.FormatDate(stats[1].Date.Time))
	assert.Equal(t, int32(2), stats[1].CommitCount)

	// A deep sync over the same days overwrites with per-hit counts.
	deepFrom := time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)
	summary, err := appSyncer.Sync(ctx, account.ID, syncer.SyncRequest{From: &deepFrom, To: &to, Mode: model.ModeDeep})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.StatsUpdated)

	day, err := q.GetDailyStat(ctx, database.GetDailyStatParams{AccountID: account.ID, Date: database.Date(time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC))})
	require.NoError(t, err)
	assert.Equal(t, int32(1), day.CommitCount)
	star, err := q.GetDailyStat(ctx, database.GetDailyStatParams{AccountID: account.ID, Date: database.Date(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))})
	require.NoError(t, err)
	assert.Equal(t, int32(1), star.StarDelta)

	// The read API serves what the sync stored.
	router := api.NewRouter(q, appSyncer, m, logger, api.Options{StatsQueryDays: 30, Now: func() time.Time { return to }})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/accounts/%d/stats/daily", account.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Total)
}
