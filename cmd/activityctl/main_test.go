package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github-activity-sync/internal/database"
	"github-activity-sync/internal/model"
	"github-activity-sync/internal/syncer"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestBuildSyncRequest(t *testing.T) {
	t.Run("explicit range in deep mode", func(t *testing.T) {
		req, err := buildSyncRequest("deep", "2025-01-01", "2025-02-01", 0)
		require.NoError(t, err)

		assert.Equal(t, model.ModeDeep, req.Mode)
		require.NotNil(t, req.From)
		require.NotNil(t, req.To)
		assert.Equal(t, mustDate(t, "2025-01-01"), *req.From)
		assert.Equal(t, mustDate(t, "2025-02-01"), *req.To)
	})

	t.Run("lookback only", func(t *testing.T) {
		req, err := buildSyncRequest("standard", "", "", 7)
		require.NoError(t, err)

		assert.Nil(t, req.From)
		assert.Nil(t, req.To)
		assert.Equal(t, 7, req.LookbackDays)
	})

	for name, args := range map[string][]string{
		"unknown mode": {"turbo", "", ""},
		"bad from":     {"standard", "01/02/2025", ""},
		"bad to":       {"standard", "", "2025-02-30"},
	} {
		t.Run("rejects "+name, func(t *testing.T) {
			_, err := buildSyncRequest(args[0], args[1], args[2], 0)
			assert.Error(t, err)
		})
	}

	t.Run("rejects negative lookback", func(t *testing.T) {
		_, err := buildSyncRequest("standard", "", "", -1)
		assert.Error(t, err)
	})

	t.Run("rejects lookback with an explicit start", func(t *testing.T) {
		_, err := buildSyncRequest("standard", "2025-01-01", "", 14)
		assert.Error(t, err)
	})
}

func TestStatsRange(t *testing.T) {
	now := time.Date(2025, 3, 31, 18, 30, 0, 0, time.UTC)

	start, end, err := statsRange("", "", 30, now)
	require.NoError(t, err)
	assert.Equal(t, mustDate(t, "2025-03-01"), start)
	assert.Equal(t, mustDate(t, "2025-03-31"), end)

	start, end, err = statsRange("2024-12-01", "2024-12-31", 30, now)
	require.NoError(t, err)
	assert.Equal(t, mustDate(t, "2024-12-01"), start)
	assert.Equal(t, mustDate(t, "2024-12-31"), end)

	_, _, err = statsRange("2025-02-01", "2025-01-01", 30, now)
	assert.Error(t, err)
}

func TestWriteStats(t *testing.T) {
	rows := toStatRows([]database.GithubDailyStat{
		{Date: pgtype.Date{Time: mustDate(t, "2025-01-05"), Valid: true}, CommitCount: 3, PrCount: 1},
		{Date: pgtype.Date{Time: mustDate(t, "2025-01-06"), Valid: true}, CommitCount: 2, IssueCount: 4, StarDelta: 1},
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		writeStatsTable(&buf, rows)

		out := buf.String()
		assert.Contains(t, out, "2025-01-05")
		assert.Contains(t, out, "2025-01-06")
		assert.Contains(t, out, "COMMITS")
		assert.Contains(t, out, "5")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeStatsJSON(&buf, rows))

		var decoded []statRow
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, rows, decoded)
		assert.Contains(t, buf.String(), `"commit_count": 3`)
	})

	t.Run("empty json is an array", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeStatsJSON(&buf, toStatRows(nil)))
		assert.JSONEq(t, `[]`, buf.String())
	})
}

func TestWriteSummaryAndRepos(t *testing.T) {
	var buf bytes.Buffer
	writeSummary(&buf, &syncer.Summary{
		Repositories: 12,
		StatsUpdated: 40,
		Window:       model.SyncWindow{Start: mustDate(t, "2025-01-01"), End: mustDate(t, "2025-02-01"), Mode: model.ModeDeep},
	})
	assert.Contains(t, buf.String(), "2025-01-01..2025-02-01")
	assert.Contains(t, buf.String(), "deep")
	assert.Contains(t, buf.String(), "40")

	buf.Reset()
	writeReposTable(&buf, []database.GithubRepo{
		{FullName: "octo/alpha", Language: pgtype.Text{String: "Go", Valid: true}, HtmlUrl: "https://github.com/octo/alpha"},
		{FullName: "octo/beta", Private: true},
	})
	assert.Contains(t, buf.String(), "octo/alpha")
	assert.Contains(t, buf.String(), "Go")
	assert.Contains(t, buf.String(), "true")
}
