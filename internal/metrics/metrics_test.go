package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := New()

	m.ObserveUpstream("user_repos", nil)
	m.ObserveUpstream("user_repos", errors.New("boom"))
	m.ObserveSync("deep", nil, 3*time.Second)
	m.ObserveSync("deep", errors.New("boom"), time.Second)
	m.AddDailyStatsWritten(4)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("user_repos", OutcomeSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("user_repos", OutcomeError)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SyncRuns.WithLabelValues("deep", OutcomeSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SyncRuns.WithLabelValues("deep", OutcomeError)))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.DailyStatsWritten))
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveUpstream("user", nil)
		m.ObserveSync("standard", nil, time.Second)
		m.AddDailyStatsWritten(1)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.AddDailyStatsWritten(2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "activity_sync_daily_stats_written_total 2")
}
