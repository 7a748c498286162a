package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "activity_sync"

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics holds the collectors recorded by the syncer and the GitHub client.
type Metrics struct {
	registry *prometheus.Registry

	SyncRuns          *prometheus.CounterVec
	SyncDuration      *prometheus.HistogramVec
	UpstreamRequests  *prometheus.CounterVec
	DailyStatsWritten prometheus.Counter
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SyncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed sync invocations by mode and outcome.",
		}, []string{"mode", "outcome"}),
		SyncDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "duration_seconds",
			Help:      "Wall time of a sync invocation.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}, []string{"mode"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "GitHub API calls by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		DailyStatsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "daily_stats_written_total",
			Help:      "Daily stat rows created or overwritten.",
		}),
	}
	m.registry.MustRegister(m.SyncRuns, m.SyncDuration, m.UpstreamRequests, m.DailyStatsWritten)
	return m
}

// Handler renders the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// ObserveUpstream counts one upstream call. A nil receiver records nothing.
func (m *Metrics) ObserveUpstream(endpoint string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
}

// ObserveSync records one finished sync invocation. A nil receiver records nothing.
func (m *Metrics) ObserveSync(mode string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.SyncRuns.WithLabelValues(mode, outcome).Inc()
	m.SyncDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// AddDailyStatsWritten counts created or overwritten daily stat rows.
func (m *Metrics) AddDailyStatsWritten(n int) {
	if m == nil {
		return
	}
	m.DailyStatsWritten.Add(float64(n))
}
