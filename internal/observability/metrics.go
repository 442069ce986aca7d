package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	decisionsTotal        *prometheus.CounterVec
	driftCorrectionsTotal prometheus.Counter
	leaderboardCacheTotal *prometheus.CounterVec
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		decisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "verification_decisions_total",
			Help: "Total number of faculty decisions recorded.",
		}, []string{"decision"})

		driftCorrectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "points_drift_corrections_total",
			Help: "Total number of points cache rows corrected by reconciliation.",
		})

		leaderboardCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leaderboard_cache_events_total",
			Help: "Leaderboard response cache hits and misses.",
		}, []string{"result"})

		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		prometheus.MustRegister(decisionsTotal, driftCorrectionsTotal, leaderboardCacheTotal, apiRequestsTotal, apiLatencySeconds)
	})
}

// Decisions exposes the counter for recorded decisions.
func Decisions() *prometheus.CounterVec {
	RegisterMetrics()
	return decisionsTotal
}

// DriftCorrections exposes the counter for corrected cache rows.
func DriftCorrections() prometheus.Counter {
	RegisterMetrics()
	return driftCorrectionsTotal
}

// LeaderboardCache exposes the leaderboard cache hit/miss counter.
func LeaderboardCache() *prometheus.CounterVec {
	RegisterMetrics()
	return leaderboardCacheTotal
}

// APIRequests exposes the counter for served requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for served requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}
