package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	ratingRunsTotal       *prometheus.CounterVec
	ratingDurationSeconds prometheus.Histogram
	sectionFailuresTotal  *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API and
// the rating pipeline.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "procura_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "procura_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "procura_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		ratingRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "procura_rating_runs_total",
			Help: "Total number of submission rating runs by final status.",
		}, []string{"status"})

		ratingDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "procura_rating_duration_seconds",
			Help:    "Duration of full submission rating runs.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		})

		sectionFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "procura_rating_section_failures_total",
			Help: "Total number of section rater failures.",
		}, []string{"section"})

		prometheus.MustRegister(apiRequestsTotal, apiLatencySeconds, apiErrorsTotal,
			ratingRunsTotal, ratingDurationSeconds, sectionFailuresTotal)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// RatingRuns exposes the counter for rating runs.
func RatingRuns() *prometheus.CounterVec {
	RegisterMetrics()
	return ratingRunsTotal
}

// RatingDuration exposes the rating run duration histogram.
func RatingDuration() prometheus.Histogram {
	RegisterMetrics()
	return ratingDurationSeconds
}

// SectionFailures exposes the counter for section rater failures.
func SectionFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return sectionFailuresTotal
}
