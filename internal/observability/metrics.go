package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	httpErrorsTotal       *prometheus.CounterVec
	submissionsTotal      *prometheus.CounterVec
	gradingLatencySeconds prometheus.Histogram
	reportsSentTotal      *prometheus.CounterVec
	analyticsCacheTotal   *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quiz_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_submissions_total",
			Help: "Quiz submissions recorded, split by manual versus timer driven.",
		}, []string{"mode"})

		gradingLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quiz_grading_latency_seconds",
			Help:    "Time spent grading a submission against its answer key.",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		})

		reportsSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_reports_sent_total",
			Help: "Result reports dispatched, split by delivery outcome.",
		}, []string{"outcome"})

		analyticsCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_analytics_cache_total",
			Help: "Analytics cache lookups, split by hit or miss.",
		}, []string{"result"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			submissionsTotal,
			gradingLatencySeconds,
			reportsSentTotal,
			analyticsCacheTotal,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// Submissions exposes the submission counter.
func Submissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// GradingLatency exposes the grading latency histogram.
func GradingLatency() prometheus.Histogram {
	RegisterMetrics()
	return gradingLatencySeconds
}

// ReportsSent exposes the report delivery counter.
func ReportsSent() *prometheus.CounterVec {
	RegisterMetrics()
	return reportsSentTotal
}

// AnalyticsCache exposes the analytics cache lookup counter.
func AnalyticsCache() *prometheus.CounterVec {
	RegisterMetrics()
	return analyticsCacheTotal
}
