package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the feedback service.
type Metrics struct {
	FeedbackSubmissions *prometheus.CounterVec   // labels: outcome={success,invalid,error}
	AdminLogins         *prometheus.CounterVec   // labels: outcome={success,invalid,bad_request,throttled}
	WeatherRequests     *prometheus.CounterVec   // labels: method={current,hourly}, outcome={success,error}
	WeatherCache        *prometheus.CounterVec   // labels: result={hit,miss}
	HTTPRequestDuration *prometheus.HistogramVec // labels: route, method, status
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FeedbackSubmissions,
		m.AdminLogins,
		m.WeatherRequests,
		m.WeatherCache,
		m.HTTPRequestDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests can
// build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FeedbackSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clima",
			Name:      "feedback_submissions_total",
			Help:      "Feedback submissions by outcome.",
		}, []string{"outcome"}),
		AdminLogins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clima",
			Name:      "admin_logins_total",
			Help:      "Admin login attempts by outcome.",
		}, []string{"outcome"}),
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clima",
			Name:      "weather_requests_total",
			Help:      "Weather provider requests by method and outcome.",
		}, []string{"method", "outcome"}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clima",
			Name:      "weather_cache_total",
			Help:      "Weather cache lookups by result.",
		}, []string{"result"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clima",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by route pattern, method and status.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"route", "method", "status"}),
	}
}
