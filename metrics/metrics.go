package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	gatewayRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "postboard",
		Name:      "gateway_requests_total",
		Help:      "Calls made to the remote post API, by operation and outcome.",
	}, []string{"op", "outcome"})

	gatewayDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "postboard",
		Name:      "gateway_request_duration_seconds",
		Help:      "Latency of calls to the remote post API.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	pageViews = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "postboard",
		Name:      "page_views_total",
		Help:      "Successful page renders, by route.",
	}, []string{"route"})

	liveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "postboard",
		Name:      "live_sessions",
		Help:      "Browser sessions currently tracked.",
	})
)

// Registry returns a registry holding the runtime collectors and ours.
func Registry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		gatewayRequests,
		gatewayDuration,
		pageViews,
		liveSessions,
	)
	return registry
}

// ObserveGateway records one remote call.
func ObserveGateway(op, outcome string, seconds float64) {
	gatewayRequests.WithLabelValues(op, outcome).Inc()
	gatewayDuration.WithLabelValues(op).Observe(seconds)
}

// IncPageView counts a rendered page.
func IncPageView(route string) {
	pageViews.WithLabelValues(route).Inc()
}

// SetLiveSessions reports the current session count.
func SetLiveSessions(n int) {
	liveSessions.Set(float64(n))
}

// PageViews exposes the page view counter for inspection.
func PageViews() *prometheus.CounterVec {
	return pageViews
}
