package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Auth metrics

	AuthAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "writer",
		Name:      "auth_attempts_total",
		Help:      "Authentication attempts, by flow and outcome.",
	}, []string{"flow", "outcome"})

	SessionRejectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "writer",
		Name:      "session_rejections_total",
		Help:      "Requests rejected by the session resolver, by reason.",
	}, []string{"reason"})

	// Generation metrics

	DraftGenerationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "writer",
		Name:      "draft_generation_duration_seconds",
		Help:      "Latency of model calls for draft generation.",
		Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 20, 30, 60},
	}, []string{"outcome"})

	RateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "writer",
		Name:      "rate_limited_total",
		Help:      "Requests denied by a rate limiter.",
	}, []string{"route"})

	// Maintenance

	JanitorSweptTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "writer",
		Name:      "janitor_swept_total",
		Help:      "Expired in-memory entries removed by the janitor.",
	}, []string{"store"})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "writer",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "writer",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})

	HTTPInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "writer",
		Name:      "http_requests_in_flight",
		Help:      "Requests currently being served.",
	})
)

func Register() {
	prometheus.MustRegister(
		AuthAttemptsTotal,
		SessionRejectionsTotal,
		DraftGenerationDuration,
		RateLimitedTotal,
		JanitorSweptTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
		HTTPInFlight,
	)
}

func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{Addr: addr, Handler: mux}
}
