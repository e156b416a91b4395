package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vrp_http_requests_total",
		Help: "HTTP requests by path, method and status code.",
	}, []string{"path", "method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vrp_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	solvesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vrp_solves_total",
		Help: "Optimization runs by variant and outcome.",
	}, []string{"variant", "outcome"})

	solveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vrp_solve_duration_seconds",
		Help:    "End-to-end optimization run time.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 14),
	}, []string{"variant"})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vrp_queue_depth",
		Help: "Tasks waiting in the job queue.",
	})
)

func ObserveRequest(path, method string, status int, dur time.Duration) {
	httpRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(path).Observe(dur.Seconds())
}

func ObserveSolve(variant, outcome string, dur time.Duration) {
	solvesTotal.WithLabelValues(variant, outcome).Inc()
	solveDuration.WithLabelValues(variant).Observe(dur.Seconds())
}

func SetQueueDepth(n int64) { queueDepth.Set(float64(n)) }

// Handler exposes the default registry for scraping.
func Handler() http.Handler { return promhttp.Handler() }
