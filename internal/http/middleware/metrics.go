package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by endpoint",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
	epochResets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "epoch_resets_total",
			Help: "Total epoch resets performed per game",
		},
		[]string{"game"},
	)
	rlBlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_blocked_total",
			Help: "Total requests blocked by the rate limiter",
		},
		[]string{"endpoint"},
	)
)

func init() {
	prometheus.MustRegister(httpRequests, httpDuration, epochResets, rlBlocked)
}

// CountReset increments the per-game reset counter; handlers call it when
// a request triggered an epoch rollover.
func CountReset(game string) { epochResets.WithLabelValues(game).Inc() }

// Metrics records request counts and latency per endpoint.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		httpRequests.WithLabelValues(endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}
