package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SchedulesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glarm_schedules_total",
		Help: "Alarm schedule attempts by outcome.",
	}, []string{"outcome"})

	CancelsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glarm_cancels_total",
		Help: "Pending request cancellations.",
	})

	NotificationsFired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glarm_notifications_fired_total",
		Help: "Geofence notifications delivered.",
	})

	ClassifyRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glarm_classify_runs_total",
		Help: "Browse-list classification derivations.",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glarm_http_requests_total",
		Help: "HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "glarm_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// Middleware records per-request counters and latency.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
