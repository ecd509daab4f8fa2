package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestsTotal counts API requests.
	// Labels: method, route (the gin route pattern), status
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookgrid",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by route and status",
	}, []string{"method", "route", "status"})

	// requestDuration measures handler latency.
	// Labels: method, route
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bookgrid",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "route"})

	// libraryBooks is the size of the canonical collection.
	libraryBooks = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "bookgrid",
		Subsystem: "library",
		Name:      "books",
		Help:      "Number of books in the loaded catalog",
	})

	// filteredBooks is the size of the current filtered view.
	filteredBooks = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "bookgrid",
		Subsystem: "library",
		Name:      "filtered_books",
		Help:      "Number of books matching the current search and language filter",
	})
)

// metricsMiddleware records request counts and latency per route pattern.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		requestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
