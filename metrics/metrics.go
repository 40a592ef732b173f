package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status_code"},
	)

	// Business metrics
	contactSubmissionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Total number of contact form submissions",
		},
	)

	magicLinksIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "magic_links_issued_total",
			Help: "Total number of magic login links issued",
		},
	)

	magicLinksConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "magic_links_consumed_total",
			Help: "Total number of magic link consumption attempts",
		},
		[]string{"status"}, // success, failure
	)

	authAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of password authentication attempts",
		},
		[]string{"status"},
	)

	mailDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mail_deliveries_total",
			Help: "Total number of outbound email delivery attempts",
		},
		[]string{"status"},
	)
)

// Middleware records request counts and latencies per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.FullPath() == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, endpoint, status).Observe(time.Since(start).Seconds())
	}
}

// RecordContactSubmission records a new contact form submission
func RecordContactSubmission() {
	contactSubmissionsTotal.Inc()
}

// RecordMagicLinkIssued records a magic link issuance
func RecordMagicLinkIssued() {
	magicLinksIssuedTotal.Inc()
}

// RecordMagicLinkConsumed records a magic link consumption attempt
func RecordMagicLinkConsumed(success bool) {
	magicLinksConsumedTotal.WithLabelValues(statusLabel(success)).Inc()
}

// RecordAuthAttempt records a password authentication attempt
func RecordAuthAttempt(success bool) {
	authAttemptsTotal.WithLabelValues(statusLabel(success)).Inc()
}

// RecordMailDelivery records an outbound email delivery attempt
func RecordMailDelivery(success bool) {
	mailDeliveriesTotal.WithLabelValues(statusLabel(success)).Inc()
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
