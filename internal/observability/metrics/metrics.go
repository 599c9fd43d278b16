package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "internhub_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "internhub_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	applicationsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "internhub_applications_submitted_total",
		Help: "Count of application submissions by result",
	}, []string{"result"})

	applicationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "internhub_application_transitions_total",
		Help: "Count of application status transitions",
	}, []string{"from", "to", "result"})

	orgApprovals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "internhub_organization_approvals_total",
		Help: "Count of organization approval decisions",
	}, []string{"decision"})

	activeListings = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "internhub_active_listings",
		Help: "Number of active internship listings",
	})

	deadlineSweeps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "internhub_deadline_sweeps_total",
		Help: "Count of deadline worker sweeps by result",
	}, []string{"result"})

	messagesDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "internhub_messages_delivered_total",
		Help: "Count of realtime message deliveries by transport",
	}, []string{"transport"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveApplication records an application submission attempt
func ObserveApplication(result string) {
	applicationsSubmitted.WithLabelValues(result).Inc()
}

// ObserveTransition records an application status transition attempt
func ObserveTransition(from, to, result string) {
	applicationTransitions.WithLabelValues(from, to, result).Inc()
}

// ObserveApproval records an organization approval decision
func ObserveApproval(decision string) {
	orgApprovals.WithLabelValues(decision).Inc()
}

// SetActiveListings sets the active listing gauge
func SetActiveListings(count int) {
	if count < 0 {
		count = 0
	}
	activeListings.Set(float64(count))
}

// ObserveDeadlineSweep records a deadline worker pass
func ObserveDeadlineSweep(result string) {
	deadlineSweeps.WithLabelValues(result).Inc()
}

// ObserveMessageDelivered records a realtime fan-out delivery
func ObserveMessageDelivered(transport string) {
	messagesDelivered.WithLabelValues(transport).Inc()
}
