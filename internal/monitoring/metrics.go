package monitoring

import (
	"time"

	"github.com/joshua-takyi/eventhub/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventhub_http_requests_total",
			Help: "Total HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventhub_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	enrollmentOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventhub_enrollment_operations_total",
			Help: "Join and leave attempts by outcome",
		},
		[]string{"operation", "outcome"},
	)

	eventTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventhub_event_transitions_total",
			Help: "Event lifecycle changes",
		},
		[]string{"action"},
	)

	feedbackSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventhub_feedback_submitted_total",
			Help: "Feedback submissions by rating",
		},
		[]string{"rating"},
	)
)

func ObserveHTTP(method, route, status string, latency time.Duration) {
	httpRequests.WithLabelValues(method, route, status).Inc()
	httpDuration.WithLabelValues(method, route).Observe(latency.Seconds())
}

// TrackEnrollment records a join/leave attempt; err may be nil.
func TrackEnrollment(operation string, err error) {
	enrollmentOperations.WithLabelValues(operation, Outcome(err)).Inc()
}

func TrackTransition(action string) {
	eventTransitions.WithLabelValues(action).Inc()
}

func TrackFeedback(rating string) {
	feedbackSubmitted.WithLabelValues(rating).Inc()
}

// Outcome buckets an error into a low-cardinality label.
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	return models.ErrorCode(err)
}
