package monitoring

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/joshua-takyi/eventhub/internal/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", Outcome(nil))
	assert.Equal(t, "capacity_exceeded", Outcome(models.ErrCapacityExceeded))
	assert.Equal(t, "not_found", Outcome(fmt.Errorf("%w: event", models.ErrNotFound)))
	assert.Equal(t, "internal_error", Outcome(errors.New("boom")))
}

func TestTrackEnrollment(t *testing.T) {
	joined := enrollmentOperations.WithLabelValues("join", "success")
	full := enrollmentOperations.WithLabelValues("join", "capacity_exceeded")
	beforeJoined, beforeFull := testutil.ToFloat64(joined), testutil.ToFloat64(full)

	TrackEnrollment("join", nil)
	TrackEnrollment("join", nil)
	TrackEnrollment("join", models.ErrCapacityExceeded)

	assert.Equal(t, beforeJoined+2, testutil.ToFloat64(joined))
	assert.Equal(t, beforeFull+1, testutil.ToFloat64(full))
}

func TestObserveHTTP(t *testing.T) {
	counter := httpRequests.WithLabelValues("POST", "/api/v1/events/:id/join", "409")
	before := testutil.ToFloat64(counter)

	ObserveHTTP("POST", "/api/v1/events/:id/join", "409", 25*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestTrackFeedbackAndTransitions(t *testing.T) {
	five := feedbackSubmitted.WithLabelValues("5")
	approved := eventTransitions.WithLabelValues("approved")
	beforeFive, beforeApproved := testutil.ToFloat64(five), testutil.ToFloat64(approved)

	TrackFeedback("5")
	TrackTransition("approved")

	assert.Equal(t, beforeFive+1, testutil.ToFloat64(five))
	assert.Equal(t, beforeApproved+1, testutil.ToFloat64(approved))
}
