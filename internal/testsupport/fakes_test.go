package testsupport

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/eventhub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFeedbackSummary(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	eventID := primitive.NewObjectID()

	empty, err := store.FeedbackSummary(ctx, eventID)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalReviews)
	assert.Zero(t, empty.AverageRating)
	assert.Len(t, empty.Distribution, 5)

	for _, r := range []int{5, 5, 2} {
		in := models.FeedbackInput{Rating: r, Comment: fmt.Sprint(r)}
		_, err := store.CreateFeedback(ctx, in.NewFeedback(eventID, uuid.New(), time.Now()))
		require.NoError(t, err)
	}

	summary, err := store.FeedbackSummary(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalReviews)
	assert.InDelta(t, 4.0, summary.AverageRating, 1e-9)
	assert.Equal(t, 2, summary.Distribution[5])
	assert.Equal(t, 1, summary.Distribution[2])
}
