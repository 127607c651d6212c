package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedbackInputValidate(t *testing.T) {
	for _, rating := range []int{1, 3, 5} {
		in := FeedbackInput{Rating: rating, Comment: " nice "}
		require.NoError(t, in.Validate())
		assert.Equal(t, "nice", in.Comment)
	}

	for _, rating := range []int{0, 6} {
		in := FeedbackInput{Rating: rating, Comment: "ok"}
		err := in.Validate()
		require.ErrorIs(t, err, ErrValidation, "rating %d", rating)
		assert.Contains(t, err.Error(), "rating")
	}

	err := (&FeedbackInput{Rating: 4}).Validate()
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "comment is required")
}
