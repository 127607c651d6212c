package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Feedback struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID   primitive.ObjectID `bson:"event_id" json:"eventId"`
	AuthorID  uuid.UUID          `bson:"author_id" json:"authorId"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

type FeedbackInput struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"required"`
}

func (in *FeedbackInput) Validate() error {
	in.Comment = strings.TrimSpace(in.Comment)
	return ValidateStruct(in)
}

func (in *FeedbackInput) NewFeedback(eventID primitive.ObjectID, author uuid.UUID, now time.Time) *Feedback {
	return &Feedback{
		ID:        primitive.NewObjectID(),
		EventID:   eventID,
		AuthorID:  author,
		Rating:    in.Rating,
		Comment:   in.Comment,
		CreatedAt: now,
	}
}

// FeedbackSummary is the per-event rating breakdown.
type FeedbackSummary struct {
	EventID       primitive.ObjectID `json:"eventId"`
	TotalReviews  int                `json:"totalReviews"`
	AverageRating float64            `json:"averageRating"`
	// Distribution maps a star rating (1-5) to the number of reviews.
	Distribution map[int]int `json:"distribution"`
}
