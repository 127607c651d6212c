package models

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const FeedbackColName = "feedback"

type FeedbackRepo interface {
	CreateFeedback(ctx context.Context, feedback *Feedback) (*Feedback, error)
	DeleteFeedback(ctx context.Context, id primitive.ObjectID) error
	ListFeedbackByEvent(ctx context.Context, eventID primitive.ObjectID) ([]*Feedback, error)
	DeleteFeedbackByEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error)
	FeedbackSummary(ctx context.Context, eventID primitive.ObjectID) (*FeedbackSummary, error)
}

func (mdb *MongodbRepo) CreateFeedback(ctx context.Context, feedback *Feedback) (*Feedback, error) {
	col, err := mdb.GetCollection(ctx, FeedbackColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	if feedback.ID.IsZero() {
		feedback.ID = primitive.NewObjectID()
	}
	if _, err := col.InsertOne(ctx, feedback); err != nil {
		return nil, fmt.Errorf("failed to insert feedback: %w", err)
	}
	return feedback, nil
}

func (mdb *MongodbRepo) DeleteFeedback(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, FeedbackColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	if _, err := col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) ListFeedbackByEvent(ctx context.Context, eventID primitive.ObjectID) ([]*Feedback, error) {
	col, err := mdb.GetCollection(ctx, FeedbackColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := col.Find(ctx, bson.M{"event_id": eventID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding feedback: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []*Feedback{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("error decoding feedback: %w", err)
	}
	return entries, nil
}

func (mdb *MongodbRepo) DeleteFeedbackByEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	col, err := mdb.GetCollection(ctx, FeedbackColName)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %w", err)
	}
	res, err := col.DeleteMany(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete feedback for event: %w", err)
	}
	return res.DeletedCount, nil
}

// FeedbackSummary aggregates the rating distribution server-side.
func (mdb *MongodbRepo) FeedbackSummary(ctx context.Context, eventID primitive.ObjectID) (*FeedbackSummary, error) {
	col, err := mdb.GetCollection(ctx, FeedbackColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"event_id": eventID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$rating",
			"count": bson.M{"$sum": 1},
		}}},
	}
	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("error aggregating feedback: %w", err)
	}
	defer cursor.Close(ctx)

	var buckets []struct {
		Rating int `bson:"_id"`
		Count  int `bson:"count"`
	}
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, fmt.Errorf("error decoding feedback summary: %w", err)
	}

	summary := &FeedbackSummary{
		EventID:      eventID,
		Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
	sum := 0
	for _, b := range buckets {
		summary.Distribution[b.Rating] = b.Count
		summary.TotalReviews += b.Count
		sum += b.Rating * b.Count
	}
	if summary.TotalReviews > 0 {
		summary.AverageRating = float64(sum) / float64(summary.TotalReviews)
	}
	return summary, nil
}
