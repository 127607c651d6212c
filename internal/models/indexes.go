package models

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes every collection relies on. Safe to call
// on every startup.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		UsersColName: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("email_unique"),
			},
		},
		EventsColName: {
			// listings filter by status and sort by date
			{
				Keys: bson.D{
					{Key: "status", Value: 1},
					{Key: "date", Value: 1},
				},
				Options: options.Index().SetName("status_date_idx"),
			},
			{
				Keys:    bson.D{{Key: "created_by", Value: 1}},
				Options: options.Index().SetName("created_by_idx"),
			},
			{
				Keys:    bson.D{{Key: "participants", Value: 1}},
				Options: options.Index().SetName("participants_idx"),
			},
		},
		FeedbackColName: {
			{
				Keys: bson.D{
					{Key: "event_id", Value: 1},
					{Key: "created_at", Value: -1},
				},
				Options: options.Index().SetName("event_created_at_idx"),
			},
		},
	}

	for colName, idx := range indexes {
		col, err := mdb.GetCollection(ctx, colName)
		if err != nil {
			return fmt.Errorf("error getting collection: %w", err)
		}
		if _, err := col.Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("error creating indexes on %s: %w", colName, err)
		}
	}
	return nil
}
