package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const EventsColName = "events"

type EventRepo interface {
	CreateEvent(ctx context.Context, event *Event) (*Event, error)
	GetEventByID(ctx context.Context, id primitive.ObjectID) (*Event, error)
	ListEvents(ctx context.Context, query EventQuery) ([]*Event, error)
	UpdateEvent(ctx context.Context, id primitive.ObjectID, in *UpdateEventInput) (*Event, error)
	// TransitionStatus moves the event to `to` if its current status is one of
	// from. An event already in `to` is returned unchanged with changed=false.
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from []EventStatus, to EventStatus) (event *Event, changed bool, err error)
	DeleteEvent(ctx context.Context, id primitive.ObjectID) error
	// AddParticipant appends userID only if the event is approved, userID is
	// absent and the event has a free slot, as a single atomic update.
	AddParticipant(ctx context.Context, id primitive.ObjectID, userID uuid.UUID) (*Event, error)
	RemoveParticipant(ctx context.Context, id primitive.ObjectID, userID uuid.UUID) (*Event, error)
	// AdjustRating adds ratingDelta/countDelta to the event's feedback
	// aggregate and recomputes the average in the same update.
	AdjustRating(ctx context.Context, id primitive.ObjectID, ratingDelta, countDelta int) (*Event, error)
}

// EventFilter translates q into a Mongo filter selecting the same events as q.Matches.
func EventFilter(q EventQuery) bson.M {
	filter := bson.M{}
	if len(q.Statuses) > 0 {
		filter["status"] = bson.M{"$in": q.Statuses}
	}
	if q.CreatedBy != uuid.Nil {
		filter["created_by"] = q.CreatedBy
	}
	if q.Participant != uuid.Nil {
		filter["participants"] = q.Participant
	}
	if q.VisibleTo != uuid.Nil {
		filter["$or"] = bson.A{
			bson.M{"status": EventStatusApproved},
			bson.M{"created_by": q.VisibleTo},
		}
	}
	if q.OnlyOpen {
		filter["$expr"] = bson.M{"$lt": bson.A{bson.M{"$size": "$participants"}, "$capacity"}}
	}
	return filter
}

// JoinFilter matches id only while userID may still take a slot in it.
func JoinFilter(id primitive.ObjectID, userID uuid.UUID) bson.M {
	return bson.M{
		"_id":          id,
		"status":       EventStatusApproved,
		"participants": bson.M{"$ne": userID},
		"$expr":        bson.M{"$lt": bson.A{bson.M{"$size": "$participants"}, "$capacity"}},
	}
}

// UpdateFilter matches id, and when the update changes capacity, only while
// the new capacity still holds every current participant.
func UpdateFilter(id primitive.ObjectID, in *UpdateEventInput) bson.M {
	filter := bson.M{"_id": id}
	if in.Capacity != nil {
		filter["$expr"] = bson.M{"$lte": bson.A{bson.M{"$size": "$participants"}, *in.Capacity}}
	}
	return filter
}

func TransitionFilter(id primitive.ObjectID, from []EventStatus) bson.M {
	return bson.M{"_id": id, "status": bson.M{"$in": from}}
}

// updateEventSet builds the $set document for a partial update.
func updateEventSet(in *UpdateEventInput, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if in.Title != nil {
		set["title"] = *in.Title
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.Venue != nil {
		set["venue"] = *in.Venue
	}
	if in.Date != nil {
		set["date"] = *in.Date
	}
	if in.Time != nil {
		set["time"] = *in.Time
	}
	if in.TypeOfEvent != nil {
		set["type_of_event"] = *in.TypeOfEvent
	}
	if in.Duration != nil {
		set["duration"] = *in.Duration
	}
	if in.Capacity != nil {
		set["capacity"] = *in.Capacity
	}
	if in.Reminders != nil {
		set["reminders"] = *in.Reminders
	}
	if in.Image != nil {
		set["image"] = *in.Image
	}
	return set
}

func (mdb *MongodbRepo) CreateEvent(ctx context.Context, event *Event) (*Event, error) {
	col, err := mdb.GetCollection(ctx, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Participants == nil {
		event.Participants = []uuid.UUID{}
	}
	if event.Reminders == nil {
		event.Reminders = []string{}
	}
	if _, err := col.InsertOne(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}
	return event, nil
}

func (mdb *MongodbRepo) GetEventByID(ctx context.Context, id primitive.ObjectID) (*Event, error) {
	col, err := mdb.GetCollection(ctx, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	var event Event
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: event %s", ErrNotFound, id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("error finding event: %w", err)
	}
	return &event, nil
}

func (mdb *MongodbRepo) ListEvents(ctx context.Context, query EventQuery) ([]*Event, error) {
	col, err := mdb.GetCollection(ctx, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "date", Value: 1},
		{Key: "created_at", Value: 1},
	})
	cursor, err := col.Find(ctx, EventFilter(query), opts)
	if err != nil {
		return nil, fmt.Errorf("error finding events: %w", err)
	}
	defer cursor.Close(ctx)

	events := []*Event{}
	for cursor.Next(ctx) {
		var event Event
		if err := cursor.Decode(&event); err != nil {
			return nil, fmt.Errorf("error decoding event: %w", err)
		}
		events = append(events, &event)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return events, nil
}

func (mdb *MongodbRepo) UpdateEvent(ctx context.Context, id primitive.ObjectID, in *UpdateEventInput) (*Event, error) {
	col, err := mdb.GetCollection(ctx, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	update := bson.M{"$set": updateEventSet(in, time.Now())}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var event Event
	err = col.FindOneAndUpdate(ctx, UpdateFilter(id, in), update, opts).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		current, getErr := mdb.GetEventByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		if in.Capacity == nil {
			return nil, fmt.Errorf("%w: event %s changed during update", ErrConflict, id.Hex())
		}
		return nil, fmt.Errorf("%w: capacity %d is below the current participant count %d",
			ErrValidation, *in.Capacity, len(current.Participants))
	}
	if err != nil {
		return nil, fmt.Errorf("error updating event: %w", err)
	}
	return &event, nil
}

func (mdb *MongodbRepo) TransitionStatus(ctx context.Context, id primitive.ObjectID, from []EventStatus, to EventStatus) (*Event, bool, error) {
	col, err := mdb.GetCollection(ctx, EventsColName)
	if err != nil {
		return nil, false, fmt.Errorf("error getting collection: %w", err)
	}

	update := bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var event Event
	err = col.FindOneAndUpdate(ctx, TransitionFilter(id, from), update, opts).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		current, getErr := mdb.GetEventByID(ctx, id)
		if getErr != nil {
			return nil, false, getErr
		}
		if err := ExplainRejectedTransition(current, to); err != nil {
			return nil, false, err
		}
		return current, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("error updating event status: %w", err)
	}
	return &event, true, nil
}

// ExplainRejectedTransition reports why a conditional status change matched
// nothing. It returns nil when the event already has the target status.
func ExplainRejectedTransition(current *Event, to EventStatus) error {
	if current.Status == to {
		return nil
	}
	return fmt.Errorf("%w: event is %s and cannot become %s", ErrConflict, current.Status, to)
}

func (mdb *MongodbRepo) DeleteEvent(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, EventsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("error deleting event: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: event %s", ErrNotFound, id.Hex())
	}
	return nil
}

func (mdb *MongodbRepo) AddParticipant(ctx context.Context, id primitive.ObjectID, userID uuid.UUID) (*Event, error) {
	col, err := mdb.GetCollection(ctx, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	update := bson.M{
		"$push": bson.M{"participants": userID},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var event Event
	err = col.FindOneAndUpdate(ctx, JoinFilter(id, userID), update, opts).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		current, getErr := mdb.GetEventByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, ExplainRejectedJoin(current, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("error adding participant: %w", err)
	}
	return &event, nil
}

// ExplainRejectedJoin reports why a conditional join matched nothing.
func ExplainRejectedJoin(current *Event, userID uuid.UUID) error {
	switch {
	case current.Status != EventStatusApproved:
		return fmt.Errorf("%w: event %s is %s and not open for enrollment", ErrConflict, current.ID.Hex(), current.Status)
	case current.HasParticipant(userID):
		return ErrAlreadyJoined
	case current.IsFull():
		return ErrCapacityExceeded
	default:
		// the event changed between the update and the re-read
		return fmt.Errorf("%w: event %s changed during join", ErrConflict, current.ID.Hex())
	}
}

func (mdb *MongodbRepo) RemoveParticipant(ctx context.Context, id primitive.ObjectID, userID uuid.UUID) (*Event, error) {
	col, err := mdb.GetCollection(ctx, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	filter := bson.M{"_id": id, "participants": userID}
	update := bson.M{
		"$pull": bson.M{"participants": userID},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var event Event
	err = col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, getErr := mdb.GetEventByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrNotJoined
	}
	if err != nil {
		return nil, fmt.Errorf("error removing participant: %w", err)
	}
	return &event, nil
}

func (mdb *MongodbRepo) AdjustRating(ctx context.Context, id primitive.ObjectID, ratingDelta, countDelta int) (*Event, error) {
	col, err := mdb.GetCollection(ctx, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "rating_sum", Value: bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$rating_sum", 0}}, ratingDelta}}},
			{Key: "total_reviews", Value: bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$total_reviews", 0}}, countDelta}}},
			{Key: "updated_at", Value: time.Now()},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "average_rating", Value: bson.M{"$cond": bson.A{
				bson.M{"$gt": bson.A{"$total_reviews", 0}},
				bson.M{"$divide": bson.A{"$rating_sum", "$total_reviews"}},
				0,
			}}},
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var event Event
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: event %s", ErrNotFound, id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("error updating event rating: %w", err)
	}
	return &event, nil
}
