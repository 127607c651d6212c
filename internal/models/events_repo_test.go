package models

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func eventDoc(t testing.TB, e *Event) bson.D {
	t.Helper()
	raw, err := bson.Marshal(e)
	require.NoError(t, err)
	var doc bson.D
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func TestAddParticipantMongo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	member, newcomer := uuid.New(), uuid.New()
	ns := "campus_events_test." + EventsColName

	event := &Event{
		ID:           primitive.NewObjectID(),
		Title:        "Robotics Fair",
		Status:       EventStatusApproved,
		Capacity:     1,
		Participants: []uuid.UUID{member},
		CreatedAt:    time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
	}

	mt.Run("joined", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "campus_events_test")
		joined := *event
		joined.Capacity = 2
		joined.Participants = []uuid.UUID{member, newcomer}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: eventDoc(mt, &joined)}))

		got, err := repo.AddParticipant(context.Background(), event.ID, newcomer)
		require.NoError(mt, err)
		assert.Equal(mt, []uuid.UUID{member, newcomer}, got.Participants)
	})

	mt.Run("full event", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "campus_events_test")
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, eventDoc(mt, event)),
		)

		_, err := repo.AddParticipant(context.Background(), event.ID, newcomer)
		require.ErrorIs(mt, err, ErrCapacityExceeded)
	})

	mt.Run("pending event", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "campus_events_test")
		pending := *event
		pending.Status = EventStatusPending
		pending.Capacity = 5
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, eventDoc(mt, &pending)),
		)

		_, err := repo.AddParticipant(context.Background(), event.ID, newcomer)
		require.ErrorIs(mt, err, ErrConflict)
	})

	mt.Run("missing event", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "campus_events_test")
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)

		_, err := repo.AddParticipant(context.Background(), event.ID, newcomer)
		require.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestTransitionStatusMongo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "campus_events_test." + EventsColName
	from := []EventStatus{EventStatusPending, EventStatusRejected}

	mt.Run("status changed", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "campus_events_test")
		approved := &Event{ID: primitive.NewObjectID(), Status: EventStatusApproved, Capacity: 3}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: eventDoc(mt, approved)}))

		got, changed, err := repo.TransitionStatus(context.Background(), approved.ID, from, EventStatusApproved)
		require.NoError(mt, err)
		assert.True(mt, changed)
		assert.Equal(mt, EventStatusApproved, got.Status)
	})

	mt.Run("already approved", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "campus_events_test")
		approved := &Event{ID: primitive.NewObjectID(), Status: EventStatusApproved, Capacity: 3}
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, eventDoc(mt, approved)),
		)

		got, changed, err := repo.TransitionStatus(context.Background(), approved.ID, from, EventStatusApproved)
		require.NoError(mt, err)
		assert.False(mt, changed)
		assert.Equal(mt, approved.ID, got.ID)
	})
}
