package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/joshua-takyi/eventhub/internal/models"
	"github.com/joshua-takyi/eventhub/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestJoinEventCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 2, true)

	a := f.store.SeedUser("Ana", models.RoleStudent)
	b := f.store.SeedUser("Ben", models.RoleStudent)
	c := f.store.SeedUser("Cal", models.RoleStudent)

	_, err := f.enrollment.JoinEvent(ctx, a, event.ID)
	require.NoError(t, err)
	joined, err := f.enrollment.JoinEvent(ctx, b, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, services.RemainingSlots(joined))

	_, err = f.enrollment.JoinEvent(ctx, c, event.ID)
	require.ErrorIs(t, err, models.ErrCapacityExceeded)

	stored, err := f.store.GetEventByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a.UserID, b.UserID}, stored.Participants)
	assert.Equal(t, 0, stored.RemainingSlots())
}

func TestJoinEventSingleSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 1, true)

	_, err := f.enrollment.JoinEvent(ctx, f.student, event.ID)
	require.NoError(t, err)

	_, err = f.enrollment.JoinEvent(ctx, f.admin, event.ID)
	require.ErrorIs(t, err, models.ErrCapacityExceeded)
}

func TestJoinEventTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 5, true)

	_, err := f.enrollment.JoinEvent(ctx, f.student, event.ID)
	require.NoError(t, err)

	_, err = f.enrollment.JoinEvent(ctx, f.student, event.ID)
	require.ErrorIs(t, err, models.ErrAlreadyJoined)

	stored, err := f.store.GetEventByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Participants, 1)
}

func TestJoinUnknownEvent(t *testing.T) {
	f := newFixture(t)
	_, err := f.enrollment.JoinEvent(context.Background(), f.student, primitive.NewObjectID())
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestJoinThenLeaveRestoresParticipants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 5, true)

	first := f.store.SeedUser("Fay", models.RoleStudent)
	last := f.store.SeedUser("Lou", models.RoleStudent)
	_, err := f.enrollment.JoinEvent(ctx, first, event.ID)
	require.NoError(t, err)
	_, err = f.enrollment.JoinEvent(ctx, last, event.ID)
	require.NoError(t, err)
	before, err := f.store.GetEventByID(ctx, event.ID)
	require.NoError(t, err)

	_, err = f.enrollment.JoinEvent(ctx, f.student, event.ID)
	require.NoError(t, err)
	left, err := f.enrollment.LeaveEvent(ctx, f.student, event.ID)
	require.NoError(t, err)

	assert.Equal(t, before.Participants, left.Participants)
	assert.Equal(t, before.RemainingSlots(), left.RemainingSlots())
}

func TestLeaveWithoutJoining(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 5, true)

	_, err := f.enrollment.LeaveEvent(ctx, f.student, event.ID)
	require.ErrorIs(t, err, models.ErrNotJoined)
}

func TestListJoinedEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	joined := f.createEvent(t, 5, true)
	f.createEvent(t, 5, true)

	_, err := f.enrollment.JoinEvent(ctx, f.student, joined.ID)
	require.NoError(t, err)

	events, err := f.enrollment.ListJoinedEvents(ctx, f.student)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, joined.ID, events[0].ID)
}

func TestConcurrentJoinsNeverOverbook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const capacity, callers = 10, 50
	event := f.createEvent(t, capacity, true)

	actors := make([]models.Actor, callers)
	for i := range actors {
		actors[i] = f.store.SeedUser(uuid.NewString()[:8], models.RoleStudent)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for _, actor := range actors {
		wg.Add(1)
		go func(actor models.Actor) {
			defer wg.Done()
			_, err := f.enrollment.JoinEvent(ctx, actor, event.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, models.ErrCapacityExceeded):
				rejected++
			default:
				t.Errorf("unexpected join error: %v", err)
			}
		}(actor)
	}
	wg.Wait()

	assert.Equal(t, capacity, accepted)
	assert.Equal(t, callers-capacity, rejected)

	stored, err := f.store.GetEventByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Participants, capacity)

	seen := map[uuid.UUID]bool{}
	for _, id := range stored.Participants {
		assert.False(t, seen[id], "duplicate participant %s", id)
		seen[id] = true
	}
}

func TestJoinRequiresApprovedEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("pending event is hidden from other users", func(t *testing.T) {
		f := newFixture(t)
		event := f.createEvent(t, 5, false)

		_, err := f.enrollment.JoinEvent(ctx, f.student, event.ID)
		require.ErrorIs(t, err, models.ErrNotFound)

		stored, err := f.store.GetEventByID(ctx, event.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.Participants)
	})

	t.Run("rejected event is hidden from other users", func(t *testing.T) {
		f := newFixture(t)
		event := f.createEvent(t, 5, false)
		_, err := f.events.RejectEvent(ctx, f.admin, event.ID)
		require.NoError(t, err)

		_, err = f.enrollment.JoinEvent(ctx, f.student, event.ID)
		require.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("creator and admin see the event is not open", func(t *testing.T) {
		f := newFixture(t)
		event := f.createEvent(t, 5, false)

		_, err := f.enrollment.JoinEvent(ctx, f.teacher, event.ID)
		require.ErrorIs(t, err, models.ErrConflict)
		_, err = f.enrollment.JoinEvent(ctx, f.admin, event.ID)
		require.ErrorIs(t, err, models.ErrConflict)
	})

	t.Run("approval opens enrollment", func(t *testing.T) {
		f := newFixture(t)
		event := f.createEvent(t, 5, false)
		_, err := f.events.ApproveEvent(ctx, f.admin, event.ID)
		require.NoError(t, err)

		joined, err := f.enrollment.JoinEvent(ctx, f.student, event.ID)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{f.student.UserID}, joined.Participants)
	})
}
