package services_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/joshua-takyi/eventhub/internal/models"
	"github.com/joshua-takyi/eventhub/internal/services"
	"github.com/joshua-takyi/eventhub/internal/testsupport"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store      *testsupport.Store
	images     *testsupport.Uploader
	events     *services.EventService
	enrollment *services.EnrollmentService
	feedback   *services.FeedbackService

	admin   models.Actor
	teacher models.Actor
	student models.Actor
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testsupport.NewStore()
	images := &testsupport.Uploader{}
	logger := discardLogger()
	return &fixture{
		store:      store,
		images:     images,
		events:     services.NewEventService(store, store, images, logger),
		enrollment: services.NewEnrollmentService(store, logger),
		feedback:   services.NewFeedbackService(store, store, logger),
		admin:      store.SeedUser("Ada", models.RoleAdmin),
		teacher:    store.SeedUser("Tom", models.RoleTeacher),
		student:    store.SeedUser("Sam", models.RoleStudent),
	}
}

func eventInput(capacity int) *models.CreateEventInput {
	return &models.CreateEventInput{
		Title:       "Robotics Fair",
		Description: "Student robotics showcase",
		Venue:       "Main Hall",
		Date:        "2026-11-20",
		Time:        "14:00",
		TypeOfEvent: "Fair",
		Capacity:    capacity,
	}
}

// createEvent creates an event as the teacher and optionally approves it.
func (f *fixture) createEvent(t *testing.T, capacity int, approve bool) *models.Event {
	t.Helper()
	ctx := context.Background()
	event, err := f.events.CreateEvent(ctx, f.teacher, eventInput(capacity))
	require.NoError(t, err)
	if approve {
		event, err = f.events.ApproveEvent(ctx, f.admin, event.ID)
		require.NoError(t, err)
	}
	return event
}
