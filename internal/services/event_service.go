package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshua-takyi/eventhub/internal/helpers"
	"github.com/joshua-takyi/eventhub/internal/models"
	"github.com/joshua-takyi/eventhub/internal/monitoring"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventService owns the event lifecycle: pending -> approved, or
// pending -> rejected. Approved is terminal.
type EventService struct {
	eventRepo    models.EventRepo
	feedbackRepo models.FeedbackRepo
	images       helpers.ImageUploader
	logger       *slog.Logger
	now          func() time.Time
}

func NewEventService(eventRepo models.EventRepo, feedbackRepo models.FeedbackRepo, images helpers.ImageUploader, logger *slog.Logger) *EventService {
	return &EventService{
		eventRepo:    eventRepo,
		feedbackRepo: feedbackRepo,
		images:       images,
		logger:       logger,
		now:          time.Now,
	}
}

func (es *EventService) CreateEvent(ctx context.Context, actor models.Actor, in *models.CreateEventInput) (*models.Event, error) {
	if err := CanCreateEvent(actor); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if in.Image != "" {
		url, err := es.images.Upload(ctx, in.Image, helpers.EventsFolder)
		if err != nil {
			return nil, fmt.Errorf("failed to store event image: %w", err)
		}
		in.Image = url
	}

	event, err := es.eventRepo.CreateEvent(ctx, in.NewEvent(actor.UserID, es.now()))
	if err != nil {
		return nil, err
	}

	monitoring.TrackTransition("created")
	es.logger.Info("event created", "event_id", event.ID.Hex(), "created_by", actor.UserID, "capacity", event.Capacity)
	return event, nil
}

func (es *EventService) ApproveEvent(ctx context.Context, actor models.Actor, id primitive.ObjectID) (*models.Event, error) {
	if err := CanApproveEvent(actor); err != nil {
		return nil, err
	}
	event, changed, err := es.eventRepo.TransitionStatus(ctx, id,
		[]models.EventStatus{models.EventStatusPending, models.EventStatusRejected},
		models.EventStatusApproved,
	)
	if err != nil {
		return nil, err
	}
	if !changed {
		return event, nil
	}

	monitoring.TrackTransition("approved")
	es.logger.Info("event approved", "event_id", id.Hex(), "admin_id", actor.UserID)
	return event, nil
}

func (es *EventService) RejectEvent(ctx context.Context, actor models.Actor, id primitive.ObjectID) (*models.Event, error) {
	if err := CanApproveEvent(actor); err != nil {
		return nil, err
	}
	event, changed, err := es.eventRepo.TransitionStatus(ctx, id,
		[]models.EventStatus{models.EventStatusPending},
		models.EventStatusRejected,
	)
	if err != nil {
		return nil, err
	}
	if !changed {
		return event, nil
	}

	monitoring.TrackTransition("rejected")
	es.logger.Info("event rejected", "event_id", id.Hex(), "admin_id", actor.UserID)
	return event, nil
}

func (es *EventService) UpdateEvent(ctx context.Context, actor models.Actor, id primitive.ObjectID, in *models.UpdateEventInput) (*models.Event, error) {
	existing, err := es.eventRepo.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CanModifyEvent(actor, existing); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if in.Image != nil && *in.Image != "" {
		url, err := es.images.Upload(ctx, *in.Image, helpers.EventsFolder)
		if err != nil {
			return nil, fmt.Errorf("failed to store event image: %w", err)
		}
		in.Image = &url
	}

	event, err := es.eventRepo.UpdateEvent(ctx, id, in)
	if err != nil {
		return nil, err
	}

	es.logger.Info("event updated", "event_id", id.Hex(), "actor_id", actor.UserID)
	return event, nil
}

// DeleteEvent removes the event and every feedback entry referencing it.
func (es *EventService) DeleteEvent(ctx context.Context, actor models.Actor, id primitive.ObjectID) error {
	existing, err := es.eventRepo.GetEventByID(ctx, id)
	if err != nil {
		return err
	}
	if err := CanModifyEvent(actor, existing); err != nil {
		return err
	}
	if err := es.eventRepo.DeleteEvent(ctx, id); err != nil {
		return err
	}

	removed, err := es.feedbackRepo.DeleteFeedbackByEvent(ctx, id)
	if err != nil {
		// the event is gone; leftover feedback is unreachable through the API
		es.logger.Error("failed to cascade feedback delete", "event_id", id.Hex(), "error", err)
	}

	monitoring.TrackTransition("deleted")
	es.logger.Info("event deleted", "event_id", id.Hex(), "actor_id", actor.UserID, "feedback_removed", removed)
	return nil
}

func (es *EventService) GetEvent(ctx context.Context, actor models.Actor, id primitive.ObjectID) (*models.Event, error) {
	event, err := es.eventRepo.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanViewEvent(actor, event) {
		return nil, fmt.Errorf("%w: event %s", models.ErrNotFound, id.Hex())
	}
	return event, nil
}

// ListEvents returns what the caller may browse: everything for admins,
// otherwise approved events plus the caller's own.
func (es *EventService) ListEvents(ctx context.Context, actor models.Actor) ([]*models.Event, error) {
	if actor.IsAdmin() {
		return es.eventRepo.ListEvents(ctx, models.EventQuery{})
	}
	return es.eventRepo.ListEvents(ctx, models.EventQuery{VisibleTo: actor.UserID})
}

func (es *EventService) ListAllEvents(ctx context.Context, actor models.Actor) ([]*models.Event, error) {
	if err := CanListAllEvents(actor); err != nil {
		return nil, err
	}
	return es.eventRepo.ListEvents(ctx, models.EventQuery{})
}

func (es *EventService) ListPendingEvents(ctx context.Context, actor models.Actor) ([]*models.Event, error) {
	if err := CanListAllEvents(actor); err != nil {
		return nil, err
	}
	return es.eventRepo.ListEvents(ctx, models.EventQuery{
		Statuses: []models.EventStatus{models.EventStatusPending},
	})
}

func (es *EventService) ListEventsByCreator(ctx context.Context, actor models.Actor) ([]*models.Event, error) {
	return es.eventRepo.ListEvents(ctx, models.EventQuery{CreatedBy: actor.UserID})
}

// ListAvailableEvents returns approved events that still have a free slot.
func (es *EventService) ListAvailableEvents(ctx context.Context, actor models.Actor) ([]*models.Event, error) {
	return es.eventRepo.ListEvents(ctx, models.EventQuery{
		Statuses: []models.EventStatus{models.EventStatusApproved},
		OnlyOpen: true,
	})
}
