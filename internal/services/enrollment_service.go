package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joshua-takyi/eventhub/internal/models"
	"github.com/joshua-takyi/eventhub/internal/monitoring"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EnrollmentService manages an event's participant list. The capacity check
// and the mutation happen in one conditional store update, so concurrent
// joins can never overbook an event.
type EnrollmentService struct {
	eventRepo models.EventRepo
	logger    *slog.Logger
}

func NewEnrollmentService(eventRepo models.EventRepo, logger *slog.Logger) *EnrollmentService {
	return &EnrollmentService{
		eventRepo: eventRepo,
		logger:    logger,
	}
}

func (en *EnrollmentService) JoinEvent(ctx context.Context, actor models.Actor, id primitive.ObjectID) (*models.Event, error) {
	if err := CanEnroll(actor); err != nil {
		return nil, err
	}
	event, err := en.eventRepo.AddParticipant(ctx, id, actor.UserID)
	if errors.Is(err, models.ErrConflict) {
		err = en.hideInvisible(ctx, actor, id, err)
	}
	monitoring.TrackEnrollment("join", err)
	if err != nil {
		return nil, err
	}

	en.logger.Info("participant joined",
		"event_id", id.Hex(),
		"user_id", actor.UserID,
		"remaining_slots", event.RemainingSlots(),
	)
	return event, nil
}

// hideInvisible turns a rejected join on an event the caller cannot see into
// NotFound, matching GetEvent.
func (en *EnrollmentService) hideInvisible(ctx context.Context, actor models.Actor, id primitive.ObjectID, joinErr error) error {
	current, err := en.eventRepo.GetEventByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanViewEvent(actor, current) {
		return fmt.Errorf("%w: event %s", models.ErrNotFound, id.Hex())
	}
	return joinErr
}

func (en *EnrollmentService) LeaveEvent(ctx context.Context, actor models.Actor, id primitive.ObjectID) (*models.Event, error) {
	if err := CanEnroll(actor); err != nil {
		return nil, err
	}
	event, err := en.eventRepo.RemoveParticipant(ctx, id, actor.UserID)
	monitoring.TrackEnrollment("leave", err)
	if err != nil {
		return nil, err
	}

	en.logger.Info("participant left",
		"event_id", id.Hex(),
		"user_id", actor.UserID,
		"remaining_slots", event.RemainingSlots(),
	)
	return event, nil
}

func (en *EnrollmentService) ListJoinedEvents(ctx context.Context, actor models.Actor) ([]*models.Event, error) {
	return en.eventRepo.ListEvents(ctx, models.EventQuery{Participant: actor.UserID})
}

func RemainingSlots(event *models.Event) int {
	return event.RemainingSlots()
}
