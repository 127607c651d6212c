package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/joshua-takyi/eventhub/internal/models"
)

// Authorization policy. Every service operation gates on exactly one of these.

func requireActive(actor models.Actor) error {
	if actor.UserID == uuid.Nil {
		return fmt.Errorf("%w: no authenticated user", models.ErrUnauthorized)
	}
	if !actor.Active {
		return fmt.Errorf("%w: account is deactivated", models.ErrUnauthorized)
	}
	return nil
}

func CanCreateEvent(actor models.Actor) error {
	return requireActive(actor)
}

func CanApproveEvent(actor models.Actor) error {
	if err := requireActive(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins can change an event's approval status", models.ErrUnauthorized)
	}
	return nil
}

// CanModifyEvent covers update and delete: creator or admin.
func CanModifyEvent(actor models.Actor, event *models.Event) error {
	if err := requireActive(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() && !actor.IsOwner(event.CreatedBy) {
		return fmt.Errorf("%w: only the creator or an admin can modify this event", models.ErrUnauthorized)
	}
	return nil
}

// CanViewEvent hides other users' unapproved events from non-admins.
func CanViewEvent(actor models.Actor, event *models.Event) bool {
	return actor.IsAdmin() || event.Status == models.EventStatusApproved ||
		actor.IsOwner(event.CreatedBy) || event.HasParticipant(actor.UserID)
}

func CanEnroll(actor models.Actor) error {
	return requireActive(actor)
}

func CanSubmitFeedback(actor models.Actor) error {
	return requireActive(actor)
}

func CanListAllEvents(actor models.Actor) error {
	return CanApproveEvent(actor)
}

func CanManageUsers(actor models.Actor) error {
	if err := requireActive(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins can manage users", models.ErrUnauthorized)
	}
	return nil
}

func CanViewUser(actor models.Actor, userID uuid.UUID) error {
	if err := requireActive(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() && !actor.IsOwner(userID) {
		return fmt.Errorf("%w: access denied", models.ErrUnauthorized)
	}
	return nil
}
