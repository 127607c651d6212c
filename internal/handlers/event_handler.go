package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventhub/internal/models"
	"github.com/joshua-takyi/eventhub/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func CreateEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := currentActor(c)
		if !ok {
			return
		}

		var input models.CreateEventInput
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, "invalid request payload: "+err.Error())
			return
		}

		event, err := es.CreateEvent(c.Request.Context(), actor, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(event.View(), "Event created and awaiting approval"))
	}
}

func GetEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := currentActor(c)
		if !ok {
			return
		}
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}

		event, err := es.GetEvent(c.Request.Context(), actor, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(event.View(), ""))
	}
}

func UpdateEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := currentActor(c)
		if !ok {
			return
		}
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}

		var input models.UpdateEventInput
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, "invalid request payload: "+err.Error())
			return
		}

		event, err := es.UpdateEvent(c.Request.Context(), actor, id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(event.View(), "Event updated successfully"))
	}
}

func DeleteEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := currentActor(c)
		if !ok {
			return
		}
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}

		if err := es.DeleteEvent(c.Request.Context(), actor, id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Event deleted successfully"))
	}
}

func ApproveEvent(es *services.EventService) gin.HandlerFunc {
	return transitionHandler(es.ApproveEvent, "Event approved")
}

func RejectEvent(es *services.EventService) gin.HandlerFunc {
	return transitionHandler(es.RejectEvent, "Event rejected")
}

type eventAction func(ctx context.Context, actor models.Actor, id primitive.ObjectID) (*models.Event, error)

func transitionHandler(action eventAction, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := currentActor(c)
		if !ok {
			return
		}
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}

		event, err := action(c.Request.Context(), actor, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(event.View(), message))
	}
}

type eventLister func(ctx context.Context, actor models.Actor) ([]*models.Event, error)

func listHandler(list eventLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := currentActor(c)
		if !ok {
			return
		}

		events, err := list(c.Request.Context(), actor)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.ListResponse(models.EventViews(events), len(events)))
	}
}

// ListEvents is the default browse listing: approved events plus the
// caller's own, or everything for admins.
func ListEvents(es *services.EventService) gin.HandlerFunc {
	return listHandler(es.ListEvents)
}

func ListAllEvents(es *services.EventService) gin.HandlerFunc {
	return listHandler(es.ListAllEvents)
}

func ListPendingEvents(es *services.EventService) gin.HandlerFunc {
	return listHandler(es.ListPendingEvents)
}

func ListMyEvents(es *services.EventService) gin.HandlerFunc {
	return listHandler(es.ListEventsByCreator)
}

func ListAvailableEvents(es *services.EventService) gin.HandlerFunc {
	return listHandler(es.ListAvailableEvents)
}
