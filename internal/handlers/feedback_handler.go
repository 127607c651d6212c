package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventhub/internal/models"
	"github.com/joshua-takyi/eventhub/internal/services"
)

func SubmitFeedback(fs *services.FeedbackService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := currentActor(c)
		if !ok {
			return
		}
		eventID, ok := objectIDParam(c, "eventId")
		if !ok {
			return
		}

		var input models.FeedbackInput
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, "invalid request payload: "+err.Error())
			return
		}

		feedback, err := fs.SubmitFeedback(c.Request.Context(), actor, eventID, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(feedback, "Feedback submitted successfully"))
	}
}

func ListFeedback(fs *services.FeedbackService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := currentActor(c)
		if !ok {
			return
		}
		eventID, ok := objectIDParam(c, "eventId")
		if !ok {
			return
		}

		entries, err := fs.ListFeedback(c.Request.Context(), actor, eventID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.ListResponse(entries, len(entries)))
	}
}

func FeedbackSummary(fs *services.FeedbackService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := currentActor(c)
		if !ok {
			return
		}
		eventID, ok := objectIDParam(c, "eventId")
		if !ok {
			return
		}

		summary, err := fs.Summary(c.Request.Context(), actor, eventID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(summary, ""))
	}
}
