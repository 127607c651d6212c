package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/eventhub/internal/helpers"
	"github.com/joshua-takyi/eventhub/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusFor maps the domain error taxonomy onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrCapacityExceeded),
		errors.Is(err, models.ErrAlreadyJoined),
		errors.Is(err, models.ErrNotJoined),
		errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := StatusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		// keep driver details out of responses; ErrorHandler logs them
		_ = c.Error(err)
		message = "internal server error"
	}
	c.AbortWithStatusJSON(status, models.ErrorResponse(models.ErrorCode(err), message))
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse("validation_error", message))
}

// currentActor returns the session placed on the context by AuthMiddleware.
func currentActor(c *gin.Context) (models.Actor, bool) {
	value, exists := c.Get(helpers.ActorContextKey)
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse("unauthenticated", "authentication required"))
		return models.Actor{}, false
	}
	actor, ok := value.(models.Actor)
	if !ok {
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse("internal_error", "invalid session"))
		return models.Actor{}, false
	}
	return actor, true
}

func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	raw := helpers.StringTrim(c.Param(name))
	if raw == "" {
		badRequest(c, name+" is required")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		badRequest(c, "invalid "+name+" format")
		return primitive.NilObjectID, false
	}
	return id, true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(helpers.StringTrim(c.Param(name)))
	if err != nil {
		badRequest(c, "invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}
