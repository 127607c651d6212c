package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventhub/internal/services"
)

func JoinEvent(en *services.EnrollmentService) gin.HandlerFunc {
	return transitionHandler(en.JoinEvent, "Joined event successfully")
}

func LeaveEvent(en *services.EnrollmentService) gin.HandlerFunc {
	return transitionHandler(en.LeaveEvent, "Left event successfully")
}

func ListJoinedEvents(en *services.EnrollmentService) gin.HandlerFunc {
	return listHandler(en.ListJoinedEvents)
}
