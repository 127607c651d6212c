package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventhub/internal/connect"
	"github.com/joshua-takyi/eventhub/internal/container"
	"github.com/joshua-takyi/eventhub/internal/handlers"
	"github.com/joshua-takyi/eventhub/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	if container.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	secure := container.Config.IsProduction()

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     container.Config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "Retry-After"},
		AllowCredentials: true,
	}))

	// Add middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1
	v1 := r.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", func(c *gin.Context) {
			status := gin.H{"status": "OK", "service": "eventhub-api", "redis": "disabled"}
			if container.RedisClient != nil {
				status["redis"] = "OK"
				if err := connect.RedisHealthCheck(c.Request.Context(), container.RedisClient); err != nil {
					status["redis"] = "unavailable"
				}
			}
			c.JSON(http.StatusOK, status)
		})

		// public routes
		v1.POST("/signup", handlers.Signup(container.UserService))
		v1.POST("/login", handlers.Login(container.UserService, secure))
		v1.POST("/refresh", handlers.Refresh(container.UserService, secure))
		v1.POST("/logout", handlers.Logout(secure))
	}

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(container.TokenValidator, container.UserService, secure, container.Logger))
	admin := middleware.RequireAdmin()
	limit := container.RateLimiter
	compress := gzip.Gzip(gzip.DefaultCompression)

	protected.GET("/profile", handlers.Profile(container.UserService))

	eventRoutes := protected.Group("/events")
	{
		eventRoutes.POST("", handlers.CreateEvent(container.EventService))
		eventRoutes.GET("", compress, handlers.ListEvents(container.EventService))
		eventRoutes.GET("/all", admin, compress, handlers.ListAllEvents(container.EventService))
		eventRoutes.GET("/pending", admin, compress, handlers.ListPendingEvents(container.EventService))
		eventRoutes.GET("/mine", compress, handlers.ListMyEvents(container.EventService))
		eventRoutes.GET("/available", compress, handlers.ListAvailableEvents(container.EventService))
		eventRoutes.GET("/joined", compress, handlers.ListJoinedEvents(container.EnrollmentService))
		eventRoutes.GET("/:id", handlers.GetEvent(container.EventService))
		eventRoutes.PUT("/:id", handlers.UpdateEvent(container.EventService))
		eventRoutes.DELETE("/:id", handlers.DeleteEvent(container.EventService))
		eventRoutes.PUT("/:id/approve", admin, handlers.ApproveEvent(container.EventService))
		eventRoutes.PUT("/:id/reject", admin, handlers.RejectEvent(container.EventService))
		eventRoutes.POST("/:id/join", limit.Limit("enrollment"), handlers.JoinEvent(container.EnrollmentService))
		eventRoutes.POST("/:id/leave", limit.Limit("enrollment"), handlers.LeaveEvent(container.EnrollmentService))
	}

	feedbackRoutes := protected.Group("/feedback")
	{
		feedbackRoutes.POST("/:eventId", limit.Limit("feedback"), handlers.SubmitFeedback(container.FeedbackService))
		feedbackRoutes.GET("/:eventId", compress, handlers.ListFeedback(container.FeedbackService))
		feedbackRoutes.GET("/:eventId/summary", handlers.FeedbackSummary(container.FeedbackService))
	}

	userRoutes := protected.Group("/users")
	{
		userRoutes.GET("", admin, compress, handlers.ListUsers(container.UserService))
		userRoutes.PUT("/avatar", handlers.UploadAvatar(container.UserService))
		userRoutes.GET("/:id", handlers.GetUser(container.UserService))
		userRoutes.PUT("/:id/role", admin, handlers.UpdateUserRole(container.UserService))
		userRoutes.PUT("/:id/active", admin, handlers.SetUserActive(container.UserService))
	}

	return r
}
