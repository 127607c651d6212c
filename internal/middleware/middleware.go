package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/eventhub/internal/helpers"
	"github.com/joshua-takyi/eventhub/internal/models"
	"github.com/joshua-takyi/eventhub/internal/monitoring"
)

const bearerSchema = "Bearer "

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}
		requestID, _ := c.Get("request_id")
		attrs := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if actor, ok := c.Get(helpers.ActorContextKey); ok {
			attrs = append(attrs, "user_id", actor.(models.Actor).UserID)
		}
		logger.Info("HTTP Request", attrs...)
	}
}

// ErrorHandler provides centralized error handling
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()
		requestID, _ := c.Get("request_id")

		logger.Error("Request error",
			"request_id", requestID,
			"error", err.Error(),
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)

		// handlers that already answered only hand the cause over for logging
		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success":    false,
				"error":      "internal_error",
				"message":    "Internal server error",
				"request_id": requestID,
			})
		}
	}
}

// Metrics records request counts and latency per route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		monitoring.ObserveHTTP(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// SessionResolver turns a verified token subject into the request Actor and
// refreshes expired sessions.
type SessionResolver interface {
	ResolveActor(ctx context.Context, userID uuid.UUID) (models.Actor, error)
	Refresh(ctx context.Context, refreshToken string) (*models.AuthSession, error)
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, bearerSchema) {
		return strings.TrimSpace(header[len(bearerSchema):])
	}
	token, _ := c.Cookie("access_token")
	return token
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse("unauthenticated", message))
}

// AuthMiddleware resolves the bearer token (Authorization header or
// access_token cookie) into a models.Actor stored under helpers.ActorContextKey.
// An expired cookie session is refreshed transparently when a refresh_token
// cookie is present.
func AuthMiddleware(validator *helpers.TokenValidator, sessions SessionResolver, secureCookies bool, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			unauthorized(c, "authentication required")
			return
		}

		claims, err := validator.Validate(token)
		if err != nil {
			refreshToken, refreshErr := c.Cookie("refresh_token")
			if refreshErr != nil || refreshToken == "" {
				unauthorized(c, "invalid or expired token")
				return
			}

			session, refreshErr := sessions.Refresh(c.Request.Context(), refreshToken)
			if refreshErr != nil {
				logger.Warn("Token refresh failed", "error", refreshErr)
				unauthorized(c, "token expired and refresh failed")
				return
			}
			SetAuthCookies(c, session, secureCookies)
			logger.Info("Token refreshed successfully", "user_id", session.UserID, "expires_in", session.ExpiresIn)

			claims, err = validator.Validate(session.AccessToken)
			if err != nil {
				unauthorized(c, "refreshed token validation failed")
				return
			}
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			logger.Warn("Invalid user ID in token", "subject", claims.Subject, "error", err)
			unauthorized(c, "invalid user id in token")
			return
		}

		actor, err := sessions.ResolveActor(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				unauthorized(c, "no profile exists for this account")
				return
			}
			logger.Error("Failed to resolve user profile", "user_id", userID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse("internal_error", "failed to load user profile"))
			return
		}
		if !actor.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse("authorization_error", "account is deactivated"))
			return
		}

		c.Set(helpers.ActorContextKey, actor)
		c.Next()
	}
}

// RequireAdmin rejects non-admin callers before the handler runs.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, ok := c.Get(helpers.ActorContextKey)
		actor, isActor := value.(models.Actor)
		if !ok || !isActor {
			unauthorized(c, "authentication required")
			return
		}
		if !actor.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse("authorization_error", "admin role required"))
			return
		}
		c.Next()
	}
}

// SetAuthCookies stores the session tokens as HTTP-only cookies.
func SetAuthCookies(c *gin.Context, session *models.AuthSession, secure bool) {
	c.SetCookie("access_token", session.AccessToken, session.ExpiresIn, "/", "", secure, true)
	c.SetCookie("refresh_token", session.RefreshToken, 3600*24*30, "/", "", secure, true)
}

func ClearAuthCookies(c *gin.Context, secure bool) {
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
	c.SetCookie("refresh_token", "", -1, "/", "", secure, true)
}
