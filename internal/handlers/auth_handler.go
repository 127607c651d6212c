package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventhub/internal/middleware"
	"github.com/joshua-takyi/eventhub/internal/models"
	"github.com/joshua-takyi/eventhub/internal/services"
)

type sessionPayload struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"accessToken"`
	ExpiresIn   int          `json:"expiresIn"`
}

// respondAuthError reports credential failures as 401 rather than the 403
// used for authenticated callers lacking a permission.
func respondAuthError(c *gin.Context, err error) {
	if errors.Is(err, models.ErrUnauthorized) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse("unauthenticated", err.Error()))
		return
	}
	respondError(c, err)
}

func Signup(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, "invalid request payload")
			return
		}

		user, err := u.Register(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(user, "Account created successfully"))
	}
}

func Login(u *services.UserService, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, "invalid request payload")
			return
		}

		session, user, err := u.Login(c.Request.Context(), &input)
		if err != nil {
			respondAuthError(c, err)
			return
		}

		middleware.SetAuthCookies(c, session, secureCookies)
		c.JSON(http.StatusOK, models.SuccessResponse(sessionPayload{
			User:        user,
			AccessToken: session.AccessToken,
			ExpiresIn:   session.ExpiresIn,
		}, "Logged in successfully"))
	}
}

// Refresh exchanges the refresh_token cookie (or a JSON body field) for a new
// token pair.
func Refresh(u *services.UserService, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		refreshToken, _ := c.Cookie("refresh_token")
		if refreshToken == "" {
			var req struct {
				RefreshToken string `json:"refreshToken"`
			}
			_ = c.ShouldBindJSON(&req)
			refreshToken = req.RefreshToken
		}

		session, err := u.Refresh(c.Request.Context(), refreshToken)
		if err != nil {
			respondAuthError(c, err)
			return
		}

		middleware.SetAuthCookies(c, session, secureCookies)
		c.JSON(http.StatusOK, models.SuccessResponse(sessionPayload{
			AccessToken: session.AccessToken,
			ExpiresIn:   session.ExpiresIn,
		}, "Session refreshed"))
	}
}

func Logout(secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.ClearAuthCookies(c, secureCookies)
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Logged out successfully"))
	}
}
