package middleware_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/eventhub/internal/helpers"
	"github.com/joshua-takyi/eventhub/internal/middleware"
	"github.com/joshua-takyi/eventhub/internal/models"
	"github.com/joshua-takyi/eventhub/internal/services"
	"github.com/joshua-takyi/eventhub/internal/testsupport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type authFixture struct {
	store  *testsupport.Store
	auth   *testsupport.Auth
	router *gin.Engine
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := testsupport.NewStore()
	auth := testsupport.NewAuth(secret)
	users := services.NewUserService(store, auth, &testsupport.Uploader{}, nil, logger)

	r := gin.New()
	r.Use(middleware.RequestID())
	protected := r.Group("/", middleware.AuthMiddleware(helpers.NewSecretValidator(secret), users, false, logger))
	protected.GET("/whoami", func(c *gin.Context) {
		actor := c.MustGet(helpers.ActorContextKey).(models.Actor)
		c.JSON(http.StatusOK, gin.H{"id": actor.UserID, "role": actor.Role})
	})
	protected.GET("/admin", middleware.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	return &authFixture{store: store, auth: auth, router: r}
}

func (f *authFixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func bearer(t *testing.T, subject uuid.UUID, ttl time.Duration) string {
	t.Helper()
	token, err := testsupport.MintToken(secret, subject, ttl)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthMiddleware(t *testing.T) {
	f := newAuthFixture(t)
	student := f.store.SeedUser("Sam", models.RoleStudent)

	t.Run("missing token", func(t *testing.T) {
		w := f.do(httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", bearer(t, student.UserID, time.Hour))
		w := f.do(req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), student.UserID.String())
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("token in cookie", func(t *testing.T) {
		token, err := testsupport.MintToken(secret, student.UserID, time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
		assert.Equal(t, http.StatusOK, f.do(req).Code)
	})

	t.Run("expired token without refresh cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", bearer(t, student.UserID, -time.Minute))
		assert.Equal(t, http.StatusUnauthorized, f.do(req).Code)
	})

	t.Run("token for a user without a profile", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", bearer(t, uuid.New(), time.Hour))
		assert.Equal(t, http.StatusUnauthorized, f.do(req).Code)
	})

	t.Run("deactivated user", func(t *testing.T) {
		inactive := f.store.SeedUser("Ivy", models.RoleStudent)
		_, err := f.store.SetActive(context.Background(), inactive.UserID, false)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", bearer(t, inactive.UserID, time.Hour))
		assert.Equal(t, http.StatusForbidden, f.do(req).Code)
	})
}

func TestAuthMiddlewareRefreshesExpiredSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	id, err := f.auth.SignUp(ctx, "sam@campus.edu", "Campus@2026")
	require.NoError(t, err)
	_, err = f.store.CreateUser(ctx, &models.User{ID: id, Name: "Sam", Email: "sam@campus.edu", Role: models.RoleStudent, Active: true})
	require.NoError(t, err)
	session, err := f.auth.SignIn(ctx, "sam@campus.edu", "Campus@2026")
	require.NoError(t, err)

	expired, err := testsupport.MintToken(secret, id, -time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: expired})
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: session.RefreshToken})

	w := f.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var names []string
	for _, c := range w.Result().Cookies() {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"access_token", "refresh_token"}, names)
}

func TestRequireAdmin(t *testing.T) {
	f := newAuthFixture(t)
	student := f.store.SeedUser("Sam", models.RoleStudent)
	admin := f.store.SeedUser("Ada", models.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", bearer(t, student.UserID, time.Hour))
	assert.Equal(t, http.StatusForbidden, f.do(req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", bearer(t, admin.UserID, time.Hour))
	assert.Equal(t, http.StatusNoContent, f.do(req).Code)
}

func TestErrorHandlerLogsAnsweredErrors(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorHandler(logger))
	r.GET("/answered", func(c *gin.Context) {
		_ = c.Error(errors.New("mongo: server selection timeout"))
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse("internal_error", "internal server error"))
	})
	r.GET("/unanswered", func(c *gin.Context) {
		_ = c.Error(errors.New("redis: connection pool timeout"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/answered", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "server selection")
	assert.Contains(t, logs.String(), "mongo: server selection timeout")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/unanswered", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "request_id")
	assert.Contains(t, logs.String(), "redis: connection pool timeout")
}
