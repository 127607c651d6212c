package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventhub/internal/helpers"
	"github.com/joshua-takyi/eventhub/internal/models"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter per caller and scope kept in Redis.
// A nil *RateLimiter allows everything.
type RateLimiter struct {
	redis  redis.Cmdable
	limit  int64
	window time.Duration
	logger *slog.Logger
}

func NewRateLimiter(client redis.Cmdable, limit int, window time.Duration, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		redis:  client,
		limit:  int64(limit),
		window: window,
		logger: logger,
	}
}

func rateLimitIdentity(c *gin.Context) string {
	if value, ok := c.Get(helpers.ActorContextKey); ok {
		if actor, ok := value.(models.Actor); ok {
			return "user:" + actor.UserID.String()
		}
	}
	return "ip:" + c.ClientIP()
}

func RateLimitKey(scope, identity string) string {
	return fmt.Sprintf("ratelimit:%s:%s", scope, identity)
}

// Limit throttles requests in scope. Redis failures let the request through.
func (r *RateLimiter) Limit(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if r == nil || r.redis == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := RateLimitKey(scope, rateLimitIdentity(c))

		// ExpireNX on every hit starts the window once and repairs a key
		// that lost its TTL, so a counter can never outlive its window.
		var incr *redis.IntCmd
		_, err := r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, key)
			pipe.ExpireNX(ctx, key, r.window)
			return nil
		})
		if err != nil {
			r.logger.Warn("Rate limiter unavailable", "key", key, "error", err)
			c.Next()
			return
		}
		count := incr.Val()

		if count > r.limit {
			c.Header("Retry-After", strconv.Itoa(int(r.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				models.ErrorResponse("rate_limited", "too many requests, please try again later"))
			return
		}
		c.Next()
	}
}
