package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedisRateLimiter initializes the shared Redis client used by the
// limiters below. If addr is empty or the ping fails, redisClient stays
// nil and every limiter acts fail-open.
func InitRedisRateLimiter(addr, password string, db int) {
	if addr == "" {
		return
	}
	redisClient = redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient = nil
	}
}

// RedisRateLimit is a fixed-window per-IP limiter using Redis
// INCR/EXPIRE. Key format: rl:<window_seconds>:<ip>
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		if !allow(c, key, maxRequests, window, c.FullPath()) {
			return
		}
		c.Next()
	}
}

// UserRateLimit limits ledger-affecting actions per authenticated user
// rather than per IP. Requires JWT to have run.
func UserRateLimit(maxActions int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userID, ok := userIDVal.(int64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid user"})
			return
		}

		key := "url:" + strconv.FormatInt(userID, 10) + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		if !allow(c, key, maxActions, window, "user:"+c.FullPath()) {
			return
		}
		c.Next()
	}
}

func allow(c *gin.Context, key string, maxRequests int, window time.Duration, label string) bool {
	ctx := context.Background()

	val, err := redisClient.Incr(ctx, key).Result()
	if err != nil {
		// On Redis error, fail-open but mark the response.
		c.Header("X-RateLimit-Error", "redis-error")
		return true
	}

	if val == 1 {
		redisClient.Expire(ctx, key, window)
	}

	if val > int64(maxRequests) {
		RLBlocked.WithLabelValues(label).Inc()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
		return false
	}

	RLRequests.WithLabelValues(label).Inc()
	return true
}
