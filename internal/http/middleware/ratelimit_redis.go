package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"task_api/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

const tooManyRequests = "rate limit exceeded"

// ConnectRedis returns a client for addr, or nil when addr is empty or the
// server does not answer a ping. A nil client makes RateLimiter use its
// in-process buckets instead.
func ConnectRedis(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, using in-process rate limits", "addr", addr, "error", err)
		_ = client.Close()
		return nil
	}
	logger.Info("redis connected", "addr", addr)
	return client
}

// RateLimiter implements fixed-window limits with Redis INCR/EXPIRE.
// key format: rl:<scope>:<window_seconds>:<identifier>
type RateLimiter struct {
	redis *redis.Client
	local *localLimiter
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{redis: client, local: newLocalLimiter()}
}

// ByIP limits requests per client IP.
func (l *RateLimiter) ByIP(scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		l.limit(c, scope, c.ClientIP(), maxRequests, window)
	}
}

// ByUser limits requests per authenticated user. It must run after AuthGate.
func (l *RateLimiter) ByUser(scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentUserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		l.limit(c, scope, id.String(), maxRequests, window)
	}
}

func (l *RateLimiter) limit(c *gin.Context, scope, ident string, maxRequests int, window time.Duration) {
	if maxRequests <= 0 || window <= 0 {
		c.Next()
		return
	}
	endpoint := scope + ":" + c.FullPath()

	if l.redis == nil {
		if !l.local.allow(scope+":"+ident, maxRequests, window) {
			l.reject(c, endpoint, window)
			return
		}
		RLRequests.WithLabelValues(endpoint).Inc()
		c.Next()
		return
	}

	key := "rl:" + scope + ":" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + ident
	ctx := c.Request.Context()

	val, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		// fail-open
		logger.FromContext(ctx).Warn("rate limiter redis error", "error", err, "scope", scope)
		c.Header("X-RateLimit-Error", "redis-error")
		c.Next()
		return
	}
	if val == 1 {
		l.redis.Expire(ctx, key, window)
	}

	c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

	if val > int64(maxRequests) {
		l.reject(c, endpoint, window)
		return
	}

	RLRequests.WithLabelValues(endpoint).Inc()
	c.Next()
}

func (l *RateLimiter) reject(c *gin.Context, endpoint string, window time.Duration) {
	RLBlocked.WithLabelValues(endpoint).Inc()
	c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": tooManyRequests})
}
