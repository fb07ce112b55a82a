package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"uiet-connect/backend/pkg/redis"
	"uiet-connect/backend/pkg/response"
)

// RateKey picks the bucket a request is counted in
type RateKey func(c *gin.Context) string

// ByClientIP one bucket per client address
func ByClientIP(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// ByDepartment one bucket per tenant. Must run after JWTAuth; falls back to
// the client address when no department was injected.
func ByDepartment(c *gin.Context) string {
	if dept := c.GetString(ContextDepartmentID); dept != "" {
		return "dept:" + dept
	}
	return ByClientIP(c)
}

// RateLimit sliding window on Redis, per bucket and route.
// A nil rdb, limit <= 0 or a Redis error lets the request through.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, key RateKey) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		bucket := fmt.Sprintf("rate_limit:%s:%s", key(c), c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), bucket, limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			response.Error(c, http.StatusTooManyRequests, 10004, "too many requests, retry later")
			c.Abort()
			return
		}

		c.Next()
	}
}
