package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"anonrelay/logger"
	"anonrelay/service/ratelimit"
)

// RateLimit enforces a preset for plain request/response routes, keyed by
// client IP. Limit state always goes out in the standard headers; rejections
// answer 429 with a retryAfter the client can honor.
func RateLimit(limiter *ratelimit.PresetLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := limiter.Admit(c.Request.Context(), c.ClientIP())

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

		if !d.Allowed {
			retry := d.RetryAfter(time.Now())
			c.Header("Retry-After", strconv.Itoa(retry))
			logger.Warnf("[http] rate limit exceeded ip=%s path=%s", c.ClientIP(), c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message":    "rate limit exceeded",
				"retryAfter": retry,
			})
			return
		}
		c.Next()
	}
}
