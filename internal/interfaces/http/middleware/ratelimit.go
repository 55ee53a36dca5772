package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"bizdesk/internal/shared/logger"
	"bizdesk/internal/shared/utils"
)

// Limiter reports whether one more hit for key is within budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimitByIP throttles per client IP. When the limiter backend fails the
// request is let through.
func RateLimitByIP(limiter Limiter, log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Warnw("rate limiter unavailable", "error", err, "client_ip", c.ClientIP())
			c.Next()
			return
		}
		if !allowed {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}
