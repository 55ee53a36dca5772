package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bizdesk/internal/shared/constants"
	"bizdesk/internal/shared/logger"
)

const maxRequestIDLength = 128

// RequestID propagates the caller's X-Request-ID or mints one, and puts a
// request-scoped logger on the request context.
func RequestID(base logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderXRequestID)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}

		c.Set(constants.ContextKeyRequestID, requestID)
		c.Header(constants.HeaderXRequestID, requestID)

		ctx := logger.IntoContext(c.Request.Context(), base.With("request_id", requestID))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
