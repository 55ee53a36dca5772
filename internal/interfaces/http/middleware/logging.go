package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"bizdesk/internal/shared/constants"
	"bizdesk/internal/shared/logger"
)

// RequestRecorder counts served requests by matched route.
type RequestRecorder interface {
	RecordRequest(method, route string, status int)
}

// CustomLogger logs one line per request and, when recorder is set, counts it.
func CustomLogger(log logger.Interface, recorder RequestRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		if recorder != nil {
			recorder.RecordRequest(c.Request.Method, c.FullPath(), status)
		}

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"body_size", c.Writer.Size(),
		}
		if requestID := c.GetString(constants.ContextKeyRequestID); requestID != "" {
			args = append(args, "request_id", requestID)
		}
		if userID, ok := GetUserID(c); ok {
			args = append(args, "user_id", userID)
		}
		if len(c.Errors) > 0 {
			args = append(args, "error", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Errorw("HTTP request completed with server error", args...)
		case status >= 400:
			log.Warnw("HTTP request completed with client error", args...)
		default:
			log.Debugw("HTTP request completed", args...)
		}
	}
}
