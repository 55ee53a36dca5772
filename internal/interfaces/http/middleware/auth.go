package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"bizdesk/internal/domain/permission"
	"bizdesk/internal/infrastructure/auth"
	"bizdesk/internal/shared/authorization"
	"bizdesk/internal/shared/constants"
	apperrors "bizdesk/internal/shared/errors"
	"bizdesk/internal/shared/logger"
	"bizdesk/internal/shared/utils"
)

// TokenVerifier checks an access token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	tokens TokenVerifier
	logger logger.Interface
}

func NewAuthMiddleware(tokens TokenVerifier, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		logger: logger,
	}
}

// RequireAuth resolves the caller from a Bearer header or the access token
// cookie and stores their id and role on the context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			token = utils.GetTokenFromCookie(c, utils.AccessTokenCookie)
		}
		if token == "" {
			utils.ErrorResponseWithError(c, apperrors.NewUnauthorizedError("missing authorization token"))
			c.Abort()
			return
		}

		claims, err := m.tokens.Verify(token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				m.logger.Debugw("access token expired", "path", c.Request.URL.Path)
				utils.ErrorResponseWithError(c, apperrors.NewUnauthorizedError("token expired"))
			} else {
				m.logger.Warnw("failed to verify token", "error", err)
				utils.ErrorResponseWithError(c, apperrors.NewUnauthorizedError("invalid token"))
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, claims.UserID)
		c.Set(constants.ContextKeyUserRole, claims.Role)

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(constants.HeaderAuthorization)
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// GetSubject returns the authenticated caller set by RequireAuth.
func GetSubject(c *gin.Context) (permission.Subject, bool) {
	userID, ok := GetUserID(c)
	if !ok {
		return permission.Subject{}, false
	}
	role, _ := c.Get(constants.ContextKeyUserRole)
	r, _ := role.(authorization.UserRole)
	return permission.Subject{UserID: userID, Role: r}, true
}

// GetUserID returns the authenticated caller's id.
func GetUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}
