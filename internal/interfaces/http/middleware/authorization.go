package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"bizdesk/internal/domain/permission"
	vo "bizdesk/internal/domain/permission/value_objects"
	"bizdesk/internal/shared/authorization"
	apperrors "bizdesk/internal/shared/errors"
	"bizdesk/internal/shared/logger"
	"bizdesk/internal/shared/utils"
)

// AccessChecker decides a capability on the module registered under a tab URL.
type AccessChecker interface {
	CheckByTabURL(ctx context.Context, subject permission.Subject, tabURL string, capability vo.Capability) (permission.Decision, error)
}

// DecisionRecorder observes authorization outcomes.
type DecisionRecorder interface {
	RecordDecision(rule string, allowed bool, variant string, took time.Duration)
}

// Decision variants reported to the recorder.
const (
	variantExplicit = "explicit"
	variantRoute    = "route"
)

// ruleNoRoute labels requests AuthorizeRoute refused for lack of a table entry.
const ruleNoRoute = "no_route"

// AuthorizationMiddleware gates handlers on the caller's role or on the
// resolver's decision for a module capability. It must run after RequireAuth.
type AuthorizationMiddleware struct {
	checker  AccessChecker
	routes   permission.RouteTable
	recorder DecisionRecorder
	logger   logger.Interface
}

func NewAuthorizationMiddleware(
	checker AccessChecker,
	routes permission.RouteTable,
	recorder DecisionRecorder,
	logger logger.Interface,
) *AuthorizationMiddleware {
	return &AuthorizationMiddleware{
		checker:  checker,
		routes:   routes,
		recorder: recorder,
		logger:   logger,
	}
}

// RequireRole admits callers whose role is at least min.
func (m *AuthorizationMiddleware) RequireRole(min authorization.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, ok := GetSubject(c)
		if !ok {
			utils.ErrorResponseWithError(c, apperrors.NewUnauthorizedError("authentication required"))
			c.Abort()
			return
		}

		if !subject.Role.AtLeast(min) {
			m.logger.Warnw("role check failed",
				"user_id", subject.UserID,
				"role", subject.Role,
				"required", min,
				"path", c.Request.URL.Path,
			)
			utils.ErrorResponseWithError(c, apperrors.NewForbiddenError("insufficient role"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// Authorize admits callers holding capability on the module at tabURL.
func (m *AuthorizationMiddleware) Authorize(capability vo.Capability, tabURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		m.decide(c, permission.RouteTarget{ModuleTabURL: tabURL, Capability: capability}, variantExplicit)
	}
}

// AuthorizeRoute looks the request up in the route table and authorizes the
// capability it names. A request with no entry is refused.
func (m *AuthorizationMiddleware) AuthorizeRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		target, ok, err := m.routes.Match(c.Request.Method, c.Request.URL.Path)
		if err != nil {
			m.logger.Errorw("route table lookup failed",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
			utils.ErrorResponseWithError(c, apperrors.NewInternalError("failed to authorize request"))
			c.Abort()
			return
		}
		if !ok {
			m.logger.Warnw("no route table entry for guarded request",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
			m.record(ruleNoRoute, false, variantRoute, 0)
			utils.ErrorResponseWithError(c, apperrors.NewForbiddenError("access denied", apperrors.DetailNotGranted))
			c.Abort()
			return
		}

		m.decide(c, target, variantRoute)
	}
}

func (m *AuthorizationMiddleware) decide(c *gin.Context, target permission.RouteTarget, variant string) {
	subject, ok := GetSubject(c)
	if !ok {
		utils.ErrorResponseWithError(c, apperrors.NewUnauthorizedError("authentication required"))
		c.Abort()
		return
	}

	start := time.Now()
	decision, err := m.checker.CheckByTabURL(c.Request.Context(), subject, target.ModuleTabURL, target.Capability)
	took := time.Since(start)
	if err != nil {
		m.logger.Errorw("failed to resolve access",
			"user_id", subject.UserID,
			"module", target.ModuleTabURL,
			"capability", target.Capability,
			"error", err,
		)
		utils.ErrorResponseWithError(c, err)
		c.Abort()
		return
	}

	m.record(string(decision.Rule), decision.Allowed, variant, took)

	if !decision.Allowed {
		m.logger.Infow("access denied",
			"user_id", subject.UserID,
			"module", target.ModuleTabURL,
			"capability", target.Capability,
			"rule", decision.Rule,
			"reason", decision.Reason,
		)
		utils.ErrorResponseWithError(c, apperrors.NewForbiddenError("access denied", decision.Reason))
		c.Abort()
		return
	}

	c.Next()
}

func (m *AuthorizationMiddleware) record(rule string, allowed bool, variant string, took time.Duration) {
	if m.recorder != nil {
		m.recorder.RecordDecision(rule, allowed, variant, took)
	}
}
