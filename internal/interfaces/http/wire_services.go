package http

import (
	"fmt"
	"time"

	apppermission "bizdesk/internal/application/permission"
	permissionusecases "bizdesk/internal/application/permission/usecases"
	"bizdesk/internal/domain/permission"
	"bizdesk/internal/infrastructure/auth"
	"bizdesk/internal/infrastructure/cache"
	"bizdesk/internal/infrastructure/metrics"
	infrapermission "bizdesk/internal/infrastructure/permission"
	"bizdesk/internal/infrastructure/ratelimit"
	"bizdesk/internal/shared/authorization"
	"bizdesk/internal/shared/services/sanitize"
)

// services holds the infrastructure services shared by use cases and
// middlewares.
type services struct {
	jwt       *auth.JWTService
	hasher    *auth.BcryptPasswordHasher
	sanitizer sanitize.TextSanitizer
	metrics   *metrics.Metrics

	// grantReads serves the resolver; it is the cached repository when
	// Redis is enabled.
	grantReads  permission.Repository
	invalidator permissionusecases.GrantCacheInvalidator

	resolver *permission.Resolver
	access   *apppermission.Service
	routes   *infrapermission.RouteTable

	// loginLimiter is nil when Redis is disabled.
	loginLimiter *ratelimit.RedisRateLimiter
}

func (c *Container) initServices() error {
	hasher, err := auth.NewBcryptPasswordHasher(c.cfg.Auth.Password.BcryptCost)
	if err != nil {
		return fmt.Errorf("invalid auth.password.bcrypt_cost: %w", err)
	}

	s := &services{
		jwt:        auth.NewJWTService(c.cfg.Auth.JWT.Secret, c.cfg.Auth.JWT.AccessExpMinutes),
		hasher:     hasher,
		sanitizer:  sanitize.NewTextSanitizer(),
		metrics:    metrics.NewMetrics(),
		grantReads: c.repos.permissionRepo,
	}

	if c.redis != nil {
		ttl := time.Duration(c.cfg.Access.CacheTTLSeconds) * time.Second
		grantCache := cache.NewPermissionCache(c.redis, ttl, c.log)
		cached := cache.NewCachedPermissionRepository(c.repos.permissionRepo, grantCache, c.log)
		s.grantReads = cached
		s.invalidator = cached

		s.loginLimiter = ratelimit.NewRedisRateLimiter(c.redis, "login", ratelimit.Config{
			RequestsPerMinute: c.cfg.Auth.LoginRateLimit.PerMinute,
			RequestsPerHour:   c.cfg.Auth.LoginRateLimit.PerHour,
		})
	}

	policy := permission.DefaultPolicy()
	if c.cfg.Access.BypassRole != "" {
		role := authorization.UserRole(c.cfg.Access.BypassRole)
		if !role.IsValid() {
			return fmt.Errorf("invalid access.bypass_role: %q", c.cfg.Access.BypassRole)
		}
		policy.BypassRole = role
	}
	s.resolver = permission.NewResolver(c.repos.moduleRepo, s.grantReads, policy)
	s.access = apppermission.NewService(c.repos.moduleRepo, s.resolver, c.log)

	if c.cfg.Access.PersistRoutes {
		s.routes, err = infrapermission.NewPersistentRouteTable(c.db, c.cfg.Access.Routes, c.log)
	} else {
		s.routes, err = infrapermission.NewRouteTable(c.cfg.Access.Routes, c.log)
	}
	if err != nil {
		return fmt.Errorf("failed to build route table: %w", err)
	}

	c.svcs = s
	return nil
}
