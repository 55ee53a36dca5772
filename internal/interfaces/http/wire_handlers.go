package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"bizdesk/internal/interfaces/http/handlers"
	"bizdesk/internal/shared/constants"
)

// allHandlers holds the HTTP handler instances.
type allHandlers struct {
	healthHandler     *handlers.HealthHandler
	authHandler       *handlers.AuthHandler
	moduleHandler     *handlers.ModuleHandler
	permissionHandler *handlers.PermissionHandler
	erpHandler        *handlers.ERPHandler
}

func (c *Container) initHandlers() {
	u := c.ucs

	checks := map[string]handlers.Pinger{
		"database": handlers.PingFunc(func(ctx context.Context) error {
			sqlDB, err := c.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
	}
	if c.redis != nil {
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return c.redis.Ping(ctx).Err()
		})
	}

	secureCookie := c.cfg.Server.Mode == constants.EnvProduction || c.cfg.Server.Mode == gin.ReleaseMode

	c.hdlrs = &allHandlers{
		healthHandler: handlers.NewHealthHandler(checks, c.log),
		authHandler:   handlers.NewAuthHandler(u.loginUC, u.getUserUC, secureCookie, c.log),
		moduleHandler: handlers.NewModuleHandler(
			u.addModuleUC,
			u.editModuleUC,
			u.bulkEditModulesUC,
			u.deleteModuleUC,
			u.listModulesUC,
			u.getModuleUC,
			u.getModuleTreeUC,
			c.log,
		),
		permissionHandler: handlers.NewPermissionHandler(
			u.editPermissionsUC,
			u.deletePermissionUC,
			u.getUserPermissionsUC,
			u.resolvePermissionsUC,
			c.svcs.access,
			c.log,
		),
		erpHandler: handlers.NewERPHandler(),
	}
}
