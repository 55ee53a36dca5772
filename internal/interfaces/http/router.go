package http

import (
	"github.com/gin-gonic/gin"

	"bizdesk/internal/interfaces/http/middleware"
	"bizdesk/internal/shared/authorization"
)

func (c *Container) setupRoutes() {
	r := c.engine
	h := c.hdlrs
	authn := c.authMiddleware.RequireAuth()
	admin := c.authorizationMiddleware.RequireRole(authorization.RoleAdmin)

	r.Use(middleware.RequestID(c.log))
	r.Use(middleware.CustomLogger(c.log, c.svcs.metrics))
	r.Use(middleware.Recovery(c.log))
	r.Use(middleware.CORS(c.cfg.Server.AllowedOrigins))

	r.GET("/health", h.healthHandler.Health)
	r.GET("/metrics", gin.WrapH(c.svcs.metrics.Handler()))

	auth := r.Group("/auth")
	{
		login := []gin.HandlerFunc{h.authHandler.Login}
		if c.svcs.loginLimiter != nil {
			login = append([]gin.HandlerFunc{middleware.RateLimitByIP(c.svcs.loginLimiter, c.log)}, login...)
		}
		auth.POST("/login", login...)
		auth.GET("/me", authn, h.authHandler.GetCurrentUser)
	}

	modules := r.Group("/modules")
	modules.Use(authn, admin)
	{
		modules.POST("", h.moduleHandler.CreateModule)
		modules.GET("", h.moduleHandler.ListModules)
		modules.PATCH("", h.moduleHandler.BulkUpdateModules)
		modules.GET("/tree", h.moduleHandler.GetModuleTree)
		modules.GET("/:id", h.moduleHandler.GetModule)
		modules.PATCH("/:id", h.moduleHandler.UpdateModule)
		modules.DELETE("/:id", h.moduleHandler.DeleteModule)
	}

	permissions := r.Group("/permissions")
	permissions.Use(authn)
	{
		permissions.GET("/me", h.permissionHandler.GetMyPermissions)
		permissions.GET("/me/check", h.permissionHandler.CheckMyPermission)

		users := permissions.Group("/users/:user_id")
		users.Use(admin)
		{
			users.GET("", h.permissionHandler.GetUserPermissions)
			users.PUT("", h.permissionHandler.EditPermissions)
			users.GET("/effective", h.permissionHandler.GetEffectivePermissions)
			users.DELETE("/modules/:module_id", h.permissionHandler.DeletePermission)
			users.GET("/modules/:module_id/children", h.permissionHandler.GetModuleSubtreePermissions)
		}
	}

	// ERP routes are placeholders; the route table decides which module and
	// capability each one needs, and unmapped paths are denied.
	erp := r.Group("/erp")
	erp.Use(authn, c.authorizationMiddleware.AuthorizeRoute())
	{
		erp.Any("/*path", h.erpHandler.Handle)
	}
}
