package http

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"bizdesk/internal/infrastructure/config"
	"bizdesk/internal/interfaces/http/handlers"
	"bizdesk/internal/interfaces/http/middleware"
	"bizdesk/internal/shared/logger"
)

// Container holds the infrastructure, repositories, use cases and handlers of
// the HTTP server and wires them together.
type Container struct {
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	repos *repositories
	svcs  *services
	ucs   *allUseCases
	hdlrs *allHandlers

	authMiddleware          *middleware.AuthMiddleware
	authorizationMiddleware *middleware.AuthorizationMiddleware
}

// NewContainer builds the whole object graph. redisClient may be nil when
// Redis is disabled; grants are then read straight from the database and
// login attempts are not throttled.
func NewContainer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log logger.Interface) (*Container, error) {
	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}

	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
		redis:  redisClient,
	}

	c.initRepositories()
	if err := c.initServices(); err != nil {
		return nil, err
	}
	c.initUseCases()
	c.initHandlers()

	c.authMiddleware = middleware.NewAuthMiddleware(c.svcs.jwt, log)
	c.authorizationMiddleware = middleware.NewAuthorizationMiddleware(
		c.svcs.access, c.svcs.routes, c.svcs.metrics, log,
	)

	c.setupRoutes()
	return c, nil
}

// Engine returns the configured gin engine.
func (c *Container) Engine() *gin.Engine {
	return c.engine
}
