// Package bootstrap loads configuration and opens the shared resources every
// CLI command needs.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"bizdesk/internal/infrastructure/config"
	"bizdesk/internal/infrastructure/database"
	"bizdesk/internal/shared/constants"
	"bizdesk/internal/shared/logger"
)

// Options are the global flags of the bizdesk command.
type Options struct {
	Env        string
	ConfigPath string
}

// Environment returns the effective environment. BIZDESK_ENV wins over the flag.
func (o *Options) Environment() string {
	if v := os.Getenv("BIZDESK_ENV"); v != "" {
		return v
	}
	if o.Env == "" {
		return constants.EnvDevelopment
	}
	return o.Env
}

// Runtime is what a command works with once bootstrapped.
type Runtime struct {
	Env    string
	Config *config.Config
	Log    logger.Interface
}

// Load reads the configuration and initializes the process logger.
func Load(opts *Options) (*Runtime, error) {
	env := opts.Environment()

	cfg, err := config.Load("", opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Server.Mode = GinMode(env)

	debug := cfg.Server.Mode == "debug"
	if err := logger.Init(&cfg.Logger, debug); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return &Runtime{Env: env, Config: cfg, Log: logger.NewLogger()}, nil
}

// OpenDatabase connects the configured database and registers it for
// database.Get. The caller closes it with database.Close.
func (r *Runtime) OpenDatabase() (*gorm.DB, error) {
	if err := database.Init(&r.Config.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return database.Get(), nil
}

// OpenRedis returns nil when Redis is disabled.
func (r *Runtime) OpenRedis(ctx context.Context) (*redis.Client, error) {
	if !r.Config.Redis.Enabled {
		r.Log.Infow("redis disabled, grant cache and login throttling are off")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     r.Config.Redis.GetAddr(),
		Password: r.Config.Redis.Password,
		DB:       r.Config.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", r.Config.Redis.GetAddr(), err)
	}

	r.Log.Infow("redis connection established", "addr", r.Config.Redis.GetAddr())
	return client, nil
}

// GinMode maps an environment name to a gin mode.
func GinMode(environment string) string {
	switch strings.ToLower(environment) {
	case constants.EnvProduction, "prod", "release":
		return "release"
	case constants.EnvTest, "testing":
		return "test"
	default:
		return "debug"
	}
}
