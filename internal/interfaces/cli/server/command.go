package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"bizdesk/internal/infrastructure/database"
	"bizdesk/internal/infrastructure/migration"
	"bizdesk/internal/interfaces/cli/bootstrap"
	httpRouter "bizdesk/internal/interfaces/http"
	"bizdesk/internal/shared/constants"
	"bizdesk/internal/shared/goroutine"
)

type serverFlags struct {
	autoMigrate bool
}

func NewCommand(opts *bootstrap.Options) *cobra.Command {
	flags := &serverFlags{}
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the bizdesk HTTP server with the module registry, permission and ERP routes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.autoMigrate, "auto-migrate", false, "Run database migrations on startup")

	return cmd
}

func run(ctx context.Context, opts *bootstrap.Options, flags *serverFlags) error {
	rt, err := bootstrap.Load(opts)
	if err != nil {
		return err
	}
	cfg, log := rt.Config, rt.Log

	log.Infow("starting server", "environment", rt.Env, "auto_migrate", flags.autoMigrate)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	db, err := rt.OpenDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	if flags.autoMigrate {
		if rt.Env == constants.EnvProduction {
			log.Warnw("auto-migration is enabled in production")
		}
		manager, err := migration.NewManager(cfg.Database.Migration, rt.Env, cfg.Database.Driver)
		if err != nil {
			return err
		}
		if err := manager.Migrate(ctx, db); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
	}

	redisClient, err := rt.OpenRedis(ctx)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	container, err := httpRouter.NewContainer(cfg, db, redisClient, log)
	if err != nil {
		return fmt.Errorf("failed to build http container: %w", err)
	}

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      container.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Infow("server listening", "address", srv.Addr, "mode", cfg.Server.Mode)
	serveErr := goroutine.Go(log, "http-server", func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}

	log.Infow("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}
