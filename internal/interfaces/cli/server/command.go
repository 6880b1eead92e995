package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/orris-inc/warden/internal/infrastructure/config"
	"github.com/orris-inc/warden/internal/infrastructure/database"
	"github.com/orris-inc/warden/internal/infrastructure/migration"
	"github.com/orris-inc/warden/internal/interfaces/cli/cliutil"
	httpRouter "github.com/orris-inc/warden/internal/interfaces/http"
	"github.com/orris-inc/warden/internal/shared/constants"
	"github.com/orris-inc/warden/internal/shared/logger"
)

var (
	flags              cliutil.Flags
	autoMigrate        bool
	skipMigrationCheck bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the Warden admin HTTP server with specified configuration.`,
		RunE:  run,
	}

	flags.Bind(cmd)
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Automatically run database migrations on startup (not recommended for production)")
	cmd.Flags().BoolVar(&skipMigrationCheck, "skip-migration-check", false, "Skip migration status check on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, log, err := cliutil.Setup(&flags)
	if err != nil {
		return err
	}
	defer database.Close()

	env := flags.Environment()
	log.Infow("starting server",
		"environment", env,
		"auto_migrate", autoMigrate,
	)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	ctx := context.Background()

	if err := handleMigrations(ctx, env, cfg, log); err != nil {
		return fmt.Errorf("migration handling failed: %w", err)
	}

	seeder, err := cliutil.NewSeeder(database.Get(), log)
	if err != nil {
		return err
	}
	added, err := seeder.SyncCatalog(ctx)
	if err != nil {
		return fmt.Errorf("failed to sync permission catalogue: %w", err)
	}
	if added > 0 {
		log.Infow("registered new permissions", "count", added)
	}

	rdb, err := connectRedis(cfg, log)
	if err != nil {
		return err
	}

	container, err := httpRouter.NewContainer(database.Get(), rdb, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}

	router := httpRouter.NewRouter(container)
	if err := router.SetupRoutes(); err != nil {
		return fmt.Errorf("failed to set up routes: %w", err)
	}
	container.StartBackground()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.GetEngine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infow("server starting",
			"address", cfg.Server.GetAddr(),
			"mode", cfg.Server.Mode,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		log.Errorw("failed to start server", "error", err)
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	log.Infow("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}
	if err := container.Shutdown(shutdownCtx); err != nil {
		log.Warnw("background shutdown incomplete", "error", err)
	}

	log.Infow("server exited gracefully")
	return nil
}

// connectRedis returns nil when no redis host is configured.
func connectRedis(cfg *config.Config, log logger.Interface) (*redis.Client, error) {
	if cfg.Redis.Host == "" {
		log.Warnw("redis not configured, login attempts will not be throttled")
		return nil, nil
	}
	rdb, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

func handleMigrations(ctx context.Context, environment string, cfg *config.Config, log logger.Interface) error {
	if skipMigrationCheck {
		log.Infow("skipping migration check")
		return nil
	}

	manager := migration.NewManager(environment, cfg.Database.Driver, log)

	if autoMigrate {
		if environment == constants.EnvProduction {
			log.Warnw("auto-migration is enabled in production environment - this is not recommended!")
		}
		return manager.Migrate(ctx, database.Get())
	}

	goose, ok := manager.Strategy().(*migration.GooseStrategy)
	if !ok {
		// Auto-migrate strategies have no version table; keep the schema current.
		return manager.Migrate(ctx, database.Get())
	}

	version, err := goose.Version(ctx, database.Get())
	if err != nil {
		log.Warnw("failed to check migration status", "error", err)
		return nil
	}
	log.Infow("current migration version", "version", version)
	return nil
}
