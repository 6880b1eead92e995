// Package cliutil bootstraps configuration, logging and the database for
// the cobra commands.
package cliutil

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/orris-inc/warden/internal/infrastructure/config"
	"github.com/orris-inc/warden/internal/infrastructure/database"
	infraPermission "github.com/orris-inc/warden/internal/infrastructure/permission"
	"github.com/orris-inc/warden/internal/infrastructure/repository"
	"github.com/orris-inc/warden/internal/shared/biztime"
	"github.com/orris-inc/warden/internal/shared/db"
	"github.com/orris-inc/warden/internal/shared/logger"
)

// Flags are the persistent flags every command accepts.
type Flags struct {
	Env        string
	ConfigPath string
}

// Bind registers --env and --config on cmd.
func (f *Flags) Bind(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&f.Env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&f.ConfigPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
}

// Environment returns --env, overridden by the ENV variable.
func (f *Flags) Environment() string {
	if v := os.Getenv("ENV"); v != "" {
		return v
	}
	return f.Env
}

// Setup loads configuration, initialises the logger and business timezone,
// and opens the global database connection. Callers close it with
// database.Close.
func Setup(f *Flags) (*config.Config, logger.Interface, error) {
	env := f.Environment()

	cfg, err := config.Load(env, f.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Server.Mode = GinMode(env)

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return cfg, logger.NewLogger(), nil
}

// GinMode maps an environment name to a gin mode.
func GinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}

// NewSeeder builds the permission seeder over gdb.
func NewSeeder(gdb *gorm.DB, log logger.Interface) (*infraPermission.Seeder, error) {
	enforcer, err := infraPermission.NewEnforcer(gdb, log.Named("casbin"))
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}
	return infraPermission.NewSeeder(
		db.NewTransactionManager(gdb),
		repository.NewPermissionCatalogRepository(gdb, log),
		repository.NewRoleRepository(gdb, log),
		infraPermission.NewPolicyStore(gdb, log),
		enforcer,
		log.Named("permission.seeder"),
	), nil
}
