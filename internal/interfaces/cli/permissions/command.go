// Package permissions holds the commands that keep the permission
// catalogue and role dispositions in step with the capability registry.
package permissions

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/orris-inc/warden/internal/infrastructure/database"
	infraPermission "github.com/orris-inc/warden/internal/infrastructure/permission"
	"github.com/orris-inc/warden/internal/interfaces/cli/cliutil"
)

var (
	flags    cliutil.Flags
	roleFile string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "permissions",
		Short: "Permission catalogue and role seeding",
	}

	flags.Bind(cmd)

	cmd.AddCommand(
		newSeedCommand(),
		newSyncCommand(),
		newCheckCommand(),
	)

	return cmd
}

func newSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Sync the catalogue and apply role grants and denies from a role file",
		RunE:  runSeed,
	}

	cmd.Flags().StringVarP(&roleFile, "file", "f", "", "Role file (default: permission.roles_file from config)")

	return cmd
}

func newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Insert registered capabilities missing from the permissions table",
		RunE:  runSync,
	}
}

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report drift between the permissions table and the registry",
		RunE:  runCheck,
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, log, err := cliutil.Setup(&flags)
	if err != nil {
		return err
	}
	defer database.Close()

	path := roleFile
	if path == "" {
		path = cfg.Permission.RolesFile
	}
	file, err := infraPermission.LoadRoleFile(path)
	if err != nil {
		return err
	}

	seeder, err := cliutil.NewSeeder(database.Get(), log)
	if err != nil {
		return err
	}
	if err := seeder.Seed(cmd.Context(), file); err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	fmt.Printf("Seeded %d roles from %s\n", len(file.Roles), path)
	return nil
}

func runSync(cmd *cobra.Command, args []string) error {
	_, log, err := cliutil.Setup(&flags)
	if err != nil {
		return err
	}
	defer database.Close()

	seeder, err := cliutil.NewSeeder(database.Get(), log)
	if err != nil {
		return err
	}
	added, err := seeder.SyncCatalog(cmd.Context())
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Printf("Registered %d new permissions\n", added)
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	_, log, err := cliutil.Setup(&flags)
	if err != nil {
		return err
	}
	defer database.Close()

	seeder, err := cliutil.NewSeeder(database.Get(), log)
	if err != nil {
		return err
	}
	drift, err := seeder.Check(cmd.Context())
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if drift.Clean() {
		fmt.Println("Permission catalogue is in sync")
		return nil
	}
	if len(drift.Missing) > 0 {
		fmt.Printf("Missing from table:\n  %s\n", strings.Join(drift.Missing, "\n  "))
	}
	if len(drift.Orphans) > 0 {
		fmt.Printf("Not in registry:\n  %s\n", strings.Join(drift.Orphans, "\n  "))
	}
	return fmt.Errorf("permission catalogue drift: %d missing, %d orphaned", len(drift.Missing), len(drift.Orphans))
}
