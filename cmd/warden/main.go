// @title						Warden API
// @version					1.0
// @description				Tenant admin access control: user groups, memberships and capability checks.
// @BasePath					/
// @securityDefinitions.apikey	Bearer
// @in							header
// @name						Authorization
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/orris-inc/warden/internal/interfaces/cli/migrate"
	"github.com/orris-inc/warden/internal/interfaces/cli/permissions"
	"github.com/orris-inc/warden/internal/interfaces/cli/server"
	"github.com/orris-inc/warden/internal/interfaces/cli/users"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "warden",
		Short: "Warden - tenant admin access control",
		Long:  `Warden serves the admin access gate and user group administration, with migration, permission seeding and account tools.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		permissions.NewCommand(),
		users.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
