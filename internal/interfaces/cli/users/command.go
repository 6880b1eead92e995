// Package users holds account bootstrap commands.
package users

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orris-inc/warden/internal/application/auth/dto"
	"github.com/orris-inc/warden/internal/application/auth/usecases"
	"github.com/orris-inc/warden/internal/infrastructure/auth"
	"github.com/orris-inc/warden/internal/infrastructure/database"
	"github.com/orris-inc/warden/internal/infrastructure/repository"
	"github.com/orris-inc/warden/internal/interfaces/cli/cliutil"
)

var (
	flags cliutil.Flags

	createReq dto.CreateUserRequest
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Account management",
	}

	flags.Bind(cmd)

	cmd.AddCommand(
		newCreateCommand(),
		newActiveCommand("activate", "Reactivate an account", true),
		newActiveCommand("deactivate", "Deactivate an account; its next request is logged out", false),
	)

	return cmd
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		RunE:  runCreate,
	}

	f := cmd.Flags()
	f.UintVar(&createReq.TenantID, "tenant", 1, "Tenant ID")
	f.StringVar(&createReq.Name, "name", "", "Display name")
	f.StringVar(&createReq.Email, "email", "", "Email address")
	f.StringVar(&createReq.Password, "password", "", "Initial password")
	f.StringSliceVar(&createReq.Roles, "roles", nil, "Role slugs, comma separated")
	f.BoolVar(&createReq.MustChangePassword, "must-change-password", true, "Force a password change at first login")
	for _, name := range []string{"name", "email", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func newActiveCommand(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <email>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, err := cliutil.Setup(&flags)
			if err != nil {
				return err
			}
			defer database.Close()

			uc := usecases.NewSetUserActiveUseCase(repository.NewUserRepository(database.Get(), log), log)
			if err := uc.Execute(cmd.Context(), args[0], active); err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", use, args[0])
			return nil
		},
	}
}

func runCreate(cmd *cobra.Command, args []string) error {
	cfg, log, err := cliutil.Setup(&flags)
	if err != nil {
		return err
	}
	defer database.Close()

	gdb := database.Get()
	uc := usecases.NewCreateUserUseCase(
		repository.NewUserRepository(gdb, log),
		repository.NewRoleRepository(gdb, log),
		auth.NewBcryptPasswordHasher(cfg.Auth.Password.BcryptCost),
		log,
	)

	resp, err := uc.Execute(cmd.Context(), createReq)
	if err != nil {
		return err
	}

	fmt.Printf("Created user %d <%s> roles=%v\n", resp.ID, resp.Email, resp.Roles)
	return nil
}
