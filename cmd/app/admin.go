package app

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trinitydb/impossible-trinity/internal/api/handler/v1/request"
	"github.com/trinitydb/impossible-trinity/internal/repository"
	"github.com/trinitydb/impossible-trinity/internal/repository/dao"
	"github.com/trinitydb/impossible-trinity/internal/service"
)

var (
	adminUsername string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	Example: `  trinity create-admin --username root --password 's3cretpass'`,
	RunE: runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().StringVarP(&adminUsername, "username", "u", "", "admin username")
	createAdminCmd.Flags().StringVarP(&adminPassword, "password", "p", "", "admin password")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	req := request.RegisterRequest{Username: adminUsername, Password: adminPassword}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid credentials -> %w", err)
	}

	_, database, err := bootstrap()
	if err != nil {
		return err
	}

	svc := service.NewAuthService(repository.NewUserRepository(dao.NewUserDAO(database)))
	user, err := svc.CreateAdmin(cmd.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateUsername) {
			return fmt.Errorf("user %q already exists", req.Username)
		}

		return fmt.Errorf("svc.CreateAdmin -> %w", err)
	}

	zap.L().Info("admin created", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	fmt.Fprintf(cmd.OutOrStdout(), "Admin user %q created. Log in at /login to reach /admin.\n", user.Username)

	return nil
}
