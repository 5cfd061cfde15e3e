package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stoicjournal/stoic/internal/config"
	"github.com/stoicjournal/stoic/internal/db"
	"github.com/stoicjournal/stoic/internal/repository"
	"github.com/stoicjournal/stoic/internal/service"
	"github.com/stoicjournal/stoic/internal/validation"
)

func TokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <email>",
		Short: "Issue a JWT for an existing user, for use as a Bearer token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			conn, err := db.Init(cfg.DBDriver, cfg.DBConnection)
			if err != nil {
				return err
			}
			defer conn.Close()

			userRepository := repository.NewUserRepository(conn)
			user, err := userRepository.ByEmail(cmd.Context(), validation.NormalizeEmail(args[0]))
			if err != nil {
				return fmt.Errorf("failed to find user %q: %w", args[0], err)
			}

			authService := service.NewAuthService(
				userRepository,
				repository.NewProfileRepository(conn),
				repository.NewTokenRepository(conn),
				service.NewEmailService("", cfg.EmailFrom, cfg.AppURL, cfg.AppName, true),
				cfg.JWTSecret,
				cfg.IsProduction(),
				cfg.JWTExpiry,
				cfg.TokenPasswordResetExpiry,
			)

			token, expiresAt, err := authService.GenerateJWT(user)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.UTC().Format("2006-01-02 15:04:05 MST"))
			return nil
		},
	}
}
