package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/371050/study-pwa/internal/platform/database"
	"github.com/371050/study-pwa/internal/service/auth"
)

func newMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate <up|down|reset|status|version>",
		Short:     "Run a schema migration command against the configured database",
		Args:      exactArgs(1),
		ValidArgs: []string{"up", "down", "reset", "status", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "up", "down", "reset", "status", "version":
			default:
				return usageError("unknown migration command %q", args[0])
			}
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			return database.Migrate(cmd.Context(), cfg.Database, args[0], opts.logger(cmd, cfg))
		},
	}
}

func newTokenCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "token <client-name>",
		Short: "Issue a bearer token for the HTTP API",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			if !cfg.Auth.Enabled() {
				return errors.New("auth.jwt_secret is not configured")
			}
			jwtService, err := auth.NewJWTService(cfg.Auth)
			if err != nil {
				return err
			}
			token, err := jwtService.GenerateToken(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data := map[string]interface{}{
				"client":           args[0],
				"token":            token,
				"lifetime_minutes": cfg.Auth.TokenLifetimeMinutes,
			}
			return opts.printer(cmd.OutOrStdout()).print(data, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, token)
				return err
			})
		},
	}
}
