package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"facturatie/internal/config"
	"facturatie/internal/db"
	"facturatie/internal/logger"
)

func newMigrateCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Apply the embedded schema migrations to DATABASE_URL.

Example:
  DATABASE_URL=postgres://localhost/facturatie facturatie migrate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.WithComponent("migrate")

			pool, err := db.NewPool(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			version, err := db.Migrate(pool)
			if err != nil {
				return err
			}
			log.Info().Uint("version", version).Msg("migrations applied")
			fmt.Fprintf(cmd.OutOrStdout(), "Schema at version %d.\n", version)
			return nil
		},
	}
}
