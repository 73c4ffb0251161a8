package cli

import (
	"github.com/spf13/cobra"

	"github.com/openintel/casegraph/internal/infrastructure/database/postgres"
	"github.com/openintel/casegraph/internal/infrastructure/monitoring/logging"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(opts)
			if err != nil {
				return err
			}

			logger, err := logging.NewLogger(logging.LogConfig{
				Level:       cfg.Log.Level,
				Format:      cfg.Log.Format,
				OutputPaths: cfg.Log.OutputPaths,
			})
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			conn, err := postgres.NewConnection(cmd.Context(), cfg.Database, logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			return conn.RunMigrations()
		},
	}
}
