package cmd

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		_, logger, db, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck
		defer db.Close()

		return migrate(ctx, db, logger)
	},
}
