package commands

import (
	"github.com/MohammedAshfaquem/smatdine-backend/pkg/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		db, err := database.InitDB(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.MigrateModels(db); err != nil {
			return err
		}
		log.Info("Database migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
