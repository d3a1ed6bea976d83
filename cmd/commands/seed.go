package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/MohammedAshfaquem/smatdine-backend/internal/service"
	"github.com/MohammedAshfaquem/smatdine-backend/pkg/database"

	"github.com/spf13/cobra"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load tables, menu, custom dish catalog and staff from a JSON file",
	Long: `Load reference data from a JSON file. Rows are matched by their natural key
(table number, name, email), so running the same file twice is safe.

Examples:
  smartdine seed --file catalog.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, err := readSeed(seedFile)
		if err != nil {
			return err
		}

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

		svc := service.New(db, log, service.OptionsFromConfig(&cfg.Order), nil)
		return svc.Catalog.Seed(cmd.Context(), seed)
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Seed file (JSON)")
	_ = seedCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(seedCmd)
}

func readSeed(path string) (*service.CatalogSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed service.CatalogSeed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return &seed, nil
}
