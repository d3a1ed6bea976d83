package commands

import (
	"fmt"
	"os"

	"github.com/MohammedAshfaquem/smatdine-backend/pkg/config"
	"github.com/MohammedAshfaquem/smatdine-backend/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "smartdine",
	Short: "SmartDine - restaurant table ordering backend",
	Long: `SmartDine serves the table ordering API: menu, carts, custom dishes,
orders through the kitchen, waiter requests and table clearing.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and initializes the global logger
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	err = logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger.GetLogger(), nil
}
