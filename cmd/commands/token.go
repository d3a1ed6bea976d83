package commands

import (
	"fmt"

	"github.com/MohammedAshfaquem/smatdine-backend/pkg/config"
	"github.com/MohammedAshfaquem/smatdine-backend/pkg/jwtutil"

	"github.com/spf13/cobra"
)

var (
	tokenUserID uint
	tokenRole   string
	tokenEmail  string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a staff JWT for development",
	Long: `Mint a signed staff token with the configured JWT signing key.

Examples:
  smartdine token --user-id 3 --role kitchen --email chef@smartdine.local`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		jwtutil.Initialize(&cfg.JWT)

		token, err := jwtutil.GenerateToken(tokenEmail, tokenUserID, tokenRole)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().UintVar(&tokenUserID, "user-id", 0, "Staff user id")
	tokenCmd.Flags().StringVar(&tokenRole, "role", jwtutil.RoleWaiter, "Role: admin, kitchen or waiter")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "Staff email")
	_ = tokenCmd.MarkFlagRequired("user-id")
	rootCmd.AddCommand(tokenCmd)
}
