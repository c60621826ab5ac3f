package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gatherhall/address-engine/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "address-engine",
	Short: "Canonical address resolution for the admin console",
	Long:  "Resolves geocoding provider output (autocomplete selections, map clicks) into canonical validated address records, shared by every address-entry surface of the console.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
