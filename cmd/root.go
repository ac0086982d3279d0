package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dewart-reps/mileage-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "mileage-cli",
	Short: "Vehicle mileage classification and reporting",
	Long:  "Reads telematics trip exports, merges false stops, classifies trips as business/personal/commute, resolves destination businesses, and writes weekly mileage reports.",
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
