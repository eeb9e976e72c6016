package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/justlist/facility-finder/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "facility-finder",
	Short: "Facility search and enrichment pipeline",
	Long:  "Finds business facilities via geo search and enriches each with contact and metadata fields from secondary APIs and compliance-gated website scraping.",
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
