package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/edhtail/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "edhtail",
	Short: "Find the least-popular EDHREC commanders",
	Long:  "Pulls the full commander pool from Scryfall, filters it through configurable exclusion rules, fetches per-commander deck counts from EDHREC, and keeps the bottom K by popularity.",
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
