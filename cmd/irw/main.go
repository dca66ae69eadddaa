package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/datapages/irw-go/cmd/irw/commands"
	"github.com/datapages/irw-go/config"
	"github.com/datapages/irw-go/logger"
)

var rootCmd = &cobra.Command{
	Use:   "irw",
	Short: "irw - Item Response Warehouse client",
	Long: `irw - Client for the Item Response Warehouse.

Browse the table catalog with warehouse metadata, filter tables by
metadata criteria, fetch long-format response tables from a local
snapshot, and convert them to wide response matrices.

Available commands:
  tables  - List tables with warehouse metadata
  filter  - Select table names by metadata criteria
  filters - Show the filter catalog and observed values
  fetch   - Fetch a long-format table (optionally as a wide matrix)
  info    - Show collection-level statistics

Examples:
  irw tables                          # Enriched table listing
  irw tables --basic                  # Base properties only
  irw filter --var rt --language eng  # Tables with response times in English
  irw fetch agn_kay_2025 --wide       # Fetch and pivot to a response matrix
  irw info                            # Collection statistics`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := logger.Initialize(cfg.Log.JSON); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commands.TablesCmd)
	rootCmd.AddCommand(commands.FilterCmd)
	rootCmd.AddCommand(commands.FiltersCmd)
	rootCmd.AddCommand(commands.FetchCmd)
	rootCmd.AddCommand(commands.InfoCmd)
}

func main() {
	defer logger.Cleanup()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
