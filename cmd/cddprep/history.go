// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/cddprep/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded merge runs",
	Long: `History lists runs recorded by "merge --history", newest first. With
--yaml it writes each run and its vials as YAML instead.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	asYAML, _ := cmd.Flags().GetBool("yaml")

	store, err := history.Open(cfg.History)
	if err != nil {
		return err
	}
	defer store.Close()

	if asYAML {
		return store.ExportYAML(cmd.Context(), os.Stdout, limit)
	}
	runs, err := store.Runs(cmd.Context(), limit)
	if err != nil {
		return err
	}
	return history.WriteTable(os.Stdout, runs, time.Now())
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to show (0 for all)")
	historyCmd.Flags().Bool("yaml", false, "write runs with their vials as YAML")

	rootCmd.AddCommand(historyCmd)
}
