// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the cddprep CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/cddprep/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	logger        *zap.Logger
	loadedSecrets secrets.Set
)

// rootCmd is the base command for the cddprep CLI.
var rootCmd = &cobra.Command{
	Use:   "cddprep",
	Short: "Prepare plate-scan and vial-registry exports for CDD Vault upload",
	Long: `cddprep merges a plate-scan CSV with a vial-registry CSV on the vial
barcode, checks that every vial was scanned, draws each compound's structure
from its SMILES string, and writes CDDupload_input_file_<YYYYMMDD>.csv.

Settings come from ./cddprep.yaml or ~/.config/cddprep/config.yaml, from
CDDPREP_* environment variables (CDDPREP_OUTPUT_DIR, CDDPREP_PUBLISH_DRIVER,
...), and from command flags, in increasing order of precedence.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger(cmd)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./cddprep.yaml or ~/.config/cddprep/config.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets", "directory of credential files for publishing")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log at debug level")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("cddprep")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "cddprep"))
		}
	}

	viper.SetEnvPrefix("CDDPREP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds a production logger at the configured level; --verbose
// forces debug.
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	level, err := zap.ParseAtomicLevel(viper.GetString("log.level"))
	if err != nil {
		return nil, err
	}
	config.Level = level
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
