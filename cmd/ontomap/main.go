// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the ontomap CLI.
// ontomap resolves biomedical concepts against the BioPortal and OLS
// terminology services with caching, retries, and circuit breaking.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/ontomap/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// bioportalKey holds the BioPortal API key resolved at startup.
var bioportalKey string

// rootCmd is the base command for the ontomap CLI.
var rootCmd = &cobra.Command{
	Use:   "ontomap",
	Short: "Resilient biomedical concept lookup across BioPortal and OLS",
	Long: `ontomap searches biomedical ontologies for concept terms through two
terminology services, BioPortal and the EBI Ontology Lookup Service (OLS).
Lookups run through a two-tier cache, a retry policy, and per-service
circuit breakers, so one degraded service never blocks a result from the
other.

Each surface is a subcommand: lookup, cache, health, history, and
ontologies.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		key, err := secrets.BioPortalAPIKey(".secrets/")
		if err != nil {
			return err
		}
		bioportalKey = key
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./ontomap.yaml or ~/.config/ontomap/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("ontomap")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "ontomap"))
		}
	}

	viper.SetEnvPrefix("ONTOMAP")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the CLI logger: console encoding on stderr, warnings and
// up unless --verbose raises the level to debug.
func newLogger(cmd *cobra.Command) *zap.SugaredLogger {
	level := zapcore.WarnLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
