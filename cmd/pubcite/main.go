// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pubcite CLI.
// Implements: prd004-cli (command surface);
//
//	docs/ARCHITECTURE § CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the pubcite CLI.
var rootCmd = &cobra.Command{
	Use:   "pubcite",
	Short: "Accessibility compliance tooling for digital publications",
	Long: `pubcite annotates rendered publication markup with the validity state of
every in-text citation: matched, unmatched, orphaned by deletion, renumbered,
or style-converted. Detection runs upstream; pubcite consumes citation,
reference, and change-record snapshots and rewrites the document body with
semantic, sanitizer-safe markup.

Each operation is a subcommand: annotate, summarize, and store.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pubcite.yaml or ~/.config/pubcite/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "snapshot database path (default: ./pubcite.db)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pubcite")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pubcite"))
		}
	}

	viper.SetEnvPrefix("PUBCITE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// dbPath resolves the snapshot database path from flag, config, default.
func dbPath() string {
	if p, _ := rootCmd.PersistentFlags().GetString("db"); p != "" {
		return p
	}
	if p := viper.GetString("store.db_path"); p != "" {
		return p
	}
	return "pubcite.db"
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
