// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the near-facsimile CLI. It finds
// files with similar or identical content in a documentation tree.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the near-facsimile CLI.
var rootCmd = &cobra.Command{
	Use:   "near-facsimile",
	Short: "Find similar or identical text files in a directory",
	Long: `near-facsimile compares every pair of text files in a documentation
tree and reports the pairs whose content is similar above a threshold.

Use compare to run a comparison and write the report. Use report to browse
the runs saved in a report database.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./near-facsimile.yaml or ~/.config/near-facsimile/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("near-facsimile")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "near-facsimile"))
		}
	}

	viper.SetEnvPrefix("NEAR_FACSIMILE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
