// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-radar CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-radar/internal/secrets"
	"github.com/pdiddy/paper-radar/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, otherwise the named secret.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the paper-radar CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-radar",
	Short: "Keyword-driven daily paper monitoring",
	Long: `paper-radar watches preprint and journal feeds, filters new papers
against configured research keywords, runs deep analysis on the matches, and
assembles a dated report with per-keyword narrative summaries.

Each stage is driven from the run subcommand; report and serve expose the
persisted reports, and history manages the processed-paper store.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
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
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-radar.yaml or ~/.config/paper-radar/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-radar")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-radar"))
		}
	}

	viper.SetEnvPrefix("PAPER_RADAR")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig unmarshals the viper state into a Config, applies defaults,
// and fills backend API keys from loaded secrets.
func loadConfig() (*types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}
	cfg.ApplyDefaults()

	cfg.Backends.Filter.LLM.APIKey = secretDefault("filter-api-key", cfg.Backends.Filter.LLM.APIKey)
	cfg.Backends.Analysis.LLM.APIKey = secretDefault("analysis-api-key", cfg.Backends.Analysis.LLM.APIKey)
	cfg.Backends.Narrative.LLM.APIKey = secretDefault("narrative-api-key", cfg.Backends.Narrative.LLM.APIKey)
	return &cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
