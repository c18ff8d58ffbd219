package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eringen/portfolio"
	"github.com/eringen/portfolio/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	cfgFile string
	cfg     portfolio.SiteConfig
	log     logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Personal site for blogs, games and projects",
	Long: `portfolio serves a personal site with three collections (blogs, games
and projects) and an admin area for writing block-based entries.

Configuration comes from ./portfolio.yaml (or --config) and PORTFOLIO_*
environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		return initializeConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./portfolio.yaml)")
	rootCmd.AddCommand(serveCmd, migrateCmd, userCmd, importCmd, versionCmd)
}

func initializeConfig() error {
	c, err := portfolio.LoadConfig(cfgFile)
	if err != nil {
		return err
	}
	cfg = c
	log = logger.New(cfg.LogLevel, cfg.LogPretty)
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "portfolio %s\n", version)
	},
}
