package main

import (
	"github.com/spf13/cobra"

	"github.com/eringen/portfolio"
	"github.com/eringen/portfolio/logger"
)

var migrateDown int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateDown > 0 {
			if err := portfolio.MigrateDown(cfg.DatabaseURL, migrateDown, log); err != nil {
				return err
			}
			log.Info("migrations rolled back", logger.Int("steps", migrateDown))
			return nil
		}
		return portfolio.Migrate(cfg.DatabaseURL, log)
	},
}

func init() {
	migrateCmd.Flags().IntVar(&migrateDown, "down", 0, "roll back this many migrations instead")
}
