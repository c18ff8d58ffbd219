package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eringen/portfolio"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	Long: `serve migrates the database, creates the first admin from admin_email and
admin_password when no user exists yet, and serves the site until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app := portfolio.New(cfg, portfolio.WithLogger(log))
		return app.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}
