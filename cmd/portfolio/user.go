package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/portfolio"
)

var (
	userEmail    string
	userPassword string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage admin accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := portfolio.NewStore(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return err
		}
		defer store.Close()

		u, err := portfolio.NewAuth(store, log).CreateUser(ctx, userEmail, userPassword)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", u.Email, u.ID)
		return nil
	},
}

func init() {
	userAddCmd.Flags().StringVar(&userEmail, "email", "", "login email")
	userAddCmd.Flags().StringVar(&userPassword, "password", "", "password, at least 8 characters")
	_ = userAddCmd.MarkFlagRequired("email")
	_ = userAddCmd.MarkFlagRequired("password")
	userCmd.AddCommand(userAddCmd)
}
