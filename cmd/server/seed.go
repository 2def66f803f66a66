package main

import (
	"os"

	"go-print-erp/internal/database"
	"go-print-erp/internal/logger"

	"github.com/spf13/cobra"
)

var (
	adminUsername string
	adminPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load reference geography and create the bootstrap admin",
	Long: `Seed inserts the built-in countries, states and cities and creates an
admin account when none with that username exists. Both steps are safe to
run more than once.

The admin credentials come from --admin-username/--admin-password, or from
ADMIN_USERNAME/ADMIN_PASSWORD when the flags are not given.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, db, err := bootstrap()
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		ctx := cmd.Context()
		if err := database.SeedGeography(ctx, db); err != nil {
			return err
		}

		username := firstNonEmpty(adminUsername, os.Getenv("ADMIN_USERNAME"))
		password := firstNonEmpty(adminPassword, os.Getenv("ADMIN_PASSWORD"))
		if username == "" && password == "" {
			log := logger.WithComponent("seed")
			log.Warn().Msg("No admin credentials given, skipping admin account")
			return nil
		}
		return database.EnsureAdmin(ctx, db, username, password)
	},
}

func init() {
	seedCmd.Flags().StringVar(&adminUsername, "admin-username", "", "username of the bootstrap admin")
	seedCmd.Flags().StringVar(&adminPassword, "admin-password", "", "password of the bootstrap admin")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
