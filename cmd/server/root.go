package main

import (
	"fmt"
	"log"
	"os"

	"go-print-erp/internal/config"
	"go-print-erp/internal/database"
	"go-print-erp/internal/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "print-erp",
	Short: "Print ERP - invoicing and production tracking for a print shop",
	Long: `Print ERP serves the REST API behind the shop's front desk and
production floor: customers, the product catalog, invoices, payments and
the tasks that move each invoice item through design and printing.

Running it without a subcommand starts the server.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		l := logger.WithComponent("cmd")
		l.Error().Err(err).Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

// bootstrap loads the configuration, sets up logging and opens the
// database. Every subcommand starts here.
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		if setupErr := logger.Setup(logger.DefaultConfig()); setupErr != nil {
			log.Printf("Failed to initialize logger: %v", setupErr)
		}
		return nil, nil, err
	}
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		return nil, nil, fmt.Errorf("initialize logger: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
