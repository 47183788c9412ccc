// Package commands holds the nota-backend CLI: the HTTP server and its
// maintenance tasks.
package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/georgemunganga/nota-backend/internal/app"
	"github.com/georgemunganga/nota-backend/internal/config"
	"github.com/georgemunganga/nota-backend/internal/logger"
	"github.com/georgemunganga/nota-backend/internal/printer"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "nota-backend",
	Short: "Multi-tenant point-of-sale document store",
	Long: `nota-backend stores products, store settings, sales and their
shareable invoices for many store owners, each in an isolated namespace.

Without a subcommand it runs the HTTP server, the same as "serve".`,
	RunE: runServe,
}

// Execute runs the root command.
func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersion sets the string printed by --version.
func SetVersion(v string) { rootCmd.Version = v }

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Optional env file loaded before the environment is read")
	rootCmd.AddCommand(serveCmd, migrateCmd, reindexCmd)
}

// bootstrap loads configuration and builds the application.
func bootstrap() (*app.App, *logrus.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, printer.Error("Invalid configuration", err.Error())
	}
	log, err := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return nil, nil, printer.Error("Could not set up logging", err.Error())
	}
	a, err := app.New(cfg, log)
	if err != nil {
		return nil, nil, printer.Error("Could not open data directory", err.Error())
	}
	return a, log, nil
}
