package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/eventcal/eventcal/internal/app"
	"github.com/eventcal/eventcal/internal/config"
	"github.com/eventcal/eventcal/internal/database"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "./config/application.yaml"

func SetupCommands() *cobra.Command {
	var configPath string

	serve := func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		application, err := app.NewApplication(ctx, cfg)
		if err != nil {
			return err
		}
		return application.Run(ctx)
	}

	// root command, serves by default
	rootCmd := &cobra.Command{
		Use:          "eventcal",
		Short:        "Calendar view service",
		SilenceUsage: true,
		RunE:         serve,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the YAML configuration")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and the integration sync",
		RunE:  serve,
	}

	// applies the SQL migrations without starting the server
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := database.Migrate(cfg.Database); err != nil {
				return err
			}
			log.Info("Database is up to date")
			return nil
		},
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)

	return rootCmd
}
