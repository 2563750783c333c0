package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/harborcrest/pms/internal/server"
	"github.com/harborcrest/pms/pkg/config"
	"github.com/harborcrest/pms/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "pms",
		Short:         "Property management backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), nightAuditCmd())

	if err := root.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := server.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			return app.Run(ctx)
		},
	}
}

func migrateCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate [up|down]",
		Short: "Apply or roll back database migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			databaseURL := os.Getenv("DATABASE_URL")
			if databaseURL == "" {
				return fmt.Errorf("DATABASE_URL must be set")
			}
			// the pgx/v5 migrate driver registers the pgx5 scheme
			databaseURL = strings.Replace(databaseURL, "postgres://", "pgx5://", 1)

			m, err := migrate.New("file://"+dir, databaseURL)
			if err != nil {
				return err
			}
			defer m.Close()

			switch args[0] {
			case "up":
				err = m.Up()
			case "down":
				err = m.Steps(-1)
			default:
				return fmt.Errorf("unknown direction %q, want up or down", args[0])
			}
			if errors.Is(err, migrate.ErrNoChange) {
				logger.Info("no pending migrations")
				return nil
			}
			if err != nil {
				return err
			}
			logger.Info("migrations applied", "direction", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "migrations", "migrations directory")
	return cmd
}

func nightAuditCmd() *cobra.Command {
	var dateStr string

	cmd := &cobra.Command{
		Use:   "night-audit run",
		Short: "Run the night audit for a date (default: yesterday)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] != "run" {
				return fmt.Errorf("unknown subcommand %q, want run", args[0])
			}

			var auditDate time.Time
			if dateStr != "" {
				var err error
				auditDate, err = time.Parse("2006-01-02", dateStr)
				if err != nil {
					return fmt.Errorf("invalid --date, want YYYY-MM-DD: %w", err)
				}
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := server.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			run, err := app.NightAudit().Run(ctx, auditDate, nil)
			if err != nil {
				return err
			}
			logger.Info("night audit completed",
				"date", run.AuditDate.Format("2006-01-02"),
				"bookings_posted", run.BookingsPosted,
				"total_posted", run.TotalAmountPosted.String(),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&dateStr, "date", "", "audit date (YYYY-MM-DD)")
	return cmd
}
