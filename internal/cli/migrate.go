package cli

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun/migrate"
	"quiz-intake-service/internal/app"
	"quiz-intake-service/internal/config"
	"quiz-intake-service/internal/infra/postgres"
	pgmigrations "quiz-intake-service/internal/infra/postgres/migrations"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath)
		},
	}
}

func runMigrations(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	return runMigrationsWithConfig(ctx, cfg)
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	db := postgres.NewBunDB(cfg.Postgres.URL)
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Printf("no new migrations")
		return nil
	}
	log.Printf("migrations applied: %s", group)
	return nil
}

// migratingProbe wraps probe so the remote side only counts as reachable once
// apply has succeeded. apply is retried on every probe until it does.
func migratingProbe(probe app.Probe, apply func(context.Context) error) app.Probe {
	var done atomic.Bool
	return func(ctx context.Context) error {
		if err := probe(ctx); err != nil {
			return err
		}
		if done.Load() {
			return nil
		}
		if err := apply(ctx); err != nil {
			return fmt.Errorf("migrations pending: %w", err)
		}
		done.Store(true)
		log.Printf("migrations applied after reconnect")
		return nil
	}
}
