package cli

import (
	"context"
	"database/sql"
	"log"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"trivia-miniapp-service/internal/config"
	pgmigrations "trivia-miniapp-service/internal/infra/postgres/migrations"
	"trivia-miniapp-service/internal/infra/sqlite"
	sqlitemigrations "trivia-miniapp-service/internal/infra/sqlite/migrations"
)

// NewMigrateCmd applies database migrations: the SQLite player store
// always, the Postgres question bank when configured.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runMigrations(cmd.Context(), cfg)
		},
	}
}

func runMigrations(ctx context.Context, cfg config.Config) error {
	db, err := openSQLite(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := runSQLiteMigrations(ctx, db); err != nil {
		return err
	}
	if cfg.Postgres.URL != "" {
		if err := runPostgresMigrations(ctx, cfg); err != nil {
			return err
		}
	}
	return nil
}

func openSQLite(cfg config.Config) (*bun.DB, error) {
	path := cfg.SQLite.Path
	if path == "" {
		path = "trivia.db"
	}
	return sqlite.Open(path)
}

func runSQLiteMigrations(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, sqlitemigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return err
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		return err
	}
	log.Printf("sqlite migrations applied")
	return nil
}

func runPostgresMigrations(ctx context.Context, cfg config.Config) error {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return err
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		return err
	}
	log.Printf("postgres migrations applied")
	return nil
}
