package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/observability"
	"github.com/spec-kit/issue-tracker/internal/persistence"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations to the configured store and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger, err := observability.NewLogger(cfg.Logger)
		if err != nil {
			log.Fatalf("failed to init logger: %v", err)
		}
		defer logger.Sync() //nolint:errcheck

		return migrate(cmd.Context(), cfg, logger)
	},
}

func migrate(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return err
		}
		defer pg.Close()
		return persistence.RunMigrations(ctx, pg.PoolHandle(), logger)

	case config.StoreDriverSQLite:
		db, err := persistence.NewSQLite(ctx, cfg.SQLite, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		return persistence.RunSQLiteMigrations(ctx, db.DB, logger)

	case config.StoreDriverMemory:
		logger.Info("memory store has no schema; nothing to migrate")
		return nil

	default:
		return fmt.Errorf("migrate: %w", config.ValidateDriver(cfg.Store.Driver))
	}
}
