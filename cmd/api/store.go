package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/persistence"
	"github.com/spec-kit/issue-tracker/internal/repository"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// store holds the opened issue repository and the connections behind it.
// db is the readiness probe for the record store itself.
type store struct {
	issues  repository.IssueRepository
	db      pinger
	cache   pinger
	closers []func()
}

func (s *store) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStore connects the configured driver, applies migrations and wraps the
// repository with the Redis list cache when one is configured.
func openStore(cfg *config.Config, logger *zap.Logger) (*store, error) {
	ctx := context.Background()
	s := &store{}

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, pg.Close)
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				s.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		s.issues = repository.NewPostgresIssueRepository(pg.PoolHandle())
		s.db = pg

	case config.StoreDriverSQLite:
		db, err := persistence.NewSQLite(ctx, cfg.SQLite, logger)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
		if err := persistence.RunSQLiteMigrations(ctx, db.DB, logger); err != nil {
			s.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		s.issues = repository.NewSQLiteIssueRepository(db.DB)
		s.db = db

	case config.StoreDriverMemory:
		logger.Warn("using in-memory issue store; issues are lost on restart")
		s.issues = repository.NewMemoryIssueRepository()
		s.db = s.issues

	default:
		return nil, config.ValidateDriver(cfg.Store.Driver)
	}

	if rdb := persistence.NewRedis(cfg.Redis, logger); rdb != nil {
		s.closers = append(s.closers, rdb.Close)
		s.cache = rdb
		s.issues = repository.NewCachedIssueRepository(s.issues, rdb.Client, cfg.Redis.CacheTTL(), logger)
	}
	return s, nil
}
