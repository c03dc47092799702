package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"

	auditrepo "github.com/ninadrathod/my-website/internal/audit/repository"
	"github.com/ninadrathod/my-website/internal/config"
	"github.com/ninadrathod/my-website/internal/db"
	otprepo "github.com/ninadrathod/my-website/internal/otp/repository"
	sessionrepo "github.com/ninadrathod/my-website/internal/session/repository"
)

// stores are the ledger and audit repositories for one STORE_DRIVER.
type stores struct {
	sessions sessionrepo.Repository
	codes    otprepo.Repository
	audit    auditrepo.Repository
	close    func() error
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		conn, err := db.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return sqlStores(conn, db.Postgres), nil
	case config.StoreSQLite:
		conn, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return sqlStores(conn, db.SQLite), nil
	case config.StoreRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis: ping: %w", err)
		}
		return &stores{
			sessions: sessionrepo.NewRedisRepository(client, 0),
			codes:    otprepo.NewRedisRepository(client),
			audit:    auditrepo.NewMemoryRepository(),
			close:    client.Close,
		}, nil
	default:
		return &stores{
			sessions: sessionrepo.NewMemoryRepository(),
			codes:    otprepo.NewMemoryRepository(),
			audit:    auditrepo.NewMemoryRepository(),
			close:    func() error { return nil },
		}, nil
	}
}

func sqlStores(conn *sql.DB, dialect db.Dialect) *stores {
	return &stores{
		sessions: sessionrepo.NewSQLRepository(conn, dialect),
		codes:    otprepo.NewSQLRepository(conn, dialect),
		audit:    auditrepo.NewSQLRepository(conn, dialect),
		close:    conn.Close,
	}
}
