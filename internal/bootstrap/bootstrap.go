// Package bootstrap builds the store and archiver both binaries share from
// configuration.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/shiprec/internal/archive"
	"github.com/JonMunkholm/shiprec/internal/config"
	"github.com/JonMunkholm/shiprec/internal/store"
	"github.com/JonMunkholm/shiprec/internal/store/memory"
	"github.com/JonMunkholm/shiprec/internal/store/sqlstore"
)

// OpenStore opens the configured backend. The returned close function
// releases the store and, for postgres, the pool.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (*store.Store, func(), error) {
	switch strings.ToLower(cfg.Driver) {
	case config.DriverMemory:
		slog.Warn("using in-memory store; data is lost on exit")
		return memory.New(), func() {}, nil

	case config.DriverSQLite, "":
		s, err := sqlstore.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("opened sqlite store", "path", cfg.SQLitePath)
		return s, closer(s, nil), nil

	case config.DriverPostgres:
		pool, err := openPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		s, err := sqlstore.OpenPostgres(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		slog.Info("opened postgres store", "max_conns", cfg.MaxConns)
		return s, closer(s, pool), nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func openPool(ctx context.Context, cfg config.StoreConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func closer(s *store.Store, pool *pgxpool.Pool) func() {
	return func() {
		if err := s.Close(); err != nil {
			slog.Warn("close store", "error", err)
		}
		if pool != nil {
			pool.Close()
		}
	}
}

// NewArchiver returns an S3 archiver, or nil when no bucket is configured.
func NewArchiver(ctx context.Context, cfg config.ArchiveConfig) (archive.Archiver, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	a, err := archive.New(ctx, archive.Config{
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		Endpoint:  cfg.Endpoint,
		Prefix:    cfg.Prefix,
		PathStyle: cfg.PathStyle,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("archiving exports", "bucket", cfg.Bucket, "prefix", cfg.Prefix)
	return a, nil
}
