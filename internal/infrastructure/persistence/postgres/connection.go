package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool sizing used when DBConfig leaves a field at zero.
const (
	defaultMaxConns        = 25
	defaultMinConns        = 5
	defaultConnMaxLifetime = 5 * time.Minute
	defaultConnMaxIdleTime = time.Minute
)

// DBConfig holds PostgreSQL database connection configuration.
type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// AutoMigrate applies the embedded schema before the pool is opened.
	AutoMigrate bool
}

// tune copies the sizing into pc, substituting defaults for unset values.
func (c DBConfig) tune(pc *pgxpool.Config) {
	pc.MaxConns = int32(orDefault(c.MaxOpenConns, defaultMaxConns))
	pc.MinConns = int32(orDefault(c.MaxIdleConns, defaultMinConns))
	pc.MaxConnLifetime = orDefault(c.ConnMaxLifetime, defaultConnMaxLifetime)
	pc.MaxConnIdleTime = orDefault(c.ConnMaxIdleTime, defaultConnMaxIdleTime)

	// Due dates are calendar dates. A UTC session keeps timestamptz casts from shifting them.
	pc.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, "SET TIMEZONE='UTC'")
		return err
	}
}

func orDefault[T int | time.Duration](v, def T) T {
	if v <= 0 {
		return def
	}
	return v
}

// Open migrates (when asked) and connects to the fiscal database.
func Open(ctx context.Context, cfg DBConfig) (*Store, error) {
	if cfg.AutoMigrate {
		if err := Migrate(ctx, cfg.DSN); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	cfg.tune(pc)

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewStore(pool), nil
}
