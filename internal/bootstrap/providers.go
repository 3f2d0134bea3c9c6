// Package bootstrap builds the object graph shared by the server and worker binaries.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rezkam/fiscal/internal/application/client"
	"github.com/rezkam/fiscal/internal/application/installment"
	"github.com/rezkam/fiscal/internal/application/scheduling"
	"github.com/rezkam/fiscal/internal/calendar"
	"github.com/rezkam/fiscal/internal/config"
	"github.com/rezkam/fiscal/internal/infrastructure/holidays"
	"github.com/rezkam/fiscal/internal/infrastructure/lock"
	"github.com/rezkam/fiscal/internal/infrastructure/persistence/postgres"
	"github.com/rezkam/fiscal/internal/infrastructure/persistence/sqlite"
)

// Store is implemented by both the postgres and the sqlite store.
type Store interface {
	scheduling.Repository
	installment.Repository
	client.Repository
	io.Closer
}

var (
	_ Store = (*postgres.Store)(nil)
	_ Store = (*sqlite.Store)(nil)
)

// ProvideStore opens the configured database.
func ProvideStore(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		store, err := postgres.Open(ctx, postgres.DBConfig{
			DSN:             cfg.DSN,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.ConnMaxIdleTime,
			AutoMigrate:     cfg.AutoMigrate,
		})
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "Storage initialized", "driver", cfg.Driver)
		return store, nil
	case config.DriverSQLite:
		store, err := sqlite.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "Storage initialized", "driver", cfg.Driver, "path", cfg.SQLitePath)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// ProvideCalendar loads the holiday calendar for jurisdiction. The builtin and
// embedded tables are always included; cfg may add a directory or a bucket.
func ProvideCalendar(ctx context.Context, cfg config.HolidaysConfig, jurisdiction string) (*calendar.Calendar, error) {
	sources := []holidays.Source{holidays.EmbeddedSource{}}

	switch cfg.Source {
	case config.HolidaysFS:
		dir, err := holidays.NewDirSource(cfg.Dir)
		if err != nil {
			return nil, err
		}
		sources = append(sources, dir)
	case config.HolidaysGCS:
		gcs, err := holidays.NewGCSSource(ctx, cfg.Bucket, cfg.Prefix)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := gcs.Close(); err != nil {
				slog.WarnContext(ctx, "Failed to close GCS client", "error", err)
			}
		}()
		sources = append(sources, gcs)
	}

	cal, err := holidays.Load(ctx, calendar.Jurisdiction(jurisdiction), sources...)
	if err != nil {
		return nil, err
	}

	if next := time.Now().UTC().Year() + 1; cal.Horizon() < next {
		slog.WarnContext(ctx, "Holiday calendar ends before next year; due dates past it only skip weekends",
			"horizon", cal.Horizon(),
			"jurisdiction", jurisdiction)
	}

	return cal, nil
}

// ProvideLocker connects to Redis for the job lock. It returns nil when Redis
// is not configured.
func ProvideLocker(ctx context.Context, cfg config.RedisConfig) (*lock.RedisLocker, error) {
	if !cfg.Enabled() {
		slog.InfoContext(ctx, "Job lock disabled; relying on storage uniqueness")
		return nil, nil
	}

	locker, err := lock.NewRedisLocker(ctx, lock.RedisConfig{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		TTL:      cfg.LockTTL,
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Job lock enabled", "addr", cfg.Addr, "ttl", cfg.LockTTL)
	return locker, nil
}

// Services holds the application services built over one store.
type Services struct {
	Scheduler    *scheduling.Service
	Installments *installment.Service
	Clients      *client.Service
	Adjuster     *calendar.Resolver
}

// NewServices wires the application services. A nil locker runs the monthly
// job unguarded.
func NewServices(store Store, cal *calendar.Calendar, cfg config.SchedulingConfig, locker *lock.RedisLocker) *Services {
	adjuster := calendar.NewResolver(cal)
	policy := cfg.WeekendPolicy()

	var opts []scheduling.Option
	if locker != nil {
		opts = append(opts, scheduling.WithLocker(locker))
	}

	return &Services{
		Scheduler: scheduling.NewService(store, adjuster, scheduling.Config{
			DefaultWeekendPolicy: policy,
			StrictHistory:        cfg.StrictHistory,
		}, opts...),
		Installments: installment.NewService(store, adjuster, installment.Config{
			BatchSize:            cfg.BatchSize,
			BatchDelay:           cfg.BatchDelay,
			LargeBatchThreshold:  cfg.LargeBatchThreshold,
			MaxConcurrentWrites:  cfg.MaxConcurrentWrites,
			DefaultWeekendPolicy: policy,
		}),
		Clients:  client.NewService(store, adjuster, policy),
		Adjuster: adjuster,
	}
}
