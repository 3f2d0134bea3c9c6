package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rezkam/fiscal/internal/application/client"
	"github.com/rezkam/fiscal/internal/application/installment"
	"github.com/rezkam/fiscal/internal/application/scheduling"
)

// querier is the query surface shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists clients, templates, occurrences, installments and the
// recurrence history in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
	db   querier
}

var (
	_ scheduling.Repository  = (*Store)(nil)
	_ installment.Repository = (*Store)(nil)
	_ client.Repository      = (*Store)(nil)
)

// NewStore wraps an open pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

// Pool exposes the connection pool, mainly for test cleanup.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases every pooled connection.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// AtomicScheduling runs fn in one transaction. Successor insert and history
// append either both land or neither does.
func (s *Store) AtomicScheduling(ctx context.Context, fn func(tx scheduling.Repository) error) error {
	began := time.Now().UTC()

	// BeginFunc rolls back when fn errors or panics and commits otherwise.
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&Store{pool: s.pool, db: tx})
	})
	if err != nil {
		slog.WarnContext(ctx, "Scheduling transaction rolled back", "error", err)
		return err
	}

	slog.DebugContext(ctx, "Scheduling transaction committed",
		"duration_ms", time.Since(began).Milliseconds())
	return nil
}
