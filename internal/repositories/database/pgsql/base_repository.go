package pgsql

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sahakari/coopcore/internal/core/events"
)

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx. Every
// repository method resolves its querier from the context, so the same code
// runs standalone or inside an ambient transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type txKey struct{}

// txFromContext retrieves the ambient transaction, or nil.
func txFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

// BaseRepository provides common functionality for all repositories.
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// q resolves the querier for the call: the ambient transaction when one is in
// flight, the pool otherwise.
func (r *BaseRepository) q(ctx context.Context) querier {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return r.Pool
}

// PgxTxManager implements the unit-of-work boundary on a pgx pool. Nested
// WithinTx calls join the ambient transaction; only the outermost call
// commits. Domain events recorded during the unit of work are handed to the
// publisher after a successful commit, so a rollback discards them.
type PgxTxManager struct {
	pool      *pgxpool.Pool
	publisher events.Publisher
}

// NewPgxTxManager creates a transaction manager on the given pool. publisher
// may be nil, in which case committed events are dropped.
func NewPgxTxManager(pool *pgxpool.Pool, publisher events.Publisher) *PgxTxManager {
	return &PgxTxManager{pool: pool, publisher: publisher}
}

// WithinTx runs fn inside a database transaction.
func (m *PgxTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	ctx, recorder := events.WithRecorder(ctx)

	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return err
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			slog.ErrorContext(ctx, "Failed to rollback transaction", slog.String("error", rbErr.Error()))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	m.publishCommitted(ctx, recorder)
	return nil
}

// publishCommitted hands drained events to the publisher. Failures are logged
// and swallowed; the transaction has already committed.
func (m *PgxTxManager) publishCommitted(ctx context.Context, recorder *events.Recorder) {
	drained := recorder.Drain()
	if m.publisher == nil || len(drained) == 0 {
		return
	}
	for _, event := range drained {
		if err := m.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
			slog.ErrorContext(ctx, "Failed to publish domain event",
				slog.String("event_type", event.EventType()),
				slog.String("error", err.Error()),
			)
		}
	}
}
