package repository

import (
	"context"
	"time"

	"forex-signal-engine/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

const createSignalsTable = `
CREATE TABLE IF NOT EXISTS signals (
    id                  TEXT PRIMARY KEY,
    pair                TEXT NOT NULL,
    type                TEXT NOT NULL,
    entry_price         DOUBLE PRECISION NOT NULL,
    take_profit_levels  DOUBLE PRECISION[] NOT NULL,
    stop_loss           DOUBLE PRECISION NOT NULL,
    status              TEXT NOT NULL DEFAULT 'pending',
    tp_hit              BOOLEAN NOT NULL DEFAULT FALSE,
    sl_hit              BOOLEAN NOT NULL DEFAULT FALSE,
    current_price       DOUBLE PRECISION NOT NULL DEFAULT 0,
    pnl                 DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_signals_status ON signals (status);
`

// PgxPool is the subset of pgxpool.Pool the repositories use.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type SignalRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewSignalRepository(pool PgxPool, tracer trace.Tracer) *SignalRepository {
	return &SignalRepository{pool: pool, tracer: tracer}
}

func (r *SignalRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "signal-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createSignalsTable)
	return err
}

// ListOpen returns every non-terminal signal (pending or active).
func (r *SignalRepository) ListOpen(ctx context.Context) ([]domain.Signal, error) {
	_, span := r.tracer.Start(ctx, "signal-repo.list-open")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT id, pair, type, entry_price, take_profit_levels, stop_loss,
		        status, tp_hit, sl_hit, current_price, pnl, created_at, updated_at
		 FROM signals
		 WHERE status IN ('pending', 'active')
		 ORDER BY created_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSignals(rows)
}

// List returns signals filtered by status; an empty status returns everything.
func (r *SignalRepository) List(ctx context.Context, status string, limit int) ([]domain.Signal, error) {
	_, span := r.tracer.Start(ctx, "signal-repo.list")
	defer span.End()

	if limit <= 0 {
		limit = 100
	}

	var (
		rows pgx.Rows
		err  error
	)
	if status == "" {
		rows, err = r.pool.Query(ctx,
			`SELECT id, pair, type, entry_price, take_profit_levels, stop_loss,
			        status, tp_hit, sl_hit, current_price, pnl, created_at, updated_at
			 FROM signals ORDER BY created_at DESC LIMIT $1`, limit)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT id, pair, type, entry_price, take_profit_levels, stop_loss,
			        status, tp_hit, sl_hit, current_price, pnl, created_at, updated_at
			 FROM signals WHERE status = $1 ORDER BY created_at DESC LIMIT $2`, status, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSignals(rows)
}

// UpdateLifecycle writes back one evaluator decision: price, status, hit flags
// and pnl. Last write wins; concurrent invocations are not guarded against.
func (r *SignalRepository) UpdateLifecycle(ctx context.Context, upd domain.SignalUpdate) error {
	_, span := r.tracer.Start(ctx, "signal-repo.update-lifecycle")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`UPDATE signals
		 SET current_price = $2, status = $3, tp_hit = $4, sl_hit = $5, pnl = $6, updated_at = $7
		 WHERE id = $1`,
		upd.ID, upd.CurrentPrice, upd.Status, upd.TPHit, upd.SLHit, upd.PnL, time.Now().UTC(),
	)
	return err
}

func scanSignals(rows pgx.Rows) ([]domain.Signal, error) {
	var signals []domain.Signal
	for rows.Next() {
		var s domain.Signal
		if err := rows.Scan(
			&s.ID, &s.Pair, &s.Type, &s.EntryPrice, &s.TakeProfitLevels, &s.StopLoss,
			&s.Status, &s.TPHit, &s.SLHit, &s.CurrentPrice, &s.PnL, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		signals = append(signals, s)
	}
	return signals, rows.Err()
}
