package repository

import (
	"context"
	"strings"
	"time"

	"forex-signal-engine/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

const createIndicatorsTable = `
CREATE TABLE IF NOT EXISTS technical_indicators (
    pair            TEXT NOT NULL,
    indicator_name  TEXT NOT NULL,
    value           TEXT NOT NULL DEFAULT '',
    status          TEXT NOT NULL DEFAULT '',
    color           TEXT NOT NULL DEFAULT '',
    timeframe       TEXT NOT NULL DEFAULT '15M',
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (pair, indicator_name)
);
`

// IndicatorRepository maintains the technical_indicators table. Writes are
// update-only: rows are provisioned once per (pair, indicator) by SeedPairs and
// thereafter only overwritten.
type IndicatorRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewIndicatorRepository(pool PgxPool, tracer trace.Tracer) *IndicatorRepository {
	return &IndicatorRepository{pool: pool, tracer: tracer}
}

func (r *IndicatorRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "indicator-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createIndicatorsTable)
	return err
}

// SeedPairs provisions one empty row per (pair, indicator) so the update-only
// writes always have a target. Existing rows are left untouched.
func (r *IndicatorRepository) SeedPairs(ctx context.Context, pairs []string) error {
	if len(pairs) == 0 {
		return nil
	}

	_, span := r.tracer.Start(ctx, "indicator-repo.seed-pairs")
	defer span.End()

	batch := &pgx.Batch{}
	for _, pair := range pairs {
		for _, name := range domain.IndicatorNames {
			batch.Queue(
				`INSERT INTO technical_indicators (pair, indicator_name)
				 VALUES ($1, $2)
				 ON CONFLICT (pair, indicator_name) DO NOTHING`,
				strings.ToUpper(strings.TrimSpace(pair)), name,
			)
		}
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpdateReading overwrites the current reading for (pair, indicator_name).
// It reports whether a row matched; a false return means the cell was never
// seeded and the write was a no-op.
func (r *IndicatorRepository) UpdateReading(ctx context.Context, reading domain.IndicatorReading) (bool, error) {
	_, span := r.tracer.Start(ctx, "indicator-repo.update-reading")
	defer span.End()

	tag, err := r.pool.Exec(ctx,
		`UPDATE technical_indicators
		 SET value = $3, status = $4, color = $5, timeframe = $6, updated_at = $7
		 WHERE pair = $1 AND indicator_name = $2`,
		strings.ToUpper(reading.Pair), strings.ToUpper(reading.IndicatorName),
		reading.Value, reading.Status, reading.Color, reading.Timeframe, time.Now().UTC(),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListReadings returns every current reading.
func (r *IndicatorRepository) ListReadings(ctx context.Context) ([]domain.IndicatorReading, error) {
	_, span := r.tracer.Start(ctx, "indicator-repo.list-readings")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT pair, indicator_name, value, status, color, timeframe, updated_at
		 FROM technical_indicators ORDER BY pair, indicator_name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []domain.IndicatorReading
	for rows.Next() {
		var reading domain.IndicatorReading
		if err := rows.Scan(&reading.Pair, &reading.IndicatorName, &reading.Value, &reading.Status, &reading.Color, &reading.Timeframe, &reading.UpdatedAt); err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}
	return readings, rows.Err()
}
