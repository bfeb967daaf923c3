package repository

import (
	"context"
	"time"

	"forex-signal-engine/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

const createPriceTables = `
CREATE TABLE IF NOT EXISTS price_summary (
    pair            TEXT PRIMARY KEY,
    current_price   DOUBLE PRECISION NOT NULL DEFAULT 0,
    high_price      DOUBLE PRECISION NOT NULL DEFAULT 0,
    low_price       DOUBLE PRECISION NOT NULL DEFAULT 0,
    open_price      DOUBLE PRECISION NOT NULL DEFAULT 0,
    volume          TEXT NOT NULL DEFAULT '0',
    change_amount   DOUBLE PRECISION NOT NULL DEFAULT 0,
    change_percent  DOUBLE PRECISION NOT NULL DEFAULT 0,
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS market_data (
    pair            TEXT PRIMARY KEY,
    price           DOUBLE PRECISION NOT NULL DEFAULT 0,
    change          DOUBLE PRECISION NOT NULL DEFAULT 0,
    change_percent  DOUBLE PRECISION NOT NULL DEFAULT 0,
    high            DOUBLE PRECISION NOT NULL DEFAULT 0,
    low             DOUBLE PRECISION NOT NULL DEFAULT 0,
    volume          TEXT NOT NULL DEFAULT '0',
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// PriceRepository maintains the per-pair snapshot tables. market_data mirrors
// price_summary in a legacy shape some consumers still read.
type PriceRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewPriceRepository(pool PgxPool, tracer trace.Tracer) *PriceRepository {
	return &PriceRepository{pool: pool, tracer: tracer}
}

func (r *PriceRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "price-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createPriceTables)
	return err
}

// UpsertPrices overwrites the snapshot rows for every fetched pair, in both
// price_summary and market_data, in one batch.
func (r *PriceRepository) UpsertPrices(ctx context.Context, prices []domain.PriceSummary) error {
	if len(prices) == 0 {
		return nil
	}

	_, span := r.tracer.Start(ctx, "price-repo.upsert-prices")
	defer span.End()

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, p := range prices {
		batch.Queue(
			`INSERT INTO price_summary (pair, current_price, high_price, low_price, open_price, volume, change_amount, change_percent, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (pair) DO UPDATE SET
			     current_price = EXCLUDED.current_price,
			     high_price = EXCLUDED.high_price,
			     low_price = EXCLUDED.low_price,
			     open_price = EXCLUDED.open_price,
			     volume = EXCLUDED.volume,
			     change_amount = EXCLUDED.change_amount,
			     change_percent = EXCLUDED.change_percent,
			     updated_at = EXCLUDED.updated_at`,
			p.Pair, p.CurrentPrice, p.HighPrice, p.LowPrice, p.OpenPrice, p.Volume, p.ChangeAmount, p.ChangePercent, now,
		)
		batch.Queue(
			`INSERT INTO market_data (pair, price, change, change_percent, high, low, volume, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (pair) DO UPDATE SET
			     price = EXCLUDED.price,
			     change = EXCLUDED.change,
			     change_percent = EXCLUDED.change_percent,
			     high = EXCLUDED.high,
			     low = EXCLUDED.low,
			     volume = EXCLUDED.volume,
			     updated_at = EXCLUDED.updated_at`,
			p.Pair, p.CurrentPrice, p.ChangeAmount, p.ChangePercent, p.HighPrice, p.LowPrice, p.Volume, now,
		)
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

// ListPrices returns the current snapshot for every pair.
func (r *PriceRepository) ListPrices(ctx context.Context) ([]domain.PriceSummary, error) {
	_, span := r.tracer.Start(ctx, "price-repo.list-prices")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT pair, current_price, high_price, low_price, open_price, volume, change_amount, change_percent, updated_at
		 FROM price_summary ORDER BY pair`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prices []domain.PriceSummary
	for rows.Next() {
		var p domain.PriceSummary
		if err := rows.Scan(&p.Pair, &p.CurrentPrice, &p.HighPrice, &p.LowPrice, &p.OpenPrice, &p.Volume, &p.ChangeAmount, &p.ChangePercent, &p.UpdatedAt); err != nil {
			return nil, err
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// GetPrice returns the snapshot for one pair, or nil when the pair is unknown.
func (r *PriceRepository) GetPrice(ctx context.Context, pair string) (*domain.PriceSummary, error) {
	_, span := r.tracer.Start(ctx, "price-repo.get-price")
	defer span.End()

	var p domain.PriceSummary
	err := r.pool.QueryRow(ctx,
		`SELECT pair, current_price, high_price, low_price, open_price, volume, change_amount, change_percent, updated_at
		 FROM price_summary WHERE UPPER(pair) = UPPER($1)`, pair,
	).Scan(&p.Pair, &p.CurrentPrice, &p.HighPrice, &p.LowPrice, &p.OpenPrice, &p.Volume, &p.ChangeAmount, &p.ChangePercent, &p.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
