package repository

import (
	"context"
	"strings"
	"time"

	"forex-signal-engine/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const createConfigTable = `
CREATE TABLE IF NOT EXISTS system_config (
    config_key    TEXT PRIMARY KEY,
    config_value  TEXT NOT NULL DEFAULT '',
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// ConfigRepository reads and writes the system_config key/value rows.
type ConfigRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewConfigRepository(pool PgxPool, tracer trace.Tracer) *ConfigRepository {
	return &ConfigRepository{pool: pool, tracer: tracer}
}

func (r *ConfigRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "config-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createConfigTable)
	return err
}

// GetRuntimeConfig loads the per-invocation configuration: the provider API key
// and the supported pairs list. A missing key is left empty for the caller to
// reject; the config rows themselves are never mutated here.
func (r *ConfigRepository) GetRuntimeConfig(ctx context.Context) (domain.RuntimeConfig, error) {
	_, span := r.tracer.Start(ctx, "config-repo.get-runtime-config")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT config_key, config_value FROM system_config WHERE config_key = ANY($1)`,
		[]string{domain.ConfigKeyAPIKey, domain.ConfigKeySupportedPairs},
	)
	if err != nil {
		return domain.RuntimeConfig{}, err
	}
	defer rows.Close()

	var cfg domain.RuntimeConfig
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return domain.RuntimeConfig{}, err
		}
		switch key {
		case domain.ConfigKeyAPIKey:
			cfg.APIKey = strings.TrimSpace(value)
		case domain.ConfigKeySupportedPairs:
			cfg.SupportedPairs = SplitPairs(value)
		}
	}
	return cfg, rows.Err()
}

// SetTimestamp records a last-update marker such as last_price_update.
func (r *ConfigRepository) SetTimestamp(ctx context.Context, key string, t time.Time) error {
	_, span := r.tracer.Start(ctx, "config-repo.set-timestamp")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO system_config (config_key, config_value, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (config_key) DO UPDATE SET
		     config_value = EXCLUDED.config_value,
		     updated_at = EXCLUDED.updated_at`,
		key, t.UTC().Format(time.RFC3339), time.Now().UTC(),
	)
	return err
}

// SplitPairs parses the comma-separated supported_pairs config value.
func SplitPairs(value string) []string {
	var pairs []string
	for _, part := range strings.Split(value, ",") {
		if pair := strings.TrimSpace(part); pair != "" {
			pairs = append(pairs, pair)
		}
	}
	return pairs
}
