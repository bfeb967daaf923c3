package cache

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"forex-signal-engine/internal/domain"

	"github.com/redis/go-redis/v9"
)

const priceCacheTTL = 90 * time.Second

func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	opts := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, err
		}
		opts = parsed
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	log.Println("Connected to Redis")
	return client, nil
}

// RedisClient is the subset of redis.Client the price cache needs.
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// PriceCache stores the latest PriceSummary per pair under price:<PAIR> keys.
// A nil PriceCache or nil client is a no-op.
type PriceCache struct {
	client RedisClient
}

func NewPriceCache(client RedisClient) *PriceCache {
	return &PriceCache{client: client}
}

func (c *PriceCache) SetPrice(ctx context.Context, summary domain.PriceSummary) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "price:"+strings.ToUpper(summary.Pair), data, priceCacheTTL).Err()
}

func (c *PriceCache) GetPrice(ctx context.Context, pair string) (*domain.PriceSummary, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	data, err := c.client.Get(ctx, "price:"+strings.ToUpper(pair)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var summary domain.PriceSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
