package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"forex-signal-engine/internal/domain"

	"github.com/redis/go-redis/v9"
)

type fakeRedis struct {
	data   map[string][]byte
	setErr error
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = append([]byte(nil), v...)
	case string:
		f.data[key] = []byte(v)
	default:
		bytes, _ := json.Marshal(v)
		f.data[key] = bytes
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func TestPriceCacheRoundTrip(t *testing.T) {
	t.Parallel()

	c := NewPriceCache(newFakeRedis())
	summary := domain.PriceSummary{Pair: "XAU/USD", CurrentPrice: 2015.5, OpenPrice: 2010}

	if err := c.SetPrice(context.Background(), summary); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := c.GetPrice(context.Background(), "xau/usd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.CurrentPrice != 2015.5 {
		t.Fatalf("unexpected summary: %+v", got)
	}
}

func TestPriceCacheMissReturnsNil(t *testing.T) {
	t.Parallel()

	c := NewPriceCache(newFakeRedis())
	got, err := c.GetPrice(context.Background(), "EUR/USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected cache miss, got %+v", got)
	}
}

func TestPriceCacheNilClientNoOp(t *testing.T) {
	t.Parallel()

	c := NewPriceCache(nil)
	if err := c.SetPrice(context.Background(), domain.PriceSummary{Pair: "XAU/USD"}); err != nil {
		t.Fatalf("nil client should no-op, got %v", err)
	}
	got, err := c.GetPrice(context.Background(), "XAU/USD")
	if err != nil || got != nil {
		t.Fatalf("nil client should return nothing, got %+v %v", got, err)
	}
}
