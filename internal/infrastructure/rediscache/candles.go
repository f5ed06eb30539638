// Package rediscache provides the Redis-backed cache for historical candle
// series, which are expensive to fetch and change once a day.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"flint/internal/domain/marketdata"
)

// CandleCache implements marketdata.CandleCache on Redis.
type CandleCache struct {
	rdb *redis.Client
}

var _ marketdata.CandleCache = (*CandleCache)(nil)

// New connects to Redis and verifies the connection.
func New(addr, password string, db int) (*CandleCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &CandleCache{rdb: rdb}, nil
}

// GetCandles returns the cached series for key, if present.
func (c *CandleCache) GetCandles(ctx context.Context, key string) ([]marketdata.Candle, bool) {
	data, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Redis: failed to read %s: %v", key, err)
		}
		return nil, false
	}

	var candles []marketdata.Candle
	if err := json.Unmarshal([]byte(data), &candles); err != nil {
		log.Printf("Redis: corrupt candle entry %s: %v", key, err)
		return nil, false
	}
	return candles, true
}

// SetCandles stores a series under key with the given TTL. Failures are
// logged and ignored; the cache is best effort.
func (c *CandleCache) SetCandles(ctx context.Context, key string, candles []marketdata.Candle, ttl time.Duration) {
	data, err := json.Marshal(candles)
	if err != nil {
		log.Printf("Redis: failed to encode candles for %s: %v", key, err)
		return
	}
	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("Redis: failed to write %s: %v", key, err)
	}
}

// Close releases the Redis connection.
func (c *CandleCache) Close() error {
	return c.rdb.Close()
}
