package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tcgpulse/tcgpulse_api/internal/models"
)

const (
	recentPricesKey = "prices:recent"
	distinctSetsKey = "prices:sets"

	// Recent prices churn with every sync; distinct sets only change when a
	// new group appears.
	recentTTL = 5 * time.Minute
	setsTTL   = 1 * time.Hour
)

// PriceCache caches hot read-side queries over price_history. Entries are
// dropped after each group sync so readers never see stale deltas for long.
type PriceCache struct {
	redis *RedisClient
}

// NewPriceCache creates a new PriceCache.
func NewPriceCache(redis *RedisClient) *PriceCache {
	return &PriceCache{redis: redis}
}

// GetRecent returns the cached recent price rows, or ok=false on a miss.
func (c *PriceCache) GetRecent(ctx context.Context) ([]models.PriceHistory, bool) {
	raw, err := c.redis.Get(ctx, recentPricesKey)
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		return nil, false
	}
	var rows []models.PriceHistory
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, false
	}
	return rows, true
}

// SetRecent stores the recent price rows.
func (c *PriceCache) SetRecent(ctx context.Context, rows []models.PriceHistory) error {
	raw, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal recent prices: %w", err)
	}
	return c.redis.Set(ctx, recentPricesKey, string(raw), recentTTL)
}

// GetSets returns the cached distinct set names, or ok=false on a miss.
func (c *PriceCache) GetSets(ctx context.Context) ([]string, bool) {
	raw, err := c.redis.Get(ctx, distinctSetsKey)
	if err != nil {
		return nil, false
	}
	var sets []string
	if err := json.Unmarshal([]byte(raw), &sets); err != nil {
		return nil, false
	}
	return sets, true
}

// SetSets stores the distinct set names.
func (c *PriceCache) SetSets(ctx context.Context, sets []string) error {
	raw, err := json.Marshal(sets)
	if err != nil {
		return fmt.Errorf("failed to marshal sets: %w", err)
	}
	return c.redis.Set(ctx, distinctSetsKey, string(raw), setsTTL)
}

// Invalidate drops all cached read-side entries. Called after a group sync.
func (c *PriceCache) Invalidate(ctx context.Context) error {
	return c.redis.Delete(ctx, recentPricesKey, distinctSetsKey)
}
