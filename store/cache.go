package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"pbank/models"
)

const stockCacheTTL = 5 * time.Minute

// Cache is the subset of the redis client the stock cache uses.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedStocks is a read-through Redis cache in front of a stock store.
// Prices are static reference data, so a short TTL is plenty. Cache errors
// are ignored and the lookup falls through to the inner store.
type CachedStocks struct {
	inner Stocks
	rdb   Cache
}

func NewCachedStocks(inner Stocks, rdb Cache) *CachedStocks {
	return &CachedStocks{inner: inner, rdb: rdb}
}

func (c *CachedStocks) BySymbol(ctx context.Context, symbol string) (*models.Stock, error) {
	key := fmt.Sprintf("stock:symbol:%s", symbol)
	if stock, ok := c.get(ctx, key); ok {
		return stock, nil
	}
	stock, err := c.inner.BySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, stock)
	return stock, nil
}

func (c *CachedStocks) ByID(ctx context.Context, id uuid.UUID) (*models.Stock, error) {
	key := fmt.Sprintf("stock:id:%s", id)
	if stock, ok := c.get(ctx, key); ok {
		return stock, nil
	}
	stock, err := c.inner.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, stock)
	return stock, nil
}

func (c *CachedStocks) get(ctx context.Context, key string) (*models.Stock, bool) {
	data, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}
	var stock models.Stock
	if err := json.Unmarshal([]byte(data), &stock); err != nil {
		return nil, false
	}
	return &stock, true
}

func (c *CachedStocks) set(ctx context.Context, key string, stock *models.Stock) {
	data, err := json.Marshal(stock)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, key, data, stockCacheTTL)
}
