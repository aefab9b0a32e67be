// Package cache implementa el cache de disponibilidad de stock sobre Redis.
package cache

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/application/stock"
)

var _ stock.AvailabilityCache = (*RedisAvailabilityCache)(nil)

// RedisAvailabilityCache cachea la cantidad disponible por (bodega, SKU).
// Los valores viajan como string decimal para no perder precisión.
type RedisAvailabilityCache struct {
	client *redis.Client
}

// NewRedisAvailabilityCache construye el cache.
func NewRedisAvailabilityCache(addr, password string, db int) *RedisAvailabilityCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisAvailabilityCache{client: client}
}

// Ping verifica la conexión.
func (c *RedisAvailabilityCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close cierra el cliente.
func (c *RedisAvailabilityCache) Close() error {
	return c.client.Close()
}

// Get devuelve el disponible cacheado; el segundo valor indica hit.
func (c *RedisAvailabilityCache) Get(ctx context.Context, warehouseID, skuID string) (decimal.Decimal, bool, error) {
	val, err := c.client.Get(ctx, key(warehouseID, skuID)).Result()
	if err == redis.Nil {
		return decimal.Decimal{}, false, nil
	}
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	available, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	return available, true, nil
}

// Set guarda el disponible con TTL.
func (c *RedisAvailabilityCache) Set(ctx context.Context, warehouseID, skuID string, available decimal.Decimal, ttl time.Duration) error {
	return c.client.Set(ctx, key(warehouseID, skuID), available.String(), ttl).Err()
}

// Invalidate borra la clave tras una mutación del ledger.
func (c *RedisAvailabilityCache) Invalidate(ctx context.Context, warehouseID, skuID string) error {
	return c.client.Del(ctx, key(warehouseID, skuID)).Err()
}

func key(warehouseID, skuID string) string {
	return fmt.Sprintf("stock:available:%s:%s", warehouseID, skuID)
}
