package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"stock_backtest/internal/feature/candles/domain/entity"
	"stock_backtest/internal/feature/candles/usecase"
)

// CachingCandleRepository decorates a CandleRepository with Redis caching.
// It implements the decorator pattern, transparently adding caching without
// modifying the underlying repository.
type CachingCandleRepository struct {
	rangeCache
	inner usecase.CandleRepository
}

var _ usecase.CandleRepository = (*CachingCandleRepository)(nil)

// NewCachingCandleRepository decorates a CandleRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "candles".
// Entries never outlive the next daily refresh (08:00 JST).
func NewCachingCandleRepository(rdb *redis.Client, ttl time.Duration, inner usecase.CandleRepository, namespace string) *CachingCandleRepository {
	if namespace == "" {
		namespace = "candles"
	}
	return &CachingCandleRepository{
		rangeCache: newRangeCache(rdb, ttl, namespace),
		inner:      inner,
	}
}

// UpsertBatch inserts or updates candles and invalidates related cache entries.
func (c *CachingCandleRepository) UpsertBatch(ctx context.Context, candles []entity.Candle) error {
	if err := c.inner.UpsertBatch(ctx, candles); err != nil {
		return err
	}
	if c.rdb == nil || len(candles) == 0 {
		return nil
	}

	// symbol+interval ごとにまとめて無効化
	prefixes := make([]string, 0, len(candles))
	for _, cd := range candles {
		prefixes = append(prefixes, c.key(cd.Symbol, string(cd.Interval))+":")
	}
	c.invalidate(ctx, prefixes)
	return nil
}

// FindRange retrieves candles, checking cache first then falling back to the database.
func (c *CachingCandleRepository) FindRange(ctx context.Context, symbol string, interval entity.Timeframe, from, to time.Time) ([]entity.Candle, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.FindRange(ctx, symbol, interval, from, to)
	}
	key := c.rangeKey(from, to, symbol, string(interval))
	return readThrough(ctx, &c.rangeCache, key, func(ctx context.Context) ([]entity.Candle, error) {
		return c.inner.FindRange(ctx, symbol, interval, from, to)
	})
}
