package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"stock_backtest/internal/feature/dividends/domain/entity"
	"stock_backtest/internal/feature/dividends/usecase"
)

// CachingDividendRepository は DividendRepository に Redis キャッシュを追加します。
type CachingDividendRepository struct {
	rangeCache
	inner usecase.DividendRepository
}

var _ usecase.DividendRepository = (*CachingDividendRepository)(nil)

// NewCachingDividendRepository は inner を Redis キャッシュでラップします。
// namespace が空の場合は "dividends" を使います。
func NewCachingDividendRepository(rdb *redis.Client, ttl time.Duration, inner usecase.DividendRepository, namespace string) *CachingDividendRepository {
	if namespace == "" {
		namespace = "dividends"
	}
	return &CachingDividendRepository{
		rangeCache: newRangeCache(rdb, ttl, namespace),
		inner:      inner,
	}
}

// UpsertBatch は保存後に対象銘柄のキャッシュを無効化します。
func (c *CachingDividendRepository) UpsertBatch(ctx context.Context, events []entity.DividendEvent) error {
	if err := c.inner.UpsertBatch(ctx, events); err != nil {
		return err
	}
	if c.rdb == nil || len(events) == 0 {
		return nil
	}

	prefixes := make([]string, 0, len(events))
	for _, e := range events {
		prefixes = append(prefixes, c.key(e.Symbol)+":")
	}
	c.invalidate(ctx, prefixes)
	return nil
}

// FindRange は権利落ち日が [from, to] のイベントをキャッシュ経由で返します。
func (c *CachingDividendRepository) FindRange(ctx context.Context, symbol string, from, to time.Time) ([]entity.DividendEvent, error) {
	if c.rdb == nil {
		return c.inner.FindRange(ctx, symbol, from, to)
	}
	key := c.rangeKey(from, to, symbol)
	return readThrough(ctx, &c.rangeCache, key, func(ctx context.Context) ([]entity.DividendEvent, error) {
		return c.inner.FindRange(ctx, symbol, from, to)
	})
}
