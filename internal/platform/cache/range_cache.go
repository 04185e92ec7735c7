// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 5 * time.Minute

// rangeCache は期間指定の検索結果を JSON で Redis に保存する共通部分です。
// キーは namespace:symbol:...:from:to の形式で、symbol 単位のプレフィックスで無効化できます。
type rangeCache struct {
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
	now       func() time.Time
}

func newRangeCache(rdb *redis.Client, ttl time.Duration, namespace string) rangeCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return rangeCache{rdb: rdb, ttl: ttl, namespace: namespace, now: time.Now}
}

// key は namespace と parts をつないだキーを返します。
func (rc *rangeCache) key(parts ...string) string {
	var b strings.Builder
	b.WriteString(rc.namespace)
	for _, p := range parts {
		b.WriteByte(':')
		b.WriteString(safe(p))
	}
	return b.String()
}

// rangeKey は期間を含む検索キーです。
func (rc *rangeCache) rangeKey(from, to time.Time, parts ...string) string {
	return rc.key(append(parts, from.Format(time.DateOnly), to.Format(time.DateOnly))...)
}

// expiry は設定された TTL と次回の日次更新までの短い方を返します。
func (rc *rangeCache) expiry() time.Duration {
	if d := TimeUntilNextRefresh(rc.now()); d < rc.ttl {
		return d
	}
	return rc.ttl
}

// invalidate は prefix で始まるキーをベストエフォートで削除します。
// prefixes は重複していても1回ずつしか削除しません。
func (rc *rangeCache) invalidate(ctx context.Context, prefixes []string) {
	seen := make(map[string]struct{}, len(prefixes))
	for _, p := range prefixes {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		_ = rc.deleteByPattern(ctx, p+"*")
	}
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (rc *rangeCache) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := rc.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := rc.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// readThrough はキャッシュを確認し、無ければ load の結果を保存して返します。
// 壊れたエントリは削除し、空の結果は保存しません。
func readThrough[T any](ctx context.Context, rc *rangeCache, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	// 1) Check cache
	if b, err := rc.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []T
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = rc.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := load(ctx)
	if err != nil {
		return nil, err
	}
	// 空の結果は read-through で後から埋まるためキャッシュしない
	if len(out) == 0 {
		return out, nil
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = rc.rdb.Set(ctx, key, b, rc.expiry()).Err()
	}
	return out, nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
