package di

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	candleadapters "stock_backtest/internal/feature/candles/adapters"
	candleusecase "stock_backtest/internal/feature/candles/usecase"
	dividendadapters "stock_backtest/internal/feature/dividends/adapters"
	dividendusecase "stock_backtest/internal/feature/dividends/usecase"
	"stock_backtest/internal/platform/cache"
	"stock_backtest/internal/platform/config"
	"stock_backtest/internal/platform/db"
	infraredis "stock_backtest/internal/platform/redis"
)

// NewDB は設定に従って Postgres に接続します。
func NewDB(cfg config.Config) (*gorm.DB, error) {
	return db.OpenPostgres(db.Config{
		User:         cfg.DBUser,
		Password:     cfg.DBPassword,
		Name:         cfg.DBName,
		Host:         cfg.DBHost,
		Port:         cfg.DBPort,
		SSLMode:      cfg.DBSSLMode,
		InstanceName: cfg.DBInstance,
	}, cfg.RunMigrations)
}

// NewRedis は REDIS_HOST が設定されていれば接続したクライアントを返します。
// 未設定または接続できない場合は nil を返し、キャッシュなしで動作します。
func NewRedis(ctx context.Context, cfg config.Config) *redis.Client {
	addr := cfg.RedisAddr()
	if addr == "" {
		return nil
	}
	rdb, err := infraredis.NewRedisClient(ctx, addr, cfg.RedisPassword)
	if err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
		return nil
	}
	return rdb
}

// NewCandleRepository はローソク足の保存先を生成します。
// rdb が nil でなければ Redis キャッシュでラップします。
func NewCandleRepository(gdb *gorm.DB, rdb *redis.Client, cfg config.Config) candleusecase.CandleRepository {
	repo := candleadapters.NewCandleRepository(gdb)
	if rdb == nil {
		return repo
	}
	return cache.NewCachingCandleRepository(rdb, cfg.CacheTTL, repo, "candles")
}

// NewDividendRepository は配当イベントの保存先を生成します。
// rdb が nil でなければ Redis キャッシュでラップします。
func NewDividendRepository(gdb *gorm.DB, rdb *redis.Client, cfg config.Config) dividendusecase.DividendRepository {
	repo := dividendadapters.NewDividendRepository(gdb)
	if rdb == nil {
		return repo
	}
	return cache.NewCachingDividendRepository(rdb, cfg.CacheTTL, repo, "dividends")
}
