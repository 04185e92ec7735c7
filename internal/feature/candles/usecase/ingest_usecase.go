package usecase

import (
	"context"
	"log/slog"
	"time"

	"stock_backtest/internal/feature/candles/domain/entity"
	"stock_backtest/internal/shared/coverage"
	"stock_backtest/internal/shared/ratelimiter"
)

// IngestUsecase は外部APIから日足を取得し、データベースに永続化するユースケースを定義します。
// 週足以上は保存せず、読み取り時に日足から再集計します。
type IngestUsecase struct {
	market      MarketRepository
	candle      CandleRepository
	coverage    CoverageRepository
	rateLimiter ratelimiter.RateLimiterInterface
	lookback    time.Duration
	now         func() time.Time
}

// NewIngestUsecase は新しい IngestUsecase を作成します。
// coverage が nil でなければ、保存に成功した範囲を取得済みとして記録します。
func NewIngestUsecase(market MarketRepository, candle CandleRepository, coverage CoverageRepository, rateLimiter ratelimiter.RateLimiterInterface, lookback time.Duration) *IngestUsecase {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &IngestUsecase{market: market, candle: candle, coverage: coverage, rateLimiter: rateLimiter, lookback: lookback, now: time.Now}
}

// ingestOne は指定された銘柄の日足を外部リポジトリから取得し、
// データベースに一括で挿入（または更新）します。
func (iu *IngestUsecase) ingestOne(ctx context.Context, symbol string, from, to time.Time) error {
	cs, err := iu.market.GetTimeSeries(ctx, symbol, ProviderDailyInterval, from, to)
	if err != nil {
		return err
	}

	// 取得したデータに銘柄コードと時間足を設定
	for i := range cs {
		cs[i].Symbol = symbol
		cs[i].Interval = entity.TimeframeDaily
		cs[i].Time = entity.Truncate(cs[i].Time)
	}
	if err := iu.candle.UpsertBatch(ctx, cs); err != nil {
		return err
	}
	iu.recordCoverage(ctx, symbol, from, to)
	return nil
}

// recordCoverage は保存済みの範囲を既存の記録に加えます。記録の失敗は警告に留めます。
func (iu *IngestUsecase) recordCoverage(ctx context.Context, symbol string, from, to time.Time) {
	if iu.coverage == nil {
		return
	}
	if settled := coverage.Settled(iu.now()); to.After(settled) {
		to = settled
	}
	if to.Before(from) {
		return
	}
	recorded, ok, err := iu.coverage.Find(ctx, CoverageDataset, symbol)
	if err != nil {
		slog.Warn("failed to load candle coverage", "symbol", symbol, "error", err)
		return
	}
	if err := iu.coverage.Save(ctx, CoverageDataset, symbol, coverage.Extend(recorded, ok, from, to)); err != nil {
		slog.Warn("failed to save candle coverage", "symbol", symbol, "error", err)
	}
}

// IngestAll は指定された全銘柄の日足を取得し、データベースに永続化します。
// 1銘柄の失敗で処理全体は止めません。コンテキストがキャンセルされた場合のみエラーを返します。
func (iu *IngestUsecase) IngestAll(ctx context.Context, symbols []string) error {
	to := entity.Truncate(iu.now())
	from := entity.Truncate(to.Add(-iu.lookback))
	for _, s := range symbols {
		if err := iu.rateLimiter.Wait(ctx); err != nil {
			return err
		}
		if err := iu.ingestOne(ctx, s, from, to); err != nil {
			slog.Error("failed to ingest candles", "symbol", s, "error", err)
			continue
		}
		slog.Info("candles ingested", "symbol", s)
	}
	return nil
}
