// Package usecase はローソク足データ操作のビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"stock_backtest/internal/feature/candles/domain/entity"
	"stock_backtest/internal/shared/coverage"
)

const (
	// ProviderDailyInterval は外部APIに日足を要求する際の interval 値です。
	ProviderDailyInterval = "1day"
	// DefaultLookback は期間未指定時の取得期間です。
	DefaultLookback = 365 * 24 * time.Hour
	// CoverageDataset は日足の取得済み範囲を記録する際のデータセット名です。
	CoverageDataset = "candles:1day"
)

// CandleRepository はローソク足データの永続化レイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type CandleRepository interface {
	// FindRange は [from, to] の範囲のローソク足を日付昇順で返します。
	FindRange(ctx context.Context, symbol string, interval entity.Timeframe, from, to time.Time) ([]entity.Candle, error)
	// UpsertBatch はローソク足を一括で挿入または更新します。
	UpsertBatch(ctx context.Context, candles []entity.Candle) error
}

// MarketRepository は株価データを取得するリポジトリのインターフェイスです。
// 外部 API の実装を抽象化します。
type MarketRepository interface {
	GetTimeSeries(ctx context.Context, symbol, interval string, from, to time.Time) ([]entity.Candle, error)
}

// CoverageRepository は外部APIから取得済みの日付範囲を記録します。
type CoverageRepository interface {
	Find(ctx context.Context, dataset, symbol string) (coverage.Span, bool, error)
	Save(ctx context.Context, dataset, symbol string, span coverage.Span) error
}

// CandlesUsecase はローソク足の読み取りを提供します。
// 取得済み範囲に含まれる日足は保存済みデータを使い、不足分だけ外部APIから取得して保存します。
type CandlesUsecase struct {
	candle   CandleRepository
	market   MarketRepository
	coverage CoverageRepository
	now      func() time.Time
}

// NewCandlesUsecase はCandlesUsecaseの新しいインスタンスを生成します。
// market が nil の場合、保存済みデータのみを返します。
// coverage が nil の場合、要求範囲を毎回外部APIから取得します。
func NewCandlesUsecase(candle CandleRepository, market MarketRepository, coverage CoverageRepository) *CandlesUsecase {
	return &CandlesUsecase{candle: candle, market: market, coverage: coverage, now: time.Now}
}

// FetchWindow は tf の先頭・末尾の期間を完全に集計できるよう日足の取得範囲を広げます。
// 開始側は2期間、終了側は1期間広げます。
func FetchWindow(tf entity.Timeframe, from, to time.Time) (time.Time, time.Time) {
	from, to = entity.Truncate(from), entity.Truncate(to)
	if tf == entity.TimeframeDaily {
		return from, to
	}
	return tf.AddPeriods(from, -2), tf.AddPeriods(to, 1)
}

// GetCandles は指定期間の日足を tf に再集計して返します。
func (cu *CandlesUsecase) GetCandles(ctx context.Context, symbol string, tf entity.Timeframe, from, to time.Time) ([]entity.Candle, error) {
	if to.IsZero() {
		to = cu.now()
	}
	if from.IsZero() {
		from = to.Add(-DefaultLookback)
	}
	if from.After(to) {
		return nil, fmt.Errorf("from %s is after to %s", from.Format(time.DateOnly), to.Format(time.DateOnly))
	}

	fetchFrom, fetchTo := FetchWindow(tf, from, to)
	daily, err := cu.DailyCandles(ctx, symbol, fetchFrom, fetchTo)
	if err != nil {
		return nil, err
	}
	if tf == entity.TimeframeDaily {
		return TrimToWindow(daily, tf, from, to), nil
	}
	return TrimToWindow(Resample(daily, tf), tf, from, to), nil
}

// DailyCandles は [from, to] の日足を日付昇順で返します。
// 取得済み範囲から外れた部分を外部APIから取得し、ベストエフォートで保存します。
// データが存在しない場合は空スライスを返し、エラーにはしません。
func (cu *CandlesUsecase) DailyCandles(ctx context.Context, symbol string, from, to time.Time) ([]entity.Candle, error) {
	from, to = entity.Truncate(from), entity.Truncate(to)

	stored, err := cu.candle.FindRange(ctx, symbol, entity.TimeframeDaily, from, to)
	if err != nil {
		return nil, err
	}
	if cu.market == nil {
		return stored, nil
	}

	recorded, ok := cu.findCoverage(ctx, symbol)
	gaps := coverage.Gaps(recorded, ok, from, to)
	if len(gaps) == 0 {
		return stored, nil
	}

	var fetched []entity.Candle
	for _, g := range gaps {
		cs, err := cu.market.GetTimeSeries(ctx, symbol, ProviderDailyInterval, g.From, g.To)
		if err != nil {
			return nil, err
		}
		for _, c := range cs {
			c.Symbol = symbol
			c.Interval = entity.TimeframeDaily
			c.Time = entity.Truncate(c.Time)
			if c.Time.Before(g.From) || c.Time.After(g.To) {
				continue
			}
			fetched = append(fetched, c)
		}
	}

	if len(fetched) > 0 {
		if err := cu.candle.UpsertBatch(ctx, fetched); err != nil {
			slog.Warn("failed to store fetched candles", "symbol", symbol, "count", len(fetched), "error", err)
			return mergeCandles(stored, fetched), nil
		}
	}
	cu.saveCoverage(ctx, symbol, recorded, ok, from, to)
	return mergeCandles(stored, fetched), nil
}

func (cu *CandlesUsecase) findCoverage(ctx context.Context, symbol string) (coverage.Span, bool) {
	if cu.coverage == nil {
		return coverage.Span{}, false
	}
	span, ok, err := cu.coverage.Find(ctx, CoverageDataset, symbol)
	if err != nil {
		slog.Warn("failed to load candle coverage", "symbol", symbol, "error", err)
		return coverage.Span{}, false
	}
	return span, ok
}

// saveCoverage は [from, to] のうち確定済みの部分を取得済み範囲に加えます。
func (cu *CandlesUsecase) saveCoverage(ctx context.Context, symbol string, recorded coverage.Span, ok bool, from, to time.Time) {
	if cu.coverage == nil {
		return
	}
	if settled := coverage.Settled(cu.now()); to.After(settled) {
		to = settled
	}
	if to.Before(from) {
		return
	}
	span := coverage.Extend(recorded, ok, from, to)
	if err := cu.coverage.Save(ctx, CoverageDataset, symbol, span); err != nil {
		slog.Warn("failed to save candle coverage", "symbol", symbol, "error", err)
	}
}

// mergeCandles は日付で重複を除いて結合します。同じ日付は fetched を優先します。
func mergeCandles(stored, fetched []entity.Candle) []entity.Candle {
	byDate := make(map[time.Time]entity.Candle, len(stored)+len(fetched))
	for _, c := range stored {
		byDate[entity.Truncate(c.Time)] = c
	}
	for _, c := range fetched {
		byDate[c.Time] = c
	}
	out := make([]entity.Candle, 0, len(byDate))
	for _, c := range byDate {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b entity.Candle) int {
		return a.Time.Compare(b.Time)
	})
	return out
}
