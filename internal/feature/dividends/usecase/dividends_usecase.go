// Package usecase は配当データの取得と支払い頻度の推定を実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stock_backtest/internal/feature/dividends/domain/entity"
	"stock_backtest/internal/shared/coverage"
	"stock_backtest/internal/shared/ratelimiter"
)

const (
	// DefaultLookback は期間未指定時の取得期間です。
	DefaultLookback = AnalysisWindow
	// CoverageDataset は配当の取得済み範囲を記録する際のデータセット名です。
	CoverageDataset = "dividends"
)

// DividendRepository は配当イベントの永続化レイヤーを抽象化します。
type DividendRepository interface {
	// FindRange は権利落ち日が [from, to] のイベントを昇順で返します。
	FindRange(ctx context.Context, symbol string, from, to time.Time) ([]entity.DividendEvent, error)
	// UpsertBatch は (symbol, exDate) をキーに一括で挿入または更新します。
	UpsertBatch(ctx context.Context, events []entity.DividendEvent) error
}

// DividendProvider は外部APIから配当イベントを取得します。
// 配当が見つからない場合は空スライスを返し、エラーは通信失敗のみです。
type DividendProvider interface {
	GetDividends(ctx context.Context, symbol string, from, to time.Time) ([]entity.DividendEvent, error)
}

// CoverageRepository は外部APIから取得済みの権利落ち日の範囲を記録します。
type CoverageRepository interface {
	Find(ctx context.Context, dataset, symbol string) (coverage.Span, bool, error)
	Save(ctx context.Context, dataset, symbol string, span coverage.Span) error
}

// DividendsUsecase は配当イベントの読み取りと頻度分析を提供します。
type DividendsUsecase struct {
	dividend DividendRepository
	provider DividendProvider
	coverage CoverageRepository
	now      func() time.Time
}

// NewDividendsUsecase は DividendsUsecase を生成します。
// provider が nil の場合は保存済みデータのみを返します。
// coverage が nil の場合は要求範囲を毎回外部APIから取得します。
func NewDividendsUsecase(dividend DividendRepository, provider DividendProvider, coverage CoverageRepository) *DividendsUsecase {
	return &DividendsUsecase{dividend: dividend, provider: provider, coverage: coverage, now: time.Now}
}

// Summary は GET /dividends の応答に使う集計結果です。
type Summary struct {
	Events   []entity.DividendEvent
	Analysis entity.FrequencyAnalysis
}

// DividendEvents は [from, to] の有効な配当イベントを権利落ち日順に返します。
// 取得済み範囲から外れた部分を外部APIから取得し、ベストエフォートで保存します。
func (du *DividendsUsecase) DividendEvents(ctx context.Context, symbol string, from, to time.Time) ([]entity.DividendEvent, error) {
	from, to = truncateDay(from), truncateDay(to)

	stored, err := du.dividend.FindRange(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	if du.provider == nil {
		return ValidEvents(stored), nil
	}

	recorded, ok := findCoverage(ctx, du.coverage, symbol)
	gaps := coverage.Gaps(recorded, ok, from, to)
	if len(gaps) == 0 {
		return ValidEvents(stored), nil
	}

	var fetched []entity.DividendEvent
	for _, g := range gaps {
		events, err := du.provider.GetDividends(ctx, symbol, g.From, g.To)
		if err != nil {
			return nil, err
		}
		for _, e := range ValidEvents(events) {
			if e.ExDate.Before(g.From) || e.ExDate.After(g.To) {
				continue
			}
			e.Symbol = symbol
			fetched = append(fetched, e)
		}
	}

	// 同じ権利落ち日は取得したばかりのイベントを優先する
	merged := ValidEvents(append(fetched, stored...))
	if len(fetched) > 0 {
		if err := du.dividend.UpsertBatch(ctx, fetched); err != nil {
			slog.Warn("failed to store fetched dividends", "symbol", symbol, "count", len(fetched), "error", err)
			return merged, nil
		}
	}
	saveCoverage(ctx, du.coverage, symbol, recorded, ok, from, minDay(to, coverage.Settled(du.now())))
	return merged, nil
}

func findCoverage(ctx context.Context, repo CoverageRepository, symbol string) (coverage.Span, bool) {
	if repo == nil {
		return coverage.Span{}, false
	}
	span, ok, err := repo.Find(ctx, CoverageDataset, symbol)
	if err != nil {
		slog.Warn("failed to load dividend coverage", "symbol", symbol, "error", err)
		return coverage.Span{}, false
	}
	return span, ok
}

// saveCoverage は [from, to] を取得済み範囲に加えます。
func saveCoverage(ctx context.Context, repo CoverageRepository, symbol string, recorded coverage.Span, ok bool, from, to time.Time) {
	if repo == nil || to.Before(from) {
		return
	}
	if err := repo.Save(ctx, CoverageDataset, symbol, coverage.Extend(recorded, ok, from, to)); err != nil {
		slog.Warn("failed to save dividend coverage", "symbol", symbol, "error", err)
	}
}

func minDay(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}

// Summarize は [from, to] の配当イベントと to 時点の頻度分析を返します。
// 頻度分析には from に関わらず to から AnalysisWindow 分のイベントを使います。
func (du *DividendsUsecase) Summarize(ctx context.Context, symbol string, from, to time.Time) (Summary, error) {
	if to.IsZero() {
		to = du.now()
	}
	if from.IsZero() {
		from = to.Add(-DefaultLookback)
	}
	if from.After(to) {
		return Summary{}, fmt.Errorf("from %s is after to %s", from.Format(time.DateOnly), to.Format(time.DateOnly))
	}

	lookbackFrom := to.Add(-AnalysisWindow)
	if from.Before(lookbackFrom) {
		lookbackFrom = from
	}
	events, err := du.DividendEvents(ctx, symbol, lookbackFrom, to)
	if err != nil {
		return Summary{}, err
	}

	from = truncateDay(from)
	inRange := make([]entity.DividendEvent, 0, len(events))
	for _, e := range events {
		if !e.ExDate.Before(from) {
			inRange = append(inRange, e)
		}
	}
	return Summary{Events: inRange, Analysis: AnalyzeFrequency(events, to)}, nil
}

// IngestUsecase は全銘柄の配当イベントを外部APIから取得して保存します。
type IngestUsecase struct {
	provider    DividendProvider
	dividend    DividendRepository
	coverage    CoverageRepository
	rateLimiter ratelimiter.RateLimiterInterface
	lookback    time.Duration
	now         func() time.Time
}

// NewIngestUsecase は新しい IngestUsecase を作成します。
func NewIngestUsecase(provider DividendProvider, dividend DividendRepository, coverage CoverageRepository, rateLimiter ratelimiter.RateLimiterInterface, lookback time.Duration) *IngestUsecase {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &IngestUsecase{provider: provider, dividend: dividend, coverage: coverage, rateLimiter: rateLimiter, lookback: lookback, now: time.Now}
}

// IngestAll は指定された全銘柄の配当を保存します。
// 1銘柄の失敗はログに残して次へ進みます。
func (iu *IngestUsecase) IngestAll(ctx context.Context, symbols []string) error {
	to := truncateDay(iu.now())
	from := truncateDay(to.Add(-iu.lookback))
	settled := minDay(to, coverage.Settled(iu.now()))
	for _, s := range symbols {
		if err := iu.rateLimiter.Wait(ctx); err != nil {
			return err
		}
		events, err := iu.provider.GetDividends(ctx, s, from, to)
		if err != nil {
			slog.Error("failed to fetch dividends", "symbol", s, "error", err)
			continue
		}
		valid := ValidEvents(events)
		for i := range valid {
			valid[i].Symbol = s
		}
		if err := iu.dividend.UpsertBatch(ctx, valid); err != nil {
			slog.Error("failed to store dividends", "symbol", s, "error", err)
			continue
		}
		recorded, ok := findCoverage(ctx, iu.coverage, s)
		saveCoverage(ctx, iu.coverage, s, recorded, ok, from, settled)
		slog.Info("dividends ingested", "symbol", s, "count", len(valid))
	}
	return nil
}
