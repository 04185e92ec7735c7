// Package usecase はバックテストの売買シミュレーション、配当収入の集計、
// およびそれらを組み合わせた実行フローを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"stock_backtest/internal/feature/backtest/domain/entity"
	candle "stock_backtest/internal/feature/candles/domain/entity"
	candleusecase "stock_backtest/internal/feature/candles/usecase"
	dividend "stock_backtest/internal/feature/dividends/domain/entity"
	dividendusecase "stock_backtest/internal/feature/dividends/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultQuantity は1回の買い付け株数の既定値です。
	DefaultQuantity int64 = 1
	// DefaultTimeout はバックテスト1回の制限時間の既定値です。
	DefaultTimeout = 30 * time.Second
	// dividendLookbackYears は頻度推定のために開始日より前へ遡る年数です。
	dividendLookbackYears = 2
)

var hundred = decimal.NewFromInt(100)

// CandleSource は日足を提供します。データが無い場合は空スライスを返します。
type CandleSource interface {
	DailyCandles(ctx context.Context, symbol string, from, to time.Time) ([]candle.Candle, error)
}

// DividendSource は配当イベントを提供します。
type DividendSource interface {
	DividendEvents(ctx context.Context, symbol string, from, to time.Time) ([]dividend.DividendEvent, error)
}

// TransactionRepository はセッションごとの取引履歴を保存します。
type TransactionRepository interface {
	SaveAll(ctx context.Context, txs []entity.Transaction) error
	FindBySession(ctx context.Context, sessionID string) ([]entity.Transaction, error)
}

// Recorder はバックテストの計測値を記録します。
type Recorder interface {
	ObserveBacktest(timeframe, outcome string, elapsed time.Duration)
	ProviderFailure(source string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveBacktest(string, string, time.Duration) {}
func (nopRecorder) ProviderFailure(string)                        {}

// Config はバックテスト実行時の設定です。
type Config struct {
	Timeout         time.Duration
	DefaultQuantity int64
}

// BacktestUsecase はローソク足と配当の取得からレポート作成までを実行します。
type BacktestUsecase struct {
	candles      CandleSource
	dividends    DividendSource
	transactions TransactionRepository
	recorder     Recorder
	cfg          Config
	now          func() time.Time
	newID        func() string
}

// NewBacktestUsecase は BacktestUsecase を生成します。
// transactions と recorder は nil でも構いません。
func NewBacktestUsecase(candles CandleSource, dividends DividendSource, transactions TransactionRepository, recorder Recorder, cfg Config) *BacktestUsecase {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.DefaultQuantity <= 0 {
		cfg.DefaultQuantity = DefaultQuantity
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &BacktestUsecase{
		candles:      candles,
		dividends:    dividends,
		transactions: transactions,
		recorder:     recorder,
		cfg:          cfg,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// RunBacktest は1銘柄のバックテストを実行します。
//
// エラーは *StageError で返され、errors.Is で ErrInvalidRequest、ErrNoDataAvailable、
// ErrProviderFailure、ErrTimeout を判別できます。配当の取得失敗は配当なしとして続行します。
func (bu *BacktestUsecase) RunBacktest(ctx context.Context, req entity.BacktestRequest) (*entity.BacktestResult, error) {
	started := time.Now()
	res, err := bu.run(ctx, req)
	label := "invalid"
	if tf, perr := candle.ParseTimeframe(string(req.Timeframe)); perr == nil {
		label = string(tf)
	} else if req.Timeframe == "" {
		label = string(candle.TimeframeDaily)
	}
	bu.recorder.ObserveBacktest(label, outcome(err), time.Since(started))
	return res, err
}

func (bu *BacktestUsecase) run(ctx context.Context, req entity.BacktestRequest) (*entity.BacktestResult, error) {
	req, err := bu.normalize(req)
	if err != nil {
		return nil, &StageError{Stage: StageValidate, Ticker: req.Symbol, Start: req.Start, End: req.End, Err: err}
	}
	stageErr := func(stage string, err error) error {
		return &StageError{Stage: stage, Ticker: req.Symbol, Start: req.Start, End: req.End, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, bu.cfg.Timeout)
	defer cancel()

	var (
		daily  []candle.Candle
		events []dividend.DividendEvent
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		from, to := candleusecase.FetchWindow(req.Timeframe, req.Start, req.End)
		cs, err := bu.candles.DailyCandles(gctx, req.Symbol, from, to)
		if err != nil {
			bu.recorder.ProviderFailure("candles")
			return err
		}
		daily = cs
		return nil
	})
	g.Go(func() error {
		from := req.Start.AddDate(-dividendLookbackYears, 0, 0)
		evs, err := bu.dividends.DividendEvents(gctx, req.Symbol, from, req.End)
		if err != nil {
			// 株価側の失敗で取り消された場合は配当の失敗として数えない
			if gctx.Err() != nil && ctx.Err() == nil {
				return nil
			}
			// 配当の取得失敗は配当なしとして扱う
			bu.recorder.ProviderFailure("dividends")
			slog.Warn("dividend fetch failed; continuing without dividends",
				"symbol", req.Symbol, "stage", StageFetchDividends, "error", err)
			return nil
		}
		events = evs
		return nil
	})
	if err := g.Wait(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, stageErr(StageFetchCandles, fmt.Errorf("%w: %w", ErrTimeout, err))
		}
		return nil, stageErr(StageFetchCandles, fmt.Errorf("%w (%w: %w)", ErrNoDataAvailable, ErrProviderFailure, err))
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, stageErr(StageFetchDividends, ErrTimeout)
	}

	candles := candleusecase.TrimToWindow(candleusecase.Resample(daily, req.Timeframe), req.Timeframe, req.Start, req.End)
	if len(candles) == 0 {
		return nil, stageErr(StageFetchCandles, ErrNoDataAvailable)
	}

	sim := Simulate(candles, req.Timeframe, req.Quantity)

	now := bu.now()
	asOf := req.End
	if now.Before(asOf) {
		asOf = now
	}
	analysis := dividendusecase.AnalyzeFrequency(events, asOf)
	valid := dividendusecase.ValidEvents(events)
	income := AttributeIncome(sim.Transactions, valid, analysis.Frequency, req.Start, req.End, now)

	sessionID := bu.newID()
	for i := range sim.Transactions {
		sim.Transactions[i].SessionID = sessionID
	}
	bu.saveTransactions(ctx, req.Symbol, sim.Transactions)

	totalValue := sim.LastPrice.Mul(decimal.NewFromInt(sim.TotalShares))
	pnl := totalValue.Sub(sim.TotalInvestment)
	pnlWithDiv := pnl.Add(income.TotalDividendIncome)
	lastCandleDate := candles[len(candles)-1].Time
	lastYield, ttmYield, yieldOnCost := dividendYields(valid, analysis.Frequency, sim, req.End, lastCandleDate)

	return &entity.BacktestResult{
		SessionID:   sessionID,
		Symbol:      req.Symbol,
		Timeframe:   req.Timeframe,
		Quantity:    req.Quantity,
		Start:       req.Start,
		End:         req.End,
		CandleCount: len(candles),

		TotalShares:     sim.TotalShares,
		TotalInvestment: sim.TotalInvestment,
		AverageCost:     sim.AverageCost,
		LastPrice:       sim.LastPrice,
		TotalValueToday: totalValue,

		PnL:                     pnl,
		PnLPercent:              percentOf(pnl, sim.TotalInvestment),
		TotalDividendIncome:     income.TotalDividendIncome,
		PnLWithDividends:        pnlWithDiv,
		PnLWithDividendsPercent: percentOf(pnlWithDiv, sim.TotalInvestment),

		Frequency:         analysis,
		LastDividendYield: lastYield,
		TTMDividendYield:  ttmYield,
		YieldOnCost:       yieldOnCost,

		TotalDividendPeriods: income.TotalDividendPeriods,
		PeriodsWithIncome:    income.PeriodsWithIncome,
		DividendDetails:      income.Details,
		DividendHistory:      BuildHistory(income.Details, analysis.Frequency, req.Start, req.End),
		Transactions:         sim.Transactions,
	}, nil
}

// SessionTransactions は保存済みのセッションの取引履歴を返します。
func (bu *BacktestUsecase) SessionTransactions(ctx context.Context, sessionID string) ([]entity.Transaction, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, fmt.Errorf("%w: session id %q", ErrInvalidRequest, sessionID)
	}
	if bu.transactions == nil {
		return nil, fmt.Errorf("%w: transactions are not stored", ErrNoDataAvailable)
	}
	txs, err := bu.transactions.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, fmt.Errorf("%w: session %s", ErrNoDataAvailable, sessionID)
	}
	return txs, nil
}

func (bu *BacktestUsecase) normalize(req entity.BacktestRequest) (entity.BacktestRequest, error) {
	req.Symbol = strings.TrimSpace(req.Symbol)
	if req.Timeframe == "" {
		req.Timeframe = candle.TimeframeDaily
	}
	if req.Quantity <= 0 {
		req.Quantity = bu.cfg.DefaultQuantity
	}
	req.Start, req.End = day(req.Start), day(req.End)

	switch {
	case req.Symbol == "":
		return req, fmt.Errorf("%w: ticker is required", ErrInvalidRequest)
	case req.Start.IsZero() || req.End.IsZero():
		return req, fmt.Errorf("%w: start and end dates are required", ErrInvalidRequest)
	case req.Start.After(req.End):
		return req, fmt.Errorf("%w: start date must not be after end date", ErrInvalidRequest)
	}
	tf, err := candle.ParseTimeframe(string(req.Timeframe))
	if err != nil {
		return req, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	req.Timeframe = tf
	return req, nil
}

func (bu *BacktestUsecase) saveTransactions(ctx context.Context, symbol string, txs []entity.Transaction) {
	if bu.transactions == nil || len(txs) == 0 {
		return
	}
	if err := bu.transactions.SaveAll(ctx, txs); err != nil {
		slog.Warn("failed to store transactions", "symbol", symbol, "count", len(txs), "error", err)
	}
}

// dividendYields は直近配当利回り、TTM利回り、取得単価利回りを百分率で返します。
// 直近配当は end 以前で最新のイベント、TTM は最終足の日付から遡る12ヶ月です。
func dividendYields(events []dividend.DividendEvent, freq dividend.Frequency, sim Simulation, end, lastCandleDate time.Time) (last, ttm, onCost decimal.Decimal) {
	last, ttm, onCost = decimal.Zero, decimal.Zero, decimal.Zero

	var latest *dividend.DividendEvent
	for i := range events {
		if events[i].ExDate.After(end) {
			break
		}
		latest = &events[i]
	}
	if latest == nil {
		return last, ttm, onCost
	}

	annual := latest.Amount.Mul(decimal.NewFromInt(int64(freq.PaymentsPerYear())))
	last = percentOf(annual, sim.LastPrice)
	onCost = percentOf(annual, sim.AverageCost)

	ttmEnd := day(lastCandleDate)
	ttmStart := ttmEnd.AddDate(-1, 0, 0)
	sum := decimal.Zero
	for _, e := range events {
		if e.ExDate.After(ttmStart) && !e.ExDate.After(ttmEnd) {
			sum = sum.Add(e.Amount)
		}
	}
	ttm = percentOf(sum, sim.LastPrice)
	return last, ttm, onCost
}

// percentOf は v / base × 100 を返します。base が0の場合は0です。
func percentOf(v, base decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return v.Div(base).Mul(hundred)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrNoDataAvailable):
		return "no_data"
	default:
		return "error"
	}
}
