package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	backtestadapters "stock_backtest/internal/feature/backtest/adapters"
	backtestusecase "stock_backtest/internal/feature/backtest/usecase"
	candleusecase "stock_backtest/internal/feature/candles/usecase"
	dividendusecase "stock_backtest/internal/feature/dividends/usecase"
	symboladapters "stock_backtest/internal/feature/symbollist/adapters"
	symbolusecase "stock_backtest/internal/feature/symbollist/usecase"
	"stock_backtest/internal/platform/config"
	"stock_backtest/internal/shared/coverage"
)

// Services はサーバーとCLIで共有するユースケース群です。
type Services struct {
	Candles   *candleusecase.CandlesUsecase
	Dividends *dividendusecase.DividendsUsecase
	Symbols   *symbolusecase.SymbolUsecase
	Backtest  *backtestusecase.BacktestUsecase
}

// NewServices はユースケースを組み立てます。
// provider が nil の場合は保存済みデータのみで動作します。
// recorder が nil の場合はメトリクスを記録しません。
func NewServices(gdb *gorm.DB, rdb *redis.Client, provider Provider, recorder backtestusecase.Recorder, cfg config.Config) *Services {
	var (
		market    candleusecase.MarketRepository
		dividends dividendusecase.DividendProvider
	)
	if provider != nil {
		market, dividends = provider, provider
	}

	cov := coverage.NewStore(gdb)
	candlesUC := candleusecase.NewCandlesUsecase(NewCandleRepository(gdb, rdb, cfg), market, cov)
	dividendsUC := dividendusecase.NewDividendsUsecase(NewDividendRepository(gdb, rdb, cfg), dividends, cov)
	backtestUC := backtestusecase.NewBacktestUsecase(
		candlesUC,
		dividendsUC,
		backtestadapters.NewTransactionRepository(gdb),
		recorder,
		backtestusecase.Config{
			Timeout:         cfg.BacktestTimeout,
			DefaultQuantity: cfg.DefaultQuantity,
		},
	)

	return &Services{
		Candles:   candlesUC,
		Dividends: dividendsUC,
		Symbols:   symbolusecase.NewSymbolUsecase(symboladapters.NewSymbolRepository(gdb)),
		Backtest:  backtestUC,
	}
}
