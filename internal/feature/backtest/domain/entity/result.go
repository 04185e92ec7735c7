package entity

import (
	"time"

	candle "stock_backtest/internal/feature/candles/domain/entity"
	dividend "stock_backtest/internal/feature/dividends/domain/entity"

	"github.com/shopspring/decimal"
)

// BacktestRequest はバックテスト1回分の入力です。
type BacktestRequest struct {
	Symbol    string
	Timeframe candle.Timeframe
	Quantity  int64 // 0以下の場合はデフォルト値
	Start     time.Time
	End       time.Time
}

// BacktestResult はバックテスト1回分の結果です。構築後は変更しません。
type BacktestResult struct {
	SessionID   string
	Symbol      string
	Timeframe   candle.Timeframe
	Quantity    int64
	Start       time.Time
	End         time.Time
	CandleCount int

	TotalShares     int64
	TotalInvestment decimal.Decimal
	AverageCost     decimal.Decimal
	LastPrice       decimal.Decimal
	TotalValueToday decimal.Decimal

	PnL                     decimal.Decimal
	PnLPercent              decimal.Decimal
	TotalDividendIncome     decimal.Decimal
	PnLWithDividends        decimal.Decimal
	PnLWithDividendsPercent decimal.Decimal

	Frequency         dividend.FrequencyAnalysis
	LastDividendYield decimal.Decimal
	TTMDividendYield  decimal.Decimal
	YieldOnCost       decimal.Decimal

	TotalDividendPeriods int
	PeriodsWithIncome    int
	DividendDetails      []DividendIncomeRecord
	DividendHistory      []YearIncome
	Transactions         []Transaction
}
