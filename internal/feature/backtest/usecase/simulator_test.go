package usecase

import (
	"testing"
	"time"

	"stock_backtest/internal/feature/backtest/domain/entity"
	candle "stock_backtest/internal/feature/candles/domain/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSimulate_RedCandleScenario(t *testing.T) {
	t.Parallel()

	candles := []candle.Candle{
		{Symbol: "KO", Time: date(2024, 1, 2), Open: 10, High: 10, Low: 9, Close: 9},
		{Symbol: "KO", Time: date(2024, 1, 3), Open: 9, High: 11, Low: 9, Close: 11},
		{Symbol: "KO", Time: date(2024, 1, 4), Open: 12, High: 12, Low: 11, Close: 11},
	}

	sim := Simulate(candles, candle.TimeframeDaily, 5)

	require.Len(t, sim.Transactions, 2)
	assert.Equal(t, date(2024, 1, 2), sim.Transactions[0].TransactionDate)
	assert.True(t, dec("45").Equal(sim.Transactions[0].TotalCost))
	assert.True(t, dec("9").Equal(sim.Transactions[0].Price))
	assert.Equal(t, date(2024, 1, 4), sim.Transactions[1].TransactionDate)
	assert.True(t, dec("55").Equal(sim.Transactions[1].TotalCost))
	for _, tx := range sim.Transactions {
		assert.Equal(t, entity.TransactionBuy, tx.Type)
		assert.Equal(t, int64(5), tx.Quantity)
		assert.Equal(t, "KO", tx.Symbol)
	}

	assert.Equal(t, int64(10), sim.TotalShares)
	assert.True(t, dec("100").Equal(sim.TotalInvestment))
	assert.True(t, dec("10").Equal(sim.AverageCost))
	assert.True(t, dec("11").Equal(sim.LastPrice))
}

func TestSimulate_EdgeCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		candles   []candle.Candle
		wantTxs   int
		wantLast  string
		wantAvg   string
		wantTotal string
	}{
		{
			name:      "empty input",
			wantLast:  "0",
			wantAvg:   "0",
			wantTotal: "0",
		},
		{
			name:      "flat candle is not a signal",
			candles:   []candle.Candle{{Time: date(2024, 1, 2), Open: 10, Close: 10}},
			wantLast:  "10",
			wantAvg:   "0",
			wantTotal: "0",
		},
		{
			name:      "only green candles",
			candles:   []candle.Candle{{Time: date(2024, 1, 2), Open: 10, Close: 11}, {Time: date(2024, 1, 3), Open: 11, Close: 12}},
			wantLast:  "12",
			wantAvg:   "0",
			wantTotal: "0",
		},
		{
			name:      "unsorted input is replayed in date order",
			candles:   []candle.Candle{{Time: date(2024, 1, 3), Open: 12, Close: 8}, {Time: date(2024, 1, 2), Open: 10, Close: 12}},
			wantTxs:   1,
			wantLast:  "8",
			wantAvg:   "8",
			wantTotal: "8",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sim := Simulate(tt.candles, candle.TimeframeDaily, 1)

			assert.Len(t, sim.Transactions, tt.wantTxs)
			assert.True(t, dec(tt.wantLast).Equal(sim.LastPrice), "last price %s", sim.LastPrice)
			assert.True(t, dec(tt.wantAvg).Equal(sim.AverageCost), "average cost %s", sim.AverageCost)
			assert.True(t, dec(tt.wantTotal).Equal(sim.TotalInvestment), "investment %s", sim.TotalInvestment)
		})
	}
}

func TestSimulate_TradeDates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tf   candle.Timeframe
		date time.Time
		want time.Time
	}{
		{candle.TimeframeDaily, date(2024, 1, 10), date(2024, 1, 10)},
		// 2024-01-10 は水曜日。同じ週の金曜日で約定する
		{candle.TimeframeWeekly, date(2024, 1, 10), date(2024, 1, 12)},
		{candle.TimeframeMonthly, date(2024, 2, 27), date(2024, 2, 29)},
		{candle.TimeframeQuarterly, date(2024, 5, 31), date(2024, 6, 30)},
		{candle.TimeframeSemiAnnual, date(2024, 12, 30), date(2024, 12, 31)},
		{candle.TimeframeAnnual, date(2024, 3, 1), date(2024, 12, 31)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.tf), func(t *testing.T) {
			t.Parallel()

			sim := Simulate([]candle.Candle{{Time: tt.date, Open: 2, Close: 1}}, tt.tf, 1)

			require.Len(t, sim.Transactions, 1)
			assert.Equal(t, tt.want, sim.Transactions[0].TransactionDate)
		})
	}
}

func TestSimulate_InvestmentMatchesAverageCost(t *testing.T) {
	t.Parallel()

	var candles []candle.Candle
	for i := 0; i < 30; i++ {
		open := 100 + float64(i%7)
		closePrice := open - float64(i%3) + 0.37
		candles = append(candles, candle.Candle{Time: date(2024, 1, 1).AddDate(0, 0, i), Open: open, Close: closePrice})
	}

	sim := Simulate(candles, candle.TimeframeDaily, 3)

	red := 0
	for _, c := range candles {
		if c.Open > c.Close {
			red++
		}
	}
	require.Len(t, sim.Transactions, red)
	require.Positive(t, sim.TotalShares)
	recomputed := sim.AverageCost.Mul(decimal.NewFromInt(sim.TotalShares))
	assert.True(t, recomputed.Sub(sim.TotalInvestment).Abs().LessThan(dec("0.000001")))
}
