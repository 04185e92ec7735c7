package usecase

import (
	"slices"

	"stock_backtest/internal/feature/backtest/domain/entity"
	candle "stock_backtest/internal/feature/candles/domain/entity"

	"github.com/shopspring/decimal"
)

// Simulation は売買ルールを適用した結果です。
type Simulation struct {
	Transactions    []entity.Transaction
	TotalShares     int64
	TotalInvestment decimal.Decimal
	AverageCost     decimal.Decimal
	LastPrice       decimal.Decimal
}

// Simulate は陰線（始値 > 終値）の足ごとに終値で quantity 株を買います。
// 取引日は tf に応じた期間の約定日（candle.Timeframe.TradeDate）です。
// 始値と終値が等しい足ではシグナルを出しません。
func Simulate(candles []candle.Candle, tf candle.Timeframe, quantity int64) Simulation {
	sorted := slices.Clone(candles)
	slices.SortStableFunc(sorted, func(a, b candle.Candle) int {
		return a.Time.Compare(b.Time)
	})

	sim := Simulation{
		Transactions:    []entity.Transaction{},
		TotalInvestment: decimal.Zero,
		AverageCost:     decimal.Zero,
		LastPrice:       decimal.Zero,
	}
	if len(sorted) == 0 {
		return sim
	}

	qty := decimal.NewFromInt(quantity)
	for _, c := range sorted {
		if !c.IsRed() {
			continue
		}
		price := decimal.NewFromFloat(c.Close)
		cost := price.Mul(qty)
		sim.Transactions = append(sim.Transactions, entity.Transaction{
			Symbol:          c.Symbol,
			TransactionDate: tf.TradeDate(c.Time),
			Type:            entity.TransactionBuy,
			Quantity:        quantity,
			Price:           price,
			TotalCost:       cost,
		})
		sim.TotalShares += quantity
		sim.TotalInvestment = sim.TotalInvestment.Add(cost)
	}

	if sim.TotalShares > 0 {
		sim.AverageCost = sim.TotalInvestment.Div(decimal.NewFromInt(sim.TotalShares))
	}
	sim.LastPrice = decimal.NewFromFloat(sorted[len(sorted)-1].Close)
	return sim
}
