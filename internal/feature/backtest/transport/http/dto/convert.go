package dto

import (
	"time"

	"stock_backtest/internal/feature/backtest/domain/entity"

	"github.com/shopspring/decimal"
)

// NewBacktestResponse はバックテスト結果をレスポンスに変換します。
// 金額は小数点以下2桁、平均取得単価は4桁の文字列です。
func NewBacktestResponse(r *entity.BacktestResult) BacktestResponse {
	details := make([]DividendDetailResponse, 0, len(r.DividendDetails))
	for _, d := range r.DividendDetails {
		var pay *string
		if d.PayDate != nil {
			s := d.PayDate.Format(time.DateOnly)
			pay = &s
		}
		details = append(details, DividendDetailResponse{
			ExDate:         d.ExDate.Format(time.DateOnly),
			PayDate:        pay,
			AmountPerShare: d.AmountPerShare.String(),
			SharesOwned:    d.SharesOwned,
			TotalIncome:    money(d.TotalIncome),
			Status:         string(d.Status),
			Year:           d.Year,
			Period:         d.Period,
		})
	}

	history := make([]YearIncomeResponse, 0, len(r.DividendHistory))
	for _, y := range r.DividendHistory {
		periods := make([]PeriodIncomeResponse, 0, len(y.Periods))
		for _, p := range y.Periods {
			exDates := make([]string, 0, len(p.ExDates))
			for _, d := range p.ExDates {
				exDates = append(exDates, d.Format(time.DateOnly))
			}
			periods = append(periods, PeriodIncomeResponse{
				Period:         p.Period,
				Label:          p.Label,
				ExDates:        exDates,
				AmountPerShare: p.AmountPerShare.String(),
				SharesOwned:    p.SharesOwned,
				TotalIncome:    money(p.TotalIncome),
				Status:         string(p.Status),
			})
		}
		history = append(history, YearIncomeResponse{Year: y.Year, TotalIncome: money(y.TotalIncome), Periods: periods})
	}

	return BacktestResponse{
		SessionID:   r.SessionID,
		Ticker:      r.Symbol,
		Timeframe:   string(r.Timeframe),
		Quantity:    r.Quantity,
		StartDate:   r.Start.Format(time.DateOnly),
		EndDate:     r.End.Format(time.DateOnly),
		CandleCount: r.CandleCount,

		TotalShares:     r.TotalShares,
		TotalInvestment: money(r.TotalInvestment),
		AverageCost:     r.AverageCost.StringFixed(4),
		LastPrice:       r.LastPrice.String(),
		TotalValueToday: money(r.TotalValueToday),

		PnL:                     money(r.PnL),
		PnLPercent:              money(r.PnLPercent),
		TotalDividendIncome:     money(r.TotalDividendIncome),
		PnLWithDividends:        money(r.PnLWithDividends),
		PnLWithDividendsPercent: money(r.PnLWithDividendsPercent),

		DividendFrequency: FrequencyResponse{
			Frequency:           string(r.Frequency.Frequency),
			Confidence:          string(r.Frequency.Confidence),
			Reason:              r.Frequency.Reason,
			SampleSize:          r.Frequency.SampleSize,
			AverageIntervalDays: r.Frequency.AverageIntervalDays,
		},
		LastDividendYield: money(r.LastDividendYield),
		TTMDividendYield:  money(r.TTMDividendYield),
		YieldOnCost:       money(r.YieldOnCost),

		TotalDividendPeriods: r.TotalDividendPeriods,
		PeriodsWithIncome:    r.PeriodsWithIncome,
		DividendDetails:      details,
		DividendHistory:      history,
		Transactions:         NewTransactionResponses(r.Transactions),
	}
}

// NewTransactionResponses は取引履歴をレスポンスに変換します。
func NewTransactionResponses(txs []entity.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, TransactionResponse{
			SessionID:       t.SessionID,
			Ticker:          t.Symbol,
			TransactionDate: t.TransactionDate.Format(time.DateOnly),
			Type:            string(t.Type),
			Quantity:        t.Quantity,
			Price:           t.Price.String(),
			TotalCost:       money(t.TotalCost),
		})
	}
	return out
}

// money は小数点以下2桁の文字列にします。
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
