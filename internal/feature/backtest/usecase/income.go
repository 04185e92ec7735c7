package usecase

import (
	"fmt"
	"slices"
	"time"

	"stock_backtest/internal/feature/backtest/domain/entity"
	dividend "stock_backtest/internal/feature/dividends/domain/entity"

	"github.com/shopspring/decimal"
)

// Income は配当収入の集計結果です。
type Income struct {
	TotalDividendIncome  decimal.Decimal
	Details              []entity.DividendIncomeRecord
	TotalDividendPeriods int
	PeriodsWithIncome    int
}

// AttributeIncome は権利落ち日時点の保有株数から配当収入を計算します。
//
// start と end を含む期間に権利落ち日があるイベントだけを対象にします。
// 保有株数は取引日が権利落ち日以前の取引の合計です（SELL は減算）。
// 各レコードの Period は freq の年間支払回数で年を等分した番号です。
// now より後の権利落ち日は upcoming になります。
func AttributeIncome(txs []entity.Transaction, events []dividend.DividendEvent, freq dividend.Frequency, start, end, now time.Time) Income {
	sortedTxs := slices.Clone(txs)
	slices.SortStableFunc(sortedTxs, func(a, b entity.Transaction) int {
		return a.TransactionDate.Compare(b.TransactionDate)
	})
	start, end, now = day(start), day(end), day(now)

	inWindow := make([]dividend.DividendEvent, 0, len(events))
	for _, e := range events {
		if !e.Valid() {
			continue
		}
		ex := day(e.ExDate)
		if ex.Before(start) || ex.After(end) {
			continue
		}
		e.ExDate = ex
		inWindow = append(inWindow, e)
	}
	slices.SortStableFunc(inWindow, func(a, b dividend.DividendEvent) int {
		return a.ExDate.Compare(b.ExDate)
	})

	income := Income{
		TotalDividendIncome: decimal.Zero,
		Details:             make([]entity.DividendIncomeRecord, 0, len(inWindow)),
	}
	ppy := freq.PaymentsPerYear()
	var shares int64
	next := 0
	for _, e := range inWindow {
		// 取引は日付順なので、権利落ち日までの分だけ進めればよい
		for next < len(sortedTxs) && !day(sortedTxs[next].TransactionDate).After(e.ExDate) {
			shares += sortedTxs[next].SignedQuantity()
			next++
		}
		owned := max(shares, 0)
		total := e.Amount.Mul(decimal.NewFromInt(owned))

		status := entity.IncomePaid
		switch {
		case owned == 0:
			status = entity.IncomeNotEligible
		case e.ExDate.After(now):
			status = entity.IncomeUpcoming
		}

		income.Details = append(income.Details, entity.DividendIncomeRecord{
			ExDate:         e.ExDate,
			PayDate:        e.PayDate,
			AmountPerShare: e.Amount,
			SharesOwned:    owned,
			TotalIncome:    total,
			Status:         status,
			Year:           e.ExDate.Year(),
			Period:         periodOf(e.ExDate, ppy),
		})
		income.TotalDividendIncome = income.TotalDividendIncome.Add(total)
		if total.IsPositive() {
			income.PeriodsWithIncome++
		}
	}
	income.TotalDividendPeriods = len(income.Details)
	return income
}

// BuildHistory は年ごと・期間ごとの配当収入の内訳を組み立てます。
// [start, end] に重なる期間をすべて出力し、イベントが無い期間は pending・金額0とします。
func BuildHistory(details []entity.DividendIncomeRecord, freq dividend.Frequency, start, end time.Time) []entity.YearIncome {
	start, end = day(start), day(end)
	if end.Before(start) {
		return []entity.YearIncome{}
	}
	ppy := freq.PaymentsPerYear()
	months := 12 / ppy

	type key struct{ year, period int }
	byPeriod := make(map[key][]entity.DividendIncomeRecord)
	for _, d := range details {
		k := key{d.Year, d.Period}
		byPeriod[k] = append(byPeriod[k], d)
	}

	history := make([]entity.YearIncome, 0, end.Year()-start.Year()+1)
	for y := start.Year(); y <= end.Year(); y++ {
		year := entity.YearIncome{Year: y, TotalIncome: decimal.Zero, Periods: []entity.PeriodIncome{}}
		for p := 1; p <= ppy; p++ {
			pStart := time.Date(y, time.Month((p-1)*months+1), 1, 0, 0, 0, 0, time.UTC)
			pEnd := pStart.AddDate(0, months, -1)
			if pEnd.Before(start) || pStart.After(end) {
				continue
			}
			period := summarizePeriod(byPeriod[key{y, p}])
			period.Period = p
			period.Label = periodLabel(p, ppy)
			year.TotalIncome = year.TotalIncome.Add(period.TotalIncome)
			year.Periods = append(year.Periods, period)
		}
		history = append(history, year)
	}
	return history
}

func summarizePeriod(records []entity.DividendIncomeRecord) entity.PeriodIncome {
	out := entity.PeriodIncome{
		ExDates:        []time.Time{},
		AmountPerShare: decimal.Zero,
		TotalIncome:    decimal.Zero,
		Status:         entity.IncomePending,
	}
	if len(records) == 0 {
		return out
	}

	eligible, upcoming := false, false
	for _, r := range records {
		out.ExDates = append(out.ExDates, r.ExDate)
		out.AmountPerShare = out.AmountPerShare.Add(r.AmountPerShare)
		out.TotalIncome = out.TotalIncome.Add(r.TotalIncome)
		out.SharesOwned = r.SharesOwned
		switch r.Status {
		case entity.IncomeUpcoming:
			upcoming = true
			eligible = true
		case entity.IncomePaid:
			eligible = true
		}
	}
	switch {
	case !eligible:
		out.Status = entity.IncomeNotEligible
	case upcoming:
		out.Status = entity.IncomeUpcoming
	default:
		out.Status = entity.IncomePaid
	}
	return out
}

// periodOf は t が年内の何番目の期間（1始まり）かを返します。
func periodOf(t time.Time, paymentsPerYear int) int {
	return (int(t.Month())-1)*paymentsPerYear/12 + 1
}

func periodLabel(p, paymentsPerYear int) string {
	switch paymentsPerYear {
	case 12:
		return time.Month(p).String()[:3]
	case 4:
		return fmt.Sprintf("Q%d", p)
	case 2:
		return fmt.Sprintf("H%d", p)
	default:
		return "FY"
	}
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
