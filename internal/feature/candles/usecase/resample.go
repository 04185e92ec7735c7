package usecase

import (
	"slices"
	"time"

	"stock_backtest/internal/feature/candles/domain/entity"
)

// Resample は日足を暦に揃えた期間ごとに集計し、期間順に返します。
//
// 各期間のローソク足は次のように作られます:
//   - Open: 最も古い日足の始値
//   - Close: 最も新しい日足の終値
//   - High/Low: 期間内の最大高値/最小安値
//   - Volume: 出来高の合計
//   - Time: 最も新しい日足の日付
//
// 日足が1本もない期間は出力されません。入力は変更しません。
func Resample(daily []entity.Candle, tf entity.Timeframe) []entity.Candle {
	if len(daily) == 0 {
		return []entity.Candle{}
	}

	sorted := slices.Clone(daily)
	slices.SortStableFunc(sorted, func(a, b entity.Candle) int {
		return a.Time.Compare(b.Time)
	})

	out := make([]entity.Candle, 0, len(sorted))
	var (
		curKey time.Time
		cur    entity.Candle
		open   bool
	)
	for _, c := range sorted {
		key := tf.PeriodStart(c.Time)
		if !open || !key.Equal(curKey) {
			if open {
				out = append(out, cur)
			}
			curKey = key
			cur = c
			cur.Interval = tf
			open = true
			continue
		}
		if c.High > cur.High {
			cur.High = c.High
		}
		if c.Low < cur.Low {
			cur.Low = c.Low
		}
		cur.Close = c.Close
		cur.Volume += c.Volume
		cur.Time = c.Time
	}
	if open {
		out = append(out, cur)
	}
	return out
}

// TrimToWindow keeps the candles whose period overlaps [from, to].
// A zero bound is treated as open.
func TrimToWindow(candles []entity.Candle, tf entity.Timeframe, from, to time.Time) []entity.Candle {
	out := make([]entity.Candle, 0, len(candles))
	for _, c := range candles {
		if !to.IsZero() && tf.PeriodStart(c.Time).After(entity.Truncate(to)) {
			continue
		}
		if !from.IsZero() && tf.PeriodEnd(c.Time).Before(entity.Truncate(from)) {
			continue
		}
		out = append(out, c)
	}
	return out
}
