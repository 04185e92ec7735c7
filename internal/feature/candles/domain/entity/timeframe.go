package entity

import (
	"fmt"
	"strings"
	"time"
)

// Timeframe は日足および再集計後の足種別です。
type Timeframe string

const (
	TimeframeDaily      Timeframe = "daily"
	TimeframeWeekly     Timeframe = "weekly"
	TimeframeMonthly    Timeframe = "monthly"
	TimeframeQuarterly  Timeframe = "quarterly"
	TimeframeSemiAnnual Timeframe = "semi-annual"
	TimeframeAnnual     Timeframe = "annual"
)

// timeframeAliases maps accepted spellings (including provider intervals) to a Timeframe.
var timeframeAliases = map[string]Timeframe{
	"daily":       TimeframeDaily,
	"1day":        TimeframeDaily,
	"weekly":      TimeframeWeekly,
	"1week":       TimeframeWeekly,
	"monthly":     TimeframeMonthly,
	"1month":      TimeframeMonthly,
	"quarterly":   TimeframeQuarterly,
	"3month":      TimeframeQuarterly,
	"semi-annual": TimeframeSemiAnnual,
	"semiannual":  TimeframeSemiAnnual,
	"6month":      TimeframeSemiAnnual,
	"annual":      TimeframeAnnual,
	"yearly":      TimeframeAnnual,
	"1year":       TimeframeAnnual,
}

// ParseTimeframe は入力文字列を正規化された Timeframe に変換します。
func ParseTimeframe(s string) (Timeframe, error) {
	tf, ok := timeframeAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unsupported timeframe: %q", s)
	}
	return tf, nil
}

// Truncate returns the calendar day of t at midnight UTC.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// PeriodStart は t を含む暦上の期間の開始日を返します。
// 週足は ISO 週（月曜始まり）、四半期は1-3月/4-6月/7-9月/10-12月、半期は1-6月/7-12月です。
func (tf Timeframe) PeriodStart(t time.Time) time.Time {
	d := Truncate(t)
	switch tf {
	case TimeframeWeekly:
		offset := (int(d.Weekday()) + 6) % 7 // Monday=0
		return d.AddDate(0, 0, -offset)
	case TimeframeMonthly:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	case TimeframeQuarterly:
		q := (int(d.Month()) - 1) / 3
		return time.Date(d.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
	case TimeframeSemiAnnual:
		h := (int(d.Month()) - 1) / 6
		return time.Date(d.Year(), time.Month(h*6+1), 1, 0, 0, 0, 0, time.UTC)
	case TimeframeAnnual:
		return time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return d
	}
}

// PeriodEnd は t を含む期間の最終日（暦日）を返します。
func (tf Timeframe) PeriodEnd(t time.Time) time.Time {
	return tf.AddPeriods(tf.PeriodStart(t), 1).AddDate(0, 0, -1)
}

// AddPeriods は t を n 期間だけ移動します。
func (tf Timeframe) AddPeriods(t time.Time, n int) time.Time {
	switch tf {
	case TimeframeWeekly:
		return t.AddDate(0, 0, 7*n)
	case TimeframeMonthly:
		return t.AddDate(0, n, 0)
	case TimeframeQuarterly:
		return t.AddDate(0, 3*n, 0)
	case TimeframeSemiAnnual:
		return t.AddDate(0, 6*n, 0)
	case TimeframeAnnual:
		return t.AddDate(n, 0, 0)
	default:
		return t.AddDate(0, 0, n)
	}
}

// TradeDate returns the date a trade on a candle of this timeframe is booked at.
// Daily trades use the candle date, weekly trades the Friday of the ISO week,
// and coarser timeframes the last calendar day of the period.
func (tf Timeframe) TradeDate(candleDate time.Time) time.Time {
	switch tf {
	case TimeframeDaily, "":
		return Truncate(candleDate)
	case TimeframeWeekly:
		return tf.PeriodStart(candleDate).AddDate(0, 0, 4)
	default:
		return tf.PeriodEnd(candleDate)
	}
}
