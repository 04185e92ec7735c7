package usecase

import (
	"fmt"
	"math"
	"slices"
	"time"

	"stock_backtest/internal/feature/dividends/domain/entity"
)

// AnalysisWindow は頻度推定に使う過去データの期間です。
const AnalysisWindow = 2 * 365 * 24 * time.Hour

// irregularCV を超える変動係数の配当間隔は不規則とみなします。
const irregularCV = 0.5

type frequencyRule struct {
	frequency  entity.Frequency
	daysBack   int
	minCount   int
	minGapDays int
	maxGapDays int
}

// frequencyRules は判定順に並んでいます。最初に一致したものを採用します。
var frequencyRules = []frequencyRule{
	{entity.FrequencyMonthly, 35, 2, 25, 40},
	{entity.FrequencyQuarterly, 100, 2, 75, 105},
	{entity.FrequencySemiAnnual, 200, 2, 165, 205},
	{entity.FrequencyAnnual, 365, 1, 340, 385},
}

// AnalyzeFrequency は配当の権利落ち日の並びから支払い頻度を推定します。
//
// asOf から遡って AnalysisWindow 以内の有効なイベントのみを使います。
// asOf がゼロ値の場合は全イベントを使います。
// イベントが無い場合は quarterly / low を返します（推定値は作りません）。
func AnalyzeFrequency(events []entity.DividendEvent, asOf time.Time) entity.FrequencyAnalysis {
	dates := analysisDates(events, asOf)
	if len(dates) == 0 {
		return entity.FrequencyAnalysis{
			Frequency:  entity.FrequencyQuarterly,
			Confidence: entity.ConfidenceLow,
			Reason:     "no dividend events in the analysis window; assuming quarterly",
			SampleSize: 0,
		}
	}

	gaps := dayGaps(dates)
	analysis := entity.FrequencyAnalysis{SampleSize: len(dates)}
	if len(gaps) > 0 {
		avg := mean(gaps)
		analysis.AverageIntervalDays = &avg
	}

	last := dates[len(dates)-1]
	for _, rule := range frequencyRules {
		count := 0
		for _, d := range dates {
			if daysBetween(d, last) <= rule.daysBack {
				count++
			}
		}
		if count < rule.minCount {
			continue
		}

		inWindow, confidence := gapConfidence(gaps, rule.minGapDays, rule.maxGapDays)
		if confidence == entity.ConfidenceLow && markIrregular(&analysis, gaps) {
			return analysis
		}
		analysis.Frequency = rule.frequency
		analysis.Confidence = confidence
		analysis.Reason = fmt.Sprintf("%d payment(s) within %d days of the latest ex-date; %d of %d intervals within %d-%d days",
			count, rule.daysBack, inWindow, len(gaps), rule.minGapDays, rule.maxGapDays)
		return analysis
	}

	if markIrregular(&analysis, gaps) {
		return analysis
	}
	analysis.Frequency = entity.FrequencyQuarterly
	analysis.Confidence = entity.ConfidenceLow
	analysis.Reason = "no cadence rule matched; assuming quarterly"
	return analysis
}

// ValidEvents は金額が正のイベントだけを権利落ち日順に返します。
// 同じ権利落ち日のイベントは最初のものを残します。
func ValidEvents(events []entity.DividendEvent) []entity.DividendEvent {
	out := make([]entity.DividendEvent, 0, len(events))
	seen := make(map[time.Time]struct{}, len(events))
	for _, e := range events {
		if !e.Valid() {
			continue
		}
		key := truncateDay(e.ExDate)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		e.ExDate = key
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(a, b entity.DividendEvent) int {
		return a.ExDate.Compare(b.ExDate)
	})
	return out
}

// analysisDates は分析対象の権利落ち日を昇順で返します。
func analysisDates(events []entity.DividendEvent, asOf time.Time) []time.Time {
	var from, to time.Time
	if !asOf.IsZero() {
		to = truncateDay(asOf)
		from = to.Add(-AnalysisWindow)
	}
	dates := make([]time.Time, 0, len(events))
	for _, e := range ValidEvents(events) {
		if !to.IsZero() && (e.ExDate.Before(from) || e.ExDate.After(to)) {
			continue
		}
		dates = append(dates, e.ExDate)
	}
	return dates
}

// markIrregular sets an irregular classification when at least three events
// have intervals whose coefficient of variation exceeds irregularCV.
func markIrregular(a *entity.FrequencyAnalysis, gaps []float64) bool {
	if len(gaps) < 2 {
		return false
	}
	cv := coefficientOfVariation(gaps)
	if cv <= irregularCV {
		return false
	}
	a.Frequency = entity.FrequencyIrregular
	a.Confidence = entity.ConfidenceMedium
	a.Reason = fmt.Sprintf("intervals vary too much (coefficient of variation %.2f)", cv)
	return true
}

func gapConfidence(gaps []float64, minDays, maxDays int) (int, entity.Confidence) {
	inWindow := 0
	for _, g := range gaps {
		if g >= float64(minDays) && g <= float64(maxDays) {
			inWindow++
		}
	}
	if len(gaps) < 2 {
		return inWindow, entity.ConfidenceLow
	}
	ratio := float64(inWindow) / float64(len(gaps))
	switch {
	case ratio >= 0.8:
		return inWindow, entity.ConfidenceHigh
	case ratio >= 0.6:
		return inWindow, entity.ConfidenceMedium
	default:
		return inWindow, entity.ConfidenceLow
	}
}

func dayGaps(ascending []time.Time) []float64 {
	if len(ascending) < 2 {
		return nil
	}
	gaps := make([]float64, 0, len(ascending)-1)
	for i := 1; i < len(ascending); i++ {
		gaps = append(gaps, float64(daysBetween(ascending[i-1], ascending[i])))
	}
	return gaps
}

func coefficientOfVariation(xs []float64) float64 {
	m := mean(xs)
	if len(xs) == 0 || m == 0 {
		return 0
	}
	var sq float64
	for _, x := range xs {
		sq += (x - m) * (x - m)
	}
	return math.Sqrt(sq/float64(len(xs))) / m
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func daysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
