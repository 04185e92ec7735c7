// Package coverage は外部APIから取得済みの日付範囲を銘柄ごとに記録します。
// 保存済みデータが要求範囲を網羅しているかの判定に使います。
package coverage

import "time"

const day = 24 * time.Hour

// Span は両端を含む日付範囲です。
type Span struct {
	From time.Time
	To   time.Time
}

// Day は t を UTC の日付に切り捨てます。
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Settled は now 時点で確定済みとみなせる最終日（前日）を返します。
// 当日以降のデータは後から追加されるため取得済みとして記録しません。
func Settled(now time.Time) time.Time {
	return Day(now).Add(-day)
}

// touches は s と [from, to] が重なるか隣接しているかを返します。
func (s Span) touches(from, to time.Time) bool {
	return !s.From.After(to.Add(day)) && !s.To.Before(from.Add(-day))
}

// Gaps は [from, to] のうち recorded で網羅されていない範囲を返します。
// ok が false の場合は範囲全体を返します。
func Gaps(recorded Span, ok bool, from, to time.Time) []Span {
	from, to = Day(from), Day(to)
	if from.After(to) {
		return nil
	}
	if !ok || !recorded.touches(from, to) {
		return []Span{{From: from, To: to}}
	}

	var gaps []Span
	if from.Before(recorded.From) {
		gaps = append(gaps, Span{From: from, To: recorded.From.Add(-day)})
	}
	if to.After(recorded.To) {
		gaps = append(gaps, Span{From: recorded.To.Add(day), To: to})
	}
	return gaps
}

// Extend は [from, to] の取得後の記録範囲を返します。
// 既存の記録と離れている場合は新しい範囲で置き換えます。
func Extend(recorded Span, ok bool, from, to time.Time) Span {
	from, to = Day(from), Day(to)
	if !ok || !recorded.touches(from, to) {
		return Span{From: from, To: to}
	}
	if recorded.From.Before(from) {
		from = recorded.From
	}
	if recorded.To.After(to) {
		to = recorded.To
	}
	return Span{From: from, To: to}
}
