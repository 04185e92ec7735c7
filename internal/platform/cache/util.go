package cache

import (
	"time"
)

// refreshHour は日次取り込みが完了している想定の時刻（日本時間）です。
const refreshHour = 8

var jst = time.FixedZone("JST", 9*60*60)

// TimeUntilNextRefresh は now から次の午前8時（日本時間）までの期間を返します。
// 午前8時ちょうどの場合は翌日までの24時間を返します。
func TimeUntilNextRefresh(now time.Time) time.Duration {
	now = now.In(jst)

	// 次の午前8時を計算
	next := time.Date(now.Year(), now.Month(), now.Day(), refreshHour, 0, 0, 0, jst)

	// 今日の午前8時を過ぎている場合は明日の午前8時を使用
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}

	return next.Sub(now)
}
