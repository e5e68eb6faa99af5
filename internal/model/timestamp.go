package model

import "time"

// Timestamp はストアに保存する時刻の精度（マイクロ秒・UTC）に揃えた時刻を返す。
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// NextUpdatedAt は更新時のupdated_atを返す。
// 時計の粒度や巻き戻りで前回値以下になる場合も、前回値より必ず後になる。
func NextUpdatedAt(prev, now time.Time) time.Time {
	now = Timestamp(now)
	if !now.After(prev) {
		return prev.Add(time.Microsecond)
	}
	return now
}
