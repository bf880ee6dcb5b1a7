package repository

import "time"

// ListingHistoryRepositoryは前回実行の出力からfirstSeenを引くためのリポジトリです。
// 前回出力が存在しない場合は空のマップを返します（エラーにはしません）。
type ListingHistoryRepository interface {
	LoadFirstSeen(path string) (map[string]time.Time, error)
}
