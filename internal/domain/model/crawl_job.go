package model

import (
	"net/url"

	"github.com/google/uuid"
)

type CrawlJobStatus string

const (
	CrawlJobStatusPending CrawlJobStatus = "PENDING"
	CrawlJobStatusSuccess CrawlJobStatus = "SUCCESS"
	CrawlJobStatusFailed  CrawlJobStatus = "FAILED"
)

// CrawlJobは物件詳細ページ1件の取得ジョブです。
// HintedCityは検索URL等から判明している自治体コンテキストを持ち回ります。
type CrawlJob struct {
	ID         uuid.UUID
	Source     string // アダプター名 (例: izutaiyo)
	URL        url.URL
	HintedCity City
	Status     CrawlJobStatus
	StorePath  string // 取得済みHTMLの保存先 (SUCCESS時のみ)
}
