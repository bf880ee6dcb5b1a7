package infra

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/nrad-K/izu-radar/internal/domain/model"
	"github.com/nrad-K/izu-radar/internal/domain/repository"
)

type listingHistoryClient struct{}

func NewListingHistoryClient() repository.ListingHistoryRepository {
	return &listingHistoryClient{}
}

// LoadFirstSeenは前回実行のlistings.jsonを読み、ID -> firstSeen のマップを返します。
// ファイルが存在しない場合（初回実行）は空のマップを返します。IDはソース名と
// 物件番号から決定されるため、ソース側のマークアップが変わっても引き続き一致します。
func (c *listingHistoryClient) LoadFirstSeen(path string) (map[string]time.Time, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]time.Time{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("前回出力の読み込みに失敗しました: %w", err)
	}

	var doc model.FeedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("前回出力の解析に失敗しました: %w", err)
	}

	firstSeen := make(map[string]time.Time, len(doc.Listings))
	for _, l := range doc.Listings {
		if l.ID == "" || l.FirstSeen.IsZero() {
			continue
		}
		firstSeen[l.ID] = l.FirstSeen
	}
	return firstSeen, nil
}
