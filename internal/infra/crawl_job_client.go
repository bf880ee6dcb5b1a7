package infra

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nrad-K/izu-radar/internal/domain/model"
	"github.com/nrad-K/izu-radar/internal/domain/repository"
	"github.com/redis/go-redis/v9"
)

type crawlJobClient struct {
	redis *redis.Client
}

func NewCrawlJobClient(rds *redis.Client) repository.CrawlJobRepository {
	return &crawlJobClient{
		redis: rds,
	}
}

// Saveはジョブを状態別のキーで保存します。キーはURLから決定されるため、
// 同じ詳細ページを複数の検索結果から発見しても1ジョブに収束します。
func (r *crawlJobClient) Save(ctx context.Context, job model.CrawlJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("クロールジョブのシリアライズに失敗しました: %w", err)
	}

	key, err := r.generateJobKey(job)
	if err != nil {
		return fmt.Errorf("ジョブキーの生成に失敗しました: %w", err)
	}

	if err := r.redis.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("クロールジョブの保存に失敗しました: %w", err)
	}

	return nil
}

func (r *crawlJobClient) Delete(ctx context.Context, job model.CrawlJob) error {
	key, err := r.generateJobKey(job)
	if err != nil {
		return fmt.Errorf("削除対象のジョブキー生成に失敗しました: %w", err)
	}
	if err := r.redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("クロールジョブの削除に失敗しました: %w", err)
	}
	return nil
}

func (r *crawlJobClient) FindListByStatus(ctx context.Context, size int, status model.CrawlJobStatus) ([]model.CrawlJob, error) {
	pattern, err := keyPattern(status)
	if err != nil {
		return nil, err
	}

	var jobs []model.CrawlJob
	var cursor uint64
	for {
		var keys []string
		keys, cursor, err = r.redis.Scan(ctx, cursor, pattern, int64(size)).Result()
		if err != nil {
			return nil, fmt.Errorf("redisのスキャンに失敗しました: %w", err)
		}

		for _, key := range keys {
			value, err := r.redis.Get(ctx, key).Result()
			if err != nil {
				return nil, fmt.Errorf("キー %s の取得に失敗しました: %w", key, err)
			}

			var job model.CrawlJob
			if err := json.Unmarshal([]byte(value), &job); err != nil {
				return nil, fmt.Errorf("キー %s のデシリアライズに失敗しました: %w", key, err)
			}
			jobs = append(jobs, job)
		}

		if cursor == 0 {
			break
		}
	}

	return jobs, nil
}

func (r *crawlJobClient) generateJobKey(job model.CrawlJob) (string, error) {
	prefix, err := keyPrefix(job.Status)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s", prefix, job.URL.String()), nil
}

func keyPrefix(status model.CrawlJobStatus) (string, error) {
	switch status {
	case model.CrawlJobStatusPending:
		return "pending_page:", nil
	case model.CrawlJobStatusSuccess:
		return "success_page:", nil
	case model.CrawlJobStatusFailed:
		return "failed_page:", nil
	default:
		return "", fmt.Errorf("未対応のジョブステータスです: %s", status)
	}
}

func keyPattern(status model.CrawlJobStatus) (string, error) {
	prefix, err := keyPrefix(status)
	if err != nil {
		return "", err
	}
	return prefix + "*", nil
}
