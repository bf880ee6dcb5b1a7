package usecase

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nrad-K/izu-radar/internal/domain/model"
	"github.com/nrad-K/izu-radar/internal/domain/repository"
	"github.com/nrad-K/izu-radar/internal/infra"
	"github.com/nrad-K/izu-radar/internal/logger"
	"github.com/nrad-K/izu-radar/internal/source"
)

// CrawlUseCaseは、クロール段階の実行ロジックを定義するインターフェースです。
type CrawlUseCase interface {
	Run(ctx context.Context) error
}

// CrawlArgsは、クロールユースケースを構築するための引数を保持します。
type CrawlArgs struct {
	Adapters []source.Adapter
	Client   infra.PageClient
	Store    *infra.PageStore
	Repo     repository.CrawlJobRepository
	Logger   logger.AppLogger
}

// discoverPageJobsUseCaseは、各ソースの一覧ページを走査して
// 詳細ページのCrawlJobを作成するユースケースです。
type discoverPageJobsUseCase struct {
	adapters []source.Adapter
	client   infra.PageClient
	repo     repository.CrawlJobRepository
	logger   logger.AppLogger
}

func NewDiscoverPageJobsUseCase(args CrawlArgs) CrawlUseCase {
	return &discoverPageJobsUseCase{
		adapters: args.Adapters,
		client:   args.Client,
		repo:     args.Repo,
		logger:   args.Logger,
	}
}

// Runは全ソースの一覧ページを並行して走査します。ソース間は独立しているため
// 並行実行し、ソース内の一覧ページは取得クライアントのレート制限に従って
// 順番に処理します。
func (u *discoverPageJobsUseCase) Run(ctx context.Context) error {
	u.logger.Info("詳細ページの発見を開始します", "sources", len(u.adapters))

	g, gctx := errgroup.WithContext(ctx)
	for _, adapter := range u.adapters {
		g.Go(func() error {
			count, err := u.discoverSource(gctx, adapter)
			if err != nil {
				return fmt.Errorf("ソース %s の発見処理に失敗しました: %w", adapter.Name(), err)
			}
			u.logger.Info("詳細ページのジョブを作成しました", "source", adapter.Name(), "count", count)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	u.logger.Info("詳細ページの発見が完了しました")
	return nil
}

// discoverSourceは1ソース分の一覧ページを処理し、作成したジョブ数を返します。
// 同じ詳細ページが複数の一覧に載っていても、URLで重複排除して1ジョブにします。
func (u *discoverPageJobsUseCase) discoverSource(ctx context.Context, adapter source.Adapter) (int, error) {
	seen := make(map[string]struct{})
	jobCount := 0

	for _, indexURL := range adapter.IndexURLs() {
		html, err := u.client.Fetch(ctx, indexURL)
		if err != nil {
			u.logger.Warn("一覧ページの取得に失敗しました", "source", adapter.Name(), "url", indexURL, "error", err)
			continue
		}

		candidates, err := adapter.DiscoverDetailURLs(html, indexURL)
		if err != nil {
			u.logger.Warn("一覧ページの解析に失敗しました", "source", adapter.Name(), "url", indexURL, "error", err)
			continue
		}

		for _, candidate := range candidates {
			if _, dup := seen[candidate.URL]; dup {
				continue
			}
			seen[candidate.URL] = struct{}{}

			if err := u.createCrawlJob(ctx, adapter.Name(), candidate); err != nil {
				u.logger.Warn("クロールジョブの作成に失敗しました", "source", adapter.Name(), "url", candidate.URL, "error", err)
				continue
			}
			jobCount++
		}
	}

	if jobCount == 0 {
		return 0, fmt.Errorf("詳細ページを1件も発見できませんでした")
	}
	return jobCount, nil
}

func (u *discoverPageJobsUseCase) createCrawlJob(ctx context.Context, sourceName string, candidate source.Candidate) error {
	parsed, err := url.Parse(candidate.URL)
	if err != nil {
		return fmt.Errorf("URL %s のパースに失敗しました: %w", candidate.URL, err)
	}

	job := model.CrawlJob{
		ID:         uuid.New(),
		Source:     sourceName,
		URL:        *parsed,
		HintedCity: candidate.HintedCity,
		Status:     model.CrawlJobStatusPending,
	}

	// Redisのキーはジョブ側のURLから生成されるため、同一URLへの再保存は上書きになる
	if err := u.repo.Save(ctx, job); err != nil {
		return fmt.Errorf("クロールジョブの保存に失敗しました: %w", err)
	}
	return nil
}

// executePageJobsUseCaseは、PENDINGのCrawlJobを消費して詳細ページを取得し、
// HTMLをページストアに保存するユースケースです。
type executePageJobsUseCase struct {
	client infra.PageClient
	store  *infra.PageStore
	repo   repository.CrawlJobRepository
	logger logger.AppLogger
}

func NewExecutePageJobsUseCase(args CrawlArgs) CrawlUseCase {
	return &executePageJobsUseCase{
		client: args.Client,
		store:  args.Store,
		repo:   args.Repo,
		logger: args.Logger,
	}
}

// RunはPENDINGジョブをバッチで取得し、なくなるまで処理を続けます。
// 取得は並行しますが、同一ホストへのリクエスト間隔はクライアントが制御します。
func (u *executePageJobsUseCase) Run(ctx context.Context) error {
	u.logger.Info("クロールジョブの実行を開始します")

	const batchSize = 100
	const maxWorkers = 3

	totalSuccess := 0
	totalFailed := 0

	for {
		jobs, err := u.repo.FindListByStatus(ctx, batchSize, model.CrawlJobStatusPending)
		if err != nil {
			return fmt.Errorf("保留中のクロールジョブの検索に失敗しました: %w", err)
		}
		if len(jobs) == 0 {
			break
		}

		u.logger.Info("保留中のクロールジョブを処理します", "count", len(jobs))

		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(maxWorkers)

		for _, job := range jobs {
			g.Go(func() error {
				if err := u.processJob(gctx, job); err != nil {
					u.logger.Warn("クロールジョブの処理に失敗しました", "id", job.ID.String(), "url", job.URL.String(), "error", err)
					if err := u.markFailed(gctx, job); err != nil {
						return err
					}
					mu.Lock()
					totalFailed++
					mu.Unlock()
					return nil
				}
				mu.Lock()
				totalSuccess++
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	u.logger.Info("クロールジョブの実行が完了しました", "success", totalSuccess, "failed", totalFailed)
	return nil
}

// processJobは1ジョブ分の取得と保存を行い、ステータスをSUCCESSへ進めます。
func (u *executePageJobsUseCase) processJob(ctx context.Context, job model.CrawlJob) error {
	html, err := u.client.Fetch(ctx, job.URL.String())
	if err != nil {
		return fmt.Errorf("ページの取得に失敗しました: %w", err)
	}

	rel, err := u.store.SavePage(job.Source, job.URL.String(), html)
	if err != nil {
		return fmt.Errorf("HTMLの保存に失敗しました: %w", err)
	}

	if err := u.repo.Delete(ctx, job); err != nil {
		return fmt.Errorf("処理済みジョブの削除に失敗しました: %w", err)
	}

	done := job
	done.Status = model.CrawlJobStatusSuccess
	done.StorePath = rel
	if err := u.repo.Save(ctx, done); err != nil {
		return fmt.Errorf("ジョブのステータス更新に失敗しました: %w", err)
	}
	return nil
}

func (u *executePageJobsUseCase) markFailed(ctx context.Context, job model.CrawlJob) error {
	if err := u.repo.Delete(ctx, job); err != nil {
		return fmt.Errorf("失敗ジョブの削除に失敗しました: %w", err)
	}
	failed := job
	failed.Status = model.CrawlJobStatusFailed
	if err := u.repo.Save(ctx, failed); err != nil {
		return fmt.Errorf("ジョブのステータス更新に失敗しました: %w", err)
	}
	return nil
}
