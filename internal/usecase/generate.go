package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/nrad-K/izu-radar/internal/config"
	"github.com/nrad-K/izu-radar/internal/constants"
	"github.com/nrad-K/izu-radar/internal/domain/model"
	"github.com/nrad-K/izu-radar/internal/domain/repository"
	"github.com/nrad-K/izu-radar/internal/infra"
	"github.com/nrad-K/izu-radar/internal/logger"
	"github.com/nrad-K/izu-radar/internal/source"
)

// GenerateUseCaseは、フィード生成段階の実行ロジックを定義するインターフェースです。
type GenerateUseCase interface {
	Run(ctx context.Context) error
}

// GenerateArgsは、フィード生成ユースケースを構築するための引数を保持します。
type GenerateArgs struct {
	Cfg      config.RadarConfig
	Adapters []source.Adapter
	Store    *infra.PageStore
	Repo     repository.CrawlJobRepository
	History  repository.ListingHistoryRepository
	Exporter infra.FeedExporter
	Logger   logger.AppLogger
	Now      func() time.Time
}

// generateListingFeedUseCaseは、保存済みHTMLから掲載フィードを生成するユースケースです。
// ネットワークには一切触れず、クロール段階の成果物だけを入力とします。
// 集計と重複排除を決定的にするため、ジョブは順番に処理します。
type generateListingFeedUseCase struct {
	cfg      config.RadarConfig
	adapters []source.Adapter
	store    *infra.PageStore
	repo     repository.CrawlJobRepository
	history  repository.ListingHistoryRepository
	exporter infra.FeedExporter
	logger   logger.AppLogger
	now      func() time.Time
}

func NewGenerateListingFeedUseCase(args GenerateArgs) GenerateUseCase {
	now := args.Now
	if now == nil {
		now = time.Now
	}
	return &generateListingFeedUseCase{
		cfg:      args.Cfg,
		adapters: args.Adapters,
		store:    args.Store,
		repo:     args.Repo,
		history:  args.History,
		exporter: args.Exporter,
		logger:   args.Logger,
		now:      now,
	}
}

// Runはフィード生成のメイン実行ロジックです。
// 前回出力のfirstSeenを引き継ぎ、成功ジョブのHTMLをパースし、
// ソース間の重複を排除してJSONとCSVを書き出します。
func (u *generateListingFeedUseCase) Run(ctx context.Context) error {
	runAt := u.now()

	firstSeen, err := u.history.LoadFirstSeen(u.cfg.Output.ListingsPath)
	if err != nil {
		return fmt.Errorf("前回出力の読み込みに失敗しました: %w", err)
	}
	u.logger.Info("前回出力のfirstSeenを読み込みました", "count", len(firstSeen))

	jobs, err := u.repo.FindListByStatus(ctx, 100, model.CrawlJobStatusSuccess)
	if err != nil {
		return fmt.Errorf("成功ジョブの検索に失敗しました: %w", err)
	}
	if len(jobs) == 0 {
		return fmt.Errorf("処理対象の成功ジョブがありません。先にクロールを実行してください")
	}

	// redisのSCANは順不同のため、実行ごとに同じ結果になるようURLで揃える
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].URL.String() < jobs[j].URL.String()
	})

	adapterByName := make(map[string]source.Adapter, len(u.adapters))
	for _, a := range u.adapters {
		adapterByName[a.Name()] = a
	}

	summary := model.RunSummary{
		GeneratedAt: runAt,
		BySource:    make(map[string]int),
		Rejections:  make(map[model.RejectReason]int),
	}

	var listings []model.Listing
	for i, job := range jobs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		summary.Scanned++
		listing, reason, err := u.processJob(job, adapterByName)
		if err != nil {
			u.logger.Warn("掲載の抽出に失敗しました", "url", job.URL.String(), "error", err)
			summary.Errors++
			continue
		}
		if listing == nil {
			summary.Rejections[reason]++
			continue
		}

		if prev, ok := firstSeen[listing.ID]; ok {
			listing.FirstSeen = prev
		} else {
			listing.FirstSeen = runAt
		}
		listings = append(listings, *listing)

		if (i+1)%constants.LogBatchCount == 0 {
			u.logger.Info("ジョブを処理中です", "done", i+1, "total", len(jobs))
		}
	}

	kept, dropped := model.Deduplicate(listings, u.priorityLabels())
	if len(dropped) > 0 {
		summary.Rejections[model.RejectDuplicate] += len(dropped)
		for _, d := range dropped {
			u.logger.Info("重複のため除外します", "id", d.ID, "source", d.Source)
		}
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].ID < kept[j].ID })

	summary.Saved = len(kept)
	for _, l := range kept {
		summary.BySource[l.Source]++
	}

	doc := model.FeedDocument{GeneratedAt: runAt, Listings: kept}
	if err := u.exporter.WriteFeed(doc); err != nil {
		return fmt.Errorf("フィードの書き出しに失敗しました: %w", err)
	}
	if err := u.exporter.WriteSummary(summary); err != nil {
		return fmt.Errorf("サマリーの書き出しに失敗しました: %w", err)
	}
	if err := u.exporter.WriteCSV(doc); err != nil {
		return fmt.Errorf("CSVの書き出しに失敗しました: %w", err)
	}

	u.logger.Info("フィードの生成が完了しました",
		"scanned", summary.Scanned,
		"saved", summary.Saved,
		"errors", summary.Errors,
		"duplicates", summary.Rejections[model.RejectDuplicate],
	)
	return nil
}

// processJobは成功ジョブ1件のHTMLをパースします。
// 掲載基準で却下された場合はListingがnilになり、理由が返ります。
// errorは取得・解析そのものの失敗にだけ使い、却下とは決して混同しません。
func (u *generateListingFeedUseCase) processJob(job model.CrawlJob, adapterByName map[string]source.Adapter) (*model.Listing, model.RejectReason, error) {
	adapter, ok := adapterByName[job.Source]
	if !ok {
		return nil, model.RejectNone, fmt.Errorf("設定に存在しないソースのジョブです: %s", job.Source)
	}
	if job.StorePath == "" {
		return nil, model.RejectNone, fmt.Errorf("保存先パスのないジョブです: %s", job.ID.String())
	}

	html, err := u.store.LoadPage(job.StorePath)
	if err != nil {
		return nil, model.RejectNone, fmt.Errorf("保存済みHTMLの読み込みに失敗しました: %w", err)
	}

	result, err := adapter.ParseDetail(html, source.PageContext{
		URL:        job.URL.String(),
		HintedCity: job.HintedCity,
	})
	if err != nil {
		return nil, model.RejectNone, err
	}
	if !result.Accepted() {
		return nil, result.Reason, nil
	}
	return result.Listing, model.RejectNone, nil
}

// priorityLabelsは重複排除で優先するソースの表示名を、優先度順に返します。
func (u *generateListingFeedUseCase) priorityLabels() []string {
	labels := make([]string, 0, len(u.adapters))
	for _, a := range u.adapters {
		labels = append(labels, a.Label())
	}
	return labels
}
