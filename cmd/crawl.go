package cmd

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/nrad-K/izu-radar/internal/config"
	"github.com/nrad-K/izu-radar/internal/constants"
	"github.com/nrad-K/izu-radar/internal/infra"
	"github.com/nrad-K/izu-radar/internal/logger"
	"github.com/nrad-K/izu-radar/internal/source"
	"github.com/nrad-K/izu-radar/internal/usecase"
)

var (
	discover bool
	execute  bool
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "物件詳細ページを発見し、HTMLを保存します",
	Long:  `設定に基づき、各仲介サイトの一覧ページから詳細ページのURLを収集（--discover）し、各URLのHTMLコンテンツを保存（--execute）します。`,
	Run: func(cmd *cobra.Command, args []string) {
		if !discover && !execute {
			cmd.Help()
			return
		}

		ctx := context.Background()

		// .envがない環境（CI等）では環境変数をそのまま使う
		_ = godotenv.Load()

		// 設定ファイル読み込み
		path := "settings/radar.yaml"
		cfg, err := config.LoadRadarConfig(path)
		if err != nil {
			log.Fatalf("設定ファイルの読み込みに失敗: %v", err)
		}

		appLogger := logger.NewDefault()

		// Redisクライアント初期化
		rdb := redis.NewClient(&redis.Options{
			Addr:     os.Getenv("REDIS_ADDRESS"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			appLogger.Error("Redisへの接続に失敗しました", "error", err)
			os.Exit(1)
		}
		appLogger.Info("Redisへの接続を確認しました")

		repo := infra.NewCrawlJobClient(rdb)
		client := infra.NewPageClient(cfg.Fetch, cfg.UserAgent, appLogger)
		store := infra.NewPageStore(cfg.PageDir)

		parser := infra.NewListingParser(constants.GetExtractPatterns(), constants.GetExtractLexicon())
		adapters, err := source.BuildAll(cfg, parser, appLogger)
		if err != nil {
			appLogger.Error("ソースアダプターの初期化に失敗しました", "error", err)
			os.Exit(1)
		}

		ucArgs := usecase.CrawlArgs{
			Adapters: adapters,
			Client:   client,
			Store:    store,
			Repo:     repo,
			Logger:   appLogger,
		}

		if discover {
			discoverUC := usecase.NewDiscoverPageJobsUseCase(ucArgs)
			appLogger.Info("詳細ページの発見を開始します")
			if err := discoverUC.Run(ctx); err != nil {
				appLogger.Error("詳細ページの発見中にエラーが発生しました", "error", err)
				os.Exit(1)
			}
			appLogger.Info("詳細ページの発見が正常に完了しました")
		}

		if execute {
			executeUC := usecase.NewExecutePageJobsUseCase(ucArgs)
			appLogger.Info("クロールジョブの実行を開始します")
			if err := executeUC.Run(ctx); err != nil {
				appLogger.Error("クロールジョブの実行中にエラーが発生しました", "error", err)
				os.Exit(1)
			}
			appLogger.Info("クロールジョブの実行が正常に完了しました")
		}
	},
}

func init() {
	rootCmd.AddCommand(crawlCmd)
	crawlCmd.Flags().BoolVarP(&discover, "discover", "d", false, "詳細ページのクロールジョブを作成します")
	crawlCmd.Flags().BoolVarP(&execute, "execute", "e", false, "クロールジョブを実行してHTMLを保存します")
}
