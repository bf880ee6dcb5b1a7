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

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "保存済みHTMLから掲載フィードを生成します",
	Long: `クロール段階で保存したHTMLをパースし、重複を排除した掲載フィード（JSON/CSV）と
実行サマリーを生成します。ネットワークへのアクセスは行いません。`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// .envがない環境（CI等）では環境変数をそのまま使う
		_ = godotenv.Load()

		path := "settings/radar.yaml"
		cfg, err := config.LoadRadarConfig(path)
		if err != nil {
			log.Fatalf("設定ファイルの読み込みに失敗: %v", err)
		}

		appLogger := logger.NewDefault()

		rdb := redis.NewClient(&redis.Options{
			Addr:     os.Getenv("REDIS_ADDRESS"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			appLogger.Error("Redisへの接続に失敗しました", "error", err)
			os.Exit(1)
		}

		parser := infra.NewListingParser(constants.GetExtractPatterns(), constants.GetExtractLexicon())
		adapters, err := source.BuildAll(cfg, parser, appLogger)
		if err != nil {
			appLogger.Error("ソースアダプターの初期化に失敗しました", "error", err)
			os.Exit(1)
		}

		generateUC := usecase.NewGenerateListingFeedUseCase(usecase.GenerateArgs{
			Cfg:      cfg,
			Adapters: adapters,
			Store:    infra.NewPageStore(cfg.PageDir),
			Repo:     infra.NewCrawlJobClient(rdb),
			History:  infra.NewListingHistoryClient(),
			Exporter: infra.NewFeedExporter(cfg.Output.ListingsPath, cfg.Output.SummaryPath, cfg.Output.CSVPath, constants.GetFeedCSVHeaders()),
			Logger:   appLogger,
		})

		appLogger.Info("フィードの生成を開始します")
		if err := generateUC.Run(ctx); err != nil {
			appLogger.Error("フィードの生成中にエラーが発生しました", "error", err)
			os.Exit(1)
		}
		appLogger.Info("フィードの生成が正常に完了しました")
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
