package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmdは、アプリケーションのエントリーポイントとなるルートコマンドです。
var rootCmd = &cobra.Command{
	Use:   "izu-radar",
	Short: "伊豆半島南部の海近物件を収集・集約するツールです。",
	Long: `izu-radarは、複数の不動産仲介サイトから物件詳細ページを収集するクローラー機能と、
保存済みHTMLから正規化した掲載フィードを生成するジェネレーター機能を提供します。`,
}

// Executeは、全てのサブコマンドをルートコマンドに追加し、フラグを適切に設定します。
// この関数はmain.main()から呼び出され、rootCmdに対して一度だけ実行される必要があります。
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
