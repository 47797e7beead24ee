package cmd

import (
	"log/slog"

	"github.com/shouni/go-transcribe-kit/internal/config"
	"github.com/shouni/go-transcribe-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// batchCmd は、メタデータディレクトリの全PIDを対象にバッチOCRを実行するサブコマンドなのだ。
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "メタデータのPID群からバッチで書き起こすのだ。",
	Long: `メタデータJSONから収集したPIDごとにIIIFマニフェストを解決し、
全ページ画像を順番に書き起こして保存するのだ。ユニット単位の失敗では止まらず、
最後に処理数と失敗数を報告するのだよ。`,
	RunE: batchCommand,
}

// batchCommand は、batch サブコマンドの実行ロジック本体なのだ。
func batchCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 1. 環境変数から基本設定をロード
	cfg := config.LoadConfig()

	// 2. コマンドライン引数の値を反映
	cfg.Options = opts

	slog.Info("バッチモードを起動するのだ！",
		"metadata_dir", opts.MetadataDir,
		"output_dir", opts.OutputDir,
		"pid_limit", opts.PIDLimit)

	// 3. パイプライン実行
	return pipeline.ExecuteBatch(ctx, cfg)
}
