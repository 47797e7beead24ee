package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-transcribe-kit/internal/config"
	"github.com/shouni/go-transcribe-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// imageCmd は、1枚の画像URLを指定して書き起こしを実行するためのサブコマンドなのだ。
// バッチを回さずに、特定のページだけを処理したい場合に便利なのだ。
var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "1枚の画像を書き起こして保存するのだ。",
	Long: `指定されたURLの画像を取得し、視覚モデルで書き起こして保存するのだ。
URLからリポジトリ識別子を導出できない場合は、結果を標準出力に表示するのだよ。`,
	RunE: imageCommand,
}

// imageCommand は、image サブコマンドの実行ロジック本体なのだ。
// 設定のバリデーションを行い、pipeline.ExecuteSingleImage を呼び出して一連の処理をキックするのだ。
func imageCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 必須となる入力URLの存在チェック
	if opts.ImageURL == "" {
		return fmt.Errorf("書き起こす画像のURL（--image-url）を指定してほしいのだ")
	}

	// 1. 環境変数から基本設定をロード
	cfg := config.LoadConfig()

	// 2. コマンドライン引数の値を反映
	cfg.Options = opts

	slog.Info("単一画像モードを起動するのだ！",
		"image_url", opts.ImageURL,
		"output_dir", opts.OutputDir)

	// 3. パイプライン実行
	return pipeline.ExecuteSingleImage(ctx, cfg)
}
