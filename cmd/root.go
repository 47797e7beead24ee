package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shouni/go-transcribe-kit/internal/config"

	"github.com/spf13/cobra"
)

// opts は全サブコマンドで共有する実行時パラメータなのだ。
var opts config.RunOptions

// 割り込みによる中断は通常の失敗と区別した終了コードで報告するのだ
const exitCodeInterrupt = 130

var rootCmd = &cobra.Command{
	Use:   "go-transcribe-kit",
	Short: "視覚モデルで手稿スキャンを書き起こすOCRツールなのだ。",
	Long: `デジタルリポジトリの手稿スキャン画像を、ローカルの視覚モデル（Ollama）で
逐語的に書き起こすためのツールなのだ。IIIFマニフェストの解決からバッチ処理まで面倒を見るのだよ。`,
	SilenceUsage: true,
}

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- 生成結果の出力設定 ---
	rootCmd.PersistentFlags().StringVarP(&opts.OutputDir, "output-dir", "o", config.DefaultOutputDir, "書き起こしテキストの保存先ディレクトリなのだ。")

	// --- AIモデル・挙動設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.Model, "model", "", "使用する視覚モデル名なのだ（未指定なら環境設定に従うのだ）。")
	rootCmd.PersistentFlags().DurationVar(&opts.HTTPTimeout, "http-timeout", config.DefaultHTTPTimeout, "リポジトリへのリクエストのタイムアウトなのだ。")
	rootCmd.PersistentFlags().IntVar(&opts.MaxEdge, "max-edge", 0, "推論前に縮小する画像長辺の上限ピクセル数なのだ（0で無効）。")

	// --- 単一画像モード固有設定 ---
	imageCmd.Flags().StringVarP(&opts.ImageURL, "image-url", "u", "", "書き起こす画像のURLなのだ。")

	// --- バッチモード固有設定 ---
	batchCmd.Flags().StringVarP(&opts.MetadataDir, "metadata-dir", "d", config.DefaultMetadataDir, "PIDを拾うメタデータJSONのディレクトリなのだ。")
	batchCmd.Flags().IntVarP(&opts.PIDLimit, "pid-limit", "p", 0, "処理するPID数の上限なのだ（0で無制限）。")
	batchCmd.Flags().DurationVar(&opts.RateInterval, "rate-interval", config.DefaultRateInterval, "画像リクエストの間に空ける待機時間なのだ。")
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
// 終了コードは成功で0、失敗で1、割り込みで130に対応づけるのだ。
func Execute() {
	addAppFlags(rootCmd)
	rootCmd.AddCommand(imageCmd, batchCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return
	}

	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		slog.Info("ユーザーの割り込みで処理を中断したのだ")
		os.Exit(exitCodeInterrupt)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
