package runner

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// ManifestResolver は、PIDからページ画像URLのリストを解決する依存のインターフェースなのだ。
type ManifestResolver interface {
	FetchImageURLs(ctx context.Context, pid string) ([]string, error)
}

// PIDSource は、処理対象のリポジトリ識別子を供給する依存のインターフェースなのだ。
type PIDSource interface {
	PIDs() []string
}

// BatchResult は1回のバッチ実行の集計結果です。
// プロセス状態ではなく戻り値として返すのだ。
type BatchResult struct {
	Processed int
	Failed    int
}

// BatchRunner はバッチ書き起こし処理のインターフェースです。
type BatchRunner interface {
	Run(ctx context.Context) (BatchResult, error)
}

// OCRBatchRunner は、PID→画像リスト→書き起こしの2段ループを順次実行する実体なのだ。
// 処理は意図的に逐次なのだよ。リポジトリサーバーもローカル推論エンジンも
// 容量に限りがある資源だから、並列で叩いてはいけないのだ。
type OCRBatchRunner struct {
	source      PIDSource
	resolver    ManifestResolver
	transcriber TranscribeRunner
	limiter     *rate.Limiter // 画像リクエストの間隔を空ける流量制限なのだ
	pidLimit    int
}

// NewOCRBatchRunner は、OCRBatchRunnerの新しいインスタンスを生成して返すのだ。
// interval が 0 以下なら流量制限なし、pidLimit が 0 以下なら全PIDを処理するのだ。
func NewOCRBatchRunner(source PIDSource, resolver ManifestResolver, transcriber TranscribeRunner, interval time.Duration, pidLimit int) *OCRBatchRunner {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if interval > 0 {
		limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return &OCRBatchRunner{
		source:      source,
		resolver:    resolver,
		transcriber: transcriber,
		limiter:     limiter,
		pidLimit:    pidLimit,
	}
}

// Run はバッチ処理のメインループなのだ。ユニット単位の失敗はここで堰き止めて、
// ログと集計に変換してから次のユニットへ進む。1件の失敗でバッチ全体を
// 止めてはいけないのだよ。
func (br *OCRBatchRunner) Run(ctx context.Context) (BatchResult, error) {
	result := BatchResult{}

	pids := br.source.PIDs()
	if len(pids) == 0 {
		slog.Warn("処理対象のPIDが見つからなかったのだ")
		return result, nil
	}

	if br.pidLimit > 0 && len(pids) > br.pidLimit {
		slog.Info("PID数に制限を適用したのだ", "limit", br.pidLimit, "total", len(pids))
		pids = pids[:br.pidLimit]
	}

	for i, pid := range pids {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		slog.Info("PIDを処理するのだ", "index", i+1, "total", len(pids), "pid", pid)

		imageURLs, err := br.resolver.FetchImageURLs(ctx, pid)
		if err != nil {
			slog.Error("マニフェストの取得に失敗したのだ", "pid", pid, "error", err)
			continue
		}
		if len(imageURLs) == 0 {
			slog.Warn("画像が見つからないのでスキップするのだ", "pid", pid)
			continue
		}

		for j, imageURL := range imageURLs {
			// 自分の番が来るまで待って、サーバーを叩きすぎないようにするのだ
			if err := br.limiter.Wait(ctx); err != nil {
				return result, err
			}

			slog.Info("画像を処理するのだ",
				"pid", pid, "image", j+1, "total_images", len(imageURLs), "url", imageURL)

			if err := br.transcriber.Run(ctx, imageURL); err != nil {
				slog.Error("画像の処理に失敗したのだ", "pid", pid, "url", imageURL, "error", err)
				result.Failed++
				continue
			}
			result.Processed++
		}

		slog.Info("PIDの全画像を処理し終えたのだ", "pid", pid)
	}

	slog.Info("バッチOCRが完了したのだ", "processed", result.Processed, "failed", result.Failed)
	return result, nil
}
