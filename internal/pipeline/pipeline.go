package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-transcribe-kit/internal/builder"
	"github.com/shouni/go-transcribe-kit/internal/config"

	"github.com/shouni/go-transcribe-kit/pkg/httpfetch"
)

// ExecuteSingleImage は、指定された1枚の画像URLに対して
// 取得→エンコード→書き起こし→保存のパイプラインを実行するのだ。
// 失敗はプロセス境界までそのまま伝播させて、終了コードに変換するのだ。
func ExecuteSingleImage(ctx context.Context, cfg *config.Config) error {
	appCtx, err := setupAppContext(cfg)
	if err != nil {
		return err
	}

	transcriber := builder.BuildTranscribeRunner(appCtx)
	if err := transcriber.Run(ctx, cfg.Options.ImageURL); err != nil {
		return err
	}

	slog.Info("書き起こしが完了したのだ！", "url", cfg.Options.ImageURL)
	return nil
}

// ExecuteBatch は、メタデータディレクトリから集めた全PIDに対して
// バッチ書き起こしを実行する最終ステージなのだ！
func ExecuteBatch(ctx context.Context, cfg *config.Config) error {
	appCtx, err := setupAppContext(cfg)
	if err != nil {
		return err
	}

	batch := builder.BuildBatchRunner(appCtx)
	result, err := batch.Run(ctx)
	if err != nil {
		return err
	}

	slog.Info("バッチ処理が完了したのだ！", "processed", result.Processed, "failed", result.Failed)
	return nil
}

// setupAppContext は、提供された設定と共有コンポーネントを使用して、アプリケーションコンテキストを初期化して返すのだ。
// プール付きHTTPクライアントはここで一度だけ構築して、リゾルバとフェッチャーで使い回すのだよ。
func setupAppContext(cfg *config.Config) (*builder.AppContext, error) {
	httpClient := httpfetch.New(cfg.Options.HTTPTimeout)

	engine, err := builder.InitializeEngine(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create ocr engine: %w", err)
	}

	appCtx := builder.NewAppContext(cfg, httpClient, httpfetch.DefaultPolicy(), engine)
	return &appCtx, nil
}
