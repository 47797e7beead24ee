package builder

import (
	"fmt"

	"github.com/shouni/go-transcribe-kit/internal/config"
	"github.com/shouni/go-transcribe-kit/internal/prompt"
	"github.com/shouni/go-transcribe-kit/internal/runner"

	"github.com/shouni/go-transcribe-kit/pkg/iiif"
	"github.com/shouni/go-transcribe-kit/pkg/imagefetch"
	"github.com/shouni/go-transcribe-kit/pkg/metadata"
	"github.com/shouni/go-transcribe-kit/pkg/ocr"
	"github.com/shouni/go-transcribe-kit/pkg/ocr/ollama"
	"github.com/shouni/go-transcribe-kit/pkg/sink"
)

// InitializeEngine は、設定に基づいて視覚モデルの書き起こしエンジンを初期化します。
func InitializeEngine(cfg *config.Config) (ocr.Engine, error) {
	systemPrompt, err := prompt.SystemPrompt()
	if err != nil {
		return nil, fmt.Errorf("システムプロンプトの読み込みに失敗しました: %w", err)
	}

	model := cfg.Model
	if cfg.Options.Model != "" {
		model = cfg.Options.Model
	}

	return ollama.New(ollama.Options{
		BaseURL:       cfg.OllamaBaseURL,
		Model:         model,
		SystemPrompt:  systemPrompt,
		Seed:          config.DefaultSeed,
		Temperature:   config.DefaultTemperature,
		TopP:          config.DefaultTopP,
		RepeatPenalty: config.DefaultRepeatPenalty,
		NumPredict:    config.DefaultNumPredict,
		Stop:          config.DefaultStopSequences,
		Timeout:       config.DefaultOllamaTimeout,
	}), nil
}

// BuildTranscribeRunner は、1枚の画像を処理する Runner を構築します。
func BuildTranscribeRunner(appCtx *AppContext) runner.TranscribeRunner {
	fetcher := imagefetch.NewFetcher(appCtx.httpClient, appCtx.policy, appCtx.Options.MaxEdge)
	results := sink.New(appCtx.Options.OutputDir)

	return runner.NewImageTranscribeRunner(fetcher, appCtx.engine, results, nil)
}

// BuildBatchRunner は、メタデータ駆動のバッチ書き起こしを担当する Runner を構築します。
func BuildBatchRunner(appCtx *AppContext) runner.BatchRunner {
	source := metadata.NewStore(appCtx.Options.MetadataDir)
	resolver := iiif.NewResolver(appCtx.httpClient, appCtx.policy, appCtx.Config.ManifestBaseURL)
	transcriber := BuildTranscribeRunner(appCtx)

	return runner.NewOCRBatchRunner(
		source,
		resolver,
		transcriber,
		appCtx.Options.RateInterval,
		appCtx.Options.PIDLimit,
	)
}
