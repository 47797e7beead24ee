package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/shouni/go-transcribe-kit/pkg/imagefetch"
	"github.com/shouni/go-transcribe-kit/pkg/ocr"
	"github.com/shouni/go-transcribe-kit/pkg/sink"
)

// PageFetcher は、URLからデコード済みページ画像を取得する依存のインターフェースなのだ。
type PageFetcher interface {
	Fetch(ctx context.Context, imageURL string) (*imagefetch.PageImage, error)
}

// TranscribeRunner は、1枚の画像に対する「取得→書き起こし→保存」パイプラインのインターフェースです。
type TranscribeRunner interface {
	// Run は画像URLを処理する。失敗はそのまま呼び出し元へ伝播するのだ。
	Run(ctx context.Context, imageURL string) error
}

// ImageTranscribeRunner は TranscribeRunner の標準実装なのだ。
type ImageTranscribeRunner struct {
	fetcher PageFetcher
	engine  ocr.Engine
	results *sink.Sink
	stdout  io.Writer // 識別子を導出できなかった場合の出力先
}

// NewImageTranscribeRunner は、ImageTranscribeRunnerの新しいインスタンスを生成して返すのだ。
// stdout に nil を渡すと os.Stdout が使われます。
func NewImageTranscribeRunner(fetcher PageFetcher, engine ocr.Engine, results *sink.Sink, stdout io.Writer) *ImageTranscribeRunner {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &ImageTranscribeRunner{
		fetcher: fetcher,
		engine:  engine,
		results: results,
		stdout:  stdout,
	}
}

// Run は、画像の取得、エンコード、視覚モデルによる書き起こし、保存を一気に行うのだ。
func (tr *ImageTranscribeRunner) Run(ctx context.Context, imageURL string) error {
	slog.Info("画像を取得するのだ", "url", imageURL)
	page, err := tr.fetcher.Fetch(ctx, imageURL)
	if err != nil {
		return fmt.Errorf("画像の取得に失敗したのだ: %w", err)
	}

	payload, err := imagefetch.EncodeBase64(page)
	if err != nil {
		return err
	}

	slog.Info("視覚モデルで書き起こしを開始するのだ", "engine", tr.engine.Name())
	transcription, err := tr.engine.Transcribe(ctx, payload)
	if err != nil {
		return fmt.Errorf("書き起こしに失敗したのだ: %w", err)
	}

	identifier := sink.ExtractIdentifier(imageURL)
	if identifier == "" {
		// 保存先が決められないので、結果を捨てずに画面に出すのだ
		slog.Warn("URLから識別子を導出できなかったのだ。書き起こしを標準出力に表示するのだ", "url", imageURL)
		fmt.Fprintln(tr.stdout, transcription)
		return nil
	}

	_, err = tr.results.Save(transcription, identifier)
	return err
}
