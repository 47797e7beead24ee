package runner

import (
	"bytes"
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/shouni/go-transcribe-kit/pkg/imagefetch"
	"github.com/shouni/go-transcribe-kit/pkg/sink"
)

// --- テスト用のフェイク実装なのだ ---

type fakeSource struct {
	pids []string
}

func (f *fakeSource) PIDs() []string { return f.pids }

type fakeResolver struct {
	urls map[string][]string
	errs map[string]error
}

func (f *fakeResolver) FetchImageURLs(_ context.Context, pid string) ([]string, error) {
	if err, ok := f.errs[pid]; ok {
		return nil, err
	}
	return f.urls[pid], nil
}

type fakeFetcher struct{}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*imagefetch.PageImage, error) {
	return &imagefetch.PageImage{
		Bitmap:    image.NewNRGBA(image.Rect(0, 0, 2, 2)),
		Format:    "png",
		SourceURL: url,
	}, nil
}

type fakeEngine struct {
	text string
	err  error
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Transcribe(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

type fakeTranscriber struct {
	errs  map[string]error
	calls []string
}

func (f *fakeTranscriber) Run(_ context.Context, url string) error {
	f.calls = append(f.calls, url)
	return f.errs[url]
}

// --- ここからテスト本体なのだ ---

func TestOCRBatchRunner_Run(t *testing.T) {
	t.Run("1PID1画像のエンドツーエンドで書き起こしが保存されるのだ", func(t *testing.T) {
		outputDir := t.TempDir()
		imageURL := "https://repository.example.edu/iiif/image/bdr:123456/full/max/0/default.jpg"

		transcriber := NewImageTranscribeRunner(
			&fakeFetcher{},
			&fakeEngine{text: "Hello"},
			sink.New(outputDir),
			nil,
		)
		batch := NewOCRBatchRunner(
			&fakeSource{pids: []string{"bdr:999"}},
			&fakeResolver{urls: map[string][]string{"bdr:999": {imageURL}}},
			transcriber,
			0, 0,
		)

		result, err := batch.Run(context.Background())
		if err != nil {
			t.Fatalf("バッチ実行に失敗したのだ: %v", err)
		}
		if result.Processed != 1 || result.Failed != 0 {
			t.Errorf("processed=1, failed=0 を期待したのだが: %+v", result)
		}

		content, err := os.ReadFile(filepath.Join(outputDir, "123456.txt"))
		if err != nil {
			t.Fatalf("出力ファイルが見つからないのだ: %v", err)
		}
		if string(content) != "Hello" {
			t.Errorf("書き起こし内容が違うのだ: %q", string(content))
		}
	})

	t.Run("先頭PIDの恒久的な失敗でもバッチは続行されるのだ", func(t *testing.T) {
		transcriber := &fakeTranscriber{}
		batch := NewOCRBatchRunner(
			&fakeSource{pids: []string{"bdr:1", "bdr:2"}},
			&fakeResolver{
				urls: map[string][]string{"bdr:2": {"https://example.com/bdr:22/img.jpg"}},
				errs: map[string]error{"bdr:1": errors.New("HTTP 404")},
			},
			transcriber,
			0, 0,
		)

		result, err := batch.Run(context.Background())
		if err != nil {
			t.Fatalf("バッチ全体が失敗してはいけないのだ: %v", err)
		}
		if len(transcriber.calls) != 1 {
			t.Errorf("2番目のPIDは処理されるべきなのだ: calls=%v", transcriber.calls)
		}
		if result.Processed != 1 {
			t.Errorf("2番目のPIDの1画像が成功するはずなのだ: %+v", result)
		}
	})

	t.Run("画像単位の失敗は数えられて処理は続くのだ", func(t *testing.T) {
		urls := []string{"u1", "u2", "u3"}
		transcriber := &fakeTranscriber{errs: map[string]error{"u2": errors.New("decode failed")}}
		batch := NewOCRBatchRunner(
			&fakeSource{pids: []string{"bdr:1"}},
			&fakeResolver{urls: map[string][]string{"bdr:1": urls}},
			transcriber,
			0, 0,
		)

		result, err := batch.Run(context.Background())
		if err != nil {
			t.Fatalf("バッチ実行に失敗したのだ: %v", err)
		}
		if result.Processed != 2 || result.Failed != 1 {
			t.Errorf("processed=2, failed=1 を期待したのだが: %+v", result)
		}
		if len(transcriber.calls) != 3 {
			t.Errorf("失敗後も全画像が試されるべきなのだ: calls=%v", transcriber.calls)
		}
	})

	t.Run("PIDがゼロ件なら即座に完了するのだ", func(t *testing.T) {
		batch := NewOCRBatchRunner(&fakeSource{}, &fakeResolver{}, &fakeTranscriber{}, 0, 0)
		result, err := batch.Run(context.Background())
		if err != nil {
			t.Fatalf("空バッチはエラーではないのだ: %v", err)
		}
		if result.Processed != 0 || result.Failed != 0 {
			t.Errorf("空の集計を期待したのだが: %+v", result)
		}
	})

	t.Run("画像が見つからないPIDはスキップされるのだ", func(t *testing.T) {
		transcriber := &fakeTranscriber{}
		batch := NewOCRBatchRunner(
			&fakeSource{pids: []string{"bdr:1"}},
			&fakeResolver{urls: map[string][]string{"bdr:1": {}}},
			transcriber,
			0, 0,
		)

		result, err := batch.Run(context.Background())
		if err != nil {
			t.Fatalf("バッチ実行に失敗したのだ: %v", err)
		}
		if len(transcriber.calls) != 0 || result.Processed != 0 {
			t.Errorf("書き起こしは呼ばれないはずなのだ: %+v", result)
		}
	})

	t.Run("PID制限が適用されるのだ", func(t *testing.T) {
		transcriber := &fakeTranscriber{}
		batch := NewOCRBatchRunner(
			&fakeSource{pids: []string{"bdr:1", "bdr:2", "bdr:3"}},
			&fakeResolver{urls: map[string][]string{
				"bdr:1": {"u1"}, "bdr:2": {"u2"}, "bdr:3": {"u3"},
			}},
			transcriber,
			0, 2,
		)

		result, err := batch.Run(context.Background())
		if err != nil {
			t.Fatalf("バッチ実行に失敗したのだ: %v", err)
		}
		if result.Processed != 2 {
			t.Errorf("制限内の2件だけが処理されるはずなのだ: %+v", result)
		}
	})

	t.Run("キャンセルされたらループは中断されるのだ", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		batch := NewOCRBatchRunner(
			&fakeSource{pids: []string{"bdr:1"}},
			&fakeResolver{urls: map[string][]string{"bdr:1": {"u1"}}},
			&fakeTranscriber{},
			0, 0,
		)

		if _, err := batch.Run(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("context.Canceled を期待したのだが: %v", err)
		}
	})
}

func TestImageTranscribeRunner_Run(t *testing.T) {
	t.Run("識別子のないURLでは標準出力に書き起こしが出るのだ", func(t *testing.T) {
		var out bytes.Buffer
		transcriber := NewImageTranscribeRunner(
			&fakeFetcher{},
			&fakeEngine{text: "no identifier here"},
			sink.New(t.TempDir()),
			&out,
		)

		if err := transcriber.Run(context.Background(), "https://example.com/img.jpg"); err != nil {
			t.Fatalf("識別子なしは失敗ではないのだ: %v", err)
		}
		if out.String() != "no identifier here\n" {
			t.Errorf("標準出力の内容が違うのだ: %q", out.String())
		}
	})

	t.Run("エンジンの失敗は呼び出し元へ伝播するのだ", func(t *testing.T) {
		transcriber := NewImageTranscribeRunner(
			&fakeFetcher{},
			&fakeEngine{err: errors.New("model exploded")},
			sink.New(t.TempDir()),
			nil,
		)

		if err := transcriber.Run(context.Background(), "https://example.com/bdr:1/img.jpg"); err == nil {
			t.Fatal("失敗を期待したのだ")
		}
	})
}
