// Package imagefetch は、ページ画像の取得・デコード・ペイロード変換を担うパッケージなのだ。
package imagefetch

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"

	"github.com/shouni/go-transcribe-kit/pkg/httpfetch"

	// アーカイブスキャンで遭遇しうるフォーマットのデコーダを登録するのだ
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// PageImage は、デコード済みのページ画像と元フォーマットを保持します。
// 取得したフェッチ呼び出しが所有し、エンコード工程に引き渡されるまで共有されないのだ。
type PageImage struct {
	Bitmap    image.Image
	Format    string // image.Decode が報告したフォーマット名 ("jpeg", "png", "tiff" 等)
	SourceURL string
}

// Fetcher は、画像URLからデコード済み画像を取得する実体なのだ。
type Fetcher struct {
	client  *httpfetch.Client
	policy  httpfetch.Policy
	maxEdge int // 0なら縮小しない
}

// NewFetcher は Fetcher の新しいインスタンスを生成して返すのだ。
// maxEdge に正の値を渡すと、長辺がそれを超えるスキャン画像を推論前に縮小するのだ。
func NewFetcher(client *httpfetch.Client, policy httpfetch.Policy, maxEdge int) *Fetcher {
	return &Fetcher{
		client:  client,
		policy:  policy,
		maxEdge: maxEdge,
	}
}

// Fetch は、URLから画像バイト列を取得してメモリ上のビットマップにデコードします。
// ネットワークの一時的な失敗はリトライポリシーに従うが、デコードの失敗は
// 「バイト列は既に届いている＝リトライしても直らない」ので即座に失敗として返すのだ。
func (f *Fetcher) Fetch(ctx context.Context, imageURL string) (*PageImage, error) {
	data, err := httpfetch.Do(ctx, f.policy, "page image", func() ([]byte, error) {
		return f.client.GetBytes(ctx, imageURL)
	})
	if err != nil {
		return nil, err
	}

	bitmap, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		slog.Error("画像のデコードに失敗したのだ", "url", imageURL, "error", err)
		return nil, fmt.Errorf("画像のデコードに失敗しました (%s): %w", imageURL, err)
	}

	if f.maxEdge > 0 {
		bounds := bitmap.Bounds()
		if bounds.Dx() > f.maxEdge || bounds.Dy() > f.maxEdge {
			slog.Info("大きなスキャン画像を縮小するのだ",
				"url", imageURL, "width", bounds.Dx(), "height", bounds.Dy(), "max_edge", f.maxEdge)
			bitmap = imaging.Fit(bitmap, f.maxEdge, f.maxEdge, imaging.Lanczos)
		}
	}

	return &PageImage{Bitmap: bitmap, Format: format, SourceURL: imageURL}, nil
}
