package imagefetch

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

const jpegQuality = 90

// EncodeBase64 は、デコード済み画像を元のフォーマットで再エンコードして
// base64文字列に変換するのだ。エンコーダが存在しないフォーマット（webp等）は
// JPEGにフォールバックするのだよ。
func EncodeBase64(page *PageImage) (string, error) {
	buf := new(bytes.Buffer)

	var err error
	switch page.Format {
	case "png":
		err = png.Encode(buf, page.Bitmap)
	case "gif":
		err = gif.Encode(buf, page.Bitmap, nil)
	case "bmp":
		err = bmp.Encode(buf, page.Bitmap)
	case "tiff":
		err = tiff.Encode(buf, page.Bitmap, nil)
	default:
		err = jpeg.Encode(buf, page.Bitmap, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		slog.Error("画像のエンコードに失敗したのだ", "format", page.Format, "error", err)
		return "", fmt.Errorf("画像のbase64エンコードに失敗しました: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
