// Package sink は、書き起こし結果の永続化と出力識別子の導出を担うパッケージなのだ。
package sink

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
)

// DefaultOutputDir は書き起こしファイルのデフォルト保存先です。
const DefaultOutputDir = "output"

// identifierPattern は Brown Digital Repository の識別子 (bdr:数値) に一致します
var identifierPattern = regexp.MustCompile(`bdr:(\d+)`)

// ExtractIdentifier は、画像URLからリポジトリの数値識別子を取り出すのだ。
// マーカーが見つからない場合は空文字を返し、保存のスキップは呼び出し元が判断するのだ。
func ExtractIdentifier(url string) string {
	match := identifierPattern.FindStringSubmatch(url)
	if match == nil {
		return ""
	}
	return match[1]
}

// Sink は書き起こしテキストをファイルとして保存する実体です。
type Sink struct {
	outputDir string
}

// New は Sink の新しいインスタンスを生成して返すのだ。
// outputDir が空の場合は DefaultOutputDir が使われます。
func New(outputDir string) *Sink {
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}
	return &Sink{outputDir: outputDir}
}

// Save は、書き起こしを <outputDir>/<identifier>.txt にUTF-8テキストとして書き込みます。
// 出力ディレクトリは親ごと作成し、同じ識別子の既存ファイルは上書きするのだ。
// 書き込みの失敗はそのユニットにとって致命的なので、ログを出してそのまま返すのだよ。
func (s *Sink) Save(transcription, identifier string) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		slog.Error("出力ディレクトリの作成に失敗したのだ", "dir", s.outputDir, "error", err)
		return "", fmt.Errorf("出力ディレクトリの作成に失敗しました: %w", err)
	}

	path := filepath.Join(s.outputDir, identifier+".txt")
	if err := os.WriteFile(path, []byte(transcription), 0o644); err != nil {
		slog.Error("ファイルの書き込みに失敗したのだ", "path", path, "error", err)
		return "", fmt.Errorf("書き起こしの保存に失敗しました: %w", err)
	}

	slog.Info("書き起こしを保存したのだ", "path", path)
	return path, nil
}
