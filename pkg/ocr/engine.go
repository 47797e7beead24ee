// Package ocr は、視覚モデルによる文字起こしエンジンの共通契約を定義するパッケージなのだ。
package ocr

import (
	"context"
	"fmt"
)

// Engine は、base64エンコード済みの画像を文字起こしするエンジンのインターフェースです。
// この層ではリトライしないのだ。推論は高コストで、盲目的な再実行が安全とは限らないから、
// 失敗の扱いは呼び出し元（オーケストレータ）に委ねるのだよ。
type Engine interface {
	// Name はエンジンの識別名を返す。
	Name() string
	// Transcribe は画像ペイロードを視覚モデルに送り、書き起こしテキストを返す。
	Transcribe(ctx context.Context, encodedImage string) (string, error)
}

// ConnectionError は、推論サービス自体に到達できない失敗を表します。
// モデルの応答形式の問題（FormatError）とは区別して、呼び出し元が
// 「スキップ」ではなく「中断」を選べるようにするのだ。
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("推論サービスに接続できません: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// FormatError は、モデルの応答が想定外の形をしていた失敗を表します。
// コンテンツの問題なのでリトライしても直らないのだ。
type FormatError struct {
	Detail string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("モデル応答の形式が想定外なのだ: %s", e.Detail)
}
