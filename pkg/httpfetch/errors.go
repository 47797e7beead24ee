package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// retryableStatusCodes は、再試行する価値のある一時的なHTTPステータスコードの集合なのだ。
// 4xx系でもタイムアウト(408)とレート制限(429)だけは一時的な失敗として扱うのだ。
var retryableStatusCodes = map[int]struct{}{
	408: {},
	429: {},
	500: {},
	502: {},
	503: {},
	504: {},
}

// RetryableHTTPError は、リトライに値する一時的なHTTPエラーを表します。
// 恒久的な HTTPStatusError と型で区別できるため、リトライ判定が status code の
// 再解釈なしに行えるのだ。
type RetryableHTTPError struct {
	StatusCode int
	URL        string
}

func (e *RetryableHTTPError) Error() string {
	return fmt.Sprintf("一時的なHTTPエラー (status %d): %s", e.StatusCode, e.URL)
}

// HTTPStatusError は、リトライしても解決しない恒久的なHTTPエラーを表します。
// 404 や 401 のような 4xx 系がここに分類されるのだ。
type HTTPStatusError struct {
	StatusCode int
	URL        string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTPエラー (status %d): %s", e.StatusCode, e.URL)
}

// IsRetryableStatus は、ステータスコードが一時的エラーに分類されるかを返します。
func IsRetryableStatus(code int) bool {
	_, ok := retryableStatusCodes[code]
	return ok
}

// IsRetryable は、失敗が再試行に値するかを判定します。
// 対象は「接続タイムアウト」「接続確立の失敗」「一時的なHTTPステータス」の3種のみで、
// それ以外（恒久的なHTTPエラー、デコード失敗、コンテキストのキャンセル）は即座に呼び出し元へ返すのだ。
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// 呼び出し側の明示的な中断はリトライ対象外なのだ
	if errors.Is(err, context.Canceled) {
		return false
	}

	var retryable *RetryableHTTPError
	if errors.As(err, &retryable) {
		return true
	}

	// 読み取り・接続タイムアウト
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// 接続確立の失敗（DNS解決失敗、connection refused 等）
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
