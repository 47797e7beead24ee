package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"
)

// デフォルト値の定義なのだ
const (
	// DefaultDialTimeout は接続確立（TCPハンドシェイク）のタイムアウトです。
	DefaultDialTimeout = 3050 * time.Millisecond
	// DefaultRequestTimeout はレスポンス読み取りまで含めたリクエスト全体のタイムアウトです。
	DefaultRequestTimeout = 30 * time.Second

	poolIdleConnsPerHost = 10
	poolMaxConnsPerHost  = 20
	poolIdleConnTimeout  = 90 * time.Second
)

// Client は、コネクションプールを備えた再利用可能なHTTPクライアントなのだ。
// プロセス起動時に一度だけ構築して、リゾルバとフェッチャーに注入して使い回すのだ。
type Client struct {
	hc *http.Client
}

// New は、プールサイズを調整した Client を生成します。
// timeout が 0 以下の場合は DefaultRequestTimeout が適用されます。
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: DefaultDialTimeout,
		}).DialContext,
		MaxIdleConnsPerHost: poolIdleConnsPerHost,
		MaxConnsPerHost:     poolMaxConnsPerHost,
		IdleConnTimeout:     poolIdleConnTimeout,
	}

	return &Client{
		hc: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// Default は、プロセス全体で共有するクライアントを一度だけ構築して返すのだ。
// 何度呼んでもプールが再初期化されることはないのだよ。
var Default = sync.OnceValue(func() *Client {
	return New(DefaultRequestTimeout)
})

// GetBytes は、GETリクエストを発行してレスポンスボディを読み切って返します。
// ステータスコードの分類が肝心なのだ：一時的なコード(503等)は RetryableHTTPError、
// それ以外の非2xxは HTTPStatusError として返すので、この順序を崩してはいけないのだ。
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの生成に失敗しました: %w", err)
	}

	res, err := c.hc.Do(req)
	if err != nil {
		// タイムアウトや接続失敗はそのまま返して、リトライ層に分類を委ねるのだ
		return nil, err
	}
	defer res.Body.Close()

	if IsRetryableStatus(res.StatusCode) {
		io.Copy(io.Discard, res.Body)
		return nil, &RetryableHTTPError{StatusCode: res.StatusCode, URL: url}
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		io.Copy(io.Discard, res.Body)
		return nil, &HTTPStatusError{StatusCode: res.StatusCode, URL: url}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}
	return body, nil
}
