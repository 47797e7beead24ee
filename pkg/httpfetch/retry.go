package httpfetch

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy は、リトライ回数とバックオフ間隔を制御する設定なのだ。
// テストでは間隔を縮めたポリシーを注入できるのだよ。
type Policy struct {
	MaxAttempts         uint64        // 初回を含む総試行回数
	InitialInterval     time.Duration // 初回の待機時間（下限）
	MaxInterval         time.Duration // 待機時間の上限
	Multiplier          float64       // 待機時間の成長率
	RandomizationFactor float64       // ジッター係数。リトライストームの同期を防ぐのだ
}

// DefaultPolicy は本番用の推奨ポリシーを返します。
// 最大5回試行、1秒から60秒までのランダム指数バックオフです。
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:         5,
		InitialInterval:     1 * time.Second,
		MaxInterval:         60 * time.Second,
		Multiplier:          2.0,
		RandomizationFactor: 0.5,
	}
}

// backOff は、ポリシーを backoff パッケージの実装に変換するのだ。
func (p Policy) backOff(ctx context.Context) backoff.BackOffContext {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.InitialInterval
	eb.MaxInterval = p.MaxInterval
	eb.Multiplier = p.Multiplier
	eb.RandomizationFactor = p.RandomizationFactor
	eb.MaxElapsedTime = 0 // 経過時間ではなく試行回数で打ち切るのだ

	var attempts uint64 = 1
	if p.MaxAttempts > 1 {
		attempts = p.MaxAttempts
	}
	return backoff.WithContext(backoff.WithMaxRetries(eb, attempts-1), ctx)
}

// Do は、ネットワーク操作をリトライポリシーで包む高階関数なのだ。
// IsRetryable が真を返す失敗だけを再試行し、それ以外は即座に伝播させるのだ。
// 全試行を使い切った場合は、最後の失敗をそのまま呼び出し元へ返すのだよ。
func Do[T any](ctx context.Context, p Policy, name string, op func() (T, error)) (T, error) {
	operation := func() (T, error) {
		v, err := op()
		if err == nil || IsRetryable(err) {
			return v, err
		}
		// 恒久エラーはリトライループから即座に脱出させるのだ
		return v, backoff.Permanent(err)
	}

	notify := func(err error, wait time.Duration) {
		slog.Warn("一時的なエラーが発生したのでリトライするのだ",
			"target", name, "wait", wait, "error", err)
	}

	return backoff.RetryNotifyWithData(operation, p.backOff(ctx), notify)
}
