package iiif

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/shouni/go-transcribe-kit/pkg/httpfetch"
)

// DefaultBaseURL は Brown Digital Repository のマニフェストエンドポイントです。
const DefaultBaseURL = "https://repository.library.brown.edu"

const (
	manifestCacheTTL     = 30 * time.Minute
	manifestCacheCleanup = 1 * time.Hour
)

// Resolver は、リポジトリ識別子(PID)から画像URLリストを解決する実体なのだ。
// 共有のHTTPクライアントとリトライポリシーを注入して使うのだよ。
type Resolver struct {
	client  *httpfetch.Client
	policy  httpfetch.Policy
	baseURL string
	urls    *cache.Cache // PID → 解決済み画像URLリストのキャッシュ
}

// NewResolver は Resolver の新しいインスタンスを生成して返すのだ。
// baseURL が空の場合は DefaultBaseURL が使われます。
func NewResolver(client *httpfetch.Client, policy httpfetch.Policy, baseURL string) *Resolver {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Resolver{
		client:  client,
		policy:  policy,
		baseURL: baseURL,
		urls:    cache.New(manifestCacheTTL, manifestCacheCleanup),
	}
}

// ManifestURL は、PIDからマニフェストのエンドポイントURLを決定論的に組み立てます。
func (r *Resolver) ManifestURL(pid string) string {
	return fmt.Sprintf("%s/iiif/presentation/%s/manifest.json", r.baseURL, pid)
}

// FetchImageURLs は、PIDに対応するマニフェストを取得して画像URLのリストを返すのだ。
// HTTP層の一時的な失敗はリトライポリシーが面倒を見るが、取得に成功したボディの
// JSONが壊れている場合はリトライしても直らないので、ログを出して空リストを返すのだ。
func (r *Resolver) FetchImageURLs(ctx context.Context, pid string) ([]string, error) {
	if cached, ok := r.urls.Get(pid); ok {
		return cached.([]string), nil
	}

	manifestURL := r.ManifestURL(pid)
	slog.Info("マニフェストを取得するのだ", "url", manifestURL)

	body, err := httpfetch.Do(ctx, r.policy, "iiif manifest", func() ([]byte, error) {
		return r.client.GetBytes(ctx, manifestURL)
	})
	if err != nil {
		return nil, err
	}

	var manifest Manifest
	if err := json.Unmarshal(body, &manifest); err != nil {
		slog.Error("マニフェストのJSONが不正なのだ", "pid", pid, "error", err)
		return []string{}, nil
	}

	imageURLs := ImageURLs(manifest)
	slog.Info("画像URLを抽出したのだ", "pid", pid, "count", len(imageURLs))

	r.urls.Set(pid, imageURLs, cache.DefaultExpiration)
	return imageURLs, nil
}
