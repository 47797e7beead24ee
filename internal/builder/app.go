package builder

import (
	"github.com/shouni/go-transcribe-kit/internal/config"

	"github.com/shouni/go-transcribe-kit/pkg/httpfetch"
	"github.com/shouni/go-transcribe-kit/pkg/ocr"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを各Build関数に渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config  *config.Config    // Configは、環境変数から読み込まれたグローバルな設定です（モデル名、エンドポイント等）。
	Options config.RunOptions // Optionsは、コマンドラインから渡された実行時の設定です。

	httpClient *httpfetch.Client // httpClient はリポジトリとの通信に使う共有のプール付きクライアント
	policy     httpfetch.Policy  // policy は全ネットワーク操作に適用するリトライポリシー
	engine     ocr.Engine        // engine は視覚モデルによる書き起こしエンジン
}

// NewAppContext は AppContext の新しいインスタンスを生成する
func NewAppContext(
	cfg *config.Config,
	httpClient *httpfetch.Client,
	policy httpfetch.Policy,
	engine ocr.Engine,
) AppContext {
	return AppContext{
		Config:     cfg,
		Options:    cfg.Options,
		httpClient: httpClient,
		policy:     policy,
		engine:     engine,
	}
}
