package config

import (
	"time"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultModel         = "qwen2.5vl:3b"
	DefaultOllamaBaseURL = "http://localhost:11434"
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultOllamaTimeout = 120 * time.Second
	DefaultMetadataDir   = "metadata" // PIDを拾うメタデータJSONの置き場所
	DefaultOutputDir     = "output"   // 書き起こしテキストの保存先
	DefaultRateInterval  = 1 * time.Second

	// 決定論的デコードのためのパラメータなのだ
	DefaultSeed          = 18900820
	DefaultTemperature   = 0.0
	DefaultTopP          = 0.05
	DefaultRepeatPenalty = 1.0
	DefaultNumPredict    = 1048
)

// DefaultStopSequences は、モデルが禁止された解説セクションを書き始めた時点で
// 出力を打ち切るための停止シーケンスなのだ。
var DefaultStopSequences = []string{
	"\n\nCorrection",
	"**Correction",
	"Notes:",
	"Analysis:",
}

// Config はアプリケーション全体の環境設定を保持する構造体なのだ。
type Config struct {
	OllamaBaseURL   string
	Model           string
	ManifestBaseURL string

	Options RunOptions
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	cfg := &Config{
		OllamaBaseURL:   envutil.GetEnv("OLLAMA_BASE_URL", DefaultOllamaBaseURL),
		Model:           envutil.GetEnv("OCR_MODEL", DefaultModel),
		ManifestBaseURL: envutil.GetEnv("MANIFEST_BASE_URL", ""),
	}
	return cfg
}

// RunOptions は CLI フラグから渡される実行時のパラメータなのだ。
type RunOptions struct {
	// ソース入力関連
	ImageURL    string // --image-url: 単一画像モードの対象URL
	MetadataDir string // --metadata-dir

	// 出力設定
	OutputDir string // --output-dir

	// AIモデル・挙動設定
	Model   string // --model: 使用する視覚モデル名
	MaxEdge int    // --max-edge: 推論前に縮小する長辺の上限（0は無効）

	// 実行制御
	PIDLimit     int           // --pid-limit: バッチで処理するPID数の上限（0は無制限）
	HTTPTimeout  time.Duration // --http-timeout
	RateInterval time.Duration // --rate-interval: 画像リクエスト間の待機
}
