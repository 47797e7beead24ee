// Package ollama は、ローカルの Ollama 推論サービスを使う文字起こしエンジンの実装なのだ。
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shouni/go-transcribe-kit/pkg/ocr"
)

// デフォルト値の定義なのだ
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "qwen2.5vl:3b"
	DefaultTimeout = 120 * time.Second

	chatEndpoint = "/api/chat"
	userPrompt   = "Transcribe text from this image."
)

// Options は Ollama エンジンの生成パラメータなのだ。
// 決定論的なデコードのため、温度ゼロ・固定シード・停止シーケンスを指定するのだ。
type Options struct {
	BaseURL       string
	Model         string
	SystemPrompt  string
	Seed          int
	Temperature   float64
	TopP          float64
	RepeatPenalty float64
	NumPredict    int      // 出力トークン数の上限
	Stop          []string // 禁止された解説セクションを打ち切る停止シーケンス
	Timeout       time.Duration
}

// Engine は ocr.Engine の Ollama 実装です。
type Engine struct {
	opts  Options
	httpc *http.Client
}

// New は、欠けたオプションをデフォルト値で埋めて Engine を生成するのだ。
func New(opts Options) *Engine {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Engine{
		opts:  opts,
		httpc: &http.Client{Timeout: opts.Timeout},
	}
}

func (e *Engine) Name() string { return "ollama" }

type chatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type chatOptions struct {
	Seed          int      `json:"seed"`
	Temperature   float64  `json:"temperature"`
	TopP          float64  `json:"top_p"`
	RepeatPenalty float64  `json:"repeat_penalty"`
	NumPredict    int      `json:"num_predict"`
	Stop          []string `json:"stop,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options"`
}

type chatResponse struct {
	Message struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

// Transcribe は、システムプロンプトとbase64画像を1リクエストにまとめてモデルに送り、
// 応答を素のテキストに正規化して返すのだ。
func (e *Engine) Transcribe(ctx context.Context, encodedImage string) (string, error) {
	request := chatRequest{
		Model: e.opts.Model,
		Messages: []chatMessage{
			{Role: "system", Content: e.opts.SystemPrompt},
			{Role: "user", Content: userPrompt, Images: []string{encodedImage}},
		},
		Stream: false,
		Options: chatOptions{
			Seed:          e.opts.Seed,
			Temperature:   e.opts.Temperature,
			TopP:          e.opts.TopP,
			RepeatPenalty: e.opts.RepeatPenalty,
			NumPredict:    e.opts.NumPredict,
			Stop:          e.opts.Stop,
		},
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("リクエストのシリアライズに失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.opts.BaseURL+chatEndpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("リクエストの生成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := e.httpc.Do(req)
	if err != nil {
		slog.Error("Ollamaへの接続に失敗したのだ。`ollama serve` が起動しているか確認してほしいのだ", "error", err)
		return "", &ocr.ConnectionError{Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		slog.Error("モデル呼び出しに失敗したのだ", "status", res.StatusCode, "model", e.opts.Model)
		return "", fmt.Errorf("ollama が status %d を返しました (`ollama pull %s` を試してほしいのだ): %s",
			res.StatusCode, e.opts.Model, string(body))
	}

	var response chatResponse
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return "", &ocr.FormatError{Detail: fmt.Sprintf("応答のデコードに失敗: %v", err)}
	}

	return ocr.NormalizeContent(response.Message.Content)
}
