package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shouni/go-transcribe-kit/pkg/ocr"
)

func TestEngine_Transcribe(t *testing.T) {
	t.Run("リクエストの構成と応答の正規化が正しいのだ", func(t *testing.T) {
		var got chatRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != chatEndpoint {
				t.Errorf("エンドポイントが違うのだ: %s", r.URL.Path)
			}
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Errorf("リクエストのデコードに失敗したのだ: %v", err)
			}
			fmt.Fprint(w, `{"message": {"role": "assistant", "content": "Hello"}, "done": true}`)
		}))
		defer srv.Close()

		engine := New(Options{
			BaseURL:      srv.URL,
			Model:        "qwen2.5vl:3b",
			SystemPrompt: "You are an expert paleographer.",
			Seed:         18900820,
			TopP:         0.05,
			NumPredict:   1048,
			Stop:         []string{"Notes:"},
		})

		text, err := engine.Transcribe(context.Background(), "QUFB")
		if err != nil {
			t.Fatalf("成功を期待したのだが: %v", err)
		}
		if text != "Hello" {
			t.Errorf("書き起こし結果が違うのだ: %q", text)
		}

		if got.Model != "qwen2.5vl:3b" || got.Stream {
			t.Errorf("モデル指定かストリーム設定が違うのだ: %+v", got)
		}
		if len(got.Messages) != 2 || got.Messages[0].Role != "system" {
			t.Fatalf("system+user の2メッセージ構成のはずなのだ: %+v", got.Messages)
		}
		user := got.Messages[1]
		if user.Role != "user" || len(user.Images) != 1 || user.Images[0] != "QUFB" {
			t.Errorf("ユーザーメッセージに画像が1枚添付されるはずなのだ: %+v", user)
		}
		if got.Options.Temperature != 0.0 || got.Options.Seed != 18900820 {
			t.Errorf("決定論的デコードのパラメータが欠けているのだ: %+v", got.Options)
		}
	})

	t.Run("断片リストの応答も正規化されるのだ", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"message": {"role": "assistant", "content": ["Part 1", {"text": "Part 2"}]}}`)
		}))
		defer srv.Close()

		text, err := New(Options{BaseURL: srv.URL}).Transcribe(context.Background(), "QUFB")
		if err != nil {
			t.Fatalf("成功を期待したのだが: %v", err)
		}
		if text != "Part 1\nPart 2" {
			t.Errorf("連結結果が違うのだ: %q", text)
		}
	})

	t.Run("サービスに到達できない場合はConnectionErrorなのだ", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // すぐ閉じて到達不能にするのだ

		_, err := New(Options{BaseURL: srv.URL}).Transcribe(context.Background(), "QUFB")
		var connErr *ocr.ConnectionError
		if !errors.As(err, &connErr) {
			t.Errorf("ConnectionError を期待したのだが: %v", err)
		}
	})

	t.Run("非200応答はモデル名のヒント付きで失敗するのだ", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error": "model not found"}`, http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := New(Options{BaseURL: srv.URL, Model: "missing-model"}).Transcribe(context.Background(), "QUFB")
		if err == nil {
			t.Fatal("失敗を期待したのだ")
		}
		var connErr *ocr.ConnectionError
		if errors.As(err, &connErr) {
			t.Error("HTTPエラーを接続エラーと混同してはいけないのだ")
		}
	})

	t.Run("想定外の応答形式はFormatErrorなのだ", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"message": {"role": "assistant", "content": 42}}`)
		}))
		defer srv.Close()

		_, err := New(Options{BaseURL: srv.URL}).Transcribe(context.Background(), "QUFB")
		var formatErr *ocr.FormatError
		if !errors.As(err, &formatErr) {
			t.Errorf("FormatError を期待したのだが: %v", err)
		}
	})
}
