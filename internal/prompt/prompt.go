package prompt

import (
	"fmt"

	_ "embed"
)

//go:embed transcribe.md
var transcribePrompt string

// SystemPrompt は、視覚モデルに「逐語的な書き起こしのみを出力させる」ための
// 固定システムプロンプトを返すのだ。
func SystemPrompt() (string, error) {
	if transcribePrompt == "" {
		return "", fmt.Errorf("書き起こしプロンプトが空なのだ。embed設定を確認してほしいのだ")
	}
	return transcribePrompt, nil
}
