package ocr

import (
	"encoding/json"
	"strings"
)

// NormalizeContent は、モデルが返すコンテンツを素のテキストに正規化するのだ。
// コンテンツは「文字列そのもの」か「文字列と {"text": ...} 断片が混ざった配列」の
// どちらかで届く。後者は順序を保って改行で連結するのだ。どちらでもない形は
// FormatError として致命的に扱うのだよ。
func NormalizeContent(raw json.RawMessage) (string, error) {
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return "", &FormatError{Detail: string(raw)}
	}

	var parts []string
	for _, item := range items {
		var str string
		if err := json.Unmarshal(item, &str); err == nil {
			parts = append(parts, str)
			continue
		}

		var fragment struct {
			Text *string `json:"text"`
		}
		if err := json.Unmarshal(item, &fragment); err == nil && fragment.Text != nil {
			parts = append(parts, *fragment.Text)
		}
		// text を持たない断片は書き起こしに寄与しないので読み飛ばすのだ
	}

	return strings.Join(parts, "\n"), nil
}
