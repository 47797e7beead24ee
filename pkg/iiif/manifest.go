// Package iiif は、IIIF Presentation API のマニフェストを解決して
// ページ画像のURLリストを取り出すためのパッケージなのだ。
package iiif

// Manifest は IIIF Presentation マニフェストのうち、画像抽出に必要な部分だけを写した構造体です。
// マニフェストは信頼できない外部入力なので、欠けていても壊れないことが大事なのだ。
type Manifest struct {
	Sequences []Sequence `json:"sequences"`
}

// Sequence はキャンバス（ページ）の並びです。
type Sequence struct {
	Canvases []Canvas `json:"canvases"`
}

// Canvas はマニフェスト内の1ページ分の単位です。
type Canvas struct {
	Images []ImageAnnotation `json:"images"`
}

// ImageAnnotation はキャンバスに紐づく画像アノテーションです。
type ImageAnnotation struct {
	Resource Resource `json:"resource"`
}

// Resource は画像リソース本体で、@id が画像URLになるのだ。
type Resource struct {
	ID string `json:"@id"`
}

// ImageURLs は、マニフェストからページ画像のURLを抽出する純粋関数なのだ。
// 先頭のシーケンスだけを対象に、キャンバス順→キャンバス内の画像順を保って返すのだ。
// sequences / canvases / images が欠けていても空のリストを返すだけで、決して失敗しないのだよ。
func ImageURLs(m Manifest) []string {
	if len(m.Sequences) == 0 {
		return nil
	}

	canvases := m.Sequences[0].Canvases
	if len(canvases) == 0 {
		return nil
	}

	var urls []string
	for _, canvas := range canvases {
		for _, annotation := range canvas.Images {
			if id := annotation.Resource.ID; id != "" {
				urls = append(urls, id)
			}
		}
	}
	return urls
}
