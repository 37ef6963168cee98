// Package security はクライアント側のセキュリティ機能を提供する。
//
// ReplySanitizerService はAIが生成したチャット応答や解析結果のHTMLを
// サニタイズし、表示前に危険なマークアップを除去する。
// bluemondayライブラリを使用した許可リストベースのポリシーで、
// 安全なタグと属性のみを通過させる。
package security

import (
	"net/url"

	"github.com/microcosm-cc/bluemonday"
)

// ReplySanitizerService はAI生成コンテンツのサニタイズ機能のインターフェースを定義する。
// チャット応答・AI出題の解説・学習解析など、サーバー側AIの出力を
// 表示する全ての経路で使用される。
type ReplySanitizerService interface {
	// Sanitize はHTMLコンテンツをサニタイズして安全なHTMLを返す。
	// 許可タグ（p, br, a, ul, ol, li, blockquote, pre, code, strong, em）のみを
	// 通過させ、script, iframe, styleタグおよびon*イベント属性を除去する。
	// aタグのhrefはhttpsスキームのみ許可され、rel="noopener noreferrer"が
	// 自動付与される。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(rawHTML string) string
}

// replySanitizer はReplySanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type replySanitizer struct {
	policy *bluemonday.Policy
}

// NewReplySanitizer はReplySanitizerServiceの新しいインスタンスを生成する。
// AI生成コンテンツは数式や箇条書きを含むリッチテキストとして届くため、
// 基本的な整形タグのみを許可し、実行可能な要素は全て除去する。
func NewReplySanitizer() *replySanitizer {
	p := bluemonday.NewPolicy()

	// 整形タグのみの許可リスト。scriptやiframeは許可リストに
	// 含めないことで自動的に除去される。on*イベント属性も
	// bluemondayのデフォルトで許可されない。
	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
	)

	// AI応答内のリンクは外部資料の引用であり、httpsのみ許可する。
	// 相対URLはAPIコンテキスト外での表示を想定して不許可とする。
	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.RequireNoReferrerOnLinks(true)
	p.AllowURLSchemeWithCustomPolicy("https", func(u *url.URL) bool {
		return true
	})

	return &replySanitizer{
		policy: p,
	}
}

// Sanitize はHTMLコンテンツをサニタイズして安全なHTMLを返す。
func (s *replySanitizer) Sanitize(rawHTML string) string {
	return s.policy.Sanitize(rawHTML)
}
