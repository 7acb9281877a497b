// Package security はアプリケーションのセキュリティ機能を提供する。
//
// NameSanitizerService はユーザー入力の表示名（リスト名・品目名）を
// サニタイズし、保存されたXSSからリスト閲覧者を保護する。
// bluemondayのStrictPolicyを使用し、HTMLタグを一切通過させない。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// NameSanitizerService は表示名サニタイズ機能のインターフェースを定義する。
// 表示名の保存前（バリデーションの前段）に使用される。
type NameSanitizerService interface {
	// Sanitize は表示名からHTMLタグを全て除去し、前後の空白をトリムした
	// プレーンテキストを返す。
	// HTMLエンティティはデコードされる（"&amp;" → "&"）。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(rawName string) string
}

// nameSanitizer はNameSanitizerServiceの実装。
// StrictPolicyはスレッドセーフであり、全リクエストで共有される。
type nameSanitizer struct {
	policy *bluemonday.Policy
}

// NewNameSanitizer はNameSanitizerServiceの新しいインスタンスを生成する。
// 表示名はプレーンテキストとして扱うため、許可タグを持たない
// StrictPolicyを使用する。
func NewNameSanitizer() *nameSanitizer {
	return &nameSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は表示名からHTMLタグを除去してトリムしたプレーンテキストを返す。
func (s *nameSanitizer) Sanitize(rawName string) string {
	// StrictPolicyはテキストをHTMLエスケープした形で返すため、
	// プレーンテキスト表示名としてはエンティティをデコードして保存する。
	cleaned := s.policy.Sanitize(rawName)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}
