// Package message はAPIエラーをユーザー向け文言へ変換する静的マッピングを提供する。
//
// 解決順序: 構造化エラーコード表 → HTTPステータス表 → サーバーメッセージ →
// 呼び出し元が指定したフォールバック文言。
package message

import (
	"errors"

	"github.com/hitoshi/manabu/internal/model"
)

// DefaultFallback はどの表にも該当しない場合の既定文言。
const DefaultFallback = "操作に失敗しました。しばらくしてから再度お試しください。"

// errorCodeMessages は構造化エラーコードに対応するユーザー向け文言。
var errorCodeMessages = map[string]string{
	model.ErrCodeInvalidCredentials: "ユーザー名またはパスワードが正しくありません。",
	model.ErrCodeTokenExpired:       "ログインの有効期限が切れました。再度ログインしてください。",
	model.ErrCodeTokenInvalid:       "ログイン情報が無効です。再度ログインしてください。",
	model.ErrCodeAccountDisabled:    "このアカウントは無効化されています。",
	model.ErrCodePermissionDenied:   "この操作を実行する権限がありません。",
	model.ErrCodeOwnership:          "自分に属さないリソースへはアクセスできません。",
	model.ErrCodeValidationField:    "入力内容に誤りがあります。フォームを確認してください。",
	model.ErrCodeValidationParam:    "クエリパラメータが不正です。修正して再度お試しください。",
	model.ErrCodeNotFound:           "指定されたリソースは存在しないか、削除されています。",
	model.ErrCodeConflict:           "リソースが既に存在します。重複して送信しないでください。",
	model.ErrCodeAIUnavailable:      "AIモデルが一時的に利用できません。しばらくしてから再度お試しください。",
	model.ErrCodeAIOutputInvalid:    "AIの応答形式が不正です。再度お試しください。",
	model.ErrCodeAIRateLimited:      "現在リクエストが混み合っています。しばらくしてから再度お試しください。",
	model.ErrCodeSystemInternal:     "システムが混み合っています。しばらくしてから再度お試しください。",
	model.ErrCodeSystemDependency:   "依存サービスが利用できません。しばらくしてから再度お試しください。",
}

// httpStatusMessages はHTTPステータスに対応するユーザー向け文言。
var httpStatusMessages = map[int]string{
	400: "リクエストパラメータが不正です。入力内容を確認してください。",
	401: "ログイン状態が無効になりました。再度ログインしてください。",
	403: "このリソースへのアクセス権限がありません。",
	404: "リクエストされたリソースが存在しません。",
	409: "リソースが競合しています。最新の状態に更新してから再度お試しください。",
	429: "リクエストが頻繁すぎます。しばらくしてから再度お試しください。",
	500: "システムが混み合っています。しばらくしてから再度お試しください。",
	502: "サービスの応答が異常です。しばらくしてから再度お試しください。",
	503: "サービスが混み合っています。しばらくしてから再度お試しください。",
}

// ToMessage はエラーをユーザー向け文言に変換する。
// fallbackが空文字列の場合はDefaultFallbackを使用する。
func ToMessage(err error, fallback string) string {
	if fallback == "" {
		fallback = DefaultFallback
	}
	if err == nil {
		return fallback
	}

	var apiErr *model.ApiError
	if errors.As(err, &apiErr) {
		if apiErr.ErrorCode != "" {
			if msg, ok := errorCodeMessages[apiErr.ErrorCode]; ok {
				return msg
			}
		}
		if msg, ok := httpStatusMessages[apiErr.Status]; ok {
			return msg
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	}

	var malformed *model.MalformedEnvelopeError
	if errors.As(err, &malformed) {
		if msg, ok := httpStatusMessages[malformed.Status]; ok {
			return msg
		}
		return fallback
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
