package model

import "fmt"

// 定義済みビジネスエラーコード。
// サーバーのエラーレスポンスのerrorCodeフィールドに対応する。
const (
	ErrCodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	ErrCodeTokenExpired       = "AUTH_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "AUTH_TOKEN_INVALID"
	ErrCodeAccountDisabled    = "AUTH_ACCOUNT_DISABLED"
	ErrCodePermissionDenied   = "PERMISSION_DENIED"
	ErrCodeOwnership          = "PERMISSION_OWNERSHIP"
	ErrCodeValidationField    = "VALIDATION_FIELD"
	ErrCodeValidationParam    = "VALIDATION_PARAM"
	ErrCodeNotFound           = "RESOURCE_NOT_FOUND"
	ErrCodeConflict           = "RESOURCE_CONFLICT"
	ErrCodeAIUnavailable      = "AI_MODEL_UNAVAILABLE"
	ErrCodeAIOutputInvalid    = "AI_OUTPUT_INVALID"
	ErrCodeAIRateLimited      = "AI_RATE_LIMITED"
	ErrCodeSystemInternal     = "SYSTEM_INTERNAL"
	ErrCodeSystemDependency   = "SYSTEM_DEPENDENCY"
)

// ApiError はEduNexus APIのビジネスレベルの失敗を表す。
// 正常なエンベロープ形式で返されたエラーレスポンスから生成される。
// Codeはエンベロープのcode（HTTPステータス相当の数値）、
// ErrorCodeはAUTH_TOKEN_EXPIRED等の構造化エラーコード（省略されることがある）、
// Statusはトランスポート層のHTTPステータスを保持する。
type ApiError struct {
	Code      int    // エンベロープのcodeフィールド
	ErrorCode string // 構造化エラーコード（省略可）
	Message   string // サーバーが返したメッセージ
	Status    int    // トランスポート層のHTTPステータス
	TraceID   string // トレースID（省略可）
}

// Error はerrorインターフェースを実装する。
func (e *ApiError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("[%s] %s", e.ErrorCode, e.Message)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// MalformedEnvelopeError はレスポンスが有効なエンベロープ形式でないことを表す。
// リトライ対象外であり、呼び出し元には汎用エラーとして提示される。
type MalformedEnvelopeError struct {
	Status int    // トランスポート層のHTTPステータス
	Reason string // 不正の内容
}

// Error はerrorインターフェースを実装する。
func (e *MalformedEnvelopeError) Error() string {
	return fmt.Sprintf("malformed response envelope (status %d): %s", e.Status, e.Reason)
}
