// Package model はEduNexus APIクライアントのドメインモデルを定義する。
package model

// Role はユーザーの役割を表す。
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

// Valid は既知の役割かどうかを返す。
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// UserStatus はアカウントの状態を表す。
// DISABLEDは終端シグナルであり、これを観測したコンポーネントは
// セッションを即座に破棄しなければならない。
type UserStatus string

const (
	StatusActive   UserStatus = "ACTIVE"
	StatusDisabled UserStatus = "DISABLED"
)

// Profile はサーバーが返す現在ユーザーのプロフィール。
// CreatedAt/UpdatedAtはサーバーのISO-8601文字列をそのまま保持する。
type Profile struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Role      Role       `json:"role"`
	Status    UserStatus `json:"status"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	CreatedAt string     `json:"createdAt,omitempty"`
	UpdatedAt string     `json:"updatedAt,omitempty"`
}

// TokenPair はアクセストークンとリフレッシュトークンの組。
// /auth/refresh のレスポンスに対応する。
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResult は /auth/login のレスポンスに対応する。
type LoginResult struct {
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
	User         Profile `json:"user"`
}

// Tokens はログイン結果からトークン組を取り出す。
func (l LoginResult) Tokens() TokenPair {
	return TokenPair{AccessToken: l.AccessToken, RefreshToken: l.RefreshToken}
}
