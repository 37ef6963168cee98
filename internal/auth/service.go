// Package auth は認証エンドポイントの呼び出しとセッションの確立・破棄を提供する。
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/hitoshi/manabu/internal/model"
	"github.com/hitoshi/manabu/internal/session"
)

// Caller はリクエストパイプラインのうち本サービスが必要とする操作。
type Caller interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

// RegisterRequest はユーザー登録のリクエストボディ。
type RegisterRequest struct {
	Username string     `json:"username"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
	Email    string     `json:"email,omitempty"`
	Phone    string     `json:"phone,omitempty"`
}

// loginRequest はログインのリクエストボディ。
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Service は認証に関する操作を提供する。
type Service struct {
	client Caller
	store  *session.Store
	logger *slog.Logger
}

// NewService はServiceを生成する。
func NewService(client Caller, store *session.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client: client,
		store:  store,
		logger: logger,
	}
}

// Register は新規ユーザーを登録する。セッションは確立しない。
// 旧バージョンのサーバーはidの代わりにuserIdのみを返すことがあるため、
// その場合はリクエスト内容から登録結果を補完する。
func (s *Service) Register(ctx context.Context, req RegisterRequest) (model.Profile, error) {
	var raw json.RawMessage
	if err := s.client.Post(ctx, "/auth/register", req, &raw); err != nil {
		return model.Profile{}, fmt.Errorf("failed to register: %w", err)
	}

	record := asRecord(raw)
	if asString(record["id"]) == "" && asString(record["userId"]) != "" {
		return model.Profile{
			ID:       asString(record["userId"]),
			Username: req.Username,
			Role:     req.Role,
			Status:   model.StatusActive,
			Email:    req.Email,
			Phone:    req.Phone,
		}, nil
	}

	return profileFromRecord(record), nil
}

// Login は資格情報でログインし、取得したトークン組とプロフィールで
// セッションを総上書きする。
func (s *Service) Login(ctx context.Context, username, password string) (model.Profile, error) {
	var result model.LoginResult
	if err := s.client.Post(ctx, "/auth/login", loginRequest{Username: username, Password: password}, &result); err != nil {
		return model.Profile{}, fmt.Errorf("failed to login: %w", err)
	}

	s.store.SetSession(result.Tokens(), result.User)
	s.logger.Info("user logged in",
		slog.String("user_id", result.User.ID),
		slog.String("role", string(result.User.Role)),
	)
	return result.User, nil
}

// Logout はサーバー側セッションの無効化を試み、ローカルセッションを破棄する。
// サーバー呼び出しの失敗はローカルの破棄を妨げない。
func (s *Service) Logout(ctx context.Context) {
	if err := s.client.Post(ctx, "/auth/logout", nil, nil); err != nil {
		s.logger.Warn("server-side logout failed",
			slog.String("error", err.Error()),
		)
	}
	s.store.Clear()
	s.logger.Info("user logged out")
}

// Me は現在のユーザーのプロフィールを取得する。
// サーバーのフィールド欠落・型揺れを防御的に正規化する。
// セッションストアへの反映（SetUser）とDISABLED判定は呼び出し元の責務。
func (s *Service) Me(ctx context.Context) (model.Profile, error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, "/auth/me", nil, &raw); err != nil {
		return model.Profile{}, fmt.Errorf("failed to fetch current profile: %w", err)
	}
	return profileFromRecord(asRecord(raw)), nil
}

// profileFromRecord は緩く型付けされたレコードをProfileへ正規化する。
func profileFromRecord(record map[string]any) model.Profile {
	return model.Profile{
		ID:        asString(record["id"]),
		Username:  asString(record["username"]),
		Role:      model.Role(asString(record["role"])),
		Status:    model.UserStatus(asString(record["status"])),
		Email:     asString(record["email"]),
		Phone:     asString(record["phone"]),
		CreatedAt: asString(record["createdAt"]),
		UpdatedAt: asString(record["updatedAt"]),
	}
}

func asRecord(raw json.RawMessage) map[string]any {
	record := map[string]any{}
	if len(raw) == 0 {
		return record
	}
	// オブジェクト以外は空レコードとして扱う
	_ = json.Unmarshal(raw, &record)
	return record
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
