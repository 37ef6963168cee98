// Package admin は管理者向け機能（ユーザー管理・リソース管理・監査ログ・
// ダッシュボード）のAPIラッパーを提供する。
package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hitoshi/manabu/internal/apiclient"
	"github.com/hitoshi/manabu/internal/contract"
	"github.com/hitoshi/manabu/internal/model"
)

// Caller はAPIクライアントに要求する操作の集合を定義する。
type Caller interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Do(ctx context.Context, req apiclient.Request) (*apiclient.Response, error)
}

// UserListQuery はユーザー一覧の絞り込み条件。
type UserListQuery struct {
	Role   model.Role
	Status model.UserStatus
	Page   int
	Size   int
}

// ResourceListQuery はリソース一覧の絞り込み条件。
type ResourceListQuery struct {
	ResourceType string
	Page         int
	Size         int
}

// AuditListQuery は監査ログ一覧の絞り込み条件。
type AuditListQuery struct {
	Page int
	Size int
}

// Service は管理者向けAPIのラッパー。
type Service struct {
	client Caller
	logger *slog.Logger
}

// NewService はServiceを生成する。
func NewService(client Caller, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, logger: logger}
}

// ListUsers はユーザーの一覧をページングで取得する。
func (s *Service) ListUsers(ctx context.Context, q UserListQuery) (contract.Page[model.Profile], error) {
	query := url.Values{}
	if q.Role != "" {
		query.Set("role", string(q.Role))
	}
	if q.Status != "" {
		query.Set("status", string(q.Status))
	}
	setPaging(query, q.Page, q.Size)
	return fetchPage[model.Profile](ctx, s.client, "/admin/users", query)
}

// CreateUser は新規ユーザーを作成する。
func (s *Service) CreateUser(ctx context.Context, req UserCreateRequest) (model.Profile, error) {
	var profile model.Profile
	if err := s.client.Post(ctx, "/admin/users", req, &profile); err != nil {
		return model.Profile{}, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Info("user created",
		slog.String("user_id", profile.ID),
		slog.String("role", string(profile.Role)),
	)
	return profile, nil
}

// PatchUser はユーザーを部分更新する。アカウントの無効化・再有効化にも使う。
func (s *Service) PatchUser(ctx context.Context, userID string, req UserPatchRequest) (model.Profile, error) {
	var profile model.Profile
	if err := s.client.Patch(ctx, "/admin/users/"+userID, req, &profile); err != nil {
		return model.Profile{}, fmt.Errorf("failed to patch user %s: %w", userID, err)
	}
	return profile, nil
}

// ListResources はコンテンツ資産の一覧をページングで取得する。
func (s *Service) ListResources(ctx context.Context, q ResourceListQuery) (contract.Page[Resource], error) {
	query := url.Values{}
	if q.ResourceType != "" {
		query.Set("resourceType", q.ResourceType)
	}
	setPaging(query, q.Page, q.Size)
	return fetchPage[Resource](ctx, s.client, "/admin/resources", query)
}

// DownloadResource はリソースの内容を取得する。
// レスポンスはエンベロープではなく生のファイル内容となる。
func (s *Service) DownloadResource(ctx context.Context, resourceID string) ([]byte, error) {
	resp, err := s.client.Do(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/admin/resources/" + resourceID + "/download",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download resource %s: %w", resourceID, err)
	}
	if resp.Status != http.StatusOK {
		return nil, fmt.Errorf("download of resource %s returned status %d", resourceID, resp.Status)
	}
	return resp.Body, nil
}

// ListAudits は監査ログの一覧をページングで取得する。
func (s *Service) ListAudits(ctx context.Context, q AuditListQuery) (contract.Page[AuditLog], error) {
	query := url.Values{}
	setPaging(query, q.Page, q.Size)
	return fetchPage[AuditLog](ctx, s.client, "/admin/audits", query)
}

// DashboardMetrics はプラットフォーム全体の統計を取得する。
func (s *Service) DashboardMetrics(ctx context.Context) (DashboardMetrics, error) {
	var metrics DashboardMetrics
	if err := s.client.Get(ctx, "/admin/dashboard/metrics", nil, &metrics); err != nil {
		return DashboardMetrics{}, fmt.Errorf("failed to fetch dashboard metrics: %w", err)
	}
	return metrics, nil
}

func fetchPage[T any](ctx context.Context, c Caller, path string, query url.Values) (contract.Page[T], error) {
	var raw json.RawMessage
	if err := c.Get(ctx, path, query, &raw); err != nil {
		return contract.Page[T]{}, fmt.Errorf("failed to list %s: %w", path, err)
	}
	page, err := contract.DecodePage[T](raw)
	if err != nil {
		return contract.Page[T]{}, fmt.Errorf("failed to decode page from %s: %w", path, err)
	}
	return page, nil
}

func setPaging(v url.Values, page, size int) {
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		v.Set("size", strconv.Itoa(size))
	}
}
