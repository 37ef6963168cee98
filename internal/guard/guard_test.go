package guard

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/hitoshi/manabu/internal/model"
	"github.com/hitoshi/manabu/internal/session"
)

type mockProfileFetcher struct {
	meFn    func(ctx context.Context) (model.Profile, error)
	meCalls int
}

func (m *mockProfileFetcher) Me(ctx context.Context) (model.Profile, error) {
	m.meCalls++
	if m.meFn != nil {
		return m.meFn(ctx)
	}
	return model.Profile{}, errors.New("not configured")
}

func activeStudent() model.Profile {
	return model.Profile{ID: "u-1", Username: "hanako", Role: model.RoleStudent, Status: model.StatusActive}
}

func newTestGuard(t *testing.T, store *session.Store, fetcher ProfileFetcher) *Guard {
	t.Helper()
	return New(store, fetcher, slog.Default(), nil, DefaultProfileTTL)
}

func TestGuard_PublicRoute(t *testing.T) {
	store := session.NewStore(nil, slog.Default())
	g := newTestGuard(t, store, &mockProfileFetcher{})

	for _, path := range []string{"/login", "/register", "/403", "/404"} {
		d := g.Evaluate(context.Background(), path)
		if !d.Proceed {
			t.Errorf("Evaluate(%q) = %+v, want proceed", path, d)
		}
	}
}

func TestGuard_AliasRoutes(t *testing.T) {
	store := session.NewStore(nil, slog.Default())
	g := newTestGuard(t, store, &mockProfileFetcher{})

	tests := []struct {
		path string
		want string
	}{
		{"/", "/login"},
		{"/student", "/student/chat"},
		{"/teacher", "/teacher/knowledge"},
		{"/admin", "/admin/users"},
		{"/no/such/page", "/404"},
	}
	for _, tt := range tests {
		d := g.Evaluate(context.Background(), tt.path)
		if d.Proceed || d.RedirectTo != tt.want {
			t.Errorf("Evaluate(%q) = %+v, want redirect to %q", tt.path, d, tt.want)
		}
	}
}

// ログイン済みのユーザーが入口画面へ来たらロール別ホームへ返す。
func TestGuard_LoginPageRedirectsToRoleHome(t *testing.T) {
	store := session.NewStore(nil, slog.Default())
	store.SetSession(model.TokenPair{AccessToken: "A", RefreshToken: "R"}, activeStudent())
	g := newTestGuard(t, store, &mockProfileFetcher{})

	d := g.Evaluate(context.Background(), "/login")
	if d.Proceed || d.RedirectTo != "/student/chat" {
		t.Errorf("Evaluate(/login) = %+v, want redirect to /student/chat", d)
	}
}

func TestGuard_UnauthenticatedRedirectsToLogin(t *testing.T) {
	store := session.NewStore(nil, slog.Default())
	g := newTestGuard(t, store, &mockProfileFetcher{})

	d := g.Evaluate(context.Background(), "/student/chat")
	if d.Proceed {
		t.Fatal("expected redirect, got proceed")
	}
	if d.RedirectTo != "/login?redirect=%2Fstudent%2Fchat" {
		t.Errorf("RedirectTo = %q, want login redirect carrying the original path", d.RedirectTo)
	}
}

func TestGuard_RoleMismatchRedirectsToForbidden(t *testing.T) {
	store := session.NewStore(nil, slog.Default())
	store.SetSession(model.TokenPair{AccessToken: "A", RefreshToken: "R"}, activeStudent())
	g := newTestGuard(t, store, &mockProfileFetcher{})

	d := g.Evaluate(context.Background(), "/teacher/knowledge")
	if d.Proceed {
		t.Fatal("expected redirect, got proceed")
	}
	if d.RedirectTo != "/403?from=%2Fteacher%2Fknowledge" {
		t.Errorf("RedirectTo = %q, want forbidden redirect carrying the original path", d.RedirectTo)
	}
}

func TestGuard_MatchingRoleProceeds(t *testing.T) {
	store := session.NewStore(nil, slog.Default())
	store.SetSession(model.TokenPair{AccessToken: "A", RefreshToken: "R"}, activeStudent())
	g := newTestGuard(t, store, &mockProfileFetcher{})

	d := g.Evaluate(context.Background(), "/student/chat")
	if !d.Proceed {
		t.Errorf("Evaluate = %+v, want proceed", d)
	}
}

// プロフィールキャッシュの再利用:
// T+W/2の遷移は取得を起こさず、T+2Wの遷移は再取得する。
func TestGuard_ProfileCacheReuse(t *testing.T) {
	store := session.NewStore(nil, slog.Default())
	store.SetSession(model.TokenPair{AccessToken: "A", RefreshToken: "R"}, activeStudent())
	base := store.ProfileLoadedAt()

	fetcher := &mockProfileFetcher{
		meFn: func(ctx context.Context) (model.Profile, error) {
			return activeStudent(), nil
		},
	}
	g := newTestGuard(t, store, fetcher)

	g.now = func() time.Time { return base.Add(DefaultProfileTTL / 2) }
	if d := g.Evaluate(context.Background(), "/student/chat"); !d.Proceed {
		t.Fatalf("Evaluate at T+W/2 = %+v, want proceed", d)
	}
	if fetcher.meCalls != 0 {
		t.Errorf("meCalls at T+W/2 = %d, want 0 (fresh cache)", fetcher.meCalls)
	}

	g.now = func() time.Time { return base.Add(2 * DefaultProfileTTL) }
	if d := g.Evaluate(context.Background(), "/student/chat"); !d.Proceed {
		t.Fatalf("Evaluate at T+2W = %+v, want proceed", d)
	}
	if fetcher.meCalls != 1 {
		t.Errorf("meCalls at T+2W = %d, want 1 (stale cache refetched)", fetcher.meCalls)
	}
}

// 無効化されたアカウントの検出はセッション破棄とログインへの転送になる。
func TestGuard_DisabledAccountClearsSession(t *testing.T) {
	store := session.NewStore(nil, slog.Default())
	store.SetSession(model.TokenPair{AccessToken: "A", RefreshToken: "R"}, activeStudent())

	fetcher := &mockProfileFetcher{
		meFn: func(ctx context.Context) (model.Profile, error) {
			p := activeStudent()
			p.Status = model.StatusDisabled
			return p, nil
		},
	}
	g := newTestGuard(t, store, fetcher)
	g.now = func() time.Time { return time.Now().Add(2 * DefaultProfileTTL) }

	d := g.Evaluate(context.Background(), "/student/chat")
	if d.Proceed {
		t.Fatal("expected redirect for disabled account")
	}
	if d.RedirectTo != "/login?redirect=%2Fstudent%2Fchat" {
		t.Errorf("RedirectTo = %q, want login redirect", d.RedirectTo)
	}
	if store.IsAuthenticated() {
		t.Error("session must be cleared when the account is disabled")
	}
}

// プロフィール取得の失敗は例外にならず「拒否」へ畳み込まれる。
func TestGuard_FetchFailureDeniesNavigation(t *testing.T) {
	store := session.NewStore(nil, slog.Default())
	store.SetSession(model.TokenPair{AccessToken: "A", RefreshToken: "R"}, activeStudent())

	fetcher := &mockProfileFetcher{
		meFn: func(ctx context.Context) (model.Profile, error) {
			return model.Profile{}, &model.ApiError{Code: 401, ErrorCode: model.ErrCodeTokenInvalid, Message: "expired", Status: 401}
		},
	}
	g := newTestGuard(t, store, fetcher)
	g.now = func() time.Time { return time.Now().Add(2 * DefaultProfileTTL) }

	d := g.Evaluate(context.Background(), "/student/chat")
	if d.Proceed {
		t.Fatal("expected redirect when profile fetch fails")
	}
	if store.IsAuthenticated() {
		t.Error("session must be cleared when profile fetch fails")
	}
}

func TestRoleHome(t *testing.T) {
	tests := []struct {
		role model.Role
		want string
	}{
		{model.RoleStudent, "/student/chat"},
		{model.RoleTeacher, "/teacher/knowledge"},
		{model.RoleAdmin, "/admin/users"},
		{model.Role("UNKNOWN"), "/login"},
	}
	for _, tt := range tests {
		if got := RoleHome(tt.role); got != tt.want {
			t.Errorf("RoleHome(%q) = %q, want %q", tt.role, got, tt.want)
		}
	}
}
