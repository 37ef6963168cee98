// Package guard は画面遷移ごとの認可判定を提供する。
// 経路の宣言（公開・要認証・許可ロール）とセッション状態から、
// 通過・ログインへの転送・403への転送のいずれかを決める。
package guard

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/hitoshi/manabu/internal/message"
	"github.com/hitoshi/manabu/internal/model"
	"github.com/hitoshi/manabu/internal/session"
)

// DefaultProfileTTL はキャッシュ済みプロフィールを新鮮とみなす既定の期間。
const DefaultProfileTTL = 2 * time.Minute

// ProfileFetcher は現在のユーザーのプロフィールを取得する。
type ProfileFetcher interface {
	Me(ctx context.Context) (model.Profile, error)
}

// Decision は1回の遷移判定の結果。Proceedがfalseのときは
// RedirectToへ転送する（クエリを含む完全なパス）。
type Decision struct {
	Proceed    bool
	RedirectTo string
}

func proceed() Decision {
	return Decision{Proceed: true}
}

func redirect(target string) Decision {
	return Decision{RedirectTo: target}
}

// Guard はセッションストアと経路表を参照して遷移可否を判定する。
type Guard struct {
	store    *session.Store
	profiles ProfileFetcher
	logger   *slog.Logger
	routes   map[string]Route
	ttl      time.Duration
	now      func() time.Time
}

// New はGuardを生成する。routesがnilなら既定の経路表を使う。
func New(store *session.Store, profiles ProfileFetcher, logger *slog.Logger, routes []Route, ttl time.Duration) *Guard {
	if routes == nil {
		routes = DefaultRoutes()
	}
	if ttl <= 0 {
		ttl = DefaultProfileTTL
	}
	table := make(map[string]Route, len(routes))
	for _, r := range routes {
		table[r.Path] = r
	}
	return &Guard{
		store:    store,
		profiles: profiles,
		logger:   logger,
		routes:   table,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Evaluate は目的の経路への遷移1回を判定する。
// プロフィール取得の失敗は例外として伝播せず、常に「拒否」に畳み込む。
func (g *Guard) Evaluate(ctx context.Context, path string) Decision {
	route, ok := g.routes[path]
	if !ok {
		return redirect(notFoundPath)
	}
	if route.Alias != "" {
		return redirect(route.Alias)
	}

	if !route.AuthRequired {
		// ログイン済みユーザーが入口画面へ来たらロール別ホームへ返す
		if (path == loginPath || path == registerPath) && g.store.AccessToken() != "" {
			if g.ensureUserLoaded(ctx) {
				if user := g.store.User(); user != nil && user.Role.Valid() {
					return redirect(RoleHome(user.Role))
				}
			}
		}
		return proceed()
	}

	if !g.ensureUserLoaded(ctx) {
		return redirect(loginPath + "?redirect=" + url.QueryEscape(path))
	}

	if len(route.AllowedRoles) > 0 {
		user := g.store.User()
		if user == nil || !containsRole(route.AllowedRoles, user.Role) {
			return redirect(forbiddenPath + "?from=" + url.QueryEscape(path))
		}
	}

	return proceed()
}

// ensureUserLoaded はプロフィールキャッシュが新鮮であることを保証する。
// 失効済みトークンや無効化アカウントを検出した場合はセッションを破棄する。
func (g *Guard) ensureUserLoaded(ctx context.Context) bool {
	if g.store.AccessToken() == "" {
		return false
	}

	if g.store.User() != nil && g.now().Sub(g.store.ProfileLoadedAt()) < g.ttl {
		return true
	}

	profile, err := g.profiles.Me(ctx)
	if err != nil {
		g.logger.Warn("profile fetch failed during navigation",
			slog.String("error", message.ToMessage(err, "ログイン状態が無効になりました。")),
		)
		g.store.Clear()
		return false
	}

	g.store.SetUser(profile)
	if profile.Status == model.StatusDisabled {
		g.logger.Warn("account is disabled",
			slog.String("user_id", profile.ID),
		)
		g.store.Clear()
		return false
	}
	return true
}

func containsRole(roles []model.Role, role model.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
