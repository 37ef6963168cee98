package guard

import "github.com/hitoshi/manabu/internal/model"

// Route は1つの画面経路の宣言。AuthRequiredがfalseなら公開経路。
// AllowedRolesが空の認証経路は全ロールに開放される。
type Route struct {
	Path         string
	AuthRequired bool
	AllowedRoles []model.Role
	// Aliasが非空のとき、この経路は別経路への単純転送となる。
	Alias string
	// Sectionは画面内タブの識別子。経路判定には使わない。
	Section string
}

const (
	loginPath     = "/login"
	registerPath  = "/register"
	forbiddenPath = "/403"
	notFoundPath  = "/404"
)

// roleHome はログイン済みユーザーのロール別ホーム経路。
var roleHome = map[model.Role]string{
	model.RoleStudent: "/student/chat",
	model.RoleTeacher: "/teacher/knowledge",
	model.RoleAdmin:   "/admin/users",
}

// RoleHome はロールのホーム経路を返す。未知のロールはログイン画面へ落とす。
func RoleHome(role model.Role) string {
	if home, ok := roleHome[role]; ok {
		return home
	}
	return loginPath
}

var defaultRoutes = []Route{
	{Path: "/", Alias: loginPath},
	{Path: loginPath},
	{Path: registerPath},
	{Path: forbiddenPath},
	{Path: notFoundPath},

	{Path: "/student", Alias: "/student/chat"},
	{Path: "/student/chat", AuthRequired: true, AllowedRoles: []model.Role{model.RoleStudent}, Section: "chat"},
	{Path: "/student/exercise", AuthRequired: true, AllowedRoles: []model.Role{model.RoleStudent}, Section: "exercise"},
	{Path: "/student/exercise/records", AuthRequired: true, AllowedRoles: []model.Role{model.RoleStudent}, Section: "records"},
	{Path: "/student/wrong-book", AuthRequired: true, AllowedRoles: []model.Role{model.RoleStudent}, Section: "wrong-book"},
	{Path: "/student/ai-questions", AuthRequired: true, AllowedRoles: []model.Role{model.RoleStudent}, Section: "ai-questions"},
	{Path: "/student/profile", AuthRequired: true, AllowedRoles: []model.Role{model.RoleStudent}, Section: "profile"},

	{Path: "/teacher", Alias: "/teacher/knowledge"},
	{Path: "/teacher/knowledge", AuthRequired: true, AllowedRoles: []model.Role{model.RoleTeacher}, Section: "knowledge"},
	{Path: "/teacher/plans", AuthRequired: true, AllowedRoles: []model.Role{model.RoleTeacher}, Section: "plans"},
	{Path: "/teacher/analytics", AuthRequired: true, AllowedRoles: []model.Role{model.RoleTeacher}, Section: "analytics"},
	{Path: "/teacher/suggestions", AuthRequired: true, AllowedRoles: []model.Role{model.RoleTeacher}, Section: "suggestions"},

	{Path: "/admin", Alias: "/admin/users"},
	{Path: "/admin/users", AuthRequired: true, AllowedRoles: []model.Role{model.RoleAdmin}, Section: "users"},
	{Path: "/admin/resources", AuthRequired: true, AllowedRoles: []model.Role{model.RoleAdmin}, Section: "resources"},
	{Path: "/admin/dashboard", AuthRequired: true, AllowedRoles: []model.Role{model.RoleAdmin}, Section: "dashboard"},
	{Path: "/admin/audits", AuthRequired: true, AllowedRoles: []model.Role{model.RoleAdmin}, Section: "audits"},
}

// DefaultRoutes は既定の経路表のコピーを返す。
func DefaultRoutes() []Route {
	routes := make([]Route, len(defaultRoutes))
	copy(routes, defaultRoutes)
	return routes
}
