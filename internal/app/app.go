package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/manabu/internal/admin"
	"github.com/hitoshi/manabu/internal/apiclient"
	"github.com/hitoshi/manabu/internal/auth"
	"github.com/hitoshi/manabu/internal/config"
	"github.com/hitoshi/manabu/internal/guard"
	"github.com/hitoshi/manabu/internal/logger"
	"github.com/hitoshi/manabu/internal/message"
	"github.com/hitoshi/manabu/internal/metrics"
	"github.com/hitoshi/manabu/internal/security"
	"github.com/hitoshi/manabu/internal/session"
	"github.com/hitoshi/manabu/internal/student"
	"github.com/hitoshi/manabu/internal/teacher"
	"github.com/hitoshi/manabu/internal/transfer"
)

// Version はビルド時に -ldflags で上書きされる。
var Version = "dev"

const usage = `使い方: manabu <command> [args]

commands:
  login <username> <password>  ログインしてセッションを保存する
  logout                       サーバー側セッションを無効化し、ローカルセッションを破棄する
  me                           現在のユーザーのプロフィールを表示する
  status                       セッション状態とトークン有効期限を表示する
  open <path>                  指定経路への遷移可否を判定して表示する
  version                      バージョンを表示する
  help                         この使い方を表示する
`

// Container はワイヤリング済みの依存関係を保持する。
// CLIコマンドとテストの双方がここから各サービスへ到達する。
type Container struct {
	Config     *config.Config
	Logger     *slog.Logger
	Store      *session.Store
	Client     *apiclient.Client
	Auth       *auth.Service
	Guard      *guard.Guard
	Student    *student.Service
	Teacher    *teacher.Service
	Admin      *admin.Service
	Downloader *transfer.Downloader
	Registry   *prometheus.Registry
}

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、構造化ログをセットアップし、
// 全依存関係をワイヤリングしたContainerを返す。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*Container, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, "", "")

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定に従ってログを再構成する
	log := logger.SetupDefault(w, cfg.LogLevel, cfg.LogFormat)

	// 4. セッションストアの復元
	store := session.NewStore(session.NewFileStorage(cfg.StateFile), log)
	store.Load()

	// 5. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 6. APIクライアントの初期化
	client, err := apiclient.New(apiclient.Config{
		BaseURL:   cfg.APIBaseURL,
		Session:   store,
		Logger:    log,
		Metrics:   collector,
		Timeout:   cfg.RequestTimeout,
		RateLimit: rate.Limit(cfg.RateLimitPerSec),
		RateBurst: cfg.RateLimitBurst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build API client: %w", err)
	}

	// 7. ドメインサービスのワイヤリング
	authService := auth.NewService(client, store, log)
	navGuard := guard.New(store, authService, log, nil, cfg.ProfileCacheTTL)
	studentService := student.NewService(client, security.NewReplySanitizer(), log)
	teacherService := teacher.NewService(client, log)
	adminService := admin.NewService(client, log)

	// ダウンロードガードはAPIホストを信頼済みホストとして許可する
	apiURL, err := url.Parse(cfg.APIBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	downloader := transfer.NewDownloader(
		security.NewDownloadGuard(apiURL.Hostname()),
		log,
		cfg.DownloadTimeout,
	)

	return &Container{
		Config:     cfg,
		Logger:     log,
		Store:      store,
		Client:     client,
		Auth:       authService,
		Guard:      navGuard,
		Student:    studentService,
		Teacher:    teacherService,
		Admin:      adminService,
		Downloader: downloader,
		Registry:   registry,
	}, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、結果をwへ出力する。
// ログはstderrへ出力される。argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd, rest := ParseCommand(args)

	// version / help は軽量サブコマンドのため、フル初期化をスキップする
	switch cmd {
	case CommandVersion:
		fmt.Fprintf(w, "manabu %s\n", Version)
		return nil
	case CommandHelp:
		fmt.Fprint(w, usage)
		return nil
	}

	c, err := Init(nil)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting command",
		slog.String("command", string(cmd)),
		slog.String("base_url", c.Config.APIBaseURL),
	)

	switch cmd {
	case CommandLogin:
		return runLogin(ctx, c, w, rest)
	case CommandLogout:
		return runLogout(ctx, c, w)
	case CommandMe:
		return runMe(ctx, c, w)
	case CommandStatus:
		return runStatus(c, w)
	case CommandOpen:
		return runOpen(ctx, c, w, rest)
	default:
		fmt.Fprint(w, usage)
		return nil
	}
}

// runLogin は資格情報でログインし、セッションをローカルに保存する。
func runLogin(ctx context.Context, c *Container, w io.Writer, args []string) error {
	if len(args) < 2 {
		fmt.Fprint(w, usage)
		return fmt.Errorf("login requires <username> <password>")
	}

	profile, err := c.Auth.Login(ctx, args[0], args[1])
	if err != nil {
		fmt.Fprintln(w, message.ToMessage(err, "ログインに失敗しました。"))
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Fprintf(w, "ログインしました: %s (%s)\n", profile.Username, profile.Role)
	return nil
}

// runLogout はローカルセッションを破棄する。
// サーバー側の無効化に失敗してもローカルの破棄は必ず行われる。
func runLogout(ctx context.Context, c *Container, w io.Writer) error {
	c.Auth.Logout(ctx)
	fmt.Fprintln(w, "ログアウトしました。")
	return nil
}

// runMe はサーバーから最新のプロフィールを取得して表示する。
func runMe(ctx context.Context, c *Container, w io.Writer) error {
	profile, err := c.Auth.Me(ctx)
	if err != nil {
		fmt.Fprintln(w, message.ToMessage(err, "プロフィールの取得に失敗しました。"))
		return fmt.Errorf("failed to fetch profile: %w", err)
	}
	c.Store.SetUser(profile)

	encoded, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	fmt.Fprintln(w, string(encoded))
	return nil
}

// runStatus はローカルセッションの状態を表示する。サーバーへは問い合わせない。
func runStatus(c *Container, w io.Writer) error {
	if !c.Store.IsAuthenticated() {
		fmt.Fprintln(w, "未ログイン")
		return nil
	}

	if u := c.Store.User(); u != nil {
		fmt.Fprintf(w, "ユーザー: %s (%s)\n", u.Username, u.Role)
	} else {
		fmt.Fprintln(w, "ユーザー: 未取得")
	}

	expiry, err := c.Store.AccessTokenExpiry()
	if err != nil {
		fmt.Fprintln(w, "トークン有効期限: 不明")
		return nil
	}
	fmt.Fprintf(w, "トークン有効期限: %s\n", expiry.Format(time.RFC3339))
	if time.Now().After(expiry) {
		fmt.Fprintln(w, "アクセストークンは期限切れです。次回のAPI呼び出しで自動更新されます。")
	}
	return nil
}

// runOpen は指定経路への遷移をガードで判定し、結果を表示する。
func runOpen(ctx context.Context, c *Container, w io.Writer, args []string) error {
	if len(args) < 1 {
		fmt.Fprint(w, usage)
		return fmt.Errorf("open requires <path>")
	}

	decision := c.Guard.Evaluate(ctx, args[0])
	if decision.Proceed {
		fmt.Fprintf(w, "許可: %s\n", args[0])
		return nil
	}
	fmt.Fprintf(w, "リダイレクト: %s\n", decision.RedirectTo)
	return nil
}
