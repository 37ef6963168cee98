// Package apiclient はEduNexus APIへの認証付きリクエストパイプラインを提供する。
//
// 全ての送信リクエストに対して認証情報と相関メタデータを付与し、
// 401応答を検出すると単一飛行のトークンリフレッシュを実行して
// 元のリクエストを1回だけ再送する。レスポンスのエンベロープ正規化は
// contractパッケージに委譲する。
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/hitoshi/manabu/internal/contract"
	"github.com/hitoshi/manabu/internal/metrics"
	"github.com/hitoshi/manabu/internal/session"
)

const (
	headerRequestID      = "X-Request-Id"
	headerIdempotencyKey = "Idempotency-Key"
	headerTraceID        = "X-Trace-Id"

	// DefaultTimeout は全ネットワーク呼び出し（リフレッシュを含む）に適用される既定値。
	DefaultTimeout = 20 * time.Second

	// maxResponseSize はレスポンスボディの読み込み上限。
	maxResponseSize = 10 << 20
)

// authEndpointPattern はリフレッシュ・再送の対象外となる認証エンドポイント。
// これらへの401は伝播し、リフレッシュの再帰を防ぐ。
var authEndpointPattern = regexp.MustCompile(`^/auth/(login|register|refresh)$`)

// Config はClientの設定。
type Config struct {
	BaseURL   string           // APIのベースURL（必須）
	Session   *session.Store   // セッションストア（必須）
	Logger    *slog.Logger     // 省略時はslog.Default()
	Metrics   metrics.Recorder // 省略時は収集しない
	Timeout   time.Duration    // 省略時はDefaultTimeout
	RateLimit rate.Limit       // 送信レート上限（req/sec）。0以下で無制限
	RateBurst int              // レート上限のバーストサイズ
}

// Client は認証付きリクエストパイプライン。
// セッションストアへの参照を保持し、暗黙のグローバル参照は行わない。
type Client struct {
	baseURL *url.URL
	http    *http.Client
	// refreshHTTPはパイプラインを経由しない素のクライアント。
	// リフレッシュ呼び出しが自分自身の401処理を再帰的に起動しないようにする。
	refreshHTTP *http.Client
	session     *session.Store
	logger      *slog.Logger
	metrics     metrics.Recorder
	limiter     *rate.Limiter
	refreshing  singleflight.Group
}

// Request は1回のAPI呼び出しを表す。
// Headerに呼び出し元が相関ヘッダーを指定した場合、パイプラインは上書きしない。
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header
}

// Response はトランスポート層のレスポンスをそのまま保持する。
// エンベロープの解釈はcontract.Unwrapで行う。
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// New はClientを生成する。
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if cfg.Session == nil {
		return nil, fmt.Errorf("session store is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = noopRecorder{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(cfg.RateLimit, burst)
	}

	return &Client{
		baseURL:     base,
		http:        &http.Client{Timeout: timeout},
		refreshHTTP: &http.Client{Timeout: timeout},
		session:     cfg.Session,
		logger:      logger,
		metrics:     recorder,
		limiter:     limiter,
	}, nil
}

// Do はリクエストを送信し、トランスポート層のレスポンスを返す。
//
// 送信前処理: アクセストークンが存在すればBearerヘッダーを付与し、
// X-Request-Idを（未指定なら）生成する。変更系メソッドには
// Idempotency-Keyを（未指定なら）生成する。再送時には同一の
// 相関ヘッダーを再利用するため、サーバー側で重複排除が可能になる。
//
// 401応答の処理: 認証エンドポイント自身への401、および再送後の401は
// そのまま伝播する（リクエストあたり再送は厳密に1回）。それ以外は
// 単一飛行リフレッシュを起動し、新しいトークンが得られた場合のみ
// 元のリクエストを再送する。伝播する401は常にセッションを破棄する。
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	bodyBytes, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	header := cloneHeader(req.Header)
	if header.Get(headerRequestID) == "" {
		header.Set(headerRequestID, uuid.New().String())
	}
	if isMutating(req.Method) && header.Get(headerIdempotencyKey) == "" {
		header.Set(headerIdempotencyKey, uuid.New().String())
	}

	resp, err := c.attempt(ctx, req.Method, req.Path, req.Query, bodyBytes, header)
	if err != nil {
		return nil, err
	}

	if resp.Status == http.StatusUnauthorized && !isAuthEndpoint(req.Path) {
		if token, ok := c.refreshAccessToken(ctx); ok && token != "" {
			c.metrics.RecordReplay()
			resp, err = c.attempt(ctx, req.Method, req.Path, req.Query, bodyBytes, header)
			if err != nil {
				return nil, err
			}
		}
	}

	// ここに到達した401は終端であり、セッションを完全に破棄する。
	// （リフレッシュ失敗時はリフレッシュプロトコル側で既に破棄済み。）
	if resp.Status == http.StatusUnauthorized {
		c.session.Clear()
	}

	return resp, nil
}

// JSON はリクエストを送信し、エンベロープを正規化してdataペイロードを返す。
func (c *Client) JSON(ctx context.Context, req Request) (json.RawMessage, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return contract.Unwrap(resp.Status, resp.Body)
}

// Get はGETリクエストを送信し、dataペイロードをoutにデコードする。
// outがnilの場合はペイロードを破棄する。
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.call(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post はPOSTリクエストを送信し、dataペイロードをoutにデコードする。
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put はPUTリクエストを送信し、dataペイロードをoutにデコードする。
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Patch はPATCHリクエストを送信し、dataペイロードをoutにデコードする。
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, Request{Method: http.MethodPatch, Path: path, Body: body}, out)
}

// Delete はDELETEリクエストを送信し、dataペイロードをoutにデコードする。
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.call(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}

// BaseURL は設定されたAPIベースURLを返す。
func (c *Client) BaseURL() *url.URL {
	copied := *c.baseURL
	return &copied
}

func (c *Client) call(ctx context.Context, req Request, out any) error {
	data, err := c.JSON(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response payload: %w", err)
	}
	return nil
}

// attempt は1回の送信を実行し、構造化ログとメトリクスを記録する。
func (c *Client) attempt(ctx context.Context, method, path string, query url.Values, body []byte, header http.Header) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	httpReq, err := c.newHTTPRequest(ctx, method, path, query, body, header)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Error("api request failed",
			slog.String("method", method),
			slog.String("route", path),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	duration := time.Since(start)
	c.metrics.RecordRequest(method, httpResp.StatusCode, duration)

	traceID := contract.PeekTraceID(respBody)
	if traceID == "" {
		traceID = httpResp.Header.Get(headerTraceID)
	}

	level := slog.LevelInfo
	if httpResp.StatusCode >= 500 {
		level = slog.LevelError
	} else if httpResp.StatusCode >= 400 {
		level = slog.LevelWarn
	}
	c.logger.Log(ctx, level, "api_request",
		slog.String("route", path),
		slog.String("method", method),
		slog.Int("status", httpResp.StatusCode),
		slog.Float64("latency_ms", float64(duration.Nanoseconds())/float64(time.Millisecond)),
		slog.String("trace_id", traceID),
		slog.String("request_id", header.Get(headerRequestID)),
	)

	return &Response{
		Status: httpResp.StatusCode,
		Header: httpResp.Header,
		Body:   respBody,
	}, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, method, path string, query url.Values, body []byte, header http.Header) (*http.Request, error) {
	target := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	for key, values := range header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	// トークンは試行ごとにストアから読み直す。再送時にはリフレッシュ後の
	// 新しいトークンが付与される。
	if token := c.session.AccessToken(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	return httpReq, nil
}

// isAuthEndpoint はリフレッシュ・再送の対象外エンドポイントかを判定する。
func isAuthEndpoint(path string) bool {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return authEndpointPattern.MatchString(path)
}

// isMutating はIdempotency-Keyを付与すべきメソッドかを判定する。
func isMutating(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// encodeBody はボディをJSONに符号化する。[]byteはそのまま送信され、
// その場合の Content-Type は呼び出し側がヘッダーで指定する。
func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	if raw, ok := body.([]byte); ok {
		return raw, nil
	}
	if raw, ok := body.(json.RawMessage); ok {
		return raw, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return data, nil
}

func cloneHeader(header http.Header) http.Header {
	cloned := http.Header{}
	for key, values := range header {
		for _, v := range values {
			cloned.Add(key, v)
		}
	}
	return cloned
}

// noopRecorder はメトリクス未設定時のRecorder実装。
type noopRecorder struct{}

func (noopRecorder) RecordRequest(string, int, time.Duration) {}
func (noopRecorder) RecordReplay()                            {}
func (noopRecorder) RecordRefreshSuccess()                    {}
func (noopRecorder) RecordRefreshFailure()                    {}
