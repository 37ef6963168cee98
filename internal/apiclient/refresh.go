package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/manabu/internal/contract"
	"github.com/hitoshi/manabu/internal/model"
)

// refreshAccessToken は単一飛行のトークンリフレッシュを実行する。
//
// 同時に401を受けた全てのリクエストはsingleflight.Groupを通じて
// 同一の進行中リフレッシュに合流し、ネットワーク上のリフレッシュ呼び出しは
// 常に高々1つに保たれる。結果はトークン文字列と成功フラグで返す:
// リフレッシュトークンが存在しない場合はネットワーク呼び出しなしで
// 「トークンなし」を返し、呼び出しが失敗した場合（リフレッシュトークン自体の
// 失効・タイムアウトを含む）はセッション全体を破棄して「トークンなし」を返す。
// いずれの場合もグループは決着時に必ず空へ戻り、以後の401が新たな
// リフレッシュを起動できる。
func (c *Client) refreshAccessToken(ctx context.Context) (string, bool) {
	v, err, _ := c.refreshing.Do("refresh", func() (any, error) {
		refreshToken := c.session.RefreshToken()
		if refreshToken == "" {
			return "", nil
		}

		pair, err := c.callRefresh(ctx, refreshToken)
		if err != nil {
			// リフレッシュの失敗は例外として伝播させず、
			// 「ログアウト状態」へ縮退させる。
			c.logger.Warn("token refresh failed",
				slog.String("error", err.Error()),
			)
			c.metrics.RecordRefreshFailure()
			c.session.Clear()
			return "", nil
		}

		c.session.SetTokens(pair)
		c.metrics.RecordRefreshSuccess()
		c.logger.Info("token refresh succeeded")
		return pair.AccessToken, nil
	})
	if err != nil {
		return "", false
	}

	token, _ := v.(string)
	return token, token != ""
}

// refreshRequest は/auth/refreshのリクエストボディ。
type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// callRefresh はパイプラインを経由せずに/auth/refreshを呼び出す。
// 進行中リフレッシュのキャンセルはサポートしないため、起動元リクエストの
// キャンセルから切り離したコンテキストを使用する。タイムアウトは
// refreshHTTPクライアント側の設定で保証される。
func (c *Client) callRefresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	body, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to encode refresh request: %w", err)
	}

	target := c.baseURL.JoinPath("/auth/refresh")
	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodPost, target.String(), bytes.NewReader(body))
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.refreshHTTP.Do(req)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to read refresh response: %w", err)
	}

	data, err := contract.Unwrap(resp.StatusCode, respBody)
	if err != nil {
		return model.TokenPair{}, err
	}

	var pair model.TokenPair
	if err := json.Unmarshal(data, &pair); err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to decode refresh payload: %w", err)
	}
	if pair.AccessToken == "" {
		return model.TokenPair{}, fmt.Errorf("refresh response has empty access token")
	}
	return pair, nil
}
