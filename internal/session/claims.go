package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenExpiry は保持中のアクセストークンの有効期限を返す。
// 署名検証は行わない。表示およびログ用途のみであり、
// 認可判断には使用してはならない。
func (s *Store) AccessTokenExpiry() (time.Time, error) {
	token := s.AccessToken()
	if token == "" {
		return time.Time{}, fmt.Errorf("no access token")
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("failed to parse access token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("access token has no exp claim")
	}
	return exp.Time, nil
}
