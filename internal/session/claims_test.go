package session

import (
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/manabu/internal/model"
)

// TestAccessTokenExpiry は署名検証なしでexpクレームが読めることを検証する。
func TestAccessTokenExpiry(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store := NewStore(nil, slog.Default())
	store.SetTokens(model.TokenPair{AccessToken: signed, RefreshToken: "R"})

	got, err := store.AccessTokenExpiry()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(exp) {
		t.Errorf("expiry = %v, want %v", got, exp)
	}
}

// TestAccessTokenExpiry_Errors はトークン欠落・不正形式のエラーを検証する。
func TestAccessTokenExpiry_Errors(t *testing.T) {
	store := NewStore(nil, slog.Default())
	if _, err := store.AccessTokenExpiry(); err == nil {
		t.Error("expected error for empty token")
	}

	store.SetTokens(model.TokenPair{AccessToken: "not-a-jwt", RefreshToken: "R"})
	if _, err := store.AccessTokenExpiry(); err == nil {
		t.Error("expected error for malformed token")
	}
}
