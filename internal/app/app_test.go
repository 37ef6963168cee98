package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func setTestEnv(t *testing.T, baseURL string) {
	t.Helper()
	t.Setenv("MANABU_API_BASE_URL", baseURL)
	t.Setenv("MANABU_STATE_FILE", filepath.Join(t.TempDir(), "state.json"))
	t.Setenv("MANABU_LOG_LEVEL", "error")
}

func TestRun_Version(t *testing.T) {
	var buf bytes.Buffer
	if err := Run(&buf, []string{"version"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "manabu ") {
		t.Errorf("version output = %q, want prefix %q", buf.String(), "manabu ")
	}
}

func TestRun_HelpListsCommands(t *testing.T) {
	var buf bytes.Buffer
	if err := Run(&buf, []string{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, cmd := range []string{"login", "logout", "me", "status", "open"} {
		if !strings.Contains(buf.String(), cmd) {
			t.Errorf("usage output does not mention %q", cmd)
		}
	}
}

func TestInit_WiresAllDependencies(t *testing.T) {
	setTestEnv(t, "http://127.0.0.1:9")

	var logBuf bytes.Buffer
	c, err := Init(&logBuf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.Config == nil || c.Store == nil || c.Client == nil {
		t.Fatal("core dependencies are not wired")
	}
	if c.Auth == nil || c.Guard == nil {
		t.Fatal("auth dependencies are not wired")
	}
	if c.Student == nil || c.Teacher == nil || c.Admin == nil {
		t.Fatal("domain services are not wired")
	}
	if c.Downloader == nil || c.Registry == nil {
		t.Fatal("downloader or metrics registry is not wired")
	}
}

func TestInit_MissingBaseURL(t *testing.T) {
	t.Setenv("MANABU_API_BASE_URL", "")

	var logBuf bytes.Buffer
	if _, err := Init(&logBuf); err == nil {
		t.Fatal("expected error for missing base URL, got nil")
	}
}

func TestRun_StatusWithoutSession(t *testing.T) {
	setTestEnv(t, "http://127.0.0.1:9")

	var buf bytes.Buffer
	if err := Run(&buf, []string{"status"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "未ログイン") {
		t.Errorf("status output = %q, want 未ログイン", buf.String())
	}
}

func TestRun_OpenWithoutSessionRedirectsToLogin(t *testing.T) {
	setTestEnv(t, "http://127.0.0.1:9")

	var buf bytes.Buffer
	if err := Run(&buf, []string{"open", "/student/chat"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "リダイレクト: /login?redirect=%2Fstudent%2Fchat"
	if !strings.Contains(buf.String(), want) {
		t.Errorf("open output = %q, want %q", buf.String(), want)
	}
}

func TestRun_LoginAndStatus(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode login body: %v", err)
		}
		if body["username"] != "taro" {
			t.Errorf("username = %q, want taro", body["username"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"code":    200,
			"message": "ok",
			"data": map[string]any{
				"accessToken":  "access-1",
				"refreshToken": "refresh-1",
				"user": map[string]any{
					"id":       "u-1",
					"username": "taro",
					"role":     "STUDENT",
					"status":   "ACTIVE",
				},
			},
		})
	})
	server := httptest.NewServer(r)
	defer server.Close()

	stateFile := filepath.Join(t.TempDir(), "state.json")
	t.Setenv("MANABU_API_BASE_URL", server.URL)
	t.Setenv("MANABU_STATE_FILE", stateFile)
	t.Setenv("MANABU_LOG_LEVEL", "error")

	var buf bytes.Buffer
	if err := Run(&buf, []string{"login", "taro", "secret"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "taro") {
		t.Errorf("login output = %q, want username taro", buf.String())
	}

	// セッションはファイルに保存され、別プロセス相当のRunでも復元される
	buf.Reset()
	if err := Run(&buf, []string{"status"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "taro") {
		t.Errorf("status output = %q, want username taro", buf.String())
	}
}

func TestRun_LoginRequiresArgs(t *testing.T) {
	setTestEnv(t, "http://127.0.0.1:9")

	var buf bytes.Buffer
	if err := Run(&buf, []string{"login", "taro"}); err == nil {
		t.Fatal("expected error for missing password, got nil")
	}
}

func TestRun_LoginFailureShowsMessage(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"code":      401,
			"message":   "bad credentials",
			"errorCode": "AUTH_INVALID_CREDENTIALS",
		})
	})
	server := httptest.NewServer(r)
	defer server.Close()

	setTestEnv(t, server.URL)

	var buf bytes.Buffer
	if err := Run(&buf, []string{"login", "taro", "wrong"}); err == nil {
		t.Fatal("expected error for invalid credentials, got nil")
	}
	if !strings.Contains(buf.String(), "ユーザー名またはパスワード") {
		t.Errorf("login failure output = %q, want invalid-credentials message", buf.String())
	}
}
