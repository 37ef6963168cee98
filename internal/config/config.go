package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// API
	APIBaseURL     string
	RequestTimeout time.Duration

	// Rate Limit（クライアント側の送信レート、リクエスト/秒）
	RateLimitPerSec float64
	RateLimitBurst  int

	// Session
	StateFile       string
	ProfileCacheTTL time.Duration

	// Download
	DownloadTimeout time.Duration
	DownloadDir     string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.APIBaseURL = os.Getenv("MANABU_API_BASE_URL")
	if cfg.APIBaseURL == "" {
		missing = append(missing, "MANABU_API_BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	if _, err := url.Parse(cfg.APIBaseURL); err != nil {
		return nil, fmt.Errorf("MANABU_API_BASE_URL is not a valid URL: %w", err)
	}

	// Optional fields with defaults
	cfg.RequestTimeout = getEnvDuration("MANABU_REQUEST_TIMEOUT", 20*time.Second)
	cfg.RateLimitPerSec = getEnvFloat("MANABU_RATE_LIMIT_PER_SEC", 0)
	cfg.RateLimitBurst = getEnvInt("MANABU_RATE_LIMIT_BURST", 1)
	cfg.StateFile = getEnvString("MANABU_STATE_FILE", defaultStateFile())
	cfg.ProfileCacheTTL = getEnvDuration("MANABU_PROFILE_CACHE_TTL", 2*time.Minute)
	cfg.DownloadTimeout = getEnvDuration("MANABU_DOWNLOAD_TIMEOUT", 60*time.Second)
	cfg.DownloadDir = getEnvString("MANABU_DOWNLOAD_DIR", "")
	cfg.LogLevel = getEnvString("MANABU_LOG_LEVEL", "info")
	cfg.LogFormat = getEnvString("MANABU_LOG_FORMAT", "json")

	return cfg, nil
}

// defaultStateFile はセッション永続化の既定パスを返す。
// ホームディレクトリが取得できない環境ではカレントディレクトリを使う。
func defaultStateFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".manabu/state.json"
	}
	return filepath.Join(home, ".manabu", "state.json")
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
