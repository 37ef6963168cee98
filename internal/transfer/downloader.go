// Package transfer はサーバーが発行する絶対URLからのファイル取得を提供する。
// 教案のエクスポート、管理者向け教材リソース、共有リンクなど、
// エンベロープAPIの外側で配布されるコンテンツのダウンロードを扱う。
package transfer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hitoshi/manabu/internal/security"
)

const (
	// DefaultTimeout はダウンロード1回あたりの既定のタイムアウト。
	DefaultTimeout = 60 * time.Second
	// maxDownloadSize は受信を許容する最大バイト数。
	maxDownloadSize = 50 << 20
)

// Downloader は検証済みURLからのダウンロードを実行する。
// URLはレスポンスデータに含まれて届くため、接続前にDownloadGuardServiceで
// 検証し、接続時にもsafeurlのDialer検証でブロックする。
type Downloader struct {
	guard  security.DownloadGuardService
	client *http.Client
	logger *slog.Logger
}

// NewDownloader はDownloaderを生成する。guardがnilの場合は
// 信頼ホストなしの既定のガードを使用する。
func NewDownloader(guard security.DownloadGuardService, logger *slog.Logger, timeout time.Duration) *Downloader {
	if guard == nil {
		guard = security.NewDownloadGuard()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Downloader{
		guard:  guard,
		client: guard.NewSafeClient(timeout),
		logger: logger,
	}
}

// Fetch はURLの内容を取得して返す。最大maxDownloadSizeまで読み取る。
// 429と5xxは指数バックオフを挟んで最大maxAttempts回まで再試行する。
func (d *Downloader) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := d.guard.ValidateURL(rawURL); err != nil {
		return nil, fmt.Errorf("unsafe download URL: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if err := waitBackoff(ctx, attempt-1); err != nil {
				return nil, err
			}
			d.logger.Info("retrying download",
				slog.String("url", rawURL),
				slog.Int("attempt", attempt+1),
			)
		}

		body, result, err := d.fetchOnce(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if result == fetchResultStop {
			return nil, err
		}
	}
	return nil, lastErr
}

// fetchOnce は1回のダウンロード試行を行う。失敗時は結果の分類を返し、
// 呼び出し側が再試行可否を判断する。トランスポートエラーは再試行可能として扱う。
func (d *Downloader) fetchOnce(ctx context.Context, rawURL string) ([]byte, fetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fetchResultStop, fmt.Errorf("failed to build download request: %w", err)
	}

	start := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Error("download failed",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		return nil, fetchResultRetry, fmt.Errorf("download from %s failed: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if result := classifyStatus(resp.StatusCode); result != fetchResultOK {
		return nil, result, fmt.Errorf("download from %s returned status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize))
	if err != nil {
		return nil, fetchResultRetry, fmt.Errorf("failed to read download body: %w", err)
	}

	d.logger.Info("download completed",
		slog.String("url", rawURL),
		slog.Int("bytes", len(body)),
		slog.Float64("latency_ms", float64(time.Since(start).Nanoseconds())/float64(time.Millisecond)),
	)
	return body, fetchResultOK, nil
}

// SaveTo はURLの内容を取得してローカルファイルへ書き込む。
// 親ディレクトリが存在しない場合は作成する。
func (d *Downloader) SaveTo(ctx context.Context, rawURL, path string) error {
	body, err := d.Fetch(ctx, rawURL)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create download directory: %w", err)
		}
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("failed to write downloaded file: %w", err)
	}
	return nil
}
