package transfer

import (
	"context"
	"time"
)

// fetchResult はHTTPステータスコードに基づくダウンロード結果の分類。
type fetchResult int

const (
	// fetchResultOK はダウンロード成功（200）。
	fetchResultOK fetchResult = iota
	// fetchResultRetry は再試行可能なステータス（429/5xx）。
	fetchResultRetry
	// fetchResultStop は再試行しても回復しないステータス。
	fetchResultStop
)

const (
	// maxAttempts は1回のダウンロードで許容する最大試行回数。
	maxAttempts = 3
	// initialBackoff は指数バックオフの初回遅延。
	initialBackoff = 500 * time.Millisecond
	// maxBackoff は指数バックオフの最大遅延。
	maxBackoff = 5 * time.Second
)

// classifyStatus はHTTPステータスコードをダウンロード結果に分類する。
// 429と5xxは一時的な失敗として再試行し、4xxは即座に打ち切る。
func classifyStatus(statusCode int) fetchResult {
	switch {
	case statusCode == 200:
		return fetchResultOK
	case statusCode == 429:
		return fetchResultRetry
	case statusCode >= 500:
		return fetchResultRetry
	default:
		return fetchResultStop
	}
}

// calculateBackoff は試行回数に基づいて指数バックオフ遅延を計算する。
// 初回500ms、2倍ずつ増加、最大5秒。attemptは0始まり。
func calculateBackoff(attempt int) time.Duration {
	delay := initialBackoff
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay > maxBackoff {
			return maxBackoff
		}
	}
	return delay
}

// waitBackoff はバックオフ遅延の間待機する。コンテキストの
// キャンセルで即座に中断する。
func waitBackoff(ctx context.Context, attempt int) error {
	timer := time.NewTimer(calculateBackoff(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
