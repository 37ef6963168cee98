package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup は構造化ログ出力のslog.Loggerを生成して返す。
// levelはdebug/info/warn/error、formatはjsonまたはtext。
// 不正な値はそれぞれinfo/jsonとして扱う。
func Setup(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// SetupDefault は構造化ログ出力をグローバルロガーとして設定する。
// writerがnilの場合はos.Stderrに出力する。コマンドの実行結果は
// 標準出力に書くため、ログは標準エラーに分離する。
func SetupDefault(w io.Writer, level, format string) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := Setup(w, level, format)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
