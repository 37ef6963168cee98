package message

import (
	"errors"
	"testing"

	"github.com/hitoshi/manabu/internal/model"
)

// TestToMessage_Resolution は文言の解決順序を検証する。
// 構造化エラーコード → HTTPステータス → サーバーメッセージ → フォールバック。
func TestToMessage_Resolution(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "error code table wins",
			err:  &model.ApiError{Code: 401, ErrorCode: model.ErrCodeTokenExpired, Message: "raw", Status: 401},
			want: errorCodeMessages[model.ErrCodeTokenExpired],
		},
		{
			name: "unknown error code falls to status table",
			err:  &model.ApiError{Code: 403, ErrorCode: "SOMETHING_NEW", Message: "raw", Status: 403},
			want: httpStatusMessages[403],
		},
		{
			name: "unknown status falls to raw message",
			err:  &model.ApiError{Code: 418, Message: "teapot", Status: 418},
			want: "teapot",
		},
		{
			name: "empty everything falls to fallback",
			err:  &model.ApiError{Code: 418, Status: 418},
			want: "fb",
		},
		{
			name: "malformed envelope uses status table",
			err:  &model.MalformedEnvelopeError{Status: 502, Reason: "html body"},
			want: httpStatusMessages[502],
		},
		{
			name: "plain error passes through",
			err:  errors.New("dial tcp: timeout"),
			want: "dial tcp: timeout",
		},
		{
			name: "nil error returns fallback",
			err:  nil,
			want: "fb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToMessage(tt.err, "fb"); got != tt.want {
				t.Errorf("ToMessage = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestToMessage_DefaultFallback はfallback未指定時に既定文言が使われることを検証する。
func TestToMessage_DefaultFallback(t *testing.T) {
	if got := ToMessage(nil, ""); got != DefaultFallback {
		t.Errorf("ToMessage = %q, want %q", got, DefaultFallback)
	}
}
