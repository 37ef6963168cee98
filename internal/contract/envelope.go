// Package contract はEduNexus APIのワイヤー形式を正規形へ変換する純粋関数を提供する。
//
// サーバーのレスポンスは全て共通エンベロープ
// { code, message, data, traceId?, errorCode?, timestamp } に包まれている。
// codeは数値または数値文字列で、400未満が成功を示す。
// 本パッケージは副作用を持たず、入力に対する純粋関数のみで構成される。
package contract

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"

	"github.com/hitoshi/manabu/internal/model"
)

// genericFailureMessage はサーバーがメッセージを返さなかった場合の汎用文言。
const genericFailureMessage = "APIの呼び出しに失敗しました。"

// Envelope はワイヤーレベルのレスポンスエンベロープ。
// Codeはサーバー実装の揺れ（数値/数値文字列）を吸収するためRawMessageで保持する。
type Envelope struct {
	Code      json.RawMessage `json:"code"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	ErrorCode string          `json:"errorCode,omitempty"`
	TraceID   string          `json:"traceId,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

// Unwrap はデコード済みレスポンスボディからペイロードを取り出す。
// statusにはトランスポート層のHTTPステータスを渡す。
//
//   - ボディがJSONオブジェクトでない、またはcodeが数値/数値文字列でない場合は
//     MalformedEnvelopeErrorを返す。
//   - codeが400以上の場合はApiErrorを返す。メッセージが空の場合は汎用文言、
//     traceIdは存在する場合のみ引き継がれる。
//   - それ以外の場合はdataメンバーをそのまま返す（JSON nullのこともある）。
func Unwrap(status int, body []byte) (json.RawMessage, error) {
	if !looksLikeObject(body) {
		return nil, &model.MalformedEnvelopeError{Status: status, Reason: "response body is not a JSON object"}
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &model.MalformedEnvelopeError{Status: status, Reason: "undecodable response body"}
	}

	code, ok := parseCode(env.Code)
	if !ok {
		return nil, &model.MalformedEnvelopeError{Status: status, Reason: "missing or non-numeric code"}
	}

	if code >= 400 {
		message := env.Message
		if message == "" {
			message = genericFailureMessage
		}
		return nil, &model.ApiError{
			Code:      code,
			ErrorCode: env.ErrorCode,
			Message:   message,
			Status:    status,
			TraceID:   env.TraceID,
		}
	}

	return env.Data, nil
}

// PeekTraceID はエンベロープからtraceIdのみを取り出す。
// ボディが解釈できない場合は空文字列を返す。ログ用途のみ。
func PeekTraceID(body []byte) string {
	var env struct {
		TraceID string `json:"traceId"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.TraceID
}

// looksLikeObject はボディがJSONオブジェクトとして始まるかを判定する。
func looksLikeObject(body []byte) bool {
	trimmed := strings.TrimLeftFunc(string(body), unicode.IsSpace)
	return strings.HasPrefix(trimmed, "{")
}

// parseCode はcodeフィールドを数値に解釈する。
// JSON数値と数値文字列（"200"等）の両方を受け付ける。
func parseCode(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return int(num), true
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		n, err := strconv.Atoi(strings.TrimSpace(str))
		if err != nil {
			return 0, false
		}
		return n, true
	}

	return 0, false
}
