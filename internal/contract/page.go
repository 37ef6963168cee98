package contract

import (
	"encoding/json"
	"fmt"
)

// デフォルトのページサイズ。sizeが欠落・不正な場合に使用する。
const defaultPageSize = 20

// Page はページネーションされたコレクションの正規形。
// 全ての数値フィールドは正規化後、下記の範囲に収まることが保証される:
// Page >= 1、Size >= 1、TotalElements >= 0、TotalPages >= 1。
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// rawPage はサーバーが返すページペイロードの防御的デコード用。
// 各フィールドは欠落・型不一致がありうるためRawMessageで受ける。
type rawPage struct {
	Content       json.RawMessage `json:"content"`
	Records       json.RawMessage `json:"records"` // 旧APIバージョンのコレクションキー
	Page          json.RawMessage `json:"page"`
	Size          json.RawMessage `json:"size"`
	TotalElements json.RawMessage `json:"totalElements"`
	TotalPages    json.RawMessage `json:"totalPages"`
}

// DecodePage はページ形ペイロードを正規化してPage[T]に変換する。
// コレクションキーはcontentと旧名recordsの両方を受け付け、欠落時は空スライスとする。
// 数値フィールドは欠落・負値・非数値を安全なデフォルトで置き換える:
// page→1、size→20、totalElements→要素数、totalPages→ceil(totalElements/size)（1以上）。
// 既に正規形のペイロードに対しては恒等変換となる。
func DecodePage[T any](raw json.RawMessage) (Page[T], error) {
	var rp rawPage
	if len(raw) > 0 {
		// ペイロード全体が非オブジェクトの場合も空ページとして扱うため、
		// デコード失敗はここでは無視する。
		_ = json.Unmarshal(raw, &rp)
	}

	collection := rp.Content
	if len(collection) == 0 || string(collection) == "null" {
		collection = rp.Records
	}

	var content []T
	if len(collection) > 0 && string(collection) != "null" {
		if err := json.Unmarshal(collection, &content); err != nil {
			return Page[T]{}, fmt.Errorf("failed to decode page content: %w", err)
		}
	}
	if content == nil {
		content = []T{}
	}

	page := asPositiveInt(rp.Page, 1)
	size := asPositiveInt(rp.Size, defaultPageSize)

	total := asNonNegativeInt64(rp.TotalElements, int64(len(content)))

	computedPages := int((total + int64(size) - 1) / int64(size))
	if computedPages < 1 {
		computedPages = 1
	}
	totalPages := asPositiveInt(rp.TotalPages, computedPages)

	return Page[T]{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	}, nil
}

// asPositiveInt はRawMessageを1以上のintに解釈する。
// 欠落・非数値・0以下の場合はfallbackを返す。
func asPositiveInt(raw json.RawMessage, fallback int) int {
	n, ok := asNumber(raw)
	if !ok || n <= 0 {
		return fallback
	}
	return int(n)
}

// asNonNegativeInt64 はRawMessageを0以上のint64に解釈する。
// 欠落・非数値・負値の場合はfallbackを返す。
func asNonNegativeInt64(raw json.RawMessage, fallback int64) int64 {
	n, ok := asNumber(raw)
	if !ok || n < 0 {
		return fallback
	}
	return int64(n)
}

// asNumber はJSON数値または数値文字列をfloat64に解釈する。
func asNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num, true
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil && str != "" {
		var parsed float64
		if err := json.Unmarshal([]byte(str), &parsed); err == nil {
			return parsed, true
		}
	}

	return 0, false
}
