package contract

import (
	"encoding/json"
	"reflect"
	"testing"
)

type testItem struct {
	ID string `json:"id"`
}

// TestDecodePage_Canonical は正規形ペイロードに対して恒等変換となることを検証する。
func TestDecodePage_Canonical(t *testing.T) {
	raw := json.RawMessage(`{"content":[{"id":"a"},{"id":"b"}],"page":2,"size":10,"totalElements":42,"totalPages":5}`)

	page, err := DecodePage[testItem](raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Page[testItem]{
		Content:       []testItem{{ID: "a"}, {ID: "b"}},
		Page:          2,
		Size:          10,
		TotalElements: 42,
		TotalPages:    5,
	}
	if !reflect.DeepEqual(page, want) {
		t.Errorf("page = %+v, want %+v", page, want)
	}
}

// TestDecodePage_Idempotent は正規化済みページの再正規化で値が変化しないことを検証する。
func TestDecodePage_Idempotent(t *testing.T) {
	raw := json.RawMessage(`{"content":[{"id":"a"}],"page":1,"size":20,"totalElements":1,"totalPages":1}`)

	first, err := DecodePage[testItem](raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	encoded, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := DecodePage[testItem](encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("second = %+v, want %+v", second, first)
	}
}

// TestDecodePage_DefensiveDefaults は欠落・負値・非数値フィールドが
// 安全なデフォルトに置き換わることを検証する。
func TestDecodePage_DefensiveDefaults(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		wantLen       int
		wantPage      int
		wantSize      int
		wantTotal     int64
		wantTotalPage int
	}{
		{
			name:          "empty object",
			raw:           `{}`,
			wantLen:       0,
			wantPage:      1,
			wantSize:      20,
			wantTotal:     0,
			wantTotalPage: 1,
		},
		{
			name:          "negative total and zero size",
			raw:           `{"content":[{"id":"a"}],"totalElements":-5,"size":0}`,
			wantLen:       1,
			wantPage:      1,
			wantSize:      20,
			wantTotal:     1,
			wantTotalPage: 1,
		},
		{
			name:          "non-numeric fields",
			raw:           `{"content":[],"page":"abc","size":null,"totalElements":"xyz","totalPages":false}`,
			wantLen:       0,
			wantPage:      1,
			wantSize:      20,
			wantTotal:     0,
			wantTotalPage: 1,
		},
		{
			name:          "stringified numbers",
			raw:           `{"content":[{"id":"a"}],"page":"3","size":"5","totalElements":"11"}`,
			wantLen:       1,
			wantPage:      3,
			wantSize:      5,
			wantTotal:     11,
			wantTotalPage: 3, // ceil(11/5)
		},
		{
			name:          "totalPages computed from total and size",
			raw:           `{"content":[],"size":10,"totalElements":25}`,
			wantLen:       0,
			wantPage:      1,
			wantSize:      10,
			wantTotal:     25,
			wantTotalPage: 3,
		},
		{
			name:          "null payload",
			raw:           `null`,
			wantLen:       0,
			wantPage:      1,
			wantSize:      20,
			wantTotal:     0,
			wantTotalPage: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := DecodePage[testItem](json.RawMessage(tt.raw))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(page.Content) != tt.wantLen {
				t.Errorf("len(Content) = %d, want %d", len(page.Content), tt.wantLen)
			}
			if page.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", page.Page, tt.wantPage)
			}
			if page.Size != tt.wantSize {
				t.Errorf("Size = %d, want %d", page.Size, tt.wantSize)
			}
			if page.TotalElements != tt.wantTotal {
				t.Errorf("TotalElements = %d, want %d", page.TotalElements, tt.wantTotal)
			}
			if page.TotalPages != tt.wantTotalPage {
				t.Errorf("TotalPages = %d, want %d", page.TotalPages, tt.wantTotalPage)
			}
		})
	}
}

// TestDecodePage_LegacyRecordsKey は旧コレクションキーrecordsを受け付けることを検証する。
func TestDecodePage_LegacyRecordsKey(t *testing.T) {
	raw := json.RawMessage(`{"records":[{"id":"a"},{"id":"b"}],"page":1,"size":20,"totalElements":2,"totalPages":1}`)

	page, err := DecodePage[testItem](raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Content) != 2 {
		t.Errorf("len(Content) = %d, want 2", len(page.Content))
	}
	if page.Content[0].ID != "a" {
		t.Errorf("Content[0].ID = %q, want a", page.Content[0].ID)
	}
}

// TestDecodePage_InvalidContent はコレクションの型不一致がエラーになることを検証する。
func TestDecodePage_InvalidContent(t *testing.T) {
	raw := json.RawMessage(`{"content":"not an array"}`)

	if _, err := DecodePage[testItem](raw); err == nil {
		t.Error("expected error for non-array content, got nil")
	}
}
