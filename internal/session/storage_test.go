package session

import (
	"os"
	"path/filepath"
	"testing"
)

// TestFileStorage_RoundTrip はファイルへの保存・読み出し・削除を検証する。
func TestFileStorage_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.json")
	storage := NewFileStorage(path)

	if _, ok := storage.Get("token"); ok {
		t.Error("expected miss on empty storage")
	}

	if err := storage.Set("token", "A"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, ok := storage.Get("token"); !ok || v != "A" {
		t.Errorf("Get = %q, %v, want A, true", v, ok)
	}

	// 別インスタンスでも読めること
	reopened := NewFileStorage(path)
	if v, ok := reopened.Get("token"); !ok || v != "A" {
		t.Errorf("reopened Get = %q, %v, want A, true", v, ok)
	}

	if err := storage.Delete("token"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := storage.Get("token"); ok {
		t.Error("expected miss after Delete")
	}
}

// TestFileStorage_FileMode はトークンファイルが所有者のみ読み書き可能で
// あることを検証する。
func TestFileStorage_FileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	storage := NewFileStorage(path)

	if err := storage.Set("token", "A"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		t.Errorf("file mode = %o, want 600", mode)
	}
}

// TestFileStorage_DeleteMissingKey は存在しないキーの削除が無害であることを検証する。
func TestFileStorage_DeleteMissingKey(t *testing.T) {
	storage := NewFileStorage(filepath.Join(t.TempDir(), "session.json"))
	if err := storage.Delete("nope"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
