// Package session はアクセストークン、リフレッシュトークン、キャッシュ済み
// プロフィールを保持するプロセス全体のセッション状態を提供する。
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// 永続化キー。旧バージョンのクライアントはリフレッシュトークンを
// refresh_tokenキーで保存していたため、読み込み時のみ認識し、
// トークン書き込み成功時およびClear時に必ず削除する。
const (
	keyAccessToken        = "token"
	keyRefreshToken       = "refreshToken"
	keyUser               = "user"
	legacyKeyRefreshToken = "refresh_token"
)

// Storage はセッションの永続化層のインターフェース。
// キーが存在しない場合、Getは空文字列とfalseを返す。
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// FileStorage はJSONファイルにキー/値を保存するStorage実装。
// CLIプロセス間でセッションを引き継ぐための永続化に使用する。
type FileStorage struct {
	mu   sync.Mutex
	path string
}

// NewFileStorage は指定パスのFileStorageを生成する。
// 親ディレクトリは最初の書き込み時に作成される。
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Get はキーに対応する値を返す。
func (f *FileStorage) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return "", false
	}
	v, ok := entries[key]
	return v, ok
}

// Set はキーに値を保存する。
func (f *FileStorage) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		entries = map[string]string{}
	}
	entries[key] = value
	return f.write(entries)
}

// Delete はキーを削除する。キーが存在しない場合は何もしない。
func (f *FileStorage) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return nil
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return f.write(entries)
}

func (f *FileStorage) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode state file: %w", err)
	}
	return entries, nil
}

func (f *FileStorage) write(entries map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode state file: %w", err)
	}
	// トークンを含むため所有者のみ読み書き可とする
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// MemoryStorage はプロセス内のみで有効なStorage実装。主にテストで使用する。
type MemoryStorage struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewMemoryStorage は空のMemoryStorageを生成する。
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: map[string]string{}}
}

// Get はキーに対応する値を返す。
func (m *MemoryStorage) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok
}

// Set はキーに値を保存する。
func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

// Delete はキーを削除する。
func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
