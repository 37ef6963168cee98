package session

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/manabu/internal/model"
)

// Store はセッション状態の唯一の所有者。
// アクセストークンが空であることと、論理的に未認証であることは同値である。
// 他のコンポーネントはアクセサを通じて読み取り、SetSession/SetTokens/SetUser/
// Clearの4操作のみを通じて書き込む。
//
// 全ての操作はミューテックスで保護された単一の不可分ステップであり、
// データレベルで他の操作と交錯することはない。ネットワークI/Oをまたぐ
// リフレッシュフローの安全性はapiclientの単一飛行プロトコルが担う。
type Store struct {
	mu      sync.Mutex
	storage Storage
	logger  *slog.Logger
	now     func() time.Time

	accessToken     string
	refreshToken    string
	user            *model.Profile
	profileLoadedAt time.Time
}

// NewStore はStoreを生成する。storageがnilの場合はMemoryStorageを使用する。
func NewStore(storage Storage, logger *slog.Logger) *Store {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// Load は永続化層からセッションを復元する。プロセス起動時に1回呼び出す。
// リフレッシュトークンは現行キーを優先し、旧キーrefresh_tokenにも
// フォールバックする。復元されたプロフィールの鮮度タイムスタンプはゼロのまま
// とし、次回のガード評価で必ず再取得させる。
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.storage.Get(keyAccessToken); ok {
		s.accessToken = v
	}
	if v, ok := s.storage.Get(keyRefreshToken); ok {
		s.refreshToken = v
	} else if v, ok := s.storage.Get(legacyKeyRefreshToken); ok {
		s.refreshToken = v
	}
	if v, ok := s.storage.Get(keyUser); ok && v != "" {
		var profile model.Profile
		if err := json.Unmarshal([]byte(v), &profile); err != nil {
			s.logger.Warn("failed to decode persisted profile",
				slog.String("error", err.Error()),
			)
		} else {
			s.user = &profile
		}
	}
}

// SetSession はログイン結果で4フィールド全てを上書きする。
// 鮮度タイムスタンプは現在時刻に設定され、トークン組とプロフィールが永続化される。
func (s *Store) SetSession(tokens model.TokenPair, profile model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accessToken = tokens.AccessToken
	s.refreshToken = tokens.RefreshToken
	s.user = &profile
	s.profileLoadedAt = s.now()

	s.persistTokens(tokens)
	s.persistUser(profile)
}

// SetTokens はトークン組のみを上書きする。リフレッシュ成功後に使用する。
// キャッシュ済みプロフィールと鮮度タイムスタンプには触れない。
// 旧形式のトークンキーは書き込み成功時に削除される。
func (s *Store) SetTokens(tokens model.TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accessToken = tokens.AccessToken
	s.refreshToken = tokens.RefreshToken

	s.persistTokens(tokens)
}

// SetUser はキャッシュ済みプロフィールを上書きし、鮮度タイムスタンプを更新する。
// プロフィールがDISABLEDの場合のセッション破棄は呼び出し元の責務であり、
// 本操作はステータスを検査しない。
func (s *Store) SetUser(profile model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = &profile
	s.profileLoadedAt = s.now()

	s.persistUser(profile)
}

// Clear は全フィールドを初期値に戻し、旧キーを含む全ての永続化
// エントリを削除する。前のセッションの残滓が次のセッションへ漏れないことを
// 保証する。
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accessToken = ""
	s.refreshToken = ""
	s.user = nil
	s.profileLoadedAt = time.Time{}

	for _, key := range []string{keyAccessToken, keyRefreshToken, keyUser, legacyKeyRefreshToken} {
		if err := s.storage.Delete(key); err != nil {
			s.logger.Warn("failed to delete persisted session entry",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}
}

// IsAuthenticated はアクセストークンが空でない場合にtrueを返す。
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken != ""
}

// AccessToken は現在のアクセストークンを返す。
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// RefreshToken は現在のリフレッシュトークンを返す。
func (s *Store) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshToken
}

// User はキャッシュ済みプロフィールのコピーを返す。未取得の場合はnil。
func (s *Store) User() *model.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	copied := *s.user
	return &copied
}

// ProfileLoadedAt はプロフィール取得が最後に成功した時刻を返す。
// 一度も成功していない場合はゼロ値を返す。
func (s *Store) ProfileLoadedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profileLoadedAt
}

// persistTokens はトークン組を永続化し、旧キーを削除する。
// 永続化の失敗はローカル状態に影響させず、ログのみ残す。
func (s *Store) persistTokens(tokens model.TokenPair) {
	if err := s.storage.Set(keyAccessToken, tokens.AccessToken); err != nil {
		s.logger.Warn("failed to persist access token", slog.String("error", err.Error()))
		return
	}
	if err := s.storage.Set(keyRefreshToken, tokens.RefreshToken); err != nil {
		s.logger.Warn("failed to persist refresh token", slog.String("error", err.Error()))
		return
	}
	if err := s.storage.Delete(legacyKeyRefreshToken); err != nil {
		s.logger.Warn("failed to delete legacy refresh token", slog.String("error", err.Error()))
	}
}

func (s *Store) persistUser(profile model.Profile) {
	data, err := json.Marshal(profile)
	if err != nil {
		s.logger.Warn("failed to encode profile", slog.String("error", err.Error()))
		return
	}
	if err := s.storage.Set(keyUser, string(data)); err != nil {
		s.logger.Warn("failed to persist profile", slog.String("error", err.Error()))
	}
}
