// Package student は学生向け機能（AIチャット・演習・誤答ノート・AI出題）の
// APIラッパーを提供する。
package student

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/hitoshi/manabu/internal/contract"
	"github.com/hitoshi/manabu/internal/security"
)

// Caller はAPIクライアントに要求する操作の集合を定義する。
type Caller interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// ChatListQuery はチャットセッション一覧の絞り込み条件。
type ChatListQuery struct {
	Page int
	Size int
}

// ExerciseQuestionQuery は演習問題一覧の絞り込み条件。
type ExerciseQuestionQuery struct {
	Subject    string
	Difficulty string
	Page       int
	Size       int
}

// WrongBookQuery は誤答ノート一覧の絞り込み条件。
type WrongBookQuery struct {
	Subject string
	Status  string
	Page    int
	Size    int
}

// ExerciseRecordQuery は演習履歴一覧の絞り込み条件。
type ExerciseRecordQuery struct {
	StartDate string
	EndDate   string
	Page      int
	Size      int
}

// AIHistoryQuery はAI出題履歴一覧の絞り込み条件。
type AIHistoryQuery struct {
	Subject string
	Page    int
	Size    int
}

// Service は学生向けAPIのラッパー。AI生成コンテンツは返却前に
// サニタイズされる。
type Service struct {
	client    Caller
	sanitizer security.ReplySanitizerService
	logger    *slog.Logger
}

// NewService はServiceを生成する。sanitizerがnilの場合は既定の
// ポリシーを使用する。
func NewService(client Caller, sanitizer security.ReplySanitizerService, logger *slog.Logger) *Service {
	if sanitizer == nil {
		sanitizer = security.NewReplySanitizer()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, sanitizer: sanitizer, logger: logger}
}

// ListChatSessions はチャットセッションの一覧をページングで取得する。
func (s *Service) ListChatSessions(ctx context.Context, q ChatListQuery) (contract.Page[ChatSession], error) {
	return listPaged[ChatSession](ctx, s.client, "/student/chat/sessions", q.values())
}

// CreateChatSession は新しいチャットセッションを作成する。
func (s *Service) CreateChatSession(ctx context.Context) (ChatSession, error) {
	var session ChatSession
	if err := s.client.Post(ctx, "/student/chat/session", nil, &session); err != nil {
		return ChatSession{}, fmt.Errorf("failed to create chat session: %w", err)
	}
	return session, nil
}

// ChatSessionDetail はメッセージ履歴込みのセッション詳細を取得する。
// 全てのアシスタントメッセージはサニタイズして返す。
func (s *Service) ChatSessionDetail(ctx context.Context, sessionID string) (ChatSessionDetail, error) {
	var detail ChatSessionDetail
	if err := s.client.Get(ctx, "/student/chat/session/"+sessionID, nil, &detail); err != nil {
		return ChatSessionDetail{}, fmt.Errorf("failed to fetch chat session %s: %w", sessionID, err)
	}
	for i := range detail.Messages {
		if detail.Messages[i].Role == "ASSISTANT" {
			detail.Messages[i].Content = s.sanitizer.Sanitize(detail.Messages[i].Content)
		}
	}
	return detail, nil
}

// DeleteChatSession はチャットセッションを削除する。
func (s *Service) DeleteChatSession(ctx context.Context, sessionID string) error {
	if err := s.client.Delete(ctx, "/student/chat/session/"+sessionID, nil); err != nil {
		return fmt.Errorf("failed to delete chat session %s: %w", sessionID, err)
	}
	return nil
}

// SendChatMessage はメッセージを送信し、ユーザー・アシスタント両メッセージを返す。
// アシスタント応答はAIが生成したHTMLを含むため、サニタイズして返す。
func (s *Service) SendChatMessage(ctx context.Context, sessionID, message string) (ChatReply, error) {
	body := map[string]string{"message": message}
	var reply ChatReply
	if err := s.client.Post(ctx, "/student/chat/session/"+sessionID+"/message", body, &reply); err != nil {
		return ChatReply{}, fmt.Errorf("failed to send chat message: %w", err)
	}
	reply.AssistantMessage.Content = s.sanitizer.Sanitize(reply.AssistantMessage.Content)
	return reply, nil
}

// ListExerciseQuestions は演習問題の一覧をページングで取得する。
func (s *Service) ListExerciseQuestions(ctx context.Context, q ExerciseQuestionQuery) (contract.Page[Question], error) {
	return listPaged[Question](ctx, s.client, "/student/exercise/questions", q.values())
}

// SubmitExercise は解答を提出し、採点結果を返す。
func (s *Service) SubmitExercise(ctx context.Context, answers []Answer) (ExerciseResult, error) {
	body := map[string][]Answer{"answers": answers}
	var result ExerciseResult
	if err := s.client.Post(ctx, "/student/exercise/submit", body, &result); err != nil {
		return ExerciseResult{}, fmt.Errorf("failed to submit exercise: %w", err)
	}
	s.logger.Info("exercise submitted",
		slog.String("record_id", result.RecordID),
		slog.Int("total", result.TotalQuestions),
		slog.Int("correct", result.CorrectCount),
	)
	return result, nil
}

// ExerciseAnalysis は演習記録の詳細解析を取得する。
// AI生成の解説はサニタイズして返す。
func (s *Service) ExerciseAnalysis(ctx context.Context, recordID string) (ExerciseAnalysis, error) {
	var analysis ExerciseAnalysis
	if err := s.client.Get(ctx, "/student/exercise/"+recordID+"/analysis", nil, &analysis); err != nil {
		return ExerciseAnalysis{}, fmt.Errorf("failed to fetch exercise analysis %s: %w", recordID, err)
	}
	s.sanitizeAnalysisItems(analysis.Items)
	return analysis, nil
}

// ListWrongQuestions は誤答ノートの一覧をページングで取得する。
func (s *Service) ListWrongQuestions(ctx context.Context, q WrongBookQuery) (contract.Page[WrongBookEntry], error) {
	return listPaged[WrongBookEntry](ctx, s.client, "/student/exercise/wrong-questions", q.values())
}

// RemoveWrongQuestion は誤答ノートから問題を除外する。
func (s *Service) RemoveWrongQuestion(ctx context.Context, questionID string) error {
	if err := s.client.Delete(ctx, "/student/exercise/wrong-questions/"+questionID, nil); err != nil {
		return fmt.Errorf("failed to remove wrong question %s: %w", questionID, err)
	}
	return nil
}

// ListExerciseRecords は演習履歴の一覧をページングで取得する。
func (s *Service) ListExerciseRecords(ctx context.Context, q ExerciseRecordQuery) (contract.Page[ExerciseRecord], error) {
	return listPaged[ExerciseRecord](ctx, s.client, "/student/exercise/records", q.values())
}

// GenerateAIQuestions はAI出題セッションを生成する。
func (s *Service) GenerateAIQuestions(ctx context.Context, req AIGenerateRequest) (AIGenerateResult, error) {
	var result AIGenerateResult
	if err := s.client.Post(ctx, "/student/ai-questions/generate", req, &result); err != nil {
		return AIGenerateResult{}, fmt.Errorf("failed to generate ai questions: %w", err)
	}
	return result, nil
}

// SubmitAIQuestions はAI出題への解答を提出し、採点結果を返す。
func (s *Service) SubmitAIQuestions(ctx context.Context, sessionID string, answers []Answer) (AIResult, error) {
	body := struct {
		SessionID string   `json:"sessionId"`
		Answers   []Answer `json:"answers"`
	}{SessionID: sessionID, Answers: answers}

	var result AIResult
	if err := s.client.Post(ctx, "/student/ai-questions/submit", body, &result); err != nil {
		return AIResult{}, fmt.Errorf("failed to submit ai questions: %w", err)
	}
	return result, nil
}

// AIQuestionAnalysis はAI出題記録の詳細解析を取得する。
// AI生成の解説はサニタイズして返す。
func (s *Service) AIQuestionAnalysis(ctx context.Context, recordID string) (AIAnalysis, error) {
	var analysis AIAnalysis
	if err := s.client.Get(ctx, "/student/ai-questions/"+recordID+"/analysis", nil, &analysis); err != nil {
		return AIAnalysis{}, fmt.Errorf("failed to fetch ai question analysis %s: %w", recordID, err)
	}
	s.sanitizeAnalysisItems(analysis.Items)
	return analysis, nil
}

// ListAIQuestionHistory はAI出題履歴の一覧をページングで取得する。
func (s *Service) ListAIQuestionHistory(ctx context.Context, q AIHistoryQuery) (contract.Page[AIQuestionSession], error) {
	return listPaged[AIQuestionSession](ctx, s.client, "/student/ai-questions", q.values())
}

func (s *Service) sanitizeAnalysisItems(items []AnalysisItem) {
	for i := range items {
		if items[i].Analysis != "" {
			items[i].Analysis = s.sanitizer.Sanitize(items[i].Analysis)
		}
		if items[i].TeacherSuggestion != "" {
			items[i].TeacherSuggestion = s.sanitizer.Sanitize(items[i].TeacherSuggestion)
		}
	}
}

func listPaged[T any](ctx context.Context, c Caller, path string, query url.Values) (contract.Page[T], error) {
	var raw json.RawMessage
	if err := c.Get(ctx, path, query, &raw); err != nil {
		return contract.Page[T]{}, fmt.Errorf("failed to list %s: %w", path, err)
	}
	page, err := contract.DecodePage[T](raw)
	if err != nil {
		return contract.Page[T]{}, fmt.Errorf("failed to decode page from %s: %w", path, err)
	}
	return page, nil
}

func (q ChatListQuery) values() url.Values {
	return pageValues(nil, q.Page, q.Size)
}

func (q ExerciseQuestionQuery) values() url.Values {
	v := url.Values{}
	setIfPresent(v, "subject", q.Subject)
	setIfPresent(v, "difficulty", q.Difficulty)
	return pageValues(v, q.Page, q.Size)
}

func (q WrongBookQuery) values() url.Values {
	v := url.Values{}
	setIfPresent(v, "subject", q.Subject)
	setIfPresent(v, "status", q.Status)
	return pageValues(v, q.Page, q.Size)
}

func (q ExerciseRecordQuery) values() url.Values {
	v := url.Values{}
	setIfPresent(v, "startDate", q.StartDate)
	setIfPresent(v, "endDate", q.EndDate)
	return pageValues(v, q.Page, q.Size)
}

func (q AIHistoryQuery) values() url.Values {
	v := url.Values{}
	setIfPresent(v, "subject", q.Subject)
	return pageValues(v, q.Page, q.Size)
}

func pageValues(v url.Values, page, size int) url.Values {
	if v == nil {
		v = url.Values{}
	}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		v.Set("size", strconv.Itoa(size))
	}
	return v
}

func setIfPresent(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}
