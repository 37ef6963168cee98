// Package teacher は教師向け機能（知識ベース・教案・学習解析・アドバイス）の
// APIラッパーを提供する。
package teacher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hitoshi/manabu/internal/apiclient"
	"github.com/hitoshi/manabu/internal/contract"
)

// Caller はAPIクライアントに要求する操作の集合を定義する。
// JSONはエンベロープを正規化してdataを返し、Doはエンベロープ外の
// 生レスポンス（エクスポート等）に使用する。
type Caller interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
	JSON(ctx context.Context, req apiclient.Request) (json.RawMessage, error)
	Do(ctx context.Context, req apiclient.Request) (*apiclient.Response, error)
}

// PlanListQuery は教案一覧の絞り込み条件。
type PlanListQuery struct {
	Page int
	Size int
}

// Service は教師向けAPIのラッパー。
type Service struct {
	client Caller
	logger *slog.Logger
}

// NewService はServiceを生成する。
func NewService(client Caller, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, logger: logger}
}

// ListKnowledgeDocuments は知識ベース文書の一覧を取得する。
// statusが非空の場合は状態で絞り込む。
func (s *Service) ListKnowledgeDocuments(ctx context.Context, status string) ([]Document, error) {
	var query url.Values
	if status != "" {
		query = url.Values{"status": []string{status}}
	}
	var docs []Document
	if err := s.client.Get(ctx, "/teacher/knowledge/documents", query, &docs); err != nil {
		return nil, fmt.Errorf("failed to list knowledge documents: %w", err)
	}
	return docs, nil
}

// UploadKnowledgeDocument は文書をmultipart形式でアップロードする。
// 取り込みは非同期に進むため、返却時のStatusはUPLOADINGとなる。
func (s *Service) UploadKnowledgeDocument(ctx context.Context, filename string, content io.Reader) (Document, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return Document{}, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return Document{}, fmt.Errorf("failed to read upload content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return Document{}, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", writer.FormDataContentType())

	data, err := s.client.JSON(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/teacher/knowledge/documents",
		Body:   buf.Bytes(),
		Header: header,
	})
	if err != nil {
		return Document{}, fmt.Errorf("failed to upload document %s: %w", filename, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to decode uploaded document: %w", err)
	}
	s.logger.Info("document uploaded",
		slog.String("document_id", doc.ID),
		slog.String("filename", doc.Filename),
		slog.Int64("size", doc.FileSize),
	)
	return doc, nil
}

// DeleteKnowledgeDocument は知識ベースから文書を削除する。
func (s *Service) DeleteKnowledgeDocument(ctx context.Context, documentID string) error {
	if err := s.client.Delete(ctx, "/teacher/knowledge/documents/"+documentID, nil); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", documentID, err)
	}
	return nil
}

// GeneratePlan は教案を生成する。
func (s *Service) GeneratePlan(ctx context.Context, req PlanGenerateRequest) (LessonPlan, error) {
	var plan LessonPlan
	if err := s.client.Post(ctx, "/teacher/plans/generate", req, &plan); err != nil {
		return LessonPlan{}, fmt.Errorf("failed to generate plan: %w", err)
	}
	s.logger.Info("lesson plan generated",
		slog.String("plan_id", plan.ID),
		slog.String("topic", plan.Topic),
	)
	return plan, nil
}

// ListPlans は教案の一覧をページングで取得する。
func (s *Service) ListPlans(ctx context.Context, q PlanListQuery) (contract.Page[LessonPlan], error) {
	query := url.Values{}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		query.Set("size", strconv.Itoa(q.Size))
	}

	var raw json.RawMessage
	if err := s.client.Get(ctx, "/teacher/plans", query, &raw); err != nil {
		return contract.Page[LessonPlan]{}, fmt.Errorf("failed to list plans: %w", err)
	}
	page, err := contract.DecodePage[LessonPlan](raw)
	if err != nil {
		return contract.Page[LessonPlan]{}, fmt.Errorf("failed to decode plan page: %w", err)
	}
	return page, nil
}

// UpdatePlan は教案のMarkdown本文を更新する。
func (s *Service) UpdatePlan(ctx context.Context, planID, contentMD string) (LessonPlan, error) {
	body := map[string]string{"contentMd": contentMD}
	var plan LessonPlan
	if err := s.client.Put(ctx, "/teacher/plans/"+planID, body, &plan); err != nil {
		return LessonPlan{}, fmt.Errorf("failed to update plan %s: %w", planID, err)
	}
	return plan, nil
}

// DeletePlan は教案を削除する。
func (s *Service) DeletePlan(ctx context.Context, planID string) error {
	if err := s.client.Delete(ctx, "/teacher/plans/"+planID, nil); err != nil {
		return fmt.Errorf("failed to delete plan %s: %w", planID, err)
	}
	return nil
}

// SharePlan は教案の共有リンクを発行する。既に共有済みの場合は
// 同じトークンが返る。
func (s *Service) SharePlan(ctx context.Context, planID string) (ShareResult, error) {
	var result ShareResult
	if err := s.client.Post(ctx, "/teacher/plans/"+planID+"/share", nil, &result); err != nil {
		return ShareResult{}, fmt.Errorf("failed to share plan %s: %w", planID, err)
	}
	return result, nil
}

// ExportPlan は教案をmdまたはpdf形式でエクスポートする。
// レスポンスはエンベロープではなく生のファイル内容となる。
func (s *Service) ExportPlan(ctx context.Context, planID, format string) ([]byte, error) {
	if format != "md" && format != "pdf" {
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}

	resp, err := s.client.Do(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/teacher/plans/" + planID + "/export",
		Query:  url.Values{"format": []string{format}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to export plan %s: %w", planID, err)
	}
	if resp.Status != http.StatusOK {
		return nil, fmt.Errorf("export of plan %s returned status %d", planID, resp.Status)
	}
	return resp.Body, nil
}

// StudentAnalytics は担当学生の学習状況サマリーを取得する。
func (s *Service) StudentAnalytics(ctx context.Context, studentID string) (StudentAnalytics, error) {
	var analytics StudentAnalytics
	if err := s.client.Get(ctx, "/teacher/students/"+studentID+"/analytics", nil, &analytics); err != nil {
		return StudentAnalytics{}, fmt.Errorf("failed to fetch analytics for student %s: %w", studentID, err)
	}
	return analytics, nil
}

// CreateSuggestion は学習アドバイスを作成する。
func (s *Service) CreateSuggestion(ctx context.Context, req SuggestionRequest) (Suggestion, error) {
	if req.QuestionID == "" && req.KnowledgePoint == "" {
		return Suggestion{}, fmt.Errorf("either questionId or knowledgePoint is required")
	}
	var suggestion Suggestion
	if err := s.client.Post(ctx, "/teacher/suggestions", req, &suggestion); err != nil {
		return Suggestion{}, fmt.Errorf("failed to create suggestion: %w", err)
	}
	return suggestion, nil
}
