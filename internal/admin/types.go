package admin

import (
	"encoding/json"

	"github.com/hitoshi/manabu/internal/model"
)

// UserCreateRequest は管理者によるユーザー作成のリクエスト。
type UserCreateRequest struct {
	Username string     `json:"username"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
	Email    string     `json:"email,omitempty"`
	Phone    string     `json:"phone,omitempty"`
}

// UserPatchRequest はユーザーの部分更新。nilのフィールドは変更されない。
type UserPatchRequest struct {
	Status *model.UserStatus `json:"status,omitempty"`
	Email  *string           `json:"email,omitempty"`
	Phone  *string           `json:"phone,omitempty"`
}

// Resource はプラットフォーム上のコンテンツ資産（文書・教案など）の横断ビュー。
type Resource struct {
	ResourceID      string `json:"resourceId"`
	ResourceType    string `json:"resourceType"`
	Title           string `json:"title"`
	CreatorID       string `json:"creatorId"`
	CreatorUsername string `json:"creatorUsername"`
	CreatedAt       string `json:"createdAt"`
}

// AuditLog は監査ログの1件。Detailは操作ごとに形が異なるため生のまま保持する。
type AuditLog struct {
	ID           string          `json:"id"`
	ActorID      string          `json:"actorId"`
	ActorRole    string          `json:"actorRole"`
	Action       string          `json:"action"`
	ResourceType string          `json:"resourceType"`
	ResourceID   string          `json:"resourceId"`
	Detail       json.RawMessage `json:"detail,omitempty"`
	IP           string          `json:"ip"`
	CreatedAt    string          `json:"createdAt"`
}

// DashboardMetrics はプラットフォーム全体の統計。
type DashboardMetrics struct {
	TotalUsers           int64 `json:"totalUsers"`
	TotalStudents        int64 `json:"totalStudents"`
	TotalTeachers        int64 `json:"totalTeachers"`
	TotalChatSessions    int64 `json:"totalChatSessions"`
	TotalExerciseRecords int64 `json:"totalExerciseRecords"`
	TotalDocuments       int64 `json:"totalDocuments"`
	TotalKnowledgeChunks int64 `json:"totalKnowledgeChunks"`
	TotalLessonPlans     int64 `json:"totalLessonPlans"`
}
