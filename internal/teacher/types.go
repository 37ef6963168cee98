package teacher

// Document は知識ベースにアップロードされた文書。
// StatusはUPLOADING → PROCESSING → READY（失敗時FAILED）と遷移する。
type Document struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	FileType     string `json:"fileType"`
	FileSize     int64  `json:"fileSize"`
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// PlanGenerateRequest は教案生成のリクエスト。
type PlanGenerateRequest struct {
	Topic        string `json:"topic"`
	GradeLevel   string `json:"gradeLevel"`
	DurationMins int    `json:"durationMins"`
}

// LessonPlan はAIが生成した教案。ContentMDはMarkdown本文。
type LessonPlan struct {
	ID           string `json:"id"`
	Topic        string `json:"topic"`
	GradeLevel   string `json:"gradeLevel"`
	DurationMins int    `json:"durationMins"`
	ContentMD    string `json:"contentMd"`
	IsShared     bool   `json:"isShared"`
	ShareToken   string `json:"shareToken,omitempty"`
	SharedAt     string `json:"sharedAt,omitempty"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// ShareResult は教案共有リンクの発行結果。ShareURLはAPIからの相対パス。
type ShareResult struct {
	PlanID     string `json:"planId"`
	ShareToken string `json:"shareToken"`
	ShareURL   string `json:"shareUrl"`
}

// WeakPoint は誤答の多い知識点。
type WeakPoint struct {
	KnowledgePoint string `json:"knowledgePoint"`
	WrongCount     int    `json:"wrongCount"`
}

// StudentAnalytics は担当学生の学習状況サマリー。
type StudentAnalytics struct {
	StudentID      string      `json:"studentId"`
	Username       string      `json:"username"`
	TotalExercises int64       `json:"totalExercises"`
	TotalQuestions int64       `json:"totalQuestions"`
	CorrectCount   int64       `json:"correctCount"`
	AverageScore   float64     `json:"averageScore"`
	WrongBookCount int64       `json:"wrongBookCount"`
	TopWeakPoints  []WeakPoint `json:"topWeakPoints"`
}

// SuggestionRequest は学習アドバイスの作成リクエスト。
// QuestionIDとKnowledgePointは少なくとも一方が必要。
type SuggestionRequest struct {
	StudentID      string `json:"studentId"`
	QuestionID     string `json:"questionId,omitempty"`
	KnowledgePoint string `json:"knowledgePoint,omitempty"`
	Suggestion     string `json:"suggestion"`
}

// Suggestion は作成済みの学習アドバイス。
type Suggestion struct {
	ID             string `json:"id"`
	TeacherID      string `json:"teacherId"`
	StudentID      string `json:"studentId"`
	QuestionID     string `json:"questionId,omitempty"`
	KnowledgePoint string `json:"knowledgePoint,omitempty"`
	Suggestion     string `json:"suggestion"`
	CreatedAt      string `json:"createdAt"`
}
