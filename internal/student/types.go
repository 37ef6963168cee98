package student

// Citation はAI応答が引用した知識ベース文書の断片。
type Citation struct {
	DocumentID string  `json:"documentId"`
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunkIndex"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}

// ChatMessage はチャットセッション内の1発言。RoleはUSERまたはASSISTANT。
type ChatMessage struct {
	ID         string     `json:"id"`
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	Citations  []Citation `json:"citations,omitempty"`
	TokenUsage int        `json:"tokenUsage,omitempty"`
	CreatedAt  string     `json:"createdAt"`
}

// ChatSession はチャットセッションの一覧表示用メタデータ。
type ChatSession struct {
	ID        string `json:"id"`
	StudentID string `json:"studentId"`
	Title     string `json:"title"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ChatSessionDetail はメッセージ履歴込みのセッション詳細。
type ChatSessionDetail struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	CreatedAt string        `json:"createdAt"`
	Messages  []ChatMessage `json:"messages"`
}

// ChatReply は1回の発言に対するユーザー・アシスタント両メッセージの組。
type ChatReply struct {
	UserMessage      ChatMessage `json:"userMessage"`
	AssistantMessage ChatMessage `json:"assistantMessage"`
}

// Question は演習問題。
type Question struct {
	ID              string            `json:"id"`
	Subject         string            `json:"subject"`
	QuestionType    string            `json:"questionType"`
	Difficulty      string            `json:"difficulty"`
	Content         string            `json:"content"`
	Options         map[string]string `json:"options,omitempty"`
	CorrectAnswer   string            `json:"correctAnswer,omitempty"`
	Analysis        string            `json:"analysis,omitempty"`
	KnowledgePoints []string          `json:"knowledgePoints,omitempty"`
	Score           float64           `json:"score"`
	Source          string            `json:"source,omitempty"`
	CreatedAt       string            `json:"createdAt"`
}

// Answer は1問への解答。
type Answer struct {
	QuestionID string `json:"questionId"`
	UserAnswer string `json:"userAnswer"`
}

// ExerciseResultItem は採点結果の1問分。
type ExerciseResultItem struct {
	QuestionID    string  `json:"questionId"`
	UserAnswer    string  `json:"userAnswer"`
	CorrectAnswer string  `json:"correctAnswer"`
	IsCorrect     bool    `json:"isCorrect"`
	Score         float64 `json:"score"`
}

// ExerciseResult は演習提出の採点結果。
type ExerciseResult struct {
	RecordID       string               `json:"recordId"`
	TotalQuestions int                  `json:"totalQuestions"`
	CorrectCount   int                  `json:"correctCount"`
	TotalScore     float64              `json:"totalScore"`
	Items          []ExerciseResultItem `json:"items"`
}

// AnalysisItem は解析結果の1問分。AnalysisとTeacherSuggestionは
// AI生成のHTMLを含むことがある。
type AnalysisItem struct {
	QuestionID        string   `json:"questionId"`
	Content           string   `json:"content"`
	UserAnswer        string   `json:"userAnswer"`
	CorrectAnswer     string   `json:"correctAnswer"`
	IsCorrect         bool     `json:"isCorrect"`
	Analysis          string   `json:"analysis,omitempty"`
	KnowledgePoints   []string `json:"knowledgePoints,omitempty"`
	TeacherSuggestion string   `json:"teacherSuggestion,omitempty"`
}

// ExerciseAnalysis は演習記録の詳細解析。
type ExerciseAnalysis struct {
	RecordID string         `json:"recordId"`
	Items    []AnalysisItem `json:"items"`
}

// WrongBookEntry は誤答ノートの1項目。StatusはACTIVEまたはMASTERED。
type WrongBookEntry struct {
	ID            string    `json:"id"`
	QuestionID    string    `json:"questionId"`
	Question      *Question `json:"question,omitempty"`
	WrongCount    int       `json:"wrongCount"`
	LastWrongTime string    `json:"lastWrongTime"`
	Status        string    `json:"status"`
}

// ExerciseRecord は演習履歴の1件。
type ExerciseRecord struct {
	ID             string  `json:"id"`
	Subject        string  `json:"subject"`
	TotalQuestions int     `json:"totalQuestions"`
	CorrectCount   int     `json:"correctCount"`
	TotalScore     float64 `json:"totalScore"`
	TimeSpent      int     `json:"timeSpent"`
	CreatedAt      string  `json:"createdAt"`
}

// AIGenerateRequest はAI出題の生成リクエスト。
type AIGenerateRequest struct {
	Subject     string   `json:"subject"`
	Difficulty  string   `json:"difficulty"`
	Count       int      `json:"count"`
	ConceptTags []string `json:"conceptTags,omitempty"`
}

// AIGenerateResult は生成されたAI出題セッション。
type AIGenerateResult struct {
	SessionID string     `json:"sessionId"`
	Questions []Question `json:"questions"`
}

// AIResult はAI出題セッションの採点結果。
type AIResult struct {
	RecordID       string               `json:"recordId"`
	SessionID      string               `json:"sessionId"`
	TotalQuestions int                  `json:"totalQuestions"`
	CorrectCount   int                  `json:"correctCount"`
	Items          []ExerciseResultItem `json:"items,omitempty"`
}

// AIAnalysis はAI出題記録の詳細解析。
type AIAnalysis struct {
	RecordID string         `json:"recordId"`
	Items    []AnalysisItem `json:"items"`
}

// AIQuestionSession はAI出題の履歴1件。
type AIQuestionSession struct {
	ID            string   `json:"id"`
	Subject       string   `json:"subject"`
	Difficulty    string   `json:"difficulty"`
	QuestionCount int      `json:"questionCount"`
	Completed     bool     `json:"completed"`
	CorrectRate   *float64 `json:"correctRate"`
	Score         *float64 `json:"score"`
	GeneratedAt   string   `json:"generatedAt"`
}
