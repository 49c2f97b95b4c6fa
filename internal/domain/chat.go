package domain

import "time"

// MaxHintLevel is the highest scaffolding level the assistant can reach.
const MaxHintLevel = 3

// MessageRole identifies the author of a chat message.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// ChatAction is the backend's classification of an assistant reply.
type ChatAction string

const (
	ActionAnswer                     ChatAction = "answer"
	ActionAnswerWithIntegrityRefusal ChatAction = "answer_with_integrity_refusal"
	ActionRefuseOutOfScope           ChatAction = "refuse_out_of_scope"
)

// IsRefusal reports whether the action declines all or part of a request.
func (a ChatAction) IsRefusal() bool {
	return a == ActionAnswerWithIntegrityRefusal || a == ActionRefuseOutOfScope
}

// ChatSession binds one course and one student.
type ChatSession struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	StudentID string    `json:"student_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Source cites the course material chunk an answer was grounded on.
type Source struct {
	Filename   string `json:"filename"`
	ChunkIndex int    `json:"chunk_index"`
}

// ChatMessage is a single entry in a session's history.
type ChatMessage struct {
	ID        string      `json:"id"`
	SessionID string      `json:"session_id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	HintLevel *int        `json:"hint_level"`
	CreatedAt time.Time   `json:"created_at"`
	Sources   []Source    `json:"sources,omitempty"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	SessionID           string `json:"session_id"`
	Message             string `json:"message"`
	RequestHintIncrease bool   `json:"request_hint_increase"`
}

// ChatResponse is the reply to a ChatRequest.
type ChatResponse struct {
	Message   ChatMessage `json:"message"`
	HintLevel int         `json:"hint_level"`
	Action    ChatAction  `json:"action"`
}
