package api

import (
	"context"
	"net/http"

	"github.com/tai-edu/tai/internal/domain"
)

type createSessionRequest struct {
	CourseID  string `json:"course_id"`
	StudentID string `json:"student_id"`
}

// CreateSession opens a new chat session for a student in a course.
func (c *Client) CreateSession(ctx context.Context, courseID, studentID string) (*domain.ChatSession, error) {
	var session domain.ChatSession
	err := c.sendJSON(ctx, "create session", http.MethodPost, c.endpoint("api", "sessions"),
		createSessionRequest{CourseID: courseID, StudentID: studentID}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// SessionMessages returns a session's history ordered by creation time.
func (c *Client) SessionMessages(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	var messages []domain.ChatMessage
	if err := c.getJSON(ctx, "fetch messages", c.endpoint("api", "sessions", sessionID, "messages"), &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// SendMessage posts a student message and returns the assistant's reply.
func (c *Client) SendMessage(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	var resp domain.ChatResponse
	if err := c.sendJSON(ctx, "send message", http.MethodPost, c.endpoint("api", "chat"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
