package devserver

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tai-edu/tai/internal/domain"
)

// outOfScopeReply is sent when a course has no material to ground an answer on.
const outOfScopeReply = "I don't have enough information in your course materials to answer that. " +
	"Ask your teacher to upload notes on this topic."

// hintReplies holds one canned reply per hint level.
var hintReplies = [domain.MaxHintLevel + 1]string{
	"Let's work through this together. What do you already know about the question, and where in **%s** does it come up?",
	"Hint: look at the definitions in **%s** and try to restate the problem in your own words.",
	"Hint: break the problem into smaller steps. The section of **%s** cited below walks through a similar example.",
	"Here is a worked outline based on **%s**. Fill in each step yourself and check it against the `example` in your notes.",
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CourseID  string `json:"course_id"`
		StudentID string `json:"student_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.StudentID == "" {
		writeError(w, http.StatusUnprocessableEntity, "student_id is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[req.CourseID]; !ok {
		writeError(w, http.StatusNotFound, "course not found")
		return
	}
	st := &sessionState{session: domain.ChatSession{
		ID:        s.newID(),
		CourseID:  req.CourseID,
		StudentID: req.StudentID,
		CreatedAt: s.now(),
	}}
	s.sessions[st.session.ID] = st
	writeJSON(w, http.StatusOK, st.session)
}

func (s *Server) handleSessionMessages(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[chi.URLParam(r, "sessionID")]
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, append([]domain.ChatMessage{}, st.messages...))
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusUnprocessableEntity, "message is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[req.SessionID]
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	now := s.now()
	st.messages = append(st.messages, domain.ChatMessage{
		ID:        s.newID(),
		SessionID: st.session.ID,
		Role:      domain.MessageRoleUser,
		Content:   req.Message,
		CreatedAt: now,
	})

	reply, action := s.compose(st, req.RequestHintIncrease)
	reply.ID = s.newID()
	reply.SessionID = st.session.ID
	reply.CreatedAt = now
	st.messages = append(st.messages, reply)

	writeJSON(w, http.StatusOK, domain.ChatResponse{
		Message:   reply,
		HintLevel: st.hintLevel,
		Action:    action,
	})
}

// compose builds the canned assistant reply and advances the session's hint
// level, bounded by the course's max_hint_level guardrail.
func (s *Server) compose(st *sessionState, increase bool) (domain.ChatMessage, domain.ChatAction) {
	files := s.files[st.session.CourseID]
	if len(files) == 0 {
		return domain.ChatMessage{Role: domain.MessageRoleAssistant, Content: outOfScopeReply}, domain.ActionRefuseOutOfScope
	}

	ceiling := s.guardrails[st.session.CourseID].MaxHintLevel
	if increase && st.hintLevel < ceiling {
		st.hintLevel++
	}
	level := st.hintLevel
	src := files[len(files)-1]

	return domain.ChatMessage{
		Role:      domain.MessageRoleAssistant,
		Content:   fmt.Sprintf(hintReplies[level], src.Filename),
		HintLevel: &level,
		Sources:   []domain.Source{{Filename: src.Filename, ChunkIndex: level % max(1, s.chunks[src.ID])}},
	}, domain.ActionAnswer
}
