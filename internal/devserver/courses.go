package devserver

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tai-edu/tai/internal/domain"
)

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		ClassCode string `json:"class_code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	code := domain.NormalizeClassCode(req.ClassCode)
	if name == "" || code == "" {
		writeError(w, http.StatusUnprocessableEntity, "name and class_code are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.courseCodes[code]; taken {
		writeError(w, http.StatusConflict, "class code already in use")
		return
	}
	course := &domain.Course{
		ID:        s.newID(),
		Name:      name,
		ClassCode: code,
		CreatedAt: s.now(),
	}
	s.courses[course.ID] = course
	s.courseCodes[code] = course.ID
	s.guardrails[course.ID] = DefaultGuardrails()
	writeJSON(w, http.StatusOK, course)
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	course, ok := s.courses[chi.URLParam(r, "courseID")]
	if !ok {
		writeError(w, http.StatusNotFound, "course not found")
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (s *Server) handleCourseByCode(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.courseCodes[domain.NormalizeClassCode(chi.URLParam(r, "code"))]
	if !ok {
		writeError(w, http.StatusNotFound, "course not found")
		return
	}
	writeJSON(w, http.StatusOK, s.courses[id])
}

func (s *Server) handleGetGuardrails(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.guardrails[courseID]
	if !ok {
		writeError(w, http.StatusNotFound, "course not found")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleUpdateGuardrails(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	var patch domain.GuardrailsPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if err := patch.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.guardrails[courseID]
	if !ok {
		writeError(w, http.StatusNotFound, "course not found")
		return
	}
	g = g.Apply(patch)
	s.guardrails[courseID] = g
	writeJSON(w, http.StatusOK, g)
}
