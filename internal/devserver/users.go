package devserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tai-edu/tai/internal/domain"
)

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeviceID string      `json:"device_id"`
		Role     domain.Role `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.DeviceID == "" || !req.Role.Valid() {
		writeError(w, http.StatusUnprocessableEntity, "device_id and a valid role are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := req.DeviceID + "|" + string(req.Role)
	if id, ok := s.userByKey[key]; ok {
		writeJSON(w, http.StatusOK, s.users[id])
		return
	}

	user := &domain.User{
		ID:        s.newID(),
		DeviceID:  req.DeviceID,
		Role:      req.Role,
		CreatedAt: s.now(),
	}
	s.users[user.ID] = user
	s.userByKey[key] = user.ID
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUserCourses(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	courses := make([]domain.Course, 0, len(s.memberships[userID]))
	for _, id := range s.memberships[userID] {
		if c, ok := s.courses[id]; ok {
			courses = append(courses, *c)
		}
	}
	writeJSON(w, http.StatusOK, courses)
}

func (s *Server) handleJoinCourse(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	var req struct {
		ClassCode string `json:"class_code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	courseID, ok := s.courseCodes[domain.NormalizeClassCode(req.ClassCode)]
	if !ok {
		writeError(w, http.StatusNotFound, "course not found")
		return
	}
	if !contains(s.memberships[userID], courseID) {
		s.memberships[userID] = append(s.memberships[userID], courseID)
	}
	writeJSON(w, http.StatusOK, s.courses[courseID])
}

func (s *Server) handleLeaveCourse(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	courseID := chi.URLParam(r, "courseID")

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.memberships[userID]
	for i, id := range ids {
		if id == courseID {
			s.memberships[userID] = append(ids[:i:i], ids[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}
	}
	writeError(w, http.StatusNotFound, "membership not found")
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
