package devserver

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/tai-edu/tai/internal/domain"
)

// recentQuestionsLimit bounds ActivityItem.RecentQuestions.
const recentQuestionsLimit = 3

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[courseID]; !ok {
		writeError(w, http.StatusNotFound, "course not found")
		return
	}
	writeJSON(w, http.StatusOK, s.activity(courseID))
}

func (s *Server) activity(courseID string) domain.CourseActivity {
	out := domain.CourseActivity{RecentActivity: []domain.ActivityItem{}}
	students := make(map[string]struct{})
	hintedAnswers := 0

	for _, st := range s.sessions {
		if st.session.CourseID != courseID {
			continue
		}
		out.TotalSessions++
		out.TotalMessages += len(st.messages)
		students[st.session.StudentID] = struct{}{}

		if len(st.messages) == 0 {
			continue
		}
		item := domain.ActivityItem{
			SessionID:       st.session.ID,
			StudentID:       st.session.StudentID,
			MessageCount:    len(st.messages),
			LastMessageAt:   st.messages[len(st.messages)-1].CreatedAt,
			HintLevelsUsed:  []int{},
			RecentQuestions: []string{},
		}
		seen := make(map[int]bool)
		for _, m := range st.messages {
			switch {
			case m.Role == domain.MessageRoleUser:
				item.RecentQuestions = append(item.RecentQuestions, m.Content)
			case m.HintLevel != nil && *m.HintLevel > 0:
				hintedAnswers++
				if !seen[*m.HintLevel] {
					seen[*m.HintLevel] = true
					item.HintLevelsUsed = append(item.HintLevelsUsed, *m.HintLevel)
				}
			}
		}
		if n := len(item.RecentQuestions); n > recentQuestionsLimit {
			item.RecentQuestions = item.RecentQuestions[n-recentQuestionsLimit:]
		}
		out.RecentActivity = append(out.RecentActivity, item)
	}

	out.UniqueStudents = len(students)
	if out.TotalSessions > 0 {
		out.AvgHintsPerSession = float64(hintedAnswers) / float64(out.TotalSessions)
	}
	sort.Slice(out.RecentActivity, func(i, j int) bool {
		return out.RecentActivity[i].LastMessageAt.After(out.RecentActivity[j].LastMessageAt)
	})
	if len(out.RecentActivity) > recentActivityLimit {
		out.RecentActivity = out.RecentActivity[:recentActivityLimit]
	}
	return out
}
