package domain

import "time"

// ActivityItem summarizes one student session.
type ActivityItem struct {
	SessionID       string    `json:"session_id"`
	StudentID       string    `json:"student_id"`
	MessageCount    int       `json:"message_count"`
	LastMessageAt   time.Time `json:"last_message_at"`
	HintLevelsUsed  []int     `json:"hint_levels_used"`
	RecentQuestions []string  `json:"recent_questions"`
}

// CourseActivity is the read-only analytics view of a course.
type CourseActivity struct {
	TotalSessions      int            `json:"total_sessions"`
	TotalMessages      int            `json:"total_messages"`
	UniqueStudents     int            `json:"unique_students"`
	AvgHintsPerSession float64        `json:"avg_hints_per_session"`
	RecentActivity     []ActivityItem `json:"recent_activity"`
}
