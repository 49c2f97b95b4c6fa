package domain

import (
	"strings"
	"time"
)

// MaxClassCodeLength bounds the class code accepted by the join and create forms.
const MaxClassCodeLength = 10

// Course is a teacher-owned class that students join by code.
type Course struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ClassCode string    `json:"class_code"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizeClassCode trims and upper-cases a human-entered class code.
func NormalizeClassCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CourseFile is a piece of teaching material uploaded to a course.
type CourseFile struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"course_id"`
	Filename    string    `json:"filename"`
	StoragePath string    `json:"storage_path"`
	CreatedAt   time.Time `json:"created_at"`
}

// UploadResult is returned by the upload endpoint.
type UploadResult struct {
	Success       bool `json:"success"`
	ChunksCreated int  `json:"chunks_created"`
}
