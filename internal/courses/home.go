// Package courses implements the student and teacher home views: listing,
// joining, creating and leaving courses.
package courses

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tai-edu/tai/internal/api"
	"github.com/tai-edu/tai/internal/domain"
	"github.com/tai-edu/tai/internal/identity"
)

var (
	// ErrBlankClassCode is returned by Join before any request is made.
	ErrBlankClassCode = errors.New("class code is required")

	// ErrCourseNotFound is returned by Join for an unknown class code.
	ErrCourseNotFound = api.ErrCourseNotFound

	// ErrTeacherOnly is returned when a student home tries to create a course.
	ErrTeacherOnly = errors.New("only teachers can create courses")
)

// Backend is the subset of the API client the home views need.
type Backend interface {
	UserCourses(ctx context.Context, userID string) ([]domain.Course, error)
	JoinCourse(ctx context.Context, userID, classCode string) (*domain.Course, error)
	LeaveCourse(ctx context.Context, userID, courseID string) error
	CreateCourse(ctx context.Context, name, classCode string) (*domain.Course, error)
}

// Home is the course list for one role.
type Home struct {
	role     domain.Role
	ids      identity.Store
	backend  Backend
	validate *validator.Validate
	logger   *slog.Logger

	mu      sync.Mutex
	userID  string
	courses []domain.Course
}

// NewHome creates the home controller for role. A nil logger uses
// slog.Default.
func NewHome(role domain.Role, ids identity.Store, backend Backend, logger *slog.Logger) *Home {
	if logger == nil {
		logger = slog.Default()
	}
	return &Home{
		role:     role,
		ids:      ids,
		backend:  backend,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Role is the role this home serves.
func (h *Home) Role() domain.Role { return h.role }

// Courses returns a copy of the current list.
func (h *Home) Courses() []domain.Course {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.Course(nil), h.courses...)
}

// Load checks identity and fetches the user's courses. A guard failure is
// returned as *identity.RedirectError. A fetch failure is logged, leaves the
// list empty and is also returned.
func (h *Home) Load(ctx context.Context) error {
	session, err := identity.Require(ctx, h.ids, h.role)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.userID = session.UserID
	h.mu.Unlock()

	courses, err := h.backend.UserCourses(ctx, session.UserID)
	if err != nil {
		h.logger.Error("failed to fetch courses", "user_id", session.UserID, "error", err)
		h.mu.Lock()
		h.courses = nil
		h.mu.Unlock()
		return fmt.Errorf("load courses: %w", err)
	}

	h.mu.Lock()
	h.courses = courses
	h.mu.Unlock()
	return nil
}

func (h *Home) currentUser(ctx context.Context) (string, error) {
	h.mu.Lock()
	userID := h.userID
	h.mu.Unlock()
	if userID != "" {
		return userID, nil
	}
	session, err := identity.Require(ctx, h.ids, h.role)
	if err != nil {
		return "", err
	}
	h.mu.Lock()
	h.userID = session.UserID
	h.mu.Unlock()
	return session.UserID, nil
}

// Join adds the course with the given class code. Joining a course already
// in the list does not duplicate it.
func (h *Home) Join(ctx context.Context, classCode string) (*domain.Course, error) {
	code := domain.NormalizeClassCode(classCode)
	if code == "" {
		return nil, ErrBlankClassCode
	}
	userID, err := h.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	course, err := h.backend.JoinCourse(ctx, userID, code)
	if err != nil {
		h.logger.Warn("failed to join course", "class_code", code, "error", err)
		return nil, err
	}

	h.appendCourse(*course)
	h.logger.Info("joined course", "course_id", course.ID, "class_code", course.ClassCode)
	return course, nil
}

// CourseForm is the create-course input.
type CourseForm struct {
	Name      string `validate:"required,max=100"`
	ClassCode string `validate:"required,alphanum,max=10"`
}

// Create validates the form, creates the course and joins it as the
// teacher.
func (h *Home) Create(ctx context.Context, name, classCode string) (*domain.Course, error) {
	if h.role != domain.RoleTeacher {
		return nil, ErrTeacherOnly
	}
	form := CourseForm{
		Name:      strings.TrimSpace(name),
		ClassCode: domain.NormalizeClassCode(classCode),
	}
	if err := h.validate.Struct(form); err != nil {
		return nil, newFormError(err)
	}
	userID, err := h.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	course, err := h.backend.CreateCourse(ctx, form.Name, form.ClassCode)
	if err != nil {
		h.logger.Error("failed to create course", "class_code", form.ClassCode, "error", err)
		return nil, err
	}
	if _, err := h.backend.JoinCourse(ctx, userID, course.ClassCode); err != nil {
		h.logger.Error("failed to join created course", "course_id", course.ID, "error", err)
		return nil, err
	}

	h.appendCourse(*course)
	h.logger.Info("created course", "course_id", course.ID, "class_code", course.ClassCode)
	return course, nil
}

// Leave removes a course from the user's list.
func (h *Home) Leave(ctx context.Context, courseID string) error {
	userID, err := h.currentUser(ctx)
	if err != nil {
		return err
	}
	if err := h.backend.LeaveCourse(ctx, userID, courseID); err != nil {
		h.logger.Warn("failed to leave course", "course_id", courseID, "error", err)
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	kept := h.courses[:0]
	for _, c := range h.courses {
		if c.ID != courseID {
			kept = append(kept, c)
		}
	}
	h.courses = kept
	return nil
}

// SwitchRole forgets the cached role and user id and routes back to role
// selection. The device id is kept.
func (h *Home) SwitchRole(ctx context.Context) (identity.Route, error) {
	if err := h.ids.Clear(ctx); err != nil {
		return identity.RouteProceed, err
	}
	h.mu.Lock()
	h.userID = ""
	h.courses = nil
	h.mu.Unlock()
	return identity.RouteRoleSelect, nil
}

func (h *Home) appendCourse(c domain.Course) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, existing := range h.courses {
		if existing.ID == c.ID {
			return
		}
	}
	h.courses = append(h.courses, c)
}
