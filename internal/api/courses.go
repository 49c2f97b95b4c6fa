package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tai-edu/tai/internal/domain"
)

type createCourseRequest struct {
	Name      string `json:"name"`
	ClassCode string `json:"class_code"`
}

// CreateCourse creates a course with a human-assigned class code.
func (c *Client) CreateCourse(ctx context.Context, name, classCode string) (*domain.Course, error) {
	var course domain.Course
	err := c.sendJSON(ctx, "create course", http.MethodPost, c.endpoint("api", "courses"),
		createCourseRequest{Name: name, ClassCode: domain.NormalizeClassCode(classCode)}, &course)
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// Course fetches a course by id.
func (c *Client) Course(ctx context.Context, courseID string) (*domain.Course, error) {
	var course domain.Course
	if err := c.getJSON(ctx, "fetch course", c.endpoint("api", "courses", courseID), &course); err != nil {
		return nil, markNotFound(err, ErrNotFound)
	}
	return &course, nil
}

// CourseByCode looks a course up by class code. An unknown code returns
// (nil, nil).
func (c *Client) CourseByCode(ctx context.Context, classCode string) (*domain.Course, error) {
	var course domain.Course
	err := c.getJSON(ctx, "fetch course", c.endpoint("api", "courses", "by-code", domain.NormalizeClassCode(classCode)), &course)
	if err != nil {
		if errors.Is(markNotFound(err, ErrNotFound), ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &course, nil
}
