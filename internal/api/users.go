package api

import (
	"context"
	"net/http"

	"github.com/tai-edu/tai/internal/domain"
)

type createUserRequest struct {
	DeviceID string      `json:"device_id"`
	Role     domain.Role `json:"role"`
}

type joinCourseRequest struct {
	ClassCode string `json:"class_code"`
}

// CreateOrGetUser returns the user bound to (deviceID, role), creating it on
// first use.
func (c *Client) CreateOrGetUser(ctx context.Context, deviceID string, role domain.Role) (*domain.User, error) {
	var user domain.User
	err := c.sendJSON(ctx, "create user", http.MethodPost, c.endpoint("api", "users"),
		createUserRequest{DeviceID: deviceID, Role: role}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UserCourses lists the courses a user has joined or created.
func (c *Client) UserCourses(ctx context.Context, userID string) ([]domain.Course, error) {
	var courses []domain.Course
	if err := c.getJSON(ctx, "fetch user courses", c.endpoint("api", "users", userID, "courses"), &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// JoinCourse adds the course identified by classCode to the user's list.
// An unknown code fails with an error matching ErrCourseNotFound.
func (c *Client) JoinCourse(ctx context.Context, userID, classCode string) (*domain.Course, error) {
	var course domain.Course
	err := c.sendJSON(ctx, "join course", http.MethodPost, c.endpoint("api", "users", userID, "courses", "join"),
		joinCourseRequest{ClassCode: domain.NormalizeClassCode(classCode)}, &course)
	if err != nil {
		return nil, markNotFound(err, ErrCourseNotFound)
	}
	return &course, nil
}

// LeaveCourse removes a course from the user's list.
func (c *Client) LeaveCourse(ctx context.Context, userID, courseID string) error {
	return c.delete(ctx, "leave course", c.endpoint("api", "users", userID, "courses", courseID))
}
