package identity

import (
	"context"
	"fmt"

	"github.com/tai-edu/tai/internal/domain"
)

// Route names a navigation target chosen by Guard.
type Route string

const (
	RouteProceed     Route = ""
	RouteRoleSelect  Route = "role-select"
	RouteStudentHome Route = "student-home"
	RouteTeacherHome Route = "teacher-home"
)

// HomeFor returns the landing route for a role.
func HomeFor(role domain.Role) Route {
	switch role {
	case domain.RoleStudent:
		return RouteStudentHome
	case domain.RoleTeacher:
		return RouteTeacherHome
	default:
		return RouteRoleSelect
	}
}

// Guard decides whether a view that requires role want may proceed.
func Guard(s Session, want domain.Role) Route {
	if !s.Complete() {
		return RouteRoleSelect
	}
	if s.Role != want {
		return HomeFor(s.Role)
	}
	return RouteProceed
}

// RedirectError is returned when a view refuses to load for the current
// identity. It is a navigation instruction, not a user-facing failure.
type RedirectError struct {
	Route Route
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirect to %s", e.Route)
}

// Require loads the current session and applies Guard. A redirect is
// reported as *RedirectError.
func Require(ctx context.Context, ids Store, want domain.Role) (Session, error) {
	s, err := ids.Current(ctx)
	if err != nil {
		return Session{}, err
	}
	if route := Guard(s, want); route != RouteProceed {
		return Session{}, &RedirectError{Route: route}
	}
	return s, nil
}
