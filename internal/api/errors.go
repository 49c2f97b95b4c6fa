package api

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound matches a 404 from course lookup or join. Other operations
	// never match it; their failures collapse to a generic *Error.
	ErrNotFound = errors.New("not found")

	// ErrCourseNotFound is the join-specific form of ErrNotFound.
	ErrCourseNotFound = errors.New("course not found")
)

// Error is returned by every Client method on failure.
type Error struct {
	// Op is the failed operation, e.g. "join course".
	Op string
	// StatusCode is the HTTP status, or 0 for transport failures.
	StatusCode int
	// Err is the transport or decoding cause, if any.
	Err error

	notFound error
}

func (e *Error) Error() string {
	if e.notFound == ErrCourseNotFound {
		return "Course not found"
	}
	return "failed to " + e.Op
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.notFound != nil {
		errs = append(errs, e.notFound)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Is lets errors.Is(err, ErrNotFound) hold for the course-not-found case too.
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.notFound != nil
}

// markNotFound tags a 404 *Error with the given sentinel; other errors pass through.
func markNotFound(err error, sentinel error) error {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		apiErr.notFound = sentinel
	}
	return err
}

// IsNotFound reports whether err is a distinguished 404 from course lookup or join.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
