// Package domain contains the client-side types of the TA-I REST contract.
package domain

import (
	"fmt"
	"time"
)

// Role is the part a device plays in a course.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// Other returns the opposite role.
func (r Role) Other() Role {
	if r == RoleTeacher {
		return RoleStudent
	}
	return RoleTeacher
}

// ParseRole converts user input into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q: must be %q or %q", s, RoleStudent, RoleTeacher)
	}
	return r, nil
}

// User represents an identity bound to a device and a role.
type User struct {
	ID          string    `json:"id"`
	DeviceID    string    `json:"device_id"`
	Role        Role      `json:"role"`
	DisplayName *string   `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}
