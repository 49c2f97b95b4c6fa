package courses

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FormError reports invalid create-course input, one message per field.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, field := range []string{"Name", "ClassCode"} {
		if msg, ok := e.Fields[field]; ok {
			msgs = append(msgs, msg)
		}
	}
	return strings.Join(msgs, "; ")
}

func newFormError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	fe := &FormError{Fields: make(map[string]string, len(validationErrors))}
	for _, v := range validationErrors {
		fe.Fields[v.Field()] = fieldMessage(v)
	}
	return fe
}

func fieldMessage(v validator.FieldError) string {
	label := "course name"
	if v.Field() == "ClassCode" {
		label = "class code"
	}
	switch v.Tag() {
	case "required":
		return label + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, v.Param())
	case "alphanum":
		return label + " must contain only letters and digits"
	default:
		return label + " is invalid"
	}
}
