package api

import (
	"context"
	"net/http"

	"github.com/tai-edu/tai/internal/domain"
)

// Guardrails fetches a course's guardrail configuration.
func (c *Client) Guardrails(ctx context.Context, courseID string) (*domain.Guardrails, error) {
	var g domain.Guardrails
	if err := c.getJSON(ctx, "fetch guardrails", c.endpoint("api", "courses", courseID, "guardrails"), &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// UpdateGuardrails persists a partial update and returns the full result.
func (c *Client) UpdateGuardrails(ctx context.Context, courseID string, patch domain.GuardrailsPatch) (*domain.Guardrails, error) {
	var g domain.Guardrails
	err := c.sendJSON(ctx, "update guardrails", http.MethodPut, c.endpoint("api", "courses", courseID, "guardrails"), patch, &g)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// CourseActivity returns the course's aggregate activity view.
func (c *Client) CourseActivity(ctx context.Context, courseID string) (*domain.CourseActivity, error) {
	var a domain.CourseActivity
	if err := c.getJSON(ctx, "fetch course activity", c.endpoint("api", "courses", courseID, "activity"), &a); err != nil {
		return nil, err
	}
	return &a, nil
}
