package dashboard

import (
	"context"

	"github.com/tai-edu/tai/internal/domain"
)

func (d *Dashboard) SetAllowFinalAnswer(ctx context.Context, v bool) error {
	return d.update(ctx, domain.GuardrailsPatch{AllowFinalAnswer: &v})
}

func (d *Dashboard) SetAllowCode(ctx context.Context, v bool) error {
	return d.update(ctx, domain.GuardrailsPatch{AllowCode: &v})
}

func (d *Dashboard) SetMaxHintLevel(ctx context.Context, level int) error {
	return d.update(ctx, domain.GuardrailsPatch{MaxHintLevel: &level})
}

func (d *Dashboard) SetCourseLevel(ctx context.Context, level domain.CourseLevel) error {
	return d.update(ctx, domain.GuardrailsPatch{CourseLevel: &level})
}

func (d *Dashboard) SetAssessmentMode(ctx context.Context, mode domain.AssessmentMode) error {
	return d.update(ctx, domain.GuardrailsPatch{AssessmentMode: &mode})
}

// update applies patch locally, then persists it. A failed persist is
// returned but the local value is kept.
func (d *Dashboard) update(ctx context.Context, patch domain.GuardrailsPatch) error {
	if err := d.ApplyGuardrails(patch); err != nil {
		return err
	}
	return d.PersistGuardrails(ctx, patch)
}

// ApplyGuardrails validates patch and applies it to local state. It makes
// no request.
func (d *Dashboard) ApplyGuardrails(patch domain.GuardrailsPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	d.guardrails = d.guardrails.Apply(patch)
	d.mu.Unlock()
	return nil
}

// PersistGuardrails sends the fields named by patch to the backend. The
// values sent are the local ones at send time, and sends are serialized, so
// the last send always carries the latest local state. Local state is not
// rolled back on failure.
func (d *Dashboard) PersistGuardrails(ctx context.Context, patch domain.GuardrailsPatch) error {
	d.persistMu.Lock()
	defer d.persistMu.Unlock()

	d.mu.Lock()
	latest := currentValues(d.guardrails, patch)
	d.mu.Unlock()

	if _, err := d.backend.UpdateGuardrails(ctx, d.courseID, latest); err != nil {
		d.logger.Error("failed to update guardrails", "course_id", d.courseID, "error", err)
		return err
	}
	return nil
}

// currentValues returns a patch naming the same fields as patch, filled
// from g.
func currentValues(g domain.Guardrails, patch domain.GuardrailsPatch) domain.GuardrailsPatch {
	var out domain.GuardrailsPatch
	if patch.AllowFinalAnswer != nil {
		out.AllowFinalAnswer = &g.AllowFinalAnswer
	}
	if patch.AllowCode != nil {
		out.AllowCode = &g.AllowCode
	}
	if patch.MaxHintLevel != nil {
		out.MaxHintLevel = &g.MaxHintLevel
	}
	if patch.CourseLevel != nil {
		out.CourseLevel = &g.CourseLevel
	}
	if patch.AssessmentMode != nil {
		out.AssessmentMode = &g.AssessmentMode
	}
	return out
}
