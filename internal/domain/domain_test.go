package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeClassCode(t *testing.T) {
	assert.Equal(t, "CS101", NormalizeClassCode("  cs101 "))
	assert.Equal(t, "", NormalizeClassCode("   "))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("teacher")
	require.NoError(t, err)
	assert.Equal(t, RoleTeacher, r)
	assert.Equal(t, RoleStudent, r.Other())

	_, err = ParseRole("admin")
	require.Error(t, err)
}

func TestGuardrailsPatchEncodesOnlySetFields(t *testing.T) {
	allow := false
	body, err := json.Marshal(GuardrailsPatch{AllowCode: &allow})
	require.NoError(t, err)
	assert.JSONEq(t, `{"allow_code":false}`, string(body))
}

func TestGuardrailsApply(t *testing.T) {
	g := Guardrails{AllowCode: true, MaxHintLevel: 3, CourseLevel: CourseLevelUniversity, AssessmentMode: AssessmentHomework}
	level := 1
	mode := AssessmentExam

	got := g.Apply(GuardrailsPatch{MaxHintLevel: &level, AssessmentMode: &mode})

	assert.True(t, got.AllowCode)
	assert.Equal(t, 1, got.MaxHintLevel)
	assert.Equal(t, AssessmentExam, got.AssessmentMode)
	assert.Equal(t, CourseLevelUniversity, got.CourseLevel)
}

func TestGuardrailsPatchValidate(t *testing.T) {
	tooHigh := 4
	assert.Error(t, GuardrailsPatch{MaxHintLevel: &tooHigh}.Validate())

	bad := CourseLevel("kindergarten")
	assert.Error(t, GuardrailsPatch{CourseLevel: &bad}.Validate())

	ok := AssessmentQuiz
	assert.NoError(t, GuardrailsPatch{AssessmentMode: &ok}.Validate())
	assert.True(t, GuardrailsPatch{}.Empty())
}

func TestChatActionIsRefusal(t *testing.T) {
	assert.False(t, ActionAnswer.IsRefusal())
	assert.True(t, ActionRefuseOutOfScope.IsRefusal())
	assert.True(t, ActionAnswerWithIntegrityRefusal.IsRefusal())
}
