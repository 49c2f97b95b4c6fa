package domain

import "fmt"

// CourseLevel tunes the assistant's register.
type CourseLevel string

const (
	CourseLevelElementary CourseLevel = "elementary"
	CourseLevelMiddle     CourseLevel = "middle"
	CourseLevelHigh       CourseLevel = "high"
	CourseLevelUniversity CourseLevel = "university"
)

// CourseLevels lists every level in display order.
var CourseLevels = []CourseLevel{CourseLevelElementary, CourseLevelMiddle, CourseLevelHigh, CourseLevelUniversity}

// Valid reports whether l is a known course level.
func (l CourseLevel) Valid() bool {
	for _, v := range CourseLevels {
		if v == l {
			return true
		}
	}
	return false
}

// AssessmentMode describes what kind of work students are doing.
type AssessmentMode string

const (
	AssessmentHomework AssessmentMode = "homework"
	AssessmentQuiz     AssessmentMode = "quiz"
	AssessmentExam     AssessmentMode = "exam"
	AssessmentPractice AssessmentMode = "practice"
	AssessmentUnknown  AssessmentMode = "unknown"
)

// AssessmentModes lists every mode in display order.
var AssessmentModes = []AssessmentMode{AssessmentHomework, AssessmentQuiz, AssessmentExam, AssessmentPractice, AssessmentUnknown}

// Valid reports whether m is a known assessment mode.
func (m AssessmentMode) Valid() bool {
	for _, v := range AssessmentModes {
		if v == m {
			return true
		}
	}
	return false
}

// Guardrails is the per-course configuration bounding assistant behavior.
// The client only displays and edits it; enforcement is server-side.
type Guardrails struct {
	AllowFinalAnswer bool           `json:"allow_final_answer"`
	AllowCode        bool           `json:"allow_code"`
	MaxHintLevel     int            `json:"max_hint_level"`
	CourseLevel      CourseLevel    `json:"course_level"`
	AssessmentMode   AssessmentMode `json:"assessment_mode"`
}

// GuardrailsPatch is a partial guardrails update. Nil fields are omitted
// from the request body.
type GuardrailsPatch struct {
	AllowFinalAnswer *bool           `json:"allow_final_answer,omitempty"`
	AllowCode        *bool           `json:"allow_code,omitempty"`
	MaxHintLevel     *int            `json:"max_hint_level,omitempty"`
	CourseLevel      *CourseLevel    `json:"course_level,omitempty"`
	AssessmentMode   *AssessmentMode `json:"assessment_mode,omitempty"`
}

// Validate checks the enumerated and ranged fields that are set.
func (p GuardrailsPatch) Validate() error {
	if p.MaxHintLevel != nil && (*p.MaxHintLevel < 0 || *p.MaxHintLevel > MaxHintLevel) {
		return fmt.Errorf("max_hint_level must be between 0 and %d, got %d", MaxHintLevel, *p.MaxHintLevel)
	}
	if p.CourseLevel != nil && !p.CourseLevel.Valid() {
		return fmt.Errorf("unknown course_level %q", *p.CourseLevel)
	}
	if p.AssessmentMode != nil && !p.AssessmentMode.Valid() {
		return fmt.Errorf("unknown assessment_mode %q", *p.AssessmentMode)
	}
	return nil
}

// Empty reports whether the patch changes nothing.
func (p GuardrailsPatch) Empty() bool {
	return p.AllowFinalAnswer == nil && p.AllowCode == nil && p.MaxHintLevel == nil &&
		p.CourseLevel == nil && p.AssessmentMode == nil
}

// Apply returns g with every set field of p applied.
func (g Guardrails) Apply(p GuardrailsPatch) Guardrails {
	if p.AllowFinalAnswer != nil {
		g.AllowFinalAnswer = *p.AllowFinalAnswer
	}
	if p.AllowCode != nil {
		g.AllowCode = *p.AllowCode
	}
	if p.MaxHintLevel != nil {
		g.MaxHintLevel = *p.MaxHintLevel
	}
	if p.CourseLevel != nil {
		g.CourseLevel = *p.CourseLevel
	}
	if p.AssessmentMode != nil {
		g.AssessmentMode = *p.AssessmentMode
	}
	return g
}
