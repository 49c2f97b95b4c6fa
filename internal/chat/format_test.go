package chat

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/tai-edu/tai/internal/domain"
)

func TestComposeHint(t *testing.T) {
	tests := []struct {
		name       string
		action     HintAction
		draft      string
		hasHistory bool
		content    string
		increase   bool
		ok         bool
	}{
		{"concept with draft", ExplainConcept, "  recursion ", false, "Can you explain the concept behind this? recursion", false, true},
		{"hint with draft", GiveHint, "question 2", true, "Can you give me a hint? question 2", false, true},
		{"another with draft", AnotherHint, "question 2", true, "Can you give me another hint? question 2", true, true},
		{"empty draft continues", AnotherHint, "   ", true, "Can you give me another hint? I'm still working on the previous question.", true, true},
		{"hint continues", GiveHint, "", true, "Can you give me a hint? I'm still working on the previous question.", false, true},
		{"nothing to send", ExplainConcept, "", false, "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, increase, ok := ComposeHint(tt.action, tt.draft, tt.hasHistory)
			assert.Equal(t, tt.content, content)
			assert.Equal(t, tt.increase, increase)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestAnotherHintEnabled(t *testing.T) {
	for level := 0; level <= 4; level++ {
		for _, count := range []int{0, 1, 7} {
			want := level < 3 && count > 0
			assert.Equal(t, want, AnotherHintEnabled(level, count), "level=%d count=%d", level, count)
		}
	}
}

func TestClassify(t *testing.T) {
	refusalText := "I don't have enough information in the course materials to answer that question."
	tests := []struct {
		name  string
		entry Entry
		want  Kind
	}{
		{"user", Entry{Message: domain.ChatMessage{Role: domain.MessageRoleUser, Content: refusalText}}, KindUser},
		{"assistant", Entry{Message: domain.ChatMessage{Role: domain.MessageRoleAssistant, Content: "Sure."}}, KindAssistant},
		{"history refusal by text", Entry{Message: domain.ChatMessage{Role: domain.MessageRoleAssistant, Content: refusalText}}, KindRefusal},
		{"structured refusal", Entry{Action: domain.ActionRefuseOutOfScope, Message: domain.ChatMessage{Role: domain.MessageRoleAssistant, Content: "Out of scope."}}, KindRefusal},
		{"integrity refusal", Entry{Action: domain.ActionAnswerWithIntegrityRefusal, Message: domain.ChatMessage{Role: domain.MessageRoleAssistant}}, KindRefusal},
		{"action wins over text", Entry{Action: domain.ActionAnswer, Message: domain.ChatMessage{Role: domain.MessageRoleAssistant, Content: refusalText}}, KindAssistant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.entry))
		})
	}
}

func TestSegments(t *testing.T) {
	tests := []struct {
		in   string
		want []Segment
	}{
		{"", nil},
		{"plain text", []Segment{{SegmentPlain, "plain text"}}},
		{"use **recursion** with `fib(n)` here", []Segment{
			{SegmentPlain, "use "},
			{SegmentBold, "recursion"},
			{SegmentPlain, " with "},
			{SegmentCode, "fib(n)"},
			{SegmentPlain, " here"},
		}},
		{"**a****b**", []Segment{{SegmentBold, "a"}, {SegmentBold, "b"}}},
		{"unclosed **bold and `code", []Segment{{SegmentPlain, "unclosed **bold and `code"}}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, Segments(tt.in)); diff != "" {
			t.Errorf("Segments(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}
