package chat

import (
	"strings"

	"github.com/tai-edu/tai/internal/domain"
)

// HintAction is one of the shortcut buttons under the chat input.
type HintAction int

const (
	ExplainConcept HintAction = iota
	GiveHint
	AnotherHint
)

// ContinuePrevious stands in for the draft when a hint is requested with
// an empty input and existing history.
const ContinuePrevious = "I'm still working on the previous question."

// Prefix is the text prepended to the draft for a.
func (a HintAction) Prefix() string {
	switch a {
	case ExplainConcept:
		return "Can you explain the concept behind this? "
	case GiveHint:
		return "Can you give me a hint? "
	case AnotherHint:
		return "Can you give me another hint? "
	default:
		return ""
	}
}

// Label is the button caption.
func (a HintAction) Label() string {
	switch a {
	case ExplainConcept:
		return "Explain Concept"
	case GiveHint:
		return "Give Hint"
	case AnotherHint:
		return "Another Hint"
	default:
		return ""
	}
}

// ComposeHint builds the message for a hint shortcut. ok is false when
// there is neither a draft nor any history, in which case nothing is sent.
// Only AnotherHint asks the server to raise the hint level.
func ComposeHint(a HintAction, draft string, hasHistory bool) (content string, increase bool, ok bool) {
	draft = strings.TrimSpace(draft)
	switch {
	case draft != "":
		content = a.Prefix() + draft
	case hasHistory:
		content = a.Prefix() + ContinuePrevious
	default:
		return "", false, false
	}
	return content, a == AnotherHint, true
}

// AnotherHintEnabled reports whether "Another hint" may be pressed.
func AnotherHintEnabled(level, messageCount int) bool {
	return level < domain.MaxHintLevel && messageCount > 0
}
