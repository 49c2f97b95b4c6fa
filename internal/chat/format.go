package chat

import (
	"regexp"
	"strings"

	"github.com/tai-edu/tai/internal/domain"
)

// RefusalMarker identifies refusal replies in history that carries no
// structured action.
const RefusalMarker = "I don't have enough information"

// Kind selects how a message is drawn.
type Kind int

const (
	KindUser Kind = iota
	KindAssistant
	KindRefusal
)

// Classify returns the display kind of e. A structured action wins over
// the text heuristic.
func Classify(e Entry) Kind {
	if e.Message.Role == domain.MessageRoleUser {
		return KindUser
	}
	if e.Action != "" {
		if e.Action.IsRefusal() {
			return KindRefusal
		}
		return KindAssistant
	}
	if strings.Contains(e.Message.Content, RefusalMarker) {
		return KindRefusal
	}
	return KindAssistant
}

// SegmentKind is the inline style of a Segment.
type SegmentKind int

const (
	SegmentPlain SegmentKind = iota
	SegmentBold
	SegmentCode
)

// Segment is a run of message text with one inline style. Text excludes
// the markers.
type Segment struct {
	Kind SegmentKind
	Text string
}

var inlinePattern = regexp.MustCompile("\\*\\*[^*]+\\*\\*|`[^`]+`")

// Segments splits content on **bold** and `code` spans. Unmatched markers
// stay in plain text.
func Segments(content string) []Segment {
	var out []Segment
	last := 0
	for _, loc := range inlinePattern.FindAllStringIndex(content, -1) {
		if loc[0] > last {
			out = append(out, Segment{Kind: SegmentPlain, Text: content[last:loc[0]]})
		}
		match := content[loc[0]:loc[1]]
		if strings.HasPrefix(match, "**") {
			out = append(out, Segment{Kind: SegmentBold, Text: match[2 : len(match)-2]})
		} else {
			out = append(out, Segment{Kind: SegmentCode, Text: match[1 : len(match)-1]})
		}
		last = loc[1]
	}
	if last < len(content) {
		out = append(out, Segment{Kind: SegmentPlain, Text: content[last:]})
	}
	return out
}
