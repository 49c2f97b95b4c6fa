package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/tai-edu/tai/internal/chat"
)

// sanitize removes terminal escape sequences and control characters from
// server text. Everything printable is kept verbatim, including text that
// looks like markup.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r < 0x20, r == 0x7f, r >= 0x80 && r <= 0x9f:
			return -1
		}
		return r
	}, ansi.Strip(s))
}

// renderInline styles **bold** and `code` spans.
func renderInline(st Styles, content string) string {
	var b strings.Builder
	for _, seg := range chat.Segments(content) {
		switch seg.Kind {
		case chat.SegmentBold:
			b.WriteString(st.Bold.Render(seg.Text))
		case chat.SegmentCode:
			b.WriteString(st.InlineCode.Render(seg.Text))
		default:
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

// RenderMessage draws one transcript entry as a bubble. User messages are
// right aligned within width.
func RenderMessage(st Styles, e chat.Entry, width int) string {
	kind := chat.Classify(e)
	inner := max(width*4/5, 20)

	var label string
	style := st.AssistantBubble
	switch kind {
	case chat.KindUser:
		label = "You"
		style = st.UserBubble
	case chat.KindRefusal:
		label = "! TA"
		style = st.RefusalBubble
	default:
		label = "TA"
	}

	body := renderInline(st, sanitize(e.Message.Content))
	lines := []string{st.Muted.Render(label), lipgloss.NewStyle().Width(inner - 4).Render(body)}

	if kind != chat.KindUser {
		if e.Message.HintLevel != nil {
			lines = append(lines, st.Muted.Render(fmt.Sprintf("Hint Level: %d", *e.Message.HintLevel)))
		}
		if len(e.Message.Sources) > 0 {
			lines = append(lines, st.Muted.Render("Sources"))
			for _, src := range e.Message.Sources {
				lines = append(lines, st.Muted.Render(fmt.Sprintf("  %s (chunk %d)", sanitize(src.Filename), src.ChunkIndex)))
			}
		}
	}
	if e.State == chat.StatePending {
		lines = append(lines, st.Muted.Render("sending..."))
	}

	box := style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	if kind == chat.KindUser {
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, box)
	}
	return box
}
