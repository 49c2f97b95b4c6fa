package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tai-edu/tai/internal/chat"
	"github.com/tai-edu/tai/internal/domain"
)

// hintKeys are the shortcuts shown on each hint button.
var hintKeys = map[chat.HintAction]string{
	chat.ExplainConcept: "ctrl+e",
	chat.GiveHint:       "ctrl+g",
	chat.AnotherHint:    "ctrl+n",
}

// LevelIndicator draws one segment per level 0..MaxHintLevel, filled up to
// and including level.
func LevelIndicator(st Styles, level int) string {
	var b strings.Builder
	for i := 0; i <= domain.MaxHintLevel; i++ {
		if i <= level {
			b.WriteString(st.LevelOn.Render("●"))
		} else {
			b.WriteString(st.LevelOff.Render("○"))
		}
	}
	return b.String()
}

// RenderHintBar draws the three hint buttons and the level indicator.
func RenderHintBar(st Styles, s chat.State) string {
	buttons := make([]string, 0, 3)
	for _, a := range []chat.HintAction{chat.ExplainConcept, chat.GiveHint, chat.AnotherHint} {
		enabled := !s.Sending
		if a == chat.AnotherHint {
			enabled = s.AnotherHintEnabled()
		}
		label := a.Label() + " " + hintKeys[a]
		if enabled {
			buttons = append(buttons, st.Button.Render(label))
		} else {
			buttons = append(buttons, st.ButtonDisabled.Render(label))
		}
	}
	level := lipgloss.JoinHorizontal(lipgloss.Center, st.Muted.Render("Level "), LevelIndicator(st, s.HintLevel))
	return lipgloss.JoinHorizontal(lipgloss.Center, append(buttons, "  ", level)...)
}
