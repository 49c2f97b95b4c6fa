// Package tui is the terminal front end: Bubble Tea screens that render
// controller state and turn key presses into controller calls.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette colors shared by both themes.
var (
	Destructive = lipgloss.Color("#d64541")
	Success     = lipgloss.Color("#4f9d69")
	Warning     = lipgloss.Color("#e0a526")
)

// Theme holds one color scheme.
type Theme struct {
	Name       string
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	UserBubble lipgloss.Color
}

// PaperTheme is the warm notebook look.
func PaperTheme() Theme {
	return Theme{
		Name:       "paper",
		Foreground: lipgloss.Color("#2b2a27"),
		Primary:    lipgloss.Color("#b4532a"),
		Accent:     lipgloss.Color("#d9822b"),
		Muted:      lipgloss.Color("#8a857a"),
		Border:     lipgloss.Color("#c9c2b2"),
		Card:       lipgloss.Color("#f6f1e7"),
		UserBubble: lipgloss.Color("#b4532a"),
	}
}

// ClassicTheme is the blue on neutral look.
func ClassicTheme() Theme {
	return Theme{
		Name:       "classic",
		Foreground: lipgloss.Color("#1f2937"),
		Primary:    lipgloss.Color("#2563eb"),
		Accent:     lipgloss.Color("#7c3aed"),
		Muted:      lipgloss.Color("#6b7280"),
		Border:     lipgloss.Color("#d1d5db"),
		Card:       lipgloss.Color("#f9fafb"),
		UserBubble: lipgloss.Color("#2563eb"),
	}
}

// ThemeByName returns the named theme, defaulting to paper.
func ThemeByName(name string) Theme {
	if strings.EqualFold(name, "classic") {
		return ClassicTheme()
	}
	return PaperTheme()
}

// Styles holds all the styled components.
type Styles struct {
	Theme Theme

	Header  lipgloss.Style
	Footer  lipgloss.Style
	Content lipgloss.Style

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	Button         lipgloss.Style
	ButtonFocused  lipgloss.Style
	ButtonDisabled lipgloss.Style
	Modal          lipgloss.Style

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	RefusalBubble   lipgloss.Style
	InlineCode      lipgloss.Style

	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	Selected    lipgloss.Style

	LevelOn  lipgloss.Style
	LevelOff lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme.
func NewStyles(theme Theme) Styles {
	button := lipgloss.NewStyle().
		Padding(0, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Foreground(theme.Foreground)

	bubble := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder())

	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),
		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),
		Content: lipgloss.NewStyle().
			Padding(1, 2),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),
		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),
		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		Button: button,
		ButtonFocused: button.
			BorderForeground(theme.Primary).
			Foreground(theme.Primary).
			Bold(true),
		ButtonDisabled: button.
			Foreground(theme.Muted).
			Faint(true),
		Modal: lipgloss.NewStyle().
			Padding(1, 3).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(theme.Primary),

		UserBubble: bubble.
			BorderForeground(theme.UserBubble).
			Foreground(theme.Foreground),
		AssistantBubble: bubble.
			BorderForeground(theme.Border).
			Foreground(theme.Foreground),
		RefusalBubble: bubble.
			BorderForeground(Warning).
			Foreground(theme.Foreground),
		InlineCode: lipgloss.NewStyle().
			Background(theme.Card).
			Foreground(theme.Accent),

		TabActive: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Underline(true).
			Padding(0, 2),
		TabInactive: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),
		Selected: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		LevelOn: lipgloss.NewStyle().
			Foreground(theme.Accent),
		LevelOff: lipgloss.NewStyle().
			Foreground(theme.Border),

		Success: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),
		Warning: lipgloss.NewStyle().
			Foreground(Warning),
	}
}
