package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tai-edu/tai/internal/identity"
)

// Focusable elements on the landing view.
const (
	landingFocusChoose = iota
	landingFocusQuit
	landingFocusCount
)

type identityCheckedMsg struct {
	session identity.Session
	err     error
}

type roleSelectedMsg struct {
	route identity.Route
	err   error
}

type roleSelectScreen struct {
	base
	onboarding *identity.Onboarding
	modal      RoleModal
	focus      int
	checking   bool
}

func newRoleSelectScreen(b base) *roleSelectScreen {
	s := &roleSelectScreen{
		base:       b,
		onboarding: identity.NewOnboarding(b.deps.Identity, b.deps.Backend, b.deps.Logger),
		checking:   true,
	}
	s.modal.SetSize(b.width, b.height)
	return s
}

func (s *roleSelectScreen) SetSize(width, height int) {
	s.base.SetSize(width, height)
	s.modal.SetSize(width, height)
}

// Init redirects straight to the home view when a role is already stored.
func (s *roleSelectScreen) Init() tea.Cmd {
	ids := s.deps.Identity
	return s.run(func() tea.Msg {
		session, err := ids.Current(context.Background())
		return identityCheckedMsg{session: session, err: err}
	})
}

func (s *roleSelectScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case identityCheckedMsg:
		s.checking = false
		if msg.err != nil {
			s.deps.Logger.Warn("failed to read identity", "error", msg.err)
			return s, nil
		}
		if msg.session.Complete() {
			return s, navigate(identity.HomeFor(msg.session.Role), "")
		}
		return s, nil

	case roleChosenMsg:
		onboarding := s.onboarding
		return s, s.run(func() tea.Msg {
			route, err := onboarding.SelectRole(context.Background(), msg.role)
			return roleSelectedMsg{route: route, err: err}
		})

	case roleSelectedMsg:
		s.modal.Settle()
		if msg.err != nil {
			if errors.Is(msg.err, identity.ErrSelectionInFlight) {
				return s, nil
			}
			return s, toastErr("Failed to select role. Please try again.")
		}
		return s, navigate(msg.route, "")

	case modalClosedMsg:
		s.focus = msg.restore
		return s, nil
	}

	if s.modal.IsOpen() {
		var cmd tea.Cmd
		s.modal, cmd = s.modal.Update(msg)
		return s, cmd
	}

	if key, ok := msg.(tea.KeyMsg); ok && !s.checking {
		switch key.Type {
		case tea.KeyTab, tea.KeyRight, tea.KeyDown:
			s.focus = (s.focus + 1) % landingFocusCount
		case tea.KeyShiftTab, tea.KeyLeft, tea.KeyUp:
			s.focus = (s.focus + landingFocusCount - 1) % landingFocusCount
		case tea.KeyEnter, tea.KeySpace:
			if s.focus == landingFocusQuit {
				return s, tea.Quit
			}
			s.modal.Open(s.focus)
		}
	}
	return s, nil
}

func (s *roleSelectScreen) View() string {
	if s.checking {
		return s.styles.Content.Render(s.styles.Muted.Render("Loading..."))
	}
	if s.modal.IsOpen() {
		return s.modal.View(s.styles)
	}

	btn := func(idx int, label string) string {
		if s.focus == idx {
			return s.styles.ButtonFocused.Render(label)
		}
		return s.styles.Button.Render(label)
	}
	return s.styles.Content.Render(lipgloss.JoinVertical(lipgloss.Left,
		s.styles.Title.Render("TA-I"),
		s.styles.Subtitle.Render("AI-Powered Teaching Assistant"),
		"",
		"Students ask questions about coursework and get guided hints, not answers.",
		"Teachers upload materials, configure guardrails and review activity.",
		"",
		lipgloss.JoinHorizontal(lipgloss.Center, btn(landingFocusChoose, "Choose your role"), " ", btn(landingFocusQuit, "Quit")),
		"",
		s.styles.Muted.Render("Your choice is saved locally. You can switch roles anytime."),
	))
}
