package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tai-edu/tai/internal/chat"
	"github.com/tai-edu/tai/internal/identity"
)

type chatOpenedMsg struct{ err error }

type sendDoneMsg struct{ result chat.Result }

type chatScreen struct {
	base
	session  *chat.Session
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
}

func newChatScreen(b base, courseID string) *chatScreen {
	input := textinput.New()
	input.Placeholder = "Ask a question about your course..."
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	s := &chatScreen{
		base: b,
		session: chat.NewSession(courseID, b.deps.Identity, b.deps.Backend,
			chat.WithLogger(b.deps.Logger),
			chat.WithTranscriptLogger(b.deps.Transcripts),
		),
		input:    input,
		viewport: viewport.New(max(b.width, 40), max(b.height-8, 5)),
		spinner:  sp,
	}
	return s
}

func (s *chatScreen) SetSize(width, height int) {
	s.base.SetSize(width, height)
	s.viewport.Width = max(width, 40)
	s.viewport.Height = max(height-8, 5)
	s.input.Width = max(width-4, 20)
	s.refresh()
}

func (s *chatScreen) Init() tea.Cmd {
	session := s.session
	return tea.Batch(s.spinner.Tick, s.run(func() tea.Msg {
		return chatOpenedMsg{err: session.Open(context.Background())}
	}))
}

func (s *chatScreen) dispatch(p chat.Pending) tea.Cmd {
	session := s.session
	return s.run(func() tea.Msg {
		return sendDoneMsg{result: session.Dispatch(context.Background(), p)}
	})
}

func (s *chatScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case chatOpenedMsg:
		if cmd, ok := redirect(msg.err); ok {
			return s, cmd
		}
		s.refresh()
		return s, nil

	case sendDoneMsg:
		s.session.Complete(msg.result)
		s.refresh()
		return s, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *chatScreen) handleKey(msg tea.KeyMsg) (screen, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return s, navigate(identity.RouteStudentHome, "")
	case tea.KeyEnter:
		p, ok := s.session.Begin(s.input.Value(), false)
		if !ok {
			return s, nil
		}
		s.input.Reset()
		s.refresh()
		return s, s.dispatch(p)
	case tea.KeyCtrlE:
		return s.hint(chat.ExplainConcept)
	case tea.KeyCtrlG:
		return s.hint(chat.GiveHint)
	case tea.KeyCtrlN:
		if !s.session.State().AnotherHintEnabled() {
			return s, nil
		}
		return s.hint(chat.AnotherHint)
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		s.viewport, cmd = s.viewport.Update(msg)
		return s, cmd
	}

	if s.session.State().Error != "" {
		s.session.DismissError()
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *chatScreen) hint(a chat.HintAction) (screen, tea.Cmd) {
	draft := s.input.Value()
	p, ok := s.session.BeginHint(a, draft)
	if !ok {
		return s, nil
	}
	if strings.TrimSpace(draft) != "" {
		s.input.Reset()
	}
	s.refresh()
	return s, s.dispatch(p)
}

// refresh re-renders the transcript into the viewport.
func (s *chatScreen) refresh() {
	st := s.session.State()
	if st.Phase != chat.PhaseReady {
		return
	}
	width := s.viewport.Width
	if len(st.Messages) == 0 {
		s.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left,
			s.styles.Bold.Render("Start a conversation"),
			s.styles.Muted.Render("Ask me about your course materials. I can explain concepts,"),
			s.styles.Muted.Render("give hints on problems, and help you understand the material better."),
		))
		return
	}
	bubbles := make([]string, 0, len(st.Messages))
	for _, e := range st.Messages {
		bubbles = append(bubbles, RenderMessage(s.styles, e, width))
	}
	s.viewport.SetContent(strings.Join(bubbles, "\n"))
	s.viewport.GotoBottom()
}

func (s *chatScreen) View() string {
	st := s.session.State()
	styles := s.styles

	switch st.Phase {
	case chat.PhaseLoading:
		return styles.Content.Render(s.spinner.View() + " Loading course...")
	case chat.PhaseError:
		return styles.Content.Render(lipgloss.JoinVertical(lipgloss.Left,
			styles.Error.Render(st.Error),
			styles.Muted.Render("esc back to courses"),
		))
	}

	title := ""
	if st.Course != nil {
		title = st.Course.Name
	}
	rows := []string{styles.Title.Render(title), s.viewport.View()}
	if st.Sending {
		rows = append(rows, s.spinner.View()+styles.Muted.Render(" Thinking..."))
	}
	if st.Error != "" && st.Phase == chat.PhaseReady {
		rows = append(rows, styles.Error.Render(st.Error))
	}
	rows = append(rows,
		RenderHintBar(styles, st),
		s.input.View(),
		styles.Muted.Render("enter send • pgup/pgdn scroll • esc back"),
	)
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
