package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tai-edu/tai/internal/domain"
)

const (
	modalWidth  = 50
	modalHeight = 11
)

// Focusable elements inside the modal, in tab order.
const (
	modalFocusStudent = iota
	modalFocusTeacher
	modalFocusCancel
	modalFocusCount
)

// roleChosenMsg asks the parent to start role selection.
type roleChosenMsg struct {
	role domain.Role
}

// modalClosedMsg tells the parent to restore focus to restore.
type modalClosedMsg struct {
	restore int
}

// RoleModal asks for a role. While open it owns all key input: Tab and
// Shift+Tab only cycle its own buttons.
type RoleModal struct {
	open     bool
	focus    int
	restore  int
	inFlight bool
	pending  domain.Role
	width    int
	height   int
}

// Open shows the modal and remembers the parent's focused element.
func (m *RoleModal) Open(restore int) {
	m.open = true
	m.focus = modalFocusStudent
	m.restore = restore
}

// IsOpen reports whether the modal is visible.
func (m RoleModal) IsOpen() bool { return m.open }

// InFlight reports whether a role choice is being processed.
func (m RoleModal) InFlight() bool { return m.inFlight }

// Focus returns the focused element index.
func (m RoleModal) Focus() int { return m.focus }

// SetSize records the screen size used to center the modal.
func (m *RoleModal) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Settle ends an in-flight choice so the buttons are live again.
func (m *RoleModal) Settle() {
	m.inFlight = false
	m.pending = ""
}

// Bounds returns the modal box as [x0, x1) x [y0, y1) screen cells.
func (m RoleModal) Bounds() (x0, y0, x1, y1 int) {
	x0 = max((m.width-modalWidth)/2, 0)
	y0 = max((m.height-modalHeight)/2, 0)
	return x0, y0, x0 + modalWidth, y0 + modalHeight
}

func (m RoleModal) close() (RoleModal, tea.Cmd) {
	m.open = false
	restore := m.restore
	return m, func() tea.Msg { return modalClosedMsg{restore: restore} }
}

func (m RoleModal) choose(role domain.Role) (RoleModal, tea.Cmd) {
	if m.inFlight {
		return m, nil
	}
	m.inFlight = true
	m.pending = role
	return m, func() tea.Msg { return roleChosenMsg{role: role} }
}

func (m RoleModal) Update(msg tea.Msg) (RoleModal, tea.Cmd) {
	if !m.open {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc:
			return m.close()
		case tea.KeyTab, tea.KeyRight, tea.KeyDown:
			m.focus = (m.focus + 1) % modalFocusCount
		case tea.KeyShiftTab, tea.KeyLeft, tea.KeyUp:
			m.focus = (m.focus + modalFocusCount - 1) % modalFocusCount
		case tea.KeyEnter, tea.KeySpace:
			switch m.focus {
			case modalFocusStudent:
				return m.choose(domain.RoleStudent)
			case modalFocusTeacher:
				return m.choose(domain.RoleTeacher)
			case modalFocusCancel:
				return m.close()
			}
		}
		return m, nil

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		x0, y0, x1, y1 := m.Bounds()
		if msg.X < x0 || msg.X >= x1 || msg.Y < y0 || msg.Y >= y1 {
			return m.close()
		}
	}
	return m, nil
}

func (m RoleModal) View(st Styles) string {
	if !m.open {
		return ""
	}

	button := func(idx int, label string, role domain.Role) string {
		switch {
		case m.inFlight && role != "" && m.pending == role:
			return st.ButtonDisabled.Render("Loading...")
		case m.inFlight && role != "":
			return st.ButtonDisabled.Render(label)
		case m.focus == idx:
			return st.ButtonFocused.Render(label)
		default:
			return st.Button.Render(label)
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		st.Title.Render("Who are you?"),
		lipgloss.JoinHorizontal(lipgloss.Center,
			button(modalFocusStudent, "I'm a Student", domain.RoleStudent),
			" ",
			button(modalFocusTeacher, "I'm a Teacher", domain.RoleTeacher),
		),
		button(modalFocusCancel, "Cancel", ""),
	)
	box := st.Modal.Width(modalWidth - 2).Height(modalHeight - 2).Align(lipgloss.Center).Render(content)
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
