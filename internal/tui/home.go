package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tai-edu/tai/internal/courses"
	"github.com/tai-edu/tai/internal/domain"
	"github.com/tai-edu/tai/internal/identity"
)

type homeMode int

const (
	homeList homeMode = iota
	homeJoin
	homeCreate
)

type coursesLoadedMsg struct{ err error }

type courseJoinedMsg struct {
	course *domain.Course
	err    error
}

type courseCreatedMsg struct {
	course *domain.Course
	err    error
}

type courseLeftMsg struct{ err error }

type roleSwitchedMsg struct {
	route identity.Route
	err   error
}

type homeScreen struct {
	base
	role    domain.Role
	home    *courses.Home
	loading bool
	loadErr bool
	busy    bool
	cursor  int
	mode    homeMode

	name      textinput.Model
	code      textinput.Model
	formFocus int
}

func newHomeScreen(b base, role domain.Role) *homeScreen {
	name := textinput.New()
	name.Placeholder = "Course name"
	name.CharLimit = 100

	code := textinput.New()
	code.Placeholder = "Class code"
	code.CharLimit = domain.MaxClassCodeLength

	return &homeScreen{
		base:    b,
		role:    role,
		home:    courses.NewHome(role, b.deps.Identity, b.deps.Backend, b.deps.Logger),
		loading: true,
		name:    name,
		code:    code,
	}
}

func (s *homeScreen) Init() tea.Cmd {
	home := s.home
	return s.run(func() tea.Msg {
		return coursesLoadedMsg{err: home.Load(context.Background())}
	})
}

// redirect turns a guard failure into navigation.
func redirect(err error) (tea.Cmd, bool) {
	var r *identity.RedirectError
	if errors.As(err, &r) {
		return navigate(r.Route, ""), true
	}
	return nil, false
}

func joinErrorMessage(err error) string {
	var fe *courses.FormError
	switch {
	case errors.Is(err, courses.ErrBlankClassCode):
		return "Please enter a class code"
	case errors.Is(err, courses.ErrCourseNotFound):
		return "Course not found. Please check the class code."
	case errors.As(err, &fe):
		return fe.Error()
	default:
		return "Failed to join course"
	}
}

func (s *homeScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case coursesLoadedMsg:
		s.loading = false
		if cmd, ok := redirect(msg.err); ok {
			return s, cmd
		}
		s.loadErr = msg.err != nil
		s.clampCursor()
		if s.loadErr {
			return s, toastErr("Failed to load courses")
		}
		return s, nil

	case courseJoinedMsg:
		s.busy = false
		if msg.err != nil {
			if cmd, ok := redirect(msg.err); ok {
				return s, cmd
			}
			return s, toastErr(joinErrorMessage(msg.err))
		}
		s.closeForm()
		s.loadErr = false
		return s, toast("Joined " + msg.course.Name)

	case courseCreatedMsg:
		s.busy = false
		if msg.err != nil {
			var fe *courses.FormError
			if errors.As(msg.err, &fe) {
				return s, toastErr(fe.Error())
			}
			return s, toastErr("Failed to create course")
		}
		s.closeForm()
		s.loadErr = false
		return s, toast(fmt.Sprintf("Created %s (%s)", msg.course.Name, msg.course.ClassCode))

	case courseLeftMsg:
		s.busy = false
		if msg.err != nil {
			return s, toastErr("Failed to leave course")
		}
		s.clampCursor()
		return s, nil

	case roleSwitchedMsg:
		if msg.err != nil {
			return s, toastErr("Failed to switch role")
		}
		return s, navigate(msg.route, "")

	case tea.KeyMsg:
		if s.mode != homeList {
			return s.updateForm(msg)
		}
		return s.updateList(msg)
	}
	return s, nil
}

func (s *homeScreen) updateList(msg tea.KeyMsg) (screen, tea.Cmd) {
	list := s.home.Courses()
	switch msg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(list)-1 {
			s.cursor++
		}
	case "enter":
		if len(list) == 0 {
			return s, nil
		}
		route := routeChat
		if s.role == domain.RoleTeacher {
			route = routeDashboard
		}
		return s, navigate(route, list[s.cursor].ID)
	case "a", "+":
		s.openForm(s.role == domain.RoleTeacher)
		return s, textinput.Blink
	case "i":
		s.openForm(false)
		return s, textinput.Blink
	case "r":
		if s.loading {
			return s, nil
		}
		s.loading = true
		return s, s.Init()
	case "l":
		if len(list) == 0 || s.busy {
			return s, nil
		}
		s.busy = true
		home, courseID := s.home, list[s.cursor].ID
		return s, s.run(func() tea.Msg {
			return courseLeftMsg{err: home.Leave(context.Background(), courseID)}
		})
	case "s":
		home := s.home
		return s, s.run(func() tea.Msg {
			route, err := home.SwitchRole(context.Background())
			return roleSwitchedMsg{route: route, err: err}
		})
	case "q":
		return s, tea.Quit
	}
	return s, nil
}

// openForm shows the create form for create, the class code form otherwise.
func (s *homeScreen) openForm(create bool) {
	s.name.Reset()
	s.code.Reset()
	if create {
		s.mode = homeCreate
		s.formFocus = 0
		s.name.Focus()
		s.code.Blur()
		return
	}
	s.mode = homeJoin
	s.formFocus = 0
	s.name.Blur()
	s.code.Focus()
}

func (s *homeScreen) closeForm() {
	s.mode = homeList
	s.name.Blur()
	s.code.Blur()
}

func (s *homeScreen) updateForm(msg tea.KeyMsg) (screen, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		s.closeForm()
		return s, nil
	case tea.KeyTab, tea.KeyShiftTab:
		if s.mode == homeCreate {
			s.formFocus = 1 - s.formFocus
			if s.formFocus == 0 {
				s.name.Focus()
				s.code.Blur()
			} else {
				s.code.Focus()
				s.name.Blur()
			}
		}
		return s, nil
	case tea.KeyEnter:
		if s.busy {
			return s, nil
		}
		if s.mode == homeCreate && s.formFocus == 0 {
			s.formFocus = 1
			s.name.Blur()
			s.code.Focus()
			return s, nil
		}
		return s, s.submit()
	}

	var cmd tea.Cmd
	if s.mode == homeCreate && s.formFocus == 0 {
		s.name, cmd = s.name.Update(msg)
	} else {
		s.code, cmd = s.code.Update(msg)
	}
	return s, cmd
}

func (s *homeScreen) submit() tea.Cmd {
	home := s.home
	code := s.code.Value()
	if s.mode == homeJoin {
		if strings.TrimSpace(code) == "" {
			return toastErr(joinErrorMessage(courses.ErrBlankClassCode))
		}
		s.busy = true
		return s.run(func() tea.Msg {
			course, err := home.Join(context.Background(), code)
			return courseJoinedMsg{course: course, err: err}
		})
	}
	name := s.name.Value()
	s.busy = true
	return s.run(func() tea.Msg {
		course, err := home.Create(context.Background(), name, code)
		return courseCreatedMsg{course: course, err: err}
	})
}

func (s *homeScreen) clampCursor() {
	n := len(s.home.Courses())
	if s.cursor >= n {
		s.cursor = max(n-1, 0)
	}
}

func (s *homeScreen) View() string {
	st := s.styles
	title := "My Courses"
	if s.role == domain.RoleTeacher {
		title = "Courses I Teach"
	}

	var rows []string
	rows = append(rows, st.Title.Render(title))

	switch {
	case s.loading:
		rows = append(rows, st.Muted.Render("Loading courses..."))
	case s.loadErr && len(s.home.Courses()) == 0:
		rows = append(rows, st.Error.Render("Could not load your courses. Press r to retry."))
	case len(s.home.Courses()) == 0:
		if s.role == domain.RoleTeacher {
			rows = append(rows, st.Muted.Render("No courses yet. Press a to create one."))
		} else {
			rows = append(rows, st.Muted.Render("No courses yet. Press a and enter the class code from your teacher."))
		}
	default:
		for i, c := range s.home.Courses() {
			line := fmt.Sprintf("%s  %s", c.Name, st.Muted.Render(c.ClassCode))
			if i == s.cursor {
				line = st.Selected.Render("> " + c.Name + "  " + c.ClassCode)
			} else {
				line = "  " + line
			}
			rows = append(rows, line)
		}
	}

	rows = append(rows, "")
	switch s.mode {
	case homeJoin:
		rows = append(rows, st.Bold.Render("Join a course"), s.code.View(), st.Muted.Render("enter join • esc cancel"))
	case homeCreate:
		rows = append(rows, st.Bold.Render("Create a course"), s.name.View(), s.code.View(), st.Muted.Render("tab switch field • enter create • esc cancel"))
	default:
		action := "a join"
		open := "enter chat"
		if s.role == domain.RoleTeacher {
			action = "a create • i join by code"
			open = "enter dashboard"
		}
		rows = append(rows, st.Muted.Render(fmt.Sprintf("↑/↓ select • %s • %s • l leave • r reload • s switch role • q quit", open, action)))
	}
	if s.busy {
		rows = append(rows, st.Muted.Render("Working..."))
	}
	return st.Content.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
