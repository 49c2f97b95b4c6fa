package tui

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tai-edu/tai/internal/chat"
	"github.com/tai-edu/tai/internal/courses"
	"github.com/tai-edu/tai/internal/dashboard"
	"github.com/tai-edu/tai/internal/domain"
	"github.com/tai-edu/tai/internal/identity"
)

// Backend is everything the screens call on the API.
type Backend interface {
	identity.UserRegistry
	courses.Backend
	chat.Backend
	dashboard.Backend
}

// Deps wires the screens to their collaborators.
type Deps struct {
	Backend     Backend
	Identity    identity.Store
	Transcripts chat.TranscriptLogger
	Theme       Theme
	Logger      *slog.Logger
	// Clipboard overrides the system clipboard, mainly for tests.
	Clipboard func(string) error
	// UploadDir is where the file picker starts.
	UploadDir string
}

// Routes only reachable from inside the UI.
const (
	routeChat      identity.Route = "chat"
	routeDashboard identity.Route = "dashboard"
)

const (
	toastTTL     = 4 * time.Second
	headerHeight = 1
	footerHeight = 1
)

// navigateMsg switches the active screen.
type navigateMsg struct {
	route    identity.Route
	courseID string
}

func navigate(route identity.Route, courseID string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{route: route, courseID: courseID} }
}

type toastLevel int

const (
	toastInfo toastLevel = iota
	toastError
)

type toastMsg struct {
	text  string
	level toastLevel
}

func toast(text string) tea.Cmd {
	return func() tea.Msg { return toastMsg{text: text, level: toastInfo} }
}

func toastErr(text string) tea.Cmd {
	return func() tea.Msg { return toastMsg{text: text, level: toastError} }
}

type toastExpiredMsg struct{ seq int }

// screenResult carries an async result back to the screen that started it.
// Results for a screen that is no longer active are dropped.
type screenResult struct {
	screen int
	msg    tea.Msg
}

// screen is one routed view.
type screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (screen, tea.Cmd)
	View() string
	SetSize(width, height int)
	id() int
}

// base holds what every screen shares.
type base struct {
	sid    int
	deps   Deps
	styles Styles
	width  int
	height int
}

func (b *base) id() int { return b.sid }

func (b *base) SetSize(width, height int) {
	b.width = width
	b.height = height
}

// run executes fn off the update loop and tags its result with this screen.
func (b *base) run(fn func() tea.Msg) tea.Cmd {
	sid := b.sid
	return func() tea.Msg {
		return screenResult{screen: sid, msg: fn()}
	}
}

// App is the root Bubble Tea model.
type App struct {
	deps   Deps
	styles Styles
	logger *slog.Logger

	screen screen
	nextID int
	width  int
	height int

	toast    *toastMsg
	toastSeq int
}

// New builds the root model starting at role selection.
func New(deps Deps) App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Transcripts == nil {
		deps.Transcripts = chat.NopTranscriptLogger()
	}
	if deps.Theme.Name == "" {
		deps.Theme = PaperTheme()
	}
	a := App{
		deps:   deps,
		styles: NewStyles(deps.Theme),
		logger: deps.Logger,
	}
	a.screen = a.build(identity.RouteRoleSelect, "")
	return a
}

func (a *App) build(route identity.Route, courseID string) screen {
	a.nextID++
	b := base{sid: a.nextID, deps: a.deps, styles: a.styles, width: a.width, height: a.height}

	switch route {
	case identity.RouteStudentHome:
		return newHomeScreen(b, domain.RoleStudent)
	case identity.RouteTeacherHome:
		return newHomeScreen(b, domain.RoleTeacher)
	case routeChat:
		return newChatScreen(b, courseID)
	case routeDashboard:
		return newDashboardScreen(b, courseID)
	default:
		return newRoleSelectScreen(b)
	}
}

func (a App) Init() tea.Cmd {
	return a.screen.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.screen.SetSize(msg.Width, msg.Height-headerHeight-footerHeight)
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}

	case tea.MouseMsg:
		// screens lay out below the header
		msg.Y -= headerHeight
		var cmd tea.Cmd
		a.screen, cmd = a.screen.Update(msg)
		return a, cmd

	case navigateMsg:
		a.logger.Debug("navigate", "route", msg.route, "course_id", msg.courseID)
		a.screen = a.build(msg.route, msg.courseID)
		a.screen.SetSize(a.width, a.height-headerHeight-footerHeight)
		return a, a.screen.Init()

	case toastMsg:
		a.toastSeq++
		t := msg
		a.toast = &t
		seq := a.toastSeq
		return a, tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })

	case toastExpiredMsg:
		if msg.seq == a.toastSeq {
			a.toast = nil
		}
		return a, nil

	case screenResult:
		if msg.screen != a.screen.id() {
			a.logger.Debug("dropping result for inactive screen", "screen", msg.screen)
			return a, nil
		}
		var cmd tea.Cmd
		a.screen, cmd = a.screen.Update(msg.msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.screen, cmd = a.screen.Update(msg)
	return a, cmd
}

func (a App) View() string {
	header := a.styles.Header.Render("TA-I")
	body := a.screen.View()
	footer := ""
	if a.toast != nil {
		if a.toast.level == toastError {
			footer = a.styles.Error.Render(a.toast.text)
		} else {
			footer = a.styles.Success.Render(a.toast.text)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}
