package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tai-edu/tai/internal/dashboard"
	"github.com/tai-edu/tai/internal/domain"
	"github.com/tai-edu/tai/internal/identity"
)

// uploadTypes are the extensions the server can extract text from.
var uploadTypes = []string{".pdf", ".txt", ".md"}

// Guardrail rows in display order.
const (
	rowAllowFinalAnswer = iota
	rowAllowCode
	rowMaxHintLevel
	rowCourseLevel
	rowAssessmentMode
	rowCount
)

type dashboardLoadedMsg struct{ err error }

type uploadDoneMsg struct {
	result *domain.UploadResult
	err    error
}

type deleteDoneMsg struct {
	deleted bool
	err     error
}

type guardrailSavedMsg struct{ err error }

type confirmDialog struct {
	fileID string
	prompt string
}

type dashboardScreen struct {
	base
	dash *dashboard.Dashboard

	picking   bool
	picker    filepicker.Model
	uploading bool
	confirm   *confirmDialog
	spinner   spinner.Model

	fileCursor  int
	guardCursor int
}

func newDashboardScreen(b base, courseID string) *dashboardScreen {
	opts := []dashboard.Option{dashboard.WithLogger(b.deps.Logger)}
	if b.deps.Clipboard != nil {
		opts = append(opts, dashboard.WithClipboard(b.deps.Clipboard))
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &dashboardScreen{
		base:    b,
		dash:    dashboard.New(courseID, b.deps.Identity, b.deps.Backend, opts...),
		spinner: sp,
	}
}

func (s *dashboardScreen) Init() tea.Cmd {
	dash := s.dash
	return tea.Batch(s.spinner.Tick, s.run(func() tea.Msg {
		return dashboardLoadedMsg{err: dash.Load(context.Background())}
	}))
}

func (s *dashboardScreen) newPicker() filepicker.Model {
	fp := filepicker.New()
	fp.AllowedTypes = uploadTypes
	fp.CurrentDirectory = s.deps.UploadDir
	if fp.CurrentDirectory == "" {
		if wd, err := os.Getwd(); err == nil {
			fp.CurrentDirectory = wd
		}
	}
	fp.Height = max(s.height-6, 5)
	return fp
}

func (s *dashboardScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		if cmd, ok := redirect(msg.err); ok {
			return s, cmd
		}
		return s, nil

	case uploadDoneMsg:
		s.uploading = false
		switch {
		case msg.result == nil:
			return s, toastErr("Failed to upload file")
		case msg.err != nil:
			return s, toastErr(dashboard.UploadMessage(msg.result) + ", but the file list could not be refreshed")
		}
		return s, toast(dashboard.UploadMessage(msg.result))

	case deleteDoneMsg:
		if msg.err != nil {
			return s, toastErr("Failed to delete file")
		}
		if msg.deleted {
			s.fileCursor = min(s.fileCursor, max(len(s.dash.State().Files)-1, 0))
			return s, toast("File deleted")
		}
		return s, nil

	case guardrailSavedMsg:
		if msg.err != nil {
			return s, toastErr("Failed to save guardrails")
		}
		return s, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}

	if s.picking {
		return s.updatePicker(msg)
	}
	if s.confirm != nil {
		return s.updateConfirm(msg)
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		return s.handleKey(key)
	}
	return s, nil
}

func (s *dashboardScreen) updatePicker(msg tea.Msg) (screen, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
		s.picking = false
		return s, nil
	}

	var cmd tea.Cmd
	s.picker, cmd = s.picker.Update(msg)

	if didSelect, path := s.picker.DidSelectFile(msg); didSelect {
		s.picking = false
		s.uploading = true
		dash := s.dash
		return s, s.run(func() tea.Msg {
			result, err := dash.Upload(context.Background(), path)
			return uploadDoneMsg{result: result, err: err}
		})
	}
	if didSelect, path := s.picker.DidSelectDisabledFile(msg); didSelect {
		return s, toastErr(fmt.Sprintf("Unsupported file type: %s", path))
	}
	return s, cmd
}

func (s *dashboardScreen) updateConfirm(msg tea.Msg) (screen, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch key.String() {
	case "y", "Y", "enter":
		fileID := s.confirm.fileID
		s.confirm = nil
		dash := s.dash
		return s, s.run(func() tea.Msg {
			deleted, err := dash.Delete(context.Background(), fileID, func(string) bool { return true })
			return deleteDoneMsg{deleted: deleted, err: err}
		})
	case "n", "N", "esc":
		s.confirm = nil
	}
	return s, nil
}

func (s *dashboardScreen) handleKey(key tea.KeyMsg) (screen, tea.Cmd) {
	st := s.dash.State()
	switch key.Type {
	case tea.KeyEsc:
		return s, navigate(identity.RouteTeacherHome, "")
	case tea.KeyTab:
		s.dash.NextTab()
		return s, nil
	case tea.KeyShiftTab:
		s.dash.PrevTab()
		return s, nil
	}
	if st.Phase != dashboard.PhaseReady {
		return s, nil
	}
	if key.String() == "c" {
		code, err := s.dash.CopyClassCode()
		if err != nil {
			return s, toastErr("Failed to copy class code")
		}
		return s, toast("Copied class code " + code)
	}

	switch st.Tab {
	case dashboard.TabFiles:
		return s.handleFilesKey(key, st)
	case dashboard.TabGuardrails:
		return s.handleGuardrailsKey(key, st)
	}
	return s, nil
}

func (s *dashboardScreen) handleFilesKey(key tea.KeyMsg, st dashboard.State) (screen, tea.Cmd) {
	switch key.String() {
	case "up", "k":
		if s.fileCursor > 0 {
			s.fileCursor--
		}
	case "down", "j":
		if s.fileCursor < len(st.Files)-1 {
			s.fileCursor++
		}
	case "u":
		if s.uploading {
			return s, nil
		}
		s.picker = s.newPicker()
		s.picking = true
		return s, s.picker.Init()
	case "x", "delete":
		if len(st.Files) == 0 {
			return s, nil
		}
		f := st.Files[min(s.fileCursor, len(st.Files)-1)]
		s.confirm = &confirmDialog{fileID: f.ID, prompt: dashboard.DeletePrompt(f.Filename)}
	}
	return s, nil
}

func cycle[T comparable](values []T, current T, step int) T {
	for i, v := range values {
		if v == current {
			return values[(i+step+len(values))%len(values)]
		}
	}
	return values[0]
}

func (s *dashboardScreen) handleGuardrailsKey(key tea.KeyMsg, st dashboard.State) (screen, tea.Cmd) {
	step := 0
	switch key.String() {
	case "up", "k":
		if s.guardCursor > 0 {
			s.guardCursor--
		}
		return s, nil
	case "down", "j":
		if s.guardCursor < rowCount-1 {
			s.guardCursor++
		}
		return s, nil
	case "right", "l", "enter", " ":
		step = 1
	case "left", "h":
		step = -1
	default:
		return s, nil
	}

	g := st.Guardrails
	var patch domain.GuardrailsPatch
	switch s.guardCursor {
	case rowAllowFinalAnswer:
		v := !g.AllowFinalAnswer
		patch.AllowFinalAnswer = &v
	case rowAllowCode:
		v := !g.AllowCode
		patch.AllowCode = &v
	case rowMaxHintLevel:
		v := g.MaxHintLevel + step
		if v < 0 || v > domain.MaxHintLevel {
			return s, nil
		}
		patch.MaxHintLevel = &v
	case rowCourseLevel:
		v := cycle(domain.CourseLevels, g.CourseLevel, step)
		patch.CourseLevel = &v
	case rowAssessmentMode:
		v := cycle(domain.AssessmentModes, g.AssessmentMode, step)
		patch.AssessmentMode = &v
	}

	// Local state changes now; only the request waits.
	if err := s.dash.ApplyGuardrails(patch); err != nil {
		return s, toastErr("Invalid guardrail value")
	}
	dash := s.dash
	return s, s.run(func() tea.Msg {
		return guardrailSavedMsg{err: dash.PersistGuardrails(context.Background(), patch)}
	})
}

func (s *dashboardScreen) View() string {
	st := s.dash.State()
	styles := s.styles

	switch st.Phase {
	case dashboard.PhaseLoading:
		return styles.Content.Render(s.spinner.View() + " Loading course...")
	case dashboard.PhaseError:
		return styles.Content.Render(lipgloss.JoinVertical(lipgloss.Left,
			styles.Error.Render(st.Error),
			styles.Muted.Render("esc back to courses"),
		))
	}

	if s.picking {
		return styles.Content.Render(lipgloss.JoinVertical(lipgloss.Left,
			styles.Bold.Render("Upload course material (.pdf, .txt, .md)"),
			s.picker.View(),
			styles.Muted.Render("enter select • esc cancel"),
		))
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		styles.Title.Render(st.Course.Name),
		"  ",
		styles.Muted.Render("Class code: "+st.Course.ClassCode+" (c to copy)"),
	)

	tabs := make([]string, 0, len(dashboard.Tabs))
	for _, t := range dashboard.Tabs {
		if t == st.Tab {
			tabs = append(tabs, styles.TabActive.Render(t.String()))
		} else {
			tabs = append(tabs, styles.TabInactive.Render(t.String()))
		}
	}

	var body string
	switch st.Tab {
	case dashboard.TabFiles:
		body = s.viewFiles(st)
	case dashboard.TabGuardrails:
		body = s.viewGuardrails(st)
	case dashboard.TabActivity:
		body = viewActivity(styles, st.Activity)
	}

	rows := []string{header, lipgloss.JoinHorizontal(lipgloss.Top, tabs...), "", body}
	if s.confirm != nil {
		rows = append(rows, "", styles.Modal.Render(lipgloss.JoinVertical(lipgloss.Left,
			styles.Warning.Render(s.confirm.prompt),
			styles.Muted.Render("y delete • n cancel"),
		)))
	}
	rows = append(rows, "", styles.Muted.Render("tab switch view • esc back"))
	return styles.Content.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (s *dashboardScreen) viewFiles(st dashboard.State) string {
	styles := s.styles
	var rows []string
	if s.uploading {
		rows = append(rows, s.spinner.View()+" Uploading and indexing...")
	}
	if len(st.Files) == 0 {
		rows = append(rows, styles.Muted.Render("No files uploaded yet."))
	}
	for i, f := range st.Files {
		line := fmt.Sprintf("%-40s %s", f.Filename, f.CreatedAt.Local().Format("Jan 2, 2006"))
		if i == s.fileCursor {
			rows = append(rows, styles.Selected.Render("> "+line))
		} else {
			rows = append(rows, "  "+line)
		}
	}
	rows = append(rows, "", styles.Muted.Render("u upload • x delete • ↑/↓ select"))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func onOff(v bool) string {
	if v {
		return "[x]"
	}
	return "[ ]"
}

func (s *dashboardScreen) viewGuardrails(st dashboard.State) string {
	g := st.Guardrails
	lines := [rowCount]string{
		fmt.Sprintf("%s Allow final answers", onOff(g.AllowFinalAnswer)),
		fmt.Sprintf("%s Allow code in answers", onOff(g.AllowCode)),
		fmt.Sprintf("Max hint level  ‹ %d ›  %s", g.MaxHintLevel, LevelIndicator(s.styles, g.MaxHintLevel)),
		fmt.Sprintf("Course level    ‹ %s ›", g.CourseLevel),
		fmt.Sprintf("Assessment mode ‹ %s ›", g.AssessmentMode),
	}
	rows := make([]string, 0, rowCount+2)
	for i, l := range lines {
		if i == s.guardCursor {
			rows = append(rows, s.styles.Selected.Render("> "+l))
		} else {
			rows = append(rows, "  "+l)
		}
	}
	rows = append(rows, "", s.styles.Muted.Render("↑/↓ select • space toggle • ←/→ change"))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func viewActivity(st Styles, a *domain.CourseActivity) string {
	if a == nil {
		return st.Muted.Render("No activity yet.")
	}
	rows := []string{
		fmt.Sprintf("Sessions %d   Messages %d   Students %d   Avg hints/session %.1f",
			a.TotalSessions, a.TotalMessages, a.UniqueStudents, a.AvgHintsPerSession),
		"",
	}
	if len(a.RecentActivity) == 0 {
		rows = append(rows, st.Muted.Render("No student sessions yet."))
		return lipgloss.JoinVertical(lipgloss.Left, rows...)
	}
	rows = append(rows, st.Bold.Render(fmt.Sprintf("%-18s %-8s %-12s %s", "Last active", "Msgs", "Hint levels", "Recent questions")))
	for _, item := range a.RecentActivity {
		levels := make([]string, len(item.HintLevelsUsed))
		for i, l := range item.HintLevelsUsed {
			levels[i] = fmt.Sprint(l)
		}
		questions := make([]string, len(item.RecentQuestions))
		for i, q := range item.RecentQuestions {
			questions[i] = truncate(sanitize(q), 40)
		}
		rows = append(rows, fmt.Sprintf("%-18s %-8d %-12s %s",
			item.LastMessageAt.Local().Format("Jan 2 15:04"),
			item.MessageCount,
			strings.Join(levels, ","),
			strings.Join(questions, " | "),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
