package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tai-edu/tai/internal/dashboard"
	"github.com/tai-edu/tai/internal/domain"
	"github.com/tai-edu/tai/internal/identity"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// result runs a screen command and unwraps the tagged message.
func result(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	res, ok := msg.(screenResult)
	require.True(t, ok, "got %T", msg)
	return res.msg
}

func newLoadedDashboard(t *testing.T, h *harness) (*dashboardScreen, *domain.Course) {
	t.Helper()
	ctx := context.Background()
	h.selectRole(t, domain.RoleTeacher)
	course, err := h.client.CreateCourse(ctx, "Physics", "PHY1")
	require.NoError(t, err)
	_, err = h.client.UploadFile(ctx, course.ID, "motion.md", strings.NewReader("Newton's laws describe motion."))
	require.NoError(t, err)

	b := base{sid: 1, deps: h.deps(), styles: NewStyles(PaperTheme()), width: 100, height: 30}
	s := newDashboardScreen(b, course.ID)
	_, cmd := s.Update(dashboardLoadedMsg{err: s.dash.Load(ctx)})
	assert.Nil(t, cmd)
	require.Equal(t, dashboard.PhaseReady, s.dash.State().Phase)
	return s, course
}

func TestDashboardTabs(t *testing.T) {
	s, _ := newLoadedDashboard(t, newHarness(t))
	assert.Contains(t, s.View(), "motion.md")

	s.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, dashboard.TabGuardrails, s.dash.Tab())
	assert.Contains(t, s.View(), "Allow final answers")

	s.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, dashboard.TabActivity, s.dash.Tab())
	assert.Contains(t, s.View(), "Sessions 0")

	s.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, dashboard.TabFiles, s.dash.Tab())

	s.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, dashboard.TabActivity, s.dash.Tab())
}

func TestDashboardStudentRedirected(t *testing.T) {
	h := newHarness(t)
	h.selectRole(t, domain.RoleStudent)
	course, err := h.client.CreateCourse(context.Background(), "Physics", "PHY1")
	require.NoError(t, err)

	s := newDashboardScreen(base{sid: 1, deps: h.deps(), styles: NewStyles(PaperTheme())}, course.ID)
	_, cmd := s.Update(dashboardLoadedMsg{err: s.dash.Load(context.Background())})
	require.NotNil(t, cmd)
	assert.Equal(t, navigateMsg{route: identity.RouteStudentHome}, cmd())
}

func TestDashboardDeleteAsksFirst(t *testing.T) {
	s, _ := newLoadedDashboard(t, newHarness(t))

	_, cmd := s.Update(runes("x"))
	assert.Nil(t, cmd)
	require.NotNil(t, s.confirm)
	assert.Contains(t, s.View(), `Delete "motion.md"? This will remove all its chunks.`)

	s.Update(runes("n"))
	assert.Nil(t, s.confirm)
	assert.Len(t, s.dash.State().Files, 1)

	s.Update(runes("x"))
	_, cmd = s.Update(runes("y"))
	msg := result(t, cmd)
	assert.Equal(t, deleteDoneMsg{deleted: true}, msg)

	_, cmd = s.Update(msg)
	require.NotNil(t, cmd)
	assert.Equal(t, toastMsg{text: "File deleted", level: toastInfo}, cmd())
	assert.Empty(t, s.dash.State().Files)
	assert.Contains(t, s.View(), "No files uploaded yet.")
}

func TestDashboardGuardrailEdits(t *testing.T) {
	h := newHarness(t)
	s, course := newLoadedDashboard(t, h)
	ctx := context.Background()
	before := s.dash.State().Guardrails

	s.Update(tea.KeyMsg{Type: tea.KeyTab})

	_, cmd := s.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.Equal(t, guardrailSavedMsg{}, result(t, cmd))
	assert.Equal(t, !before.AllowFinalAnswer, s.dash.State().Guardrails.AllowFinalAnswer)

	s.Update(tea.KeyMsg{Type: tea.KeyDown})
	s.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd = s.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, guardrailSavedMsg{}, result(t, cmd))

	s.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd = s.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, guardrailSavedMsg{}, result(t, cmd))

	remote, err := h.client.Guardrails(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, !before.AllowFinalAnswer, remote.AllowFinalAnswer)
	assert.Equal(t, before.MaxHintLevel-1, remote.MaxHintLevel)
	assert.Equal(t, cycle(domain.CourseLevels, before.CourseLevel, 1), remote.CourseLevel)
	assert.Equal(t, s.dash.State().Guardrails, *remote)
}

func TestDashboardMaxHintLevelStaysInRange(t *testing.T) {
	s, _ := newLoadedDashboard(t, newHarness(t))
	s.Update(tea.KeyMsg{Type: tea.KeyTab})
	s.Update(tea.KeyMsg{Type: tea.KeyDown})
	s.Update(tea.KeyMsg{Type: tea.KeyDown})

	for s.dash.State().Guardrails.MaxHintLevel < domain.MaxHintLevel {
		_, cmd := s.Update(tea.KeyMsg{Type: tea.KeyRight})
		result(t, cmd)
	}
	_, cmd := s.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Nil(t, cmd)
}

func TestDashboardCopyClassCode(t *testing.T) {
	h := newHarness(t)
	s, _ := newLoadedDashboard(t, h)

	_, cmd := s.Update(runes("c"))
	require.NotNil(t, cmd)
	assert.Equal(t, toastMsg{text: "Copied class code PHY1", level: toastInfo}, cmd())
	assert.Equal(t, []string{"PHY1"}, h.copied)
}

func TestCycle(t *testing.T) {
	levels := domain.CourseLevels
	assert.Equal(t, levels[1], cycle(levels, levels[0], 1))
	assert.Equal(t, levels[len(levels)-1], cycle(levels, levels[0], -1))
	assert.Equal(t, levels[0], cycle(levels, levels[len(levels)-1], 1))
	assert.Equal(t, levels[0], cycle(levels, "nonsense", 1))
}

func TestDashboardGuardrailToggleIsImmediate(t *testing.T) {
	h := newHarness(t)
	s, course := newLoadedDashboard(t, h)
	before := s.dash.State().Guardrails.AllowFinalAnswer

	s.Update(tea.KeyMsg{Type: tea.KeyTab})

	_, first := s.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.Equal(t, !before, s.dash.State().Guardrails.AllowFinalAnswer)

	_, second := s.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.Equal(t, before, s.dash.State().Guardrails.AllowFinalAnswer)

	// Requests complete in reverse order.
	assert.Equal(t, guardrailSavedMsg{}, result(t, second))
	assert.Equal(t, guardrailSavedMsg{}, result(t, first))

	remote, err := h.client.Guardrails(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Equal(t, before, remote.AllowFinalAnswer)
	assert.Equal(t, s.dash.State().Guardrails, *remote)
}

func TestDashboardGuardrailSaveFailureKeepsValue(t *testing.T) {
	h := newHarness(t)
	s, _ := newLoadedDashboard(t, h)
	h.fail("PUT /guardrails")

	s.Update(tea.KeyMsg{Type: tea.KeyTab})
	s.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := s.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.True(t, s.dash.State().Guardrails.AllowCode)

	msg := result(t, cmd)
	_, cmd = s.Update(msg)
	require.NotNil(t, cmd)
	assert.Equal(t, toastMsg{text: "Failed to save guardrails", level: toastError}, cmd())
	assert.True(t, s.dash.State().Guardrails.AllowCode)
}

func TestDashboardUploadRefreshFailure(t *testing.T) {
	h := newHarness(t)
	s, _ := newLoadedDashboard(t, h)
	path := filepath.Join(t.TempDir(), "forces.txt")
	require.NoError(t, os.WriteFile(path, []byte("F = ma"), 0o600))

	h.fail("GET /files")
	res, err := s.dash.Upload(context.Background(), path)
	require.Error(t, err)
	require.NotNil(t, res)

	_, cmd := s.Update(uploadDoneMsg{result: res, err: err})
	require.NotNil(t, cmd)
	got, ok := cmd().(toastMsg)
	require.True(t, ok)
	assert.Equal(t, toastError, got.level)
	assert.Contains(t, got.text, "Created 1 searchable chunks")
	assert.Contains(t, got.text, "could not be refreshed")
}

func TestDashboardUploadSuccessToast(t *testing.T) {
	h := newHarness(t)
	s, _ := newLoadedDashboard(t, h)
	path := filepath.Join(t.TempDir(), "forces.txt")
	require.NoError(t, os.WriteFile(path, []byte("F = ma"), 0o600))

	res, err := s.dash.Upload(context.Background(), path)
	require.NoError(t, err)

	_, cmd := s.Update(uploadDoneMsg{result: res})
	require.NotNil(t, cmd)
	assert.Equal(t, toastMsg{text: "Created 1 searchable chunks", level: toastInfo}, cmd())
	assert.Len(t, s.dash.State().Files, 2)
}
