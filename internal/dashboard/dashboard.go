// Package dashboard is the teacher's per-course dashboard: uploaded
// material, guardrail settings and student activity.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/atotto/clipboard"
	"golang.org/x/sync/errgroup"

	"github.com/tai-edu/tai/internal/domain"
	"github.com/tai-edu/tai/internal/identity"
)

// LoadErrorMessage is shown when the initial load fails.
const LoadErrorMessage = "Error loading course"

// ErrUnknownFile is returned by Delete for a file id not in the list.
var ErrUnknownFile = errors.New("file not found")

// Backend is the subset of the API client the dashboard needs.
type Backend interface {
	Course(ctx context.Context, courseID string) (*domain.Course, error)
	CourseFiles(ctx context.Context, courseID string) ([]domain.CourseFile, error)
	Guardrails(ctx context.Context, courseID string) (*domain.Guardrails, error)
	CourseActivity(ctx context.Context, courseID string) (*domain.CourseActivity, error)
	UploadFile(ctx context.Context, courseID, filename string, r io.Reader) (*domain.UploadResult, error)
	DeleteCourseFile(ctx context.Context, courseID, fileID string) error
	UpdateGuardrails(ctx context.Context, courseID string, patch domain.GuardrailsPatch) (*domain.Guardrails, error)
}

// Phase is the dashboard's load state.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseError
)

// Tab selects which part of the fetched state is shown.
type Tab int

const (
	TabFiles Tab = iota
	TabGuardrails
	TabActivity
	tabCount
)

func (t Tab) String() string {
	switch t {
	case TabFiles:
		return "Files"
	case TabGuardrails:
		return "Guardrails"
	case TabActivity:
		return "Activity"
	default:
		return "Unknown"
	}
}

// Tabs lists every tab in display order.
var Tabs = []Tab{TabFiles, TabGuardrails, TabActivity}

// State is a read-only snapshot for rendering.
type State struct {
	Phase      Phase
	Error      string
	Tab        Tab
	Course     *domain.Course
	Files      []domain.CourseFile
	Guardrails domain.Guardrails
	Activity   *domain.CourseActivity
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithLogger sets the slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dashboard) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(d *Dashboard) {
		if write != nil {
			d.copyText = write
		}
	}
}

// Dashboard holds the fetched state of one course.
type Dashboard struct {
	courseID string
	ids      identity.Store
	backend  Backend
	logger   *slog.Logger
	copyText func(string) error

	// persistMu orders guardrail sends.
	persistMu sync.Mutex

	mu         sync.Mutex
	phase      Phase
	tab        Tab
	course     *domain.Course
	files      []domain.CourseFile
	guardrails domain.Guardrails
	activity   *domain.CourseActivity
}

// New creates the dashboard for courseID. Call Load before anything else.
func New(courseID string, ids identity.Store, backend Backend, opts ...Option) *Dashboard {
	d := &Dashboard{
		courseID: courseID,
		ids:      ids,
		backend:  backend,
		logger:   slog.Default(),
		copyText: clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CourseID is the id this dashboard was opened for.
func (d *Dashboard) CourseID() string { return d.courseID }

// Load checks identity, then fetches course, files, guardrails and
// activity concurrently. Any fetch failure moves to PhaseError; there is
// no retry.
func (d *Dashboard) Load(ctx context.Context) error {
	if _, err := identity.Require(ctx, d.ids, domain.RoleTeacher); err != nil {
		var redirect *identity.RedirectError
		if errors.As(err, &redirect) {
			return err
		}
		return d.failLoad(err)
	}

	var (
		course     *domain.Course
		files      []domain.CourseFile
		guardrails *domain.Guardrails
		activity   *domain.CourseActivity
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		course, err = d.backend.Course(gctx, d.courseID)
		return err
	})
	g.Go(func() (err error) {
		files, err = d.backend.CourseFiles(gctx, d.courseID)
		return err
	})
	g.Go(func() (err error) {
		guardrails, err = d.backend.Guardrails(gctx, d.courseID)
		return err
	})
	g.Go(func() (err error) {
		activity, err = d.backend.CourseActivity(gctx, d.courseID)
		return err
	})
	if err := g.Wait(); err != nil {
		return d.failLoad(err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.course = course
	d.files = files
	d.guardrails = *guardrails
	d.activity = activity
	d.phase = PhaseReady
	return nil
}

func (d *Dashboard) failLoad(err error) error {
	d.mu.Lock()
	d.phase = PhaseError
	d.mu.Unlock()
	d.logger.Error("failed to load dashboard", "course_id", d.courseID, "error", err)
	return fmt.Errorf("load dashboard: %w", err)
}

// State returns a snapshot for rendering.
func (d *Dashboard) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	st := State{
		Phase:      d.phase,
		Tab:        d.tab,
		Course:     d.course,
		Files:      append([]domain.CourseFile(nil), d.files...),
		Guardrails: d.guardrails,
		Activity:   d.activity,
	}
	if d.phase == PhaseError {
		st.Error = LoadErrorMessage
	}
	return st
}

// Activity returns the fetched activity summary.
func (d *Dashboard) Activity() *domain.CourseActivity {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.activity
}

// Tab returns the selected tab.
func (d *Dashboard) Tab() Tab {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tab
}

// SetTab selects t. Switching never re-fetches.
func (d *Dashboard) SetTab(t Tab) {
	if t < 0 || t >= tabCount {
		return
	}
	d.mu.Lock()
	d.tab = t
	d.mu.Unlock()
}

// NextTab moves right, wrapping at the end.
func (d *Dashboard) NextTab() Tab {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tab = (d.tab + 1) % tabCount
	return d.tab
}

// PrevTab moves left, wrapping at the start.
func (d *Dashboard) PrevTab() Tab {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tab = (d.tab + tabCount - 1) % tabCount
	return d.tab
}

// Upload sends one file, then re-fetches the whole file list.
func (d *Dashboard) Upload(ctx context.Context, path string) (*domain.UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	result, err := d.backend.UploadFile(ctx, d.courseID, filepath.Base(path), f)
	if err != nil {
		d.logger.Error("failed to upload file", "course_id", d.courseID, "path", path, "error", err)
		return nil, err
	}
	d.logger.Info("file uploaded", "course_id", d.courseID, "chunks", result.ChunksCreated)

	files, err := d.backend.CourseFiles(ctx, d.courseID)
	if err != nil {
		d.logger.Warn("failed to refresh files after upload", "course_id", d.courseID, "error", err)
		return result, fmt.Errorf("refresh files: %w", err)
	}
	d.mu.Lock()
	d.files = files
	d.mu.Unlock()
	return result, nil
}

// UploadMessage is the success toast for an upload.
func UploadMessage(r *domain.UploadResult) string {
	return fmt.Sprintf("Created %d searchable chunks", r.ChunksCreated)
}

// DeletePrompt is the confirmation question for deleting filename.
func DeletePrompt(filename string) string {
	return fmt.Sprintf("Delete \"%s\"? This will remove all its chunks.", filename)
}

// Delete removes a file after confirm approves the prompt. deleted is false
// when the user declined. On failure local state is untouched.
func (d *Dashboard) Delete(ctx context.Context, fileID string, confirm func(prompt string) bool) (deleted bool, err error) {
	d.mu.Lock()
	var filename string
	for _, f := range d.files {
		if f.ID == fileID {
			filename = f.Filename
			break
		}
	}
	d.mu.Unlock()
	if filename == "" {
		return false, ErrUnknownFile
	}

	if !confirm(DeletePrompt(filename)) {
		return false, nil
	}
	if err := d.backend.DeleteCourseFile(ctx, d.courseID, fileID); err != nil {
		d.logger.Error("failed to delete file", "course_id", d.courseID, "file_id", fileID, "error", err)
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	kept := make([]domain.CourseFile, 0, len(d.files))
	for _, f := range d.files {
		if f.ID != fileID {
			kept = append(kept, f)
		}
	}
	d.files = kept
	return true, nil
}

// CopyClassCode writes the course's class code to the system clipboard.
func (d *Dashboard) CopyClassCode() (string, error) {
	d.mu.Lock()
	course := d.course
	d.mu.Unlock()
	if course == nil {
		return "", errors.New("course not loaded")
	}
	if err := d.copyText(course.ClassCode); err != nil {
		return "", fmt.Errorf("copy class code: %w", err)
	}
	return course.ClassCode, nil
}
