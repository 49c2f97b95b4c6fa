package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tai-edu/tai/internal/domain"
	"github.com/tai-edu/tai/internal/identity"
)

// User-facing error messages.
const (
	LoadErrorMessage = "Failed to load course. Please check your connection."
	SendErrorMessage = "Failed to send message. Please try again."
)

// Phase is the lifecycle stage of an opened chat view.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseError
)

// Backend is the subset of the API client the chat view needs.
type Backend interface {
	Course(ctx context.Context, courseID string) (*domain.Course, error)
	CreateSession(ctx context.Context, courseID, studentID string) (*domain.ChatSession, error)
	SessionMessages(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)
	SendMessage(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error)
}

// Pending is a send that has been recorded locally but not dispatched.
type Pending struct {
	ID      string
	Request domain.ChatRequest
}

// Result is the outcome of dispatching a Pending send.
type Result struct {
	Pending  Pending
	Response *domain.ChatResponse
	Err      error
}

// State is a read-only snapshot for rendering.
type State struct {
	Phase     Phase
	Course    *domain.Course
	SessionID string
	Messages  []Entry
	HintLevel int
	Sending   bool
	Error     string
}

// AnotherHintEnabled reports whether the "Another hint" shortcut is live.
func (s State) AnotherHintEnabled() bool {
	return !s.Sending && AnotherHintEnabled(s.HintLevel, len(s.Messages))
}

// Option configures a Session.
type Option func(*Session)

// WithTranscriptLogger records confirmed messages.
func WithTranscriptLogger(l TranscriptLogger) Option {
	return func(s *Session) {
		if l != nil {
			s.transcriptLog = l
		}
	}
}

// WithLogger sets the slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithIDGenerator overrides correlation id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Session) { s.newID = gen }
}

// Session drives one opened chat view for a course.
type Session struct {
	courseID      string
	ids           identity.Store
	backend       Backend
	transcriptLog TranscriptLogger
	logger        *slog.Logger
	now           func() time.Time
	newID         func() string

	mu         sync.Mutex
	phase      Phase
	loadErr    string
	sendErr    string
	course     *domain.Course
	session    *domain.ChatSession
	transcript Transcript
	hintLevel  int
	sending    bool
}

// NewSession creates a controller for the chat view of courseID. Call Open
// before anything else.
func NewSession(courseID string, ids identity.Store, backend Backend, opts ...Option) *Session {
	s := &Session{
		courseID:      courseID,
		ids:           ids,
		backend:       backend,
		transcriptLog: noopTranscriptLogger{},
		logger:        slog.Default(),
		now:           time.Now,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open checks identity, then loads the course, creates a fresh session and
// loads its history. A guard failure returns *identity.RedirectError and
// leaves the phase unchanged. Any other failure moves to PhaseError.
func (s *Session) Open(ctx context.Context) error {
	if _, err := identity.Require(ctx, s.ids, domain.RoleStudent); err != nil {
		var redirect *identity.RedirectError
		if errors.As(err, &redirect) {
			return err
		}
		return s.failLoad(err)
	}

	deviceID, err := s.ids.DeviceID(ctx)
	if err != nil {
		return s.failLoad(err)
	}
	course, err := s.backend.Course(ctx, s.courseID)
	if err != nil {
		return s.failLoad(err)
	}
	session, err := s.backend.CreateSession(ctx, course.ID, deviceID)
	if err != nil {
		return s.failLoad(err)
	}
	history, err := s.backend.SessionMessages(ctx, session.ID)
	if err != nil {
		return s.failLoad(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.course = course
	s.session = session
	s.transcript = Reduce(Transcript{}, HistoryLoaded{Messages: history})
	s.hintLevel = 0
	for _, m := range history {
		if m.HintLevel != nil && *m.HintLevel > s.hintLevel {
			s.hintLevel = *m.HintLevel
		}
	}
	s.phase = PhaseReady

	s.logger.Info("chat session opened",
		"course_id", course.ID,
		"session_id", session.ID,
		"history", len(history),
	)
	return nil
}

func (s *Session) failLoad(err error) error {
	s.mu.Lock()
	s.phase = PhaseError
	s.loadErr = LoadErrorMessage
	s.mu.Unlock()

	s.logger.Error("failed to load chat", "course_id", s.courseID, "error", err)
	return fmt.Errorf("open chat: %w", err)
}

// State returns a snapshot for rendering.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Phase:     s.phase,
		Course:    s.course,
		Messages:  s.transcript.Displayed(),
		HintLevel: s.hintLevel,
		Sending:   s.sending,
		Error:     s.sendErr,
	}
	if s.phase == PhaseError {
		st.Error = s.loadErr
	}
	if s.session != nil {
		st.SessionID = s.session.ID
	}
	return st
}

// Transcript returns the full transcript including failed entries.
func (s *Session) Transcript() Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript
}

// DismissError clears a transient send error.
func (s *Session) DismissError() {
	s.mu.Lock()
	s.sendErr = ""
	s.mu.Unlock()
}

// Begin records content as a pending user message. It returns ok=false and
// changes nothing when the session is not ready, a send is already in
// flight, or content is blank.
func (s *Session) Begin(content string, increase bool) (Pending, bool) {
	content = strings.TrimSpace(content)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseReady || s.sending || content == "" {
		return Pending{}, false
	}

	p := Pending{
		ID: s.newID(),
		Request: domain.ChatRequest{
			SessionID:           s.session.ID,
			Message:             content,
			RequestHintIncrease: increase,
		},
	}
	s.transcript = Reduce(s.transcript, SendStarted{
		ID:        p.ID,
		SessionID: s.session.ID,
		Content:   content,
		At:        s.now(),
	})
	s.sending = true
	s.sendErr = ""
	return p, true
}

// BeginHint composes a hint shortcut from draft and begins it.
func (s *Session) BeginHint(a HintAction, draft string) (Pending, bool) {
	s.mu.Lock()
	hasHistory := len(s.transcript.Displayed()) > 0
	s.mu.Unlock()

	content, increase, ok := ComposeHint(a, draft, hasHistory)
	if !ok {
		return Pending{}, false
	}
	return s.Begin(content, increase)
}

// Dispatch performs the request for p. It does not touch session state and
// is safe to run off the UI goroutine.
func (s *Session) Dispatch(ctx context.Context, p Pending) Result {
	resp, err := s.backend.SendMessage(ctx, p.Request)
	return Result{Pending: p, Response: resp, Err: err}
}

// Complete settles a dispatched send. On failure the optimistic message is
// dropped from the displayed history and the send error is set. The tracked
// hint level never decreases.
func (s *Session) Complete(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sending = false

	if r.Err != nil || r.Response == nil {
		s.transcript = Reduce(s.transcript, SendFailed{ID: r.Pending.ID})
		s.sendErr = SendErrorMessage
		s.logger.Error("failed to send message", "session_id", r.Pending.Request.SessionID, "error", r.Err)
		return
	}

	s.transcript = Reduce(s.transcript, SendConfirmed{ID: r.Pending.ID, Response: *r.Response})
	if r.Response.HintLevel > s.hintLevel {
		s.hintLevel = r.Response.HintLevel
	}
	s.logConfirmed(r)
}

// Send runs Begin, Dispatch and Complete in sequence. ok is false when
// Begin declined the send.
func (s *Session) Send(ctx context.Context, content string, increase bool) (Result, bool) {
	p, ok := s.Begin(content, increase)
	if !ok {
		return Result{}, false
	}
	r := s.Dispatch(ctx, p)
	s.Complete(r)
	return r, true
}

// RequestHint composes and sends a hint shortcut.
func (s *Session) RequestHint(ctx context.Context, a HintAction, draft string) (Result, bool) {
	p, ok := s.BeginHint(a, draft)
	if !ok {
		return Result{}, false
	}
	r := s.Dispatch(ctx, p)
	s.Complete(r)
	return r, true
}

// logConfirmed must be called with s.mu held.
func (s *Session) logConfirmed(r Result) {
	studentID := ""
	if s.session != nil {
		studentID = s.session.StudentID
	}
	reply := r.Response.Message
	s.transcriptLog.Log(LogEvent{
		Timestamp:  s.now().UTC(),
		StudentID:  studentID,
		SessionID:  r.Pending.Request.SessionID,
		CourseID:   s.courseID,
		Role:       domain.MessageRoleUser,
		ContentRaw: r.Pending.Request.Message,
	})
	s.transcriptLog.Log(LogEvent{
		Timestamp:  s.now().UTC(),
		StudentID:  studentID,
		SessionID:  r.Pending.Request.SessionID,
		CourseID:   s.courseID,
		Role:       domain.MessageRoleAssistant,
		HintLevel:  reply.HintLevel,
		Action:     r.Response.Action,
		ContentRaw: reply.Content,
	})
}
