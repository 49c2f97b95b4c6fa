// Package devserver is an in-memory implementation of the TA-I REST
// contract. It backs `tai dev-server` for offline use and serves as the test
// double for the client packages. Assistant replies are canned.
package devserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/tai-edu/tai/internal/domain"
	"github.com/tai-edu/tai/internal/middleware"
)

const (
	// recentActivityLimit bounds CourseActivity.RecentActivity.
	recentActivityLimit = 10
	// chunkSize is the byte size of one retrieval chunk produced by an upload.
	chunkSize = 1000
	// maxUploadSize caps multipart uploads.
	maxUploadSize = 32 << 20
)

// Option configures a Server.
type Option func(*Server)

// WithClock overrides the server's time source.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithAllowedOrigins sets the CORS allow list.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// Server holds all backend state in memory.
type Server struct {
	mu sync.Mutex

	users       map[string]*domain.User // id -> user
	userByKey   map[string]string       // device_id|role -> id
	memberships map[string][]string     // user id -> course ids, join order
	courses     map[string]*domain.Course
	courseCodes map[string]string // class code -> course id
	guardrails  map[string]domain.Guardrails
	files       map[string][]domain.CourseFile // course id -> files
	chunks      map[string]int                 // file id -> chunk count
	sessions    map[string]*sessionState

	now     func() time.Time
	newID   func() string
	logger  *slog.Logger
	origins []string
}

type sessionState struct {
	session   domain.ChatSession
	messages  []domain.ChatMessage
	hintLevel int
}

// New creates an empty server.
func New(opts ...Option) *Server {
	s := &Server{
		users:       make(map[string]*domain.User),
		userByKey:   make(map[string]string),
		memberships: make(map[string][]string),
		courses:     make(map[string]*domain.Course),
		courseCodes: make(map[string]string),
		guardrails:  make(map[string]domain.Guardrails),
		files:       make(map[string][]domain.CourseFile),
		chunks:      make(map[string]int),
		sessions:    make(map[string]*sessionState),
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
		logger:      slog.Default(),
		origins:     []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultGuardrails is the configuration a new course starts with.
func DefaultGuardrails() domain.Guardrails {
	return domain.Guardrails{
		AllowFinalAnswer: false,
		AllowCode:        false,
		MaxHintLevel:     domain.MaxHintLevel,
		CourseLevel:      domain.CourseLevelUniversity,
		AssessmentMode:   domain.AssessmentHomework,
	}
}

// Handler returns the fully wired HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.RequestLogger(s.logger))
	r.Use(middleware.CORS(s.origins))

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", s.handleCreateUser)
		r.Route("/users/{userID}/courses", func(r chi.Router) {
			r.Get("/", s.handleUserCourses)
			r.Post("/join", s.handleJoinCourse)
			r.Delete("/{courseID}", s.handleLeaveCourse)
		})

		r.Post("/courses", s.handleCreateCourse)
		r.Get("/courses/by-code/{code}", s.handleCourseByCode)
		r.Route("/courses/{courseID}", func(r chi.Router) {
			r.Get("/", s.handleGetCourse)
			r.Get("/files", s.handleListFiles)
			r.Delete("/files/{fileID}", s.handleDeleteFile)
			r.Get("/guardrails", s.handleGetGuardrails)
			r.Put("/guardrails", s.handleUpdateGuardrails)
			r.Get("/activity", s.handleActivity)
		})

		r.Post("/sessions", s.handleCreateSession)
		r.Get("/sessions/{sessionID}/messages", s.handleSessionMessages)
		r.Post("/chat", s.handleChat)
		r.Post("/upload", s.handleUpload)
	})

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dev server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down dev server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
