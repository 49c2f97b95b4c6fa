package chat

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/tai-edu/tai/internal/domain"
)

// LogConfig controls NDJSON transcript logging.
type LogConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// LogEvent is one line of a transcript file.
type LogEvent struct {
	Timestamp  time.Time          `json:"ts"`
	StudentID  string             `json:"student_id"`
	SessionID  string             `json:"session_id"`
	CourseID   string             `json:"course_id,omitempty"`
	Role       domain.MessageRole `json:"role"`
	HintLevel  *int               `json:"hint_level,omitempty"`
	Action     domain.ChatAction  `json:"action,omitempty"`
	Content    string             `json:"content"`
	ContentRaw string             `json:"content_raw"`
}

// TranscriptLogger records confirmed chat messages.
type TranscriptLogger interface {
	Log(ev LogEvent)
	Close() error
}

type noopTranscriptLogger struct{}

func (noopTranscriptLogger) Log(LogEvent) {}
func (noopTranscriptLogger) Close() error { return nil }

// NopTranscriptLogger discards everything.
func NopTranscriptLogger() TranscriptLogger { return noopTranscriptLogger{} }

// fileTranscriptLogger appends events to <dir>/<student>/<session>.ndjson
// from a single writer goroutine.
type fileTranscriptLogger struct {
	dir    string
	queue  chan LogEvent
	done   chan struct{}
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewTranscriptLogger starts the writer when cfg.Enabled is set and
// returns a no-op logger otherwise.
func NewTranscriptLogger(cfg LogConfig, logger *slog.Logger) (TranscriptLogger, error) {
	if !cfg.Enabled {
		return noopTranscriptLogger{}, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("transcript log dir is empty")
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("create transcript log dir: %w", err)
	}

	l := &fileTranscriptLogger{
		dir:    cfg.Dir,
		queue:  make(chan LogEvent, cfg.QueueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
	go l.run()
	return l, nil
}

func (l *fileTranscriptLogger) Log(ev LogEvent) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	ev.Content = cleanForReadability(ev.ContentRaw)

	select {
	case l.queue <- ev:
	default:
		l.logger.Warn("transcript log queue full, dropping event",
			"session_id", ev.SessionID,
			"role", ev.Role,
		)
	}
}

func (l *fileTranscriptLogger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()

	<-l.done
	return nil
}

func (l *fileTranscriptLogger) run() {
	defer close(l.done)
	for ev := range l.queue {
		if err := l.write(ev); err != nil {
			l.logger.Warn("failed to write transcript event", "session_id", ev.SessionID, "error", err)
		}
	}
}

func (l *fileTranscriptLogger) write(ev LogEvent) error {
	dir := filepath.Join(l.dir, safeName(ev.StudentID))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	line, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(dir, safeName(ev.SessionID)+".ndjson"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

var (
	ansiPattern     = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(\x07|\x1b\\)`)
	unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)
)

// cleanForReadability strips terminal escapes and stray control characters.
func cleanForReadability(raw string) string {
	s := ansiPattern.ReplaceAllString(raw, "")
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

func safeName(s string) string {
	s = unsafeNameChars.ReplaceAllString(s, "_")
	if s == "" || s == "." || s == ".." {
		return "unknown"
	}
	return s
}
