package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/tai-edu/tai/internal/api"
	"github.com/tai-edu/tai/internal/chat"
	"github.com/tai-edu/tai/internal/config"
	"github.com/tai-edu/tai/internal/identity"
	"github.com/tai-edu/tai/internal/store"
)

// env is everything a command needs, built from config and flags.
type env struct {
	cfg         *config.Config
	logger      *slog.Logger
	kv          store.Store
	ids         *identity.Local
	client      *api.Client
	transcripts chat.TranscriptLogger

	closers []io.Closer
}

func loadConfig(flags *rootFlags) (*config.Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flags.apiURL != "" {
		cfg.APIURL = flags.apiURL
	}
	if flags.state != "" {
		cfg.State.Path = flags.state
	}
	if flags.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openLog sends JSON logs to the configured file so the terminal stays clean.
func openLog(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Log.Path), 0o750); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.Log.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, f, nil
}

func setup(flags *rootFlags) (*env, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	logger, logFile, err := openLog(cfg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	e := &env{cfg: cfg, logger: logger, closers: []io.Closer{logFile}}

	e.kv, err = store.Open(cfg.State.Backend, cfg.State.Path)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open state: %w", err)
	}
	e.closers = append(e.closers, e.kv)
	e.ids = identity.NewLocal(e.kv)

	e.client = api.New(cfg.APIURL, api.WithTimeout(cfg.HTTPTimeout), api.WithLogger(logger))

	e.transcripts, err = chat.NewTranscriptLogger(chat.LogConfig{
		Enabled:   cfg.Transcript.Enabled,
		Dir:       cfg.Transcript.Dir,
		QueueSize: cfg.Transcript.QueueSize,
	}, logger)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("init transcript logger: %w", err)
	}
	e.closers = append(e.closers, e.transcripts)

	logger.Debug("environment ready", "api_url", cfg.APIURL, "state_backend", cfg.State.Backend)
	return e, nil
}

// Close releases resources in reverse order of acquisition.
func (e *env) Close() {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		slog.Warn("failed to release resources", "error", err)
	}
}

// newConsoleLogger is used by long running commands that own the terminal.
func newConsoleLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
