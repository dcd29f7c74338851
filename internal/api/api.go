// Package api provides HTTP handlers and the main API server logic for
// HabitTrack.
//
// It exposes RESTful endpoints for habit creation, completion tracking,
// statistics, progress-chart data and the habit-creation dialog. The API
// integrates with the store, dialog and stats modules; chat-transport
// adapters consume these endpoints.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/THEGOSTOFTOWER/HabitTrack/internal/dialog"
	"github.com/THEGOSTOFTOWER/HabitTrack/internal/locales"
	"github.com/THEGOSTOFTOWER/HabitTrack/internal/store"
)

// Default configuration constants
const (
	// DefaultAddr is the default API server listen address
	DefaultAddr = ":8080"
	// DefaultLanguage is the default language for user-facing messages
	DefaultLanguage = "en"
)

// Opts holds configuration options for the API server.
type Opts struct {
	Addr        string // listen address
	DefaultLang string // default language for user-facing messages
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the API server listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) {
		o.Addr = addr
	}
}

// WithDefaultLanguage sets the default language for user-facing messages.
func WithDefaultLanguage(lang string) Option {
	return func(o *Opts) {
		o.DefaultLang = lang
	}
}

// Server wires the store, dialog manager and statistics engine behind the
// HTTP surface.
type Server struct {
	st          store.Store
	dialogs     *dialog.Manager
	addr        string
	defaultLang string
	now         func() time.Time
}

// NewServer creates an API server around the given store and dialog manager.
func NewServer(st store.Store, dialogs *dialog.Manager, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.DefaultLang == "" {
		cfg.DefaultLang = DefaultLanguage
	}
	if !locales.Supported(cfg.DefaultLang) {
		slog.Warn("Configured default language has no locale table, falling back", "lang", cfg.DefaultLang, "fallback", locales.FallbackLanguage)
		cfg.DefaultLang = locales.FallbackLanguage
	}
	return &Server{
		st:          st,
		dialogs:     dialogs,
		addr:        cfg.Addr,
		defaultLang: cfg.DefaultLang,
		now:         time.Now,
	}
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/habits", s.habitsHandler)
	mux.HandleFunc("/habits/", s.habitHandler)
	mux.HandleFunc("/stats/overview", s.overviewHandler)
	mux.HandleFunc("/dialogs/", s.dialogsHandler)
	mux.HandleFunc("/users/", s.usersHandler)
	mux.HandleFunc("/health", s.healthHandler)
	return mux
}

// Serve starts the HTTP server and blocks until it fails.
func (s *Server) Serve() error {
	slog.Info("HabitTrack API listening", "addr", s.addr)
	return http.ListenAndServe(s.addr, s.Handler())
}

// Run composes the store, dialog manager and API server from options and
// starts serving. This is the composition root used by the main binary.
func Run(storeOpts []store.Option, apiOpts []Option) error {
	st, err := buildStore(storeOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	dialogs := dialog.NewManager(st)
	server := NewServer(st, dialogs, apiOpts...)
	return server.Serve()
}

// buildStore selects a storage backend from the options: in-memory when no
// DSN is configured, otherwise SQLite or Postgres by DSN detection.
func buildStore(storeOpts []store.Option) (store.Store, error) {
	var cfg store.Opts
	for _, opt := range storeOpts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Info("No database DSN configured, using in-memory store")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(cfg.DSN) == "postgres" {
		slog.Info("Using PostgreSQL store")
		return store.NewPostgresStore(storeOpts...)
	}
	slog.Info("Using SQLite store", "path", cfg.DSN)
	return store.NewSQLiteStore(storeOpts...)
}

// languageFor resolves the effective language for a user: stored preference
// first, then the server default.
func (s *Server) languageFor(userID string) string {
	if userID != "" {
		if lang, err := s.st.GetUserLanguage(userID); err == nil && lang != "" {
			return lang
		}
	}
	return s.defaultLang
}
