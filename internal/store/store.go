// Package store provides storage backends for HabitTrack.
//
// It includes an in-memory store for tests and single-process use, plus
// persistent SQLite and PostgreSQL backends selected by DSN.
package store

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/THEGOSTOFTOWER/HabitTrack/internal/models"
)

// Store defines the persistence operations the habit core depends on.
// Lookups for unknown identifiers return nil results, not errors; callers
// decide whether absence is a fault.
type Store interface {
	CreateHabit(h models.Habit) error
	GetHabit(id string) (*models.Habit, error)
	ListActiveHabits() ([]models.Habit, error)
	AddCompletion(c models.Completion) error
	GetCompletionTimes(habitID string) ([]time.Time, error)
	GetCompletionTimesSince(habitID string, since time.Time) ([]time.Time, error)
	CompletedToday(habitID string, now time.Time) (bool, error)
	GetUserLanguage(userID string) (string, error)
	SetUserLanguage(userID, lang string) error
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string // database connection string or SQLite file path
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// DetectDSNType reports which backend a DSN addresses: "postgres" for
// PostgreSQL connection strings, "sqlite3" for file paths.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite3"
}

// InMemoryStore is a mutex-guarded in-memory store. It backs tests and
// DSN-less deployments.
type InMemoryStore struct {
	mu          sync.RWMutex
	habits      []models.Habit
	completions map[string][]models.Completion
	languages   map[string]string
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		completions: make(map[string][]models.Completion),
		languages:   make(map[string]string),
	}
}

// CreateHabit stores a new habit record.
func (s *InMemoryStore) CreateHabit(h models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.habits = append(s.habits, h)
	slog.Debug("InMemoryStore CreateHabit succeeded", "habitID", h.ID, "name", h.Name)
	return nil
}

// GetHabit returns the habit with the given id, or nil when absent.
func (s *InMemoryStore) GetHabit(id string) (*models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.habits {
		if s.habits[i].ID == id {
			h := s.habits[i]
			return &h, nil
		}
	}
	return nil, nil
}

// ListActiveHabits returns all active habits in insertion order.
func (s *InMemoryStore) ListActiveHabits() ([]models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var habits []models.Habit
	for _, h := range s.habits {
		if h.IsActive {
			habits = append(habits, h)
		}
	}
	return habits, nil
}

// AddCompletion records a completion event for a habit.
func (s *InMemoryStore) AddCompletion(c models.Completion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completions[c.HabitID] = append(s.completions[c.HabitID], c)
	slog.Debug("InMemoryStore AddCompletion succeeded", "habitID", c.HabitID)
	return nil
}

// GetCompletionTimes returns all completion timestamps for a habit, sorted ascending.
func (s *InMemoryStore) GetCompletionTimes(habitID string) ([]time.Time, error) {
	return s.GetCompletionTimesSince(habitID, time.Time{})
}

// GetCompletionTimesSince returns completion timestamps at or after since, sorted ascending.
func (s *InMemoryStore) GetCompletionTimesSince(habitID string, since time.Time) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var times []time.Time
	for _, c := range s.completions[habitID] {
		if !c.CompletedAt.Before(since) {
			times = append(times, c.CompletedAt)
		}
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	return times, nil
}

// CompletedToday reports whether the habit has a completion on now's calendar day.
func (s *InMemoryStore) CompletedToday(habitID string, now time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	for _, c := range s.completions[habitID] {
		if !c.CompletedAt.Before(dayStart) && c.CompletedAt.Before(dayEnd) {
			return true, nil
		}
	}
	return false, nil
}

// GetUserLanguage returns the stored language preference, or "" when unknown.
func (s *InMemoryStore) GetUserLanguage(userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.languages[userID], nil
}

// SetUserLanguage stores the language preference for a user.
func (s *InMemoryStore) SetUserLanguage(userID, lang string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.languages[userID] = lang
	return nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
