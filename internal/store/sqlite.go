// Package store provides storage backends for HabitTrack.
//
// This file implements an SQLite-backed store for habits and completions.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/THEGOSTOFTOWER/HabitTrack/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	// Apply options
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	// Determine DSN (required)
	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	// Ensure the directory exists
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	slog.Debug("SQLite database directory verified/created", "dir", dir)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	// Run migrations to ensure tables exist
	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// CreateHabit stores a new habit record.
func (s *SQLiteStore) CreateHabit(h models.Habit) error {
	_, err := s.db.Exec(
		`INSERT INTO habits (id, name, description, frequency, goal, category, created_at, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.Name, nilIfEmpty(h.Description), string(h.Frequency),
		nilIfEmpty(h.Goal), nilIfEmpty(h.Category), h.CreatedAt, h.IsActive)
	if err != nil {
		slog.Error("SQLiteStore CreateHabit failed", "error", err, "habitID", h.ID)
		return fmt.Errorf("failed to insert habit %s: %w", h.ID, err)
	}
	slog.Debug("SQLiteStore CreateHabit succeeded", "habitID", h.ID, "name", h.Name)
	return nil
}

// GetHabit retrieves a habit by id. Returns nil, nil when absent.
func (s *SQLiteStore) GetHabit(id string) (*models.Habit, error) {
	row := s.db.QueryRow(
		`SELECT id, name, description, frequency, goal, category, created_at, is_active
		 FROM habits WHERE id = ?`, id)
	h, err := scanHabitRow(row)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetHabit not found", "habitID", id)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetHabit failed", "error", err, "habitID", id)
		return nil, err
	}
	return &h, nil
}

// ListActiveHabits returns all active habits in creation order.
func (s *SQLiteStore) ListActiveHabits() ([]models.Habit, error) {
	rows, err := s.db.Query(
		`SELECT id, name, description, frequency, goal, category, created_at, is_active
		 FROM habits WHERE is_active = 1 ORDER BY created_at`)
	if err != nil {
		slog.Error("SQLiteStore ListActiveHabits query failed", "error", err)
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			slog.Error("SQLiteStore ListActiveHabits scan failed", "error", err)
			return nil, err
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore ListActiveHabits rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate habit rows: %w", err)
	}
	slog.Debug("SQLiteStore ListActiveHabits succeeded", "count", len(habits))
	return habits, nil
}

// AddCompletion records a completion event for a habit.
func (s *SQLiteStore) AddCompletion(c models.Completion) error {
	_, err := s.db.Exec(
		`INSERT INTO completions (id, habit_id, completed_at, notes) VALUES (?, ?, ?, ?)`,
		c.ID, c.HabitID, c.CompletedAt, nilIfEmpty(c.Notes))
	if err != nil {
		slog.Error("SQLiteStore AddCompletion failed", "error", err, "habitID", c.HabitID)
		return fmt.Errorf("failed to insert completion for habit %s: %w", c.HabitID, err)
	}
	slog.Debug("SQLiteStore AddCompletion succeeded", "habitID", c.HabitID)
	return nil
}

// GetCompletionTimes returns all completion timestamps for a habit, sorted ascending.
func (s *SQLiteStore) GetCompletionTimes(habitID string) ([]time.Time, error) {
	return s.queryCompletionTimes(
		`SELECT completed_at FROM completions WHERE habit_id = ? ORDER BY completed_at`, habitID)
}

// GetCompletionTimesSince returns completion timestamps at or after since, sorted ascending.
func (s *SQLiteStore) GetCompletionTimesSince(habitID string, since time.Time) ([]time.Time, error) {
	return s.queryCompletionTimes(
		`SELECT completed_at FROM completions WHERE habit_id = ? AND completed_at >= ? ORDER BY completed_at`,
		habitID, since)
}

func (s *SQLiteStore) queryCompletionTimes(query string, args ...interface{}) ([]time.Time, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		slog.Error("SQLiteStore completion times query failed", "error", err)
		return nil, fmt.Errorf("failed to query completions: %w", err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			slog.Error("SQLiteStore completion times scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan completion row: %w", err)
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore completion times rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate completion rows: %w", err)
	}
	return times, nil
}

// CompletedToday reports whether the habit has a completion on now's calendar day.
func (s *SQLiteStore) CompletedToday(habitID string, now time.Time) (bool, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	var exists int
	err := s.db.QueryRow(
		`SELECT 1 FROM completions WHERE habit_id = ? AND completed_at >= ? AND completed_at < ? LIMIT 1`,
		habitID, dayStart, dayEnd).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		slog.Error("SQLiteStore CompletedToday failed", "error", err, "habitID", habitID)
		return false, err
	}
	return true, nil
}

// GetUserLanguage returns the stored language preference, or "" when unknown.
func (s *SQLiteStore) GetUserLanguage(userID string) (string, error) {
	var lang string
	err := s.db.QueryRow(`SELECT language FROM users WHERE user_id = ?`, userID).Scan(&lang)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetUserLanguage failed", "error", err, "userID", userID)
		return "", err
	}
	return lang, nil
}

// SetUserLanguage stores the language preference for a user.
func (s *SQLiteStore) SetUserLanguage(userID, lang string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO users (user_id, language) VALUES (?, ?)`, userID, lang)
	if err != nil {
		slog.Error("SQLiteStore SetUserLanguage failed", "error", err, "userID", userID)
		return err
	}
	slog.Debug("SQLiteStore SetUserLanguage succeeded", "userID", userID, "lang", lang)
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}
