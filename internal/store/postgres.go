// Package store provides storage backends for HabitTrack.
//
// This file implements a PostgreSQL-backed store for habits and completions.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/THEGOSTOFTOWER/HabitTrack/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	// Apply options
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")
	// Determine DSN (required)
	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	// Configure connection pool for better performance
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	// Run migrations to ensure tables exist
	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")
	return &PostgresStore{db: db}, nil
}

// CreateHabit stores a new habit record.
func (s *PostgresStore) CreateHabit(h models.Habit) error {
	_, err := s.db.Exec(
		`INSERT INTO habits (id, name, description, frequency, goal, category, created_at, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		h.ID, h.Name, nilIfEmpty(h.Description), string(h.Frequency),
		nilIfEmpty(h.Goal), nilIfEmpty(h.Category), h.CreatedAt, h.IsActive)
	if err != nil {
		slog.Error("PostgresStore CreateHabit failed", "error", err, "habitID", h.ID)
		return fmt.Errorf("failed to insert habit %s: %w", h.ID, err)
	}
	slog.Debug("PostgresStore CreateHabit succeeded", "habitID", h.ID, "name", h.Name)
	return nil
}

// GetHabit retrieves a habit by id. Returns nil, nil when absent.
func (s *PostgresStore) GetHabit(id string) (*models.Habit, error) {
	row := s.db.QueryRow(
		`SELECT id, name, description, frequency, goal, category, created_at, is_active
		 FROM habits WHERE id = $1`, id)
	h, err := scanHabitRow(row)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore GetHabit not found", "habitID", id)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetHabit failed", "error", err, "habitID", id)
		return nil, err
	}
	return &h, nil
}

// ListActiveHabits returns all active habits in creation order.
func (s *PostgresStore) ListActiveHabits() ([]models.Habit, error) {
	rows, err := s.db.Query(
		`SELECT id, name, description, frequency, goal, category, created_at, is_active
		 FROM habits WHERE is_active = TRUE ORDER BY created_at`)
	if err != nil {
		slog.Error("PostgresStore ListActiveHabits query failed", "error", err)
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			slog.Error("PostgresStore ListActiveHabits scan failed", "error", err)
			return nil, err
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		slog.Error("PostgresStore ListActiveHabits rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate habit rows: %w", err)
	}
	slog.Debug("PostgresStore ListActiveHabits succeeded", "count", len(habits))
	return habits, nil
}

// AddCompletion records a completion event for a habit.
func (s *PostgresStore) AddCompletion(c models.Completion) error {
	_, err := s.db.Exec(
		`INSERT INTO completions (id, habit_id, completed_at, notes) VALUES ($1, $2, $3, $4)`,
		c.ID, c.HabitID, c.CompletedAt, nilIfEmpty(c.Notes))
	if err != nil {
		slog.Error("PostgresStore AddCompletion failed", "error", err, "habitID", c.HabitID)
		return fmt.Errorf("failed to insert completion for habit %s: %w", c.HabitID, err)
	}
	slog.Debug("PostgresStore AddCompletion succeeded", "habitID", c.HabitID)
	return nil
}

// GetCompletionTimes returns all completion timestamps for a habit, sorted ascending.
func (s *PostgresStore) GetCompletionTimes(habitID string) ([]time.Time, error) {
	return s.queryCompletionTimes(
		`SELECT completed_at FROM completions WHERE habit_id = $1 ORDER BY completed_at`, habitID)
}

// GetCompletionTimesSince returns completion timestamps at or after since, sorted ascending.
func (s *PostgresStore) GetCompletionTimesSince(habitID string, since time.Time) ([]time.Time, error) {
	return s.queryCompletionTimes(
		`SELECT completed_at FROM completions WHERE habit_id = $1 AND completed_at >= $2 ORDER BY completed_at`,
		habitID, since)
}

func (s *PostgresStore) queryCompletionTimes(query string, args ...interface{}) ([]time.Time, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		slog.Error("PostgresStore completion times query failed", "error", err)
		return nil, fmt.Errorf("failed to query completions: %w", err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			slog.Error("PostgresStore completion times scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan completion row: %w", err)
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		slog.Error("PostgresStore completion times rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate completion rows: %w", err)
	}
	return times, nil
}

// CompletedToday reports whether the habit has a completion on now's calendar day.
func (s *PostgresStore) CompletedToday(habitID string, now time.Time) (bool, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	var exists int
	err := s.db.QueryRow(
		`SELECT 1 FROM completions WHERE habit_id = $1 AND completed_at >= $2 AND completed_at < $3 LIMIT 1`,
		habitID, dayStart, dayEnd).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		slog.Error("PostgresStore CompletedToday failed", "error", err, "habitID", habitID)
		return false, err
	}
	return true, nil
}

// GetUserLanguage returns the stored language preference, or "" when unknown.
func (s *PostgresStore) GetUserLanguage(userID string) (string, error) {
	var lang string
	err := s.db.QueryRow(`SELECT language FROM users WHERE user_id = $1`, userID).Scan(&lang)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		slog.Error("PostgresStore GetUserLanguage failed", "error", err, "userID", userID)
		return "", err
	}
	return lang, nil
}

// SetUserLanguage stores the language preference for a user.
func (s *PostgresStore) SetUserLanguage(userID, lang string) error {
	_, err := s.db.Exec(
		`INSERT INTO users (user_id, language) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET language = EXCLUDED.language`, userID, lang)
	if err != nil {
		slog.Error("PostgresStore SetUserLanguage failed", "error", err, "userID", userID)
		return err
	}
	slog.Debug("PostgresStore SetUserLanguage succeeded", "userID", userID, "lang", lang)
	return nil
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close Postgres database", "error", err)
	}
	return err
}
