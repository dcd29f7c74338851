package store

import (
	"database/sql"
	"fmt"

	"github.com/THEGOSTOFTOWER/HabitTrack/internal/models"
)

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// scanHabit scans a Habit from sql.Rows.
func scanHabit(rows *sql.Rows) (models.Habit, error) {
	var h models.Habit
	var description, goal, category sql.NullString
	var frequency string
	err := rows.Scan(&h.ID, &h.Name, &description, &frequency, &goal, &category, &h.CreatedAt, &h.IsActive)
	if err != nil {
		return h, fmt.Errorf("scan habit failed: %w", err)
	}
	h.Description = description.String
	h.Goal = goal.String
	h.Category = category.String
	h.Frequency = models.Frequency(frequency)
	return h, nil
}

// scanHabitRow scans a Habit from a single sql.Row.
func scanHabitRow(row *sql.Row) (models.Habit, error) {
	var h models.Habit
	var description, goal, category sql.NullString
	var frequency string
	err := row.Scan(&h.ID, &h.Name, &description, &frequency, &goal, &category, &h.CreatedAt, &h.IsActive)
	if err != nil {
		return h, err
	}
	h.Description = description.String
	h.Goal = goal.String
	h.Category = category.String
	h.Frequency = models.Frequency(frequency)
	return h, nil
}
