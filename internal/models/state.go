// Package models defines dialog state structures for HabitTrack flows.
package models

import "time"

// DialogStep identifies the current step of the habit-creation dialog.
type DialogStep string

const (
	// StepCollectingName waits for the habit name.
	StepCollectingName DialogStep = "collecting_name"
	// StepCollectingFrequency waits for a frequency selection.
	StepCollectingFrequency DialogStep = "collecting_frequency"
	// StepCollectingDescription waits for an optional description.
	StepCollectingDescription DialogStep = "collecting_description"
)

// DialogState represents a user's progress through the habit-creation dialog.
// It is transient and lives only in memory; a user has at most one at a time.
type DialogState struct {
	UserID      string     `json:"user_id"`
	Step        DialogStep `json:"step"`
	Name        string     `json:"name,omitempty"`
	Frequency   Frequency  `json:"frequency,omitempty"`
	Description string     `json:"description,omitempty"`
	Language    string     `json:"language,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
