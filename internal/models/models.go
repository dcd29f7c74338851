// Package models defines the core data structures for HabitTrack.
//
// It includes habit and completion records, derived statistics, and the
// shared API response types used across modules.
package models

import (
	"errors"
	"time"
	"unicode/utf8"
)

// Frequency defines how often a habit is meant to be performed.
type Frequency string

const (
	// FrequencyDaily marks a habit performed every day.
	FrequencyDaily Frequency = "daily"
	// FrequencyWeekly marks a habit performed every week.
	FrequencyWeekly Frequency = "weekly"
	// FrequencyMonthly marks a habit performed every month.
	FrequencyMonthly Frequency = "monthly"
)

// Validation constants for input validation. Limits count characters, not
// bytes, so Cyrillic and other multibyte input gets the full allowance.
const (
	// MaxHabitNameLength defines the maximum allowed length for a habit name
	MaxHabitNameLength = 100
	// MaxHabitDescriptionLength defines the maximum allowed length for a habit description
	MaxHabitDescriptionLength = 500
	// MaxCompletionNotesLength defines the maximum allowed length for a completion note
	MaxCompletionNotesLength = 500
)

// Error variables for better error handling and testability
var (
	ErrEmptyHabitName     = errors.New("habit name cannot be empty")
	ErrHabitNameTooLong   = errors.New("habit name exceeds maximum length")
	ErrDescriptionTooLong = errors.New("habit description exceeds maximum length")
	ErrInvalidFrequency   = errors.New("invalid habit frequency")
	ErrEmptyHabitID       = errors.New("habit id cannot be empty")
	ErrNotesTooLong       = errors.New("completion notes exceed maximum length")
	ErrNoActiveDialog     = errors.New("no active dialog for user")
	ErrWrongDialogStep    = errors.New("input does not match the current dialog step")
)

// IsValidFrequency checks if the given frequency is supported.
func IsValidFrequency(f Frequency) bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	default:
		return false
	}
}

// IsValidationError reports whether err is a recoverable input validation
// failure, as opposed to a store or system fault. Validation failures
// re-prompt the same dialog step and never surface as system faults.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyHabitName) ||
		errors.Is(err, ErrHabitNameTooLong) ||
		errors.Is(err, ErrDescriptionTooLong) ||
		errors.Is(err, ErrInvalidFrequency) ||
		errors.Is(err, ErrNotesTooLong)
}

// Habit represents a recurring user-defined activity tracked for completion.
type Habit struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Frequency   Frequency `json:"frequency"`
	Goal        string    `json:"goal,omitempty"`
	Category    string    `json:"category,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	IsActive    bool      `json:"is_active"`
}

// Validate performs validation on a Habit structure.
func (h *Habit) Validate() error {
	if h.ID == "" {
		return ErrEmptyHabitID
	}
	if h.Name == "" {
		return ErrEmptyHabitName
	}
	if utf8.RuneCountInString(h.Name) > MaxHabitNameLength {
		return ErrHabitNameTooLong
	}
	if utf8.RuneCountInString(h.Description) > MaxHabitDescriptionLength {
		return ErrDescriptionTooLong
	}
	if !IsValidFrequency(h.Frequency) {
		return ErrInvalidFrequency
	}
	return nil
}

// Completion represents a timestamped record that a habit was performed.
// Completions are immutable once recorded.
type Completion struct {
	ID          string    `json:"id"`
	HabitID     string    `json:"habit_id"`
	CompletedAt time.Time `json:"completed_at"`
	Notes       string    `json:"notes,omitempty"`
}

// Validate performs validation on a Completion structure.
func (c *Completion) Validate() error {
	if c.HabitID == "" {
		return ErrEmptyHabitID
	}
	if utf8.RuneCountInString(c.Notes) > MaxCompletionNotesLength {
		return ErrNotesTooLong
	}
	return nil
}

// HabitStats holds statistics derived from one habit's completion history.
// It is a pure view recomputed on demand and never persisted.
type HabitStats struct {
	HabitID          string     `json:"habit_id"`
	HabitName        string     `json:"habit_name"`
	TotalCompletions int        `json:"total_completions"`
	CompletionRate   float64    `json:"completion_rate"`
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	LastCompletion   *time.Time `json:"last_completion,omitempty"`
}

// HabitListItem pairs a habit with its completed-today flag for list views.
type HabitListItem struct {
	Habit          Habit `json:"habit"`
	CompletedToday bool  `json:"completed_today"`
}

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
	// APIStatusRecorded indicates data was successfully recorded via API.
	APIStatusRecorded APIStatus = "recorded"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`            // status of the API response
	Message string      `json:"message,omitempty"` // optional message for error responses or additional info
	Result  interface{} `json:"result,omitempty"`  // optional result data for successful responses
}

// APIResponseBuilder provides a fluent interface for building API responses.
type APIResponseBuilder struct {
	response APIResponse
}

// NewAPIResponseBuilder creates a new APIResponseBuilder instance.
func NewAPIResponseBuilder() *APIResponseBuilder {
	return &APIResponseBuilder{
		response: APIResponse{},
	}
}

// WithStatus sets the status of the API response.
func (b *APIResponseBuilder) WithStatus(status APIStatus) *APIResponseBuilder {
	b.response.Status = string(status)
	return b
}

// WithMessage sets the message of the API response.
func (b *APIResponseBuilder) WithMessage(message string) *APIResponseBuilder {
	b.response.Message = message
	return b
}

// WithResult sets the result data of the API response.
func (b *APIResponseBuilder) WithResult(result interface{}) *APIResponseBuilder {
	b.response.Result = result
	return b
}

// Build constructs and returns the final APIResponse.
func (b *APIResponseBuilder) Build() APIResponse {
	return b.response
}

// Convenience functions for common response patterns

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusOK).
		WithResult(result).
		Build()
}

// SuccessWithMessage creates a successful API response with a message and optional result data.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusOK).
		WithMessage(message).
		WithResult(result).
		Build()
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusError).
		WithMessage(message).
		Build()
}

// Recorded creates a recorded API response with a message and optional result data.
func Recorded(message string, result interface{}) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusRecorded).
		WithMessage(message).
		WithResult(result).
		Build()
}
