// Package models defines request payloads for the HabitTrack API.
package models

import (
	"errors"
	"unicode/utf8"
)

// CreateHabitRequest represents the payload for creating a habit directly,
// for transport adapters that collect all fields at once.
type CreateHabitRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Frequency   Frequency `json:"frequency"`
	Goal        string    `json:"goal,omitempty"`
	Category    string    `json:"category,omitempty"`
}

// Validate validates a CreateHabitRequest.
func (r *CreateHabitRequest) Validate() error {
	if r.Name == "" {
		return ErrEmptyHabitName
	}
	if utf8.RuneCountInString(r.Name) > MaxHabitNameLength {
		return ErrHabitNameTooLong
	}
	if utf8.RuneCountInString(r.Description) > MaxHabitDescriptionLength {
		return ErrDescriptionTooLong
	}
	if !IsValidFrequency(r.Frequency) {
		return ErrInvalidFrequency
	}
	return nil
}

// CompleteHabitRequest represents the payload for recording a completion.
// The body is optional; an absent body records a completion without notes.
type CompleteHabitRequest struct {
	Notes string `json:"notes,omitempty"`
}

// DialogBeginRequest represents the payload for starting a habit-creation dialog.
type DialogBeginRequest struct {
	Language string `json:"language,omitempty"`
}

// DialogTextRequest represents a free-text dialog submission (name or description).
type DialogTextRequest struct {
	Text string `json:"text"`
}

// DialogFrequencyRequest represents a frequency selection in the dialog.
type DialogFrequencyRequest struct {
	Value Frequency `json:"value"`
}

// SetLanguageRequest represents the payload for updating a user's language preference.
type SetLanguageRequest struct {
	Language string `json:"language"`
}

// Validate validates a SetLanguageRequest.
func (r *SetLanguageRequest) Validate() error {
	if r.Language == "" {
		return errors.New("language is required")
	}
	return nil
}
