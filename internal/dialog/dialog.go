// Package dialog implements the multi-step habit-creation conversation for
// HabitTrack.
//
// Each user advances through collecting_name, collecting_frequency and
// collecting_description; the terminal transition persists the habit through
// the store. All intermediate transitions are pure state mutations. Dialog
// states are owned here, behind a mutex, rather than shared ambiently.
package dialog

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/THEGOSTOFTOWER/HabitTrack/internal/models"
	"github.com/THEGOSTOFTOWER/HabitTrack/internal/store"
	"github.com/google/uuid"
)

// Manager owns the transient per-user dialog states. A user has at most one
// dialog at a time; states never expire on their own.
type Manager struct {
	mu     sync.Mutex
	states map[string]*models.DialogState
	store  store.Store
	now    func() time.Time
	newID  func() string
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClock overrides the manager's time source. Used in tests to keep
// transitions deterministic.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// WithIDGenerator overrides the habit identifier generator.
func WithIDGenerator(newID func() string) ManagerOption {
	return func(m *Manager) {
		m.newID = newID
	}
}

// NewManager creates a dialog manager that finalizes habits into st.
func NewManager(st store.Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		states: make(map[string]*models.DialogState),
		store:  st,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Begin starts a habit-creation dialog for the user, replacing any dialog
// already in progress, and records the user's language preference on the
// state.
func (m *Manager) Begin(userID, lang string) models.DialogState {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	state := &models.DialogState{
		UserID:    userID,
		Step:      models.StepCollectingName,
		Language:  lang,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.states[userID] = state
	slog.Debug("Dialog Begin", "userID", userID, "lang", lang)
	return *state
}

// Get returns a snapshot of the user's dialog state, if one exists.
func (m *Manager) Get(userID string) (models.DialogState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[userID]
	if !ok {
		return models.DialogState{}, false
	}
	return *state, true
}

// SubmitName accepts the habit name and advances to frequency selection.
// Out-of-bounds input leaves the dialog at the same step and returns a
// validation error so the caller can re-prompt.
func (m *Manager) SubmitName(userID, text string) (models.DialogState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.states[userID]
	if !ok {
		return models.DialogState{}, models.ErrNoActiveDialog
	}
	if state.Step != models.StepCollectingName {
		return *state, models.ErrWrongDialogStep
	}
	if text == "" {
		slog.Debug("Dialog SubmitName rejected empty name", "userID", userID)
		return *state, models.ErrEmptyHabitName
	}
	if utf8.RuneCountInString(text) > models.MaxHabitNameLength {
		slog.Debug("Dialog SubmitName rejected long name", "userID", userID, "length", utf8.RuneCountInString(text))
		return *state, models.ErrHabitNameTooLong
	}

	state.Name = text
	state.Step = models.StepCollectingFrequency
	state.UpdatedAt = m.now()
	slog.Debug("Dialog SubmitName accepted", "userID", userID, "name", text)
	return *state, nil
}

// SelectFrequency accepts one of the supported frequencies and advances to
// description collection. Unknown values are ignored without error: the
// selection surface is closed-set by construction, so anything else is a
// stray input rather than a user mistake to report.
func (m *Manager) SelectFrequency(userID string, value models.Frequency) (models.DialogState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.states[userID]
	if !ok {
		return models.DialogState{}, models.ErrNoActiveDialog
	}
	if state.Step != models.StepCollectingFrequency {
		return *state, models.ErrWrongDialogStep
	}
	if !models.IsValidFrequency(value) {
		slog.Debug("Dialog SelectFrequency ignored unknown value", "userID", userID, "value", value)
		return *state, nil
	}

	state.Frequency = value
	state.Step = models.StepCollectingDescription
	state.UpdatedAt = m.now()
	slog.Debug("Dialog SelectFrequency accepted", "userID", userID, "frequency", value)
	return *state, nil
}

// SubmitDescription accepts an optional description (empty permitted) and
// finalizes the dialog. An over-long description leaves the dialog at the
// same step and returns a validation error.
func (m *Manager) SubmitDescription(userID, text string) (models.Habit, error) {
	m.mu.Lock()
	state, ok := m.states[userID]
	if !ok {
		m.mu.Unlock()
		return models.Habit{}, models.ErrNoActiveDialog
	}
	if state.Step != models.StepCollectingDescription {
		m.mu.Unlock()
		return models.Habit{}, models.ErrWrongDialogStep
	}
	if utf8.RuneCountInString(text) > models.MaxHabitDescriptionLength {
		m.mu.Unlock()
		slog.Debug("Dialog SubmitDescription rejected long description", "userID", userID, "length", utf8.RuneCountInString(text))
		return models.Habit{}, models.ErrDescriptionTooLong
	}
	state.Description = text
	state.UpdatedAt = m.now()
	m.mu.Unlock()

	return m.finalize(userID)
}

// SkipDescription finalizes the dialog with an empty description.
func (m *Manager) SkipDescription(userID string) (models.Habit, error) {
	m.mu.Lock()
	state, ok := m.states[userID]
	if !ok {
		m.mu.Unlock()
		return models.Habit{}, models.ErrNoActiveDialog
	}
	if state.Step != models.StepCollectingDescription {
		m.mu.Unlock()
		return models.Habit{}, models.ErrWrongDialogStep
	}
	state.Description = ""
	state.UpdatedAt = m.now()
	m.mu.Unlock()

	return m.finalize(userID)
}

// Cancel discards the user's dialog without persisting anything.
func (m *Manager) Cancel(userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.states[userID]; !ok {
		return models.ErrNoActiveDialog
	}
	delete(m.states, userID)
	slog.Info("Dialog cancelled", "userID", userID)
	return nil
}

// finalize builds the habit from the accumulated state and persists it.
// The store call runs outside the state lock. On store failure the dialog
// state is preserved so the user can retry without re-entering fields.
func (m *Manager) finalize(userID string) (models.Habit, error) {
	m.mu.Lock()
	state, ok := m.states[userID]
	if !ok {
		m.mu.Unlock()
		return models.Habit{}, models.ErrNoActiveDialog
	}
	// The lock was dropped between the caller's step check and here; a
	// concurrent Begin may have replaced the state with a fresh dialog.
	if state.Step != models.StepCollectingDescription {
		m.mu.Unlock()
		return models.Habit{}, models.ErrWrongDialogStep
	}
	habit := models.Habit{
		ID:          m.newID(),
		Name:        state.Name,
		Description: state.Description,
		Frequency:   state.Frequency,
		CreatedAt:   m.now(),
		IsActive:    true,
	}
	m.mu.Unlock()

	if err := m.store.CreateHabit(habit); err != nil {
		slog.Error("Dialog finalize store failure, keeping dialog state", "error", err, "userID", userID)
		return models.Habit{}, fmt.Errorf("failed to create habit: %w", err)
	}

	m.mu.Lock()
	delete(m.states, userID)
	m.mu.Unlock()

	slog.Info("Dialog finalized, habit created", "userID", userID, "habitID", habit.ID, "name", habit.Name)
	return habit, nil
}
