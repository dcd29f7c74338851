package dialog

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/THEGOSTOFTOWER/HabitTrack/internal/models"
	"github.com/THEGOSTOFTOWER/HabitTrack/internal/store"
)

// failingStore wraps the in-memory store and fails habit creation on demand.
type failingStore struct {
	*store.InMemoryStore
	failCreate bool
}

func (s *failingStore) CreateHabit(h models.Habit) error {
	if s.failCreate {
		return errors.New("disk full")
	}
	return s.InMemoryStore.CreateHabit(h)
}

func newTestManager() (*Manager, *store.InMemoryStore) {
	st := store.NewInMemoryStore()
	m := NewManager(st, WithIDGenerator(func() string { return "habit-1" }))
	return m, st
}

func TestBeginCreatesState(t *testing.T) {
	m, _ := newTestManager()

	state := m.Begin("user1", "en")
	if state.Step != models.StepCollectingName {
		t.Errorf("expected step %s, got %s", models.StepCollectingName, state.Step)
	}
	if state.UserID != "user1" || state.Language != "en" {
		t.Errorf("unexpected state identity: %+v", state)
	}

	got, ok := m.Get("user1")
	if !ok {
		t.Fatal("expected dialog state to exist after Begin")
	}
	if got.Step != models.StepCollectingName {
		t.Errorf("expected stored step %s, got %s", models.StepCollectingName, got.Step)
	}
}

func TestBeginReplacesExistingDialog(t *testing.T) {
	m, _ := newTestManager()

	m.Begin("user1", "en")
	if _, err := m.SubmitName("user1", "Run"); err != nil {
		t.Fatalf("SubmitName failed: %v", err)
	}

	state := m.Begin("user1", "ru")
	if state.Step != models.StepCollectingName {
		t.Errorf("expected fresh dialog at name step, got %s", state.Step)
	}
	if state.Name != "" {
		t.Errorf("expected cleared name, got %q", state.Name)
	}
	if state.Language != "ru" {
		t.Errorf("expected language ru, got %q", state.Language)
	}
}

func TestSubmitNameWithoutDialog(t *testing.T) {
	m, _ := newTestManager()

	if _, err := m.SubmitName("user1", "Run"); !errors.Is(err, models.ErrNoActiveDialog) {
		t.Errorf("expected ErrNoActiveDialog, got %v", err)
	}
}

func TestSubmitNameValidation(t *testing.T) {
	m, _ := newTestManager()
	m.Begin("user1", "en")

	state, err := m.SubmitName("user1", "")
	if !errors.Is(err, models.ErrEmptyHabitName) {
		t.Errorf("expected ErrEmptyHabitName, got %v", err)
	}
	if state.Step != models.StepCollectingName {
		t.Errorf("expected dialog to stay at name step, got %s", state.Step)
	}

	state, err = m.SubmitName("user1", strings.Repeat("x", models.MaxHabitNameLength+1))
	if !errors.Is(err, models.ErrHabitNameTooLong) {
		t.Errorf("expected ErrHabitNameTooLong, got %v", err)
	}
	if state.Step != models.StepCollectingName {
		t.Errorf("expected dialog to stay at name step, got %s", state.Step)
	}

	// The dialog is still usable after rejected input.
	state, err = m.SubmitName("user1", "Run")
	if err != nil {
		t.Fatalf("SubmitName failed after retry: %v", err)
	}
	if state.Step != models.StepCollectingFrequency || state.Name != "Run" {
		t.Errorf("expected advance to frequency with name Run, got %+v", state)
	}
}

func TestSubmitNameCountsCharactersNotBytes(t *testing.T) {
	m, _ := newTestManager()
	m.Begin("user1", "ru")

	// 60 Cyrillic characters encode to 120 bytes; the limit counts characters.
	name := strings.Repeat("я", 60)
	state, err := m.SubmitName("user1", name)
	if err != nil {
		t.Fatalf("expected 60-character name accepted, got %v", err)
	}
	if state.Step != models.StepCollectingFrequency || state.Name != name {
		t.Errorf("expected advance to frequency with the Cyrillic name, got %+v", state)
	}

	m.Begin("user2", "ru")
	state, err = m.SubmitName("user2", strings.Repeat("я", models.MaxHabitNameLength+1))
	if !errors.Is(err, models.ErrHabitNameTooLong) {
		t.Errorf("expected ErrHabitNameTooLong past the character limit, got %v", err)
	}
	if state.Step != models.StepCollectingName {
		t.Errorf("expected dialog to stay at name step, got %s", state.Step)
	}
}

func TestSubmitDescriptionCountsCharactersNotBytes(t *testing.T) {
	m, st := newTestManager()
	m.Begin("user1", "ru")
	m.SubmitName("user1", "Бег")
	m.SelectFrequency("user1", models.FrequencyDaily)

	// 300 Cyrillic characters encode to 600 bytes, still inside the limit.
	description := strings.Repeat("я", 300)
	habit, err := m.SubmitDescription("user1", description)
	if err != nil {
		t.Fatalf("expected 300-character description accepted, got %v", err)
	}
	if habit.Description != description {
		t.Errorf("expected description preserved, got %d characters", len([]rune(habit.Description)))
	}
	stored, _ := st.GetHabit(habit.ID)
	if stored == nil {
		t.Fatal("expected habit persisted")
	}
}

func TestSelectFrequencyIgnoresUnknownValue(t *testing.T) {
	m, _ := newTestManager()
	m.Begin("user1", "en")
	if _, err := m.SubmitName("user1", "Run"); err != nil {
		t.Fatalf("SubmitName failed: %v", err)
	}

	state, err := m.SelectFrequency("user1", models.Frequency("hourly"))
	if err != nil {
		t.Fatalf("expected no error for unknown frequency, got %v", err)
	}
	if state.Step != models.StepCollectingFrequency {
		t.Errorf("expected dialog to stay at frequency step, got %s", state.Step)
	}

	state, err = m.SelectFrequency("user1", models.FrequencyDaily)
	if err != nil {
		t.Fatalf("SelectFrequency failed: %v", err)
	}
	if state.Step != models.StepCollectingDescription || state.Frequency != models.FrequencyDaily {
		t.Errorf("expected advance to description with daily frequency, got %+v", state)
	}
}

func TestSelectFrequencyWrongStep(t *testing.T) {
	m, _ := newTestManager()
	m.Begin("user1", "en")

	if _, err := m.SelectFrequency("user1", models.FrequencyDaily); !errors.Is(err, models.ErrWrongDialogStep) {
		t.Errorf("expected ErrWrongDialogStep, got %v", err)
	}
}

func TestSubmitDescriptionFinalizes(t *testing.T) {
	m, st := newTestManager()
	m.Begin("user1", "en")
	if _, err := m.SubmitName("user1", "Run"); err != nil {
		t.Fatalf("SubmitName failed: %v", err)
	}
	if _, err := m.SelectFrequency("user1", models.FrequencyDaily); err != nil {
		t.Fatalf("SelectFrequency failed: %v", err)
	}

	habit, err := m.SubmitDescription("user1", "5km every morning")
	if err != nil {
		t.Fatalf("SubmitDescription failed: %v", err)
	}
	if habit.ID != "habit-1" || habit.Name != "Run" || habit.Description != "5km every morning" {
		t.Errorf("unexpected habit: %+v", habit)
	}
	if habit.Frequency != models.FrequencyDaily || !habit.IsActive {
		t.Errorf("expected active daily habit, got %+v", habit)
	}

	stored, err := st.GetHabit("habit-1")
	if err != nil || stored == nil {
		t.Fatalf("expected habit persisted, got habit=%v err=%v", stored, err)
	}
	if _, ok := m.Get("user1"); ok {
		t.Error("expected dialog state discarded after finalize")
	}
}

func TestSubmitDescriptionTooLong(t *testing.T) {
	m, _ := newTestManager()
	m.Begin("user1", "en")
	m.SubmitName("user1", "Run")
	m.SelectFrequency("user1", models.FrequencyDaily)

	_, err := m.SubmitDescription("user1", strings.Repeat("x", models.MaxHabitDescriptionLength+1))
	if !errors.Is(err, models.ErrDescriptionTooLong) {
		t.Errorf("expected ErrDescriptionTooLong, got %v", err)
	}
	state, ok := m.Get("user1")
	if !ok || state.Step != models.StepCollectingDescription {
		t.Errorf("expected dialog kept at description step, got ok=%v state=%+v", ok, state)
	}
}

func TestSkipDescriptionFinalizesEmpty(t *testing.T) {
	m, st := newTestManager()
	m.Begin("user1", "en")
	m.SubmitName("user1", "Run")
	m.SelectFrequency("user1", models.FrequencyWeekly)

	habit, err := m.SkipDescription("user1")
	if err != nil {
		t.Fatalf("SkipDescription failed: %v", err)
	}
	if habit.Description != "" {
		t.Errorf("expected empty description, got %q", habit.Description)
	}
	stored, _ := st.GetHabit(habit.ID)
	if stored == nil {
		t.Fatal("expected habit persisted")
	}
}

func TestFinalizeStoreFailureKeepsState(t *testing.T) {
	fst := &failingStore{InMemoryStore: store.NewInMemoryStore(), failCreate: true}
	m := NewManager(fst)
	m.Begin("user1", "en")
	m.SubmitName("user1", "Run")
	m.SelectFrequency("user1", models.FrequencyDaily)

	if _, err := m.SubmitDescription("user1", "notes"); err == nil {
		t.Fatal("expected error from failing store")
	}
	state, ok := m.Get("user1")
	if !ok {
		t.Fatal("expected dialog state preserved after store failure")
	}
	if state.Name != "Run" || state.Frequency != models.FrequencyDaily {
		t.Errorf("expected accumulated fields preserved, got %+v", state)
	}

	// Retry succeeds once the store recovers.
	fst.failCreate = false
	habit, err := m.SubmitDescription("user1", "notes")
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if habit.Name != "Run" {
		t.Errorf("expected habit Run, got %+v", habit)
	}
	if _, ok := m.Get("user1"); ok {
		t.Error("expected dialog state discarded after successful retry")
	}
}

func TestFinalizeRejectsReplacedDialog(t *testing.T) {
	m, st := newTestManager()
	m.Begin("user1", "en")

	// A dialog not yet at the description step must never finalize; this is
	// the state a concurrent Begin leaves behind.
	if _, err := m.finalize("user1"); !errors.Is(err, models.ErrWrongDialogStep) {
		t.Errorf("expected ErrWrongDialogStep, got %v", err)
	}

	habits, _ := st.ListActiveHabits()
	if len(habits) != 0 {
		t.Errorf("expected no habits persisted, got %d", len(habits))
	}
	state, ok := m.Get("user1")
	if !ok || state.Step != models.StepCollectingName {
		t.Errorf("expected fresh dialog untouched, got ok=%v state=%+v", ok, state)
	}
}

func TestCancel(t *testing.T) {
	m, st := newTestManager()
	m.Begin("user1", "en")
	m.SubmitName("user1", "Run")

	if err := m.Cancel("user1"); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if _, ok := m.Get("user1"); ok {
		t.Error("expected dialog state discarded after cancel")
	}
	habits, _ := st.ListActiveHabits()
	if len(habits) != 0 {
		t.Errorf("expected no habits persisted, got %d", len(habits))
	}

	if err := m.Cancel("user1"); !errors.Is(err, models.ErrNoActiveDialog) {
		t.Errorf("expected ErrNoActiveDialog on second cancel, got %v", err)
	}
}

func TestDialogsAreIndependentPerUser(t *testing.T) {
	m, _ := newTestManager()
	m.Begin("user1", "en")
	m.Begin("user2", "ru")

	if _, err := m.SubmitName("user1", "Run"); err != nil {
		t.Fatalf("SubmitName failed: %v", err)
	}

	state, ok := m.Get("user2")
	if !ok || state.Step != models.StepCollectingName {
		t.Errorf("expected user2 untouched at name step, got ok=%v state=%+v", ok, state)
	}
}

func TestWithClockControlsTimestamps(t *testing.T) {
	st := store.NewInMemoryStore()
	fixed := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	m := NewManager(st, WithClock(func() time.Time { return fixed }))

	state := m.Begin("user1", "en")
	if !state.CreatedAt.Equal(fixed) || !state.UpdatedAt.Equal(fixed) {
		t.Errorf("expected timestamps %v, got created=%v updated=%v", fixed, state.CreatedAt, state.UpdatedAt)
	}
}
