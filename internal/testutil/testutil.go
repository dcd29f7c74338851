// Package testutil provides common test utilities and helpers for HabitTrack tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/THEGOSTOFTOWER/HabitTrack/internal/api"
	"github.com/THEGOSTOFTOWER/HabitTrack/internal/dialog"
	"github.com/THEGOSTOFTOWER/HabitTrack/internal/models"
	"github.com/THEGOSTOFTOWER/HabitTrack/internal/store"
)

// NewTestServer creates a test API server backed by an in-memory store.
// This centralizes the test server creation logic used across multiple test files.
func NewTestServer() (*api.Server, store.Store) {
	st := store.NewInMemoryStore()
	dialogs := dialog.NewManager(st)
	return api.NewServer(st, dialogs), st
}

// AssertHTTPStatus checks the HTTP status code and fails the test if it doesn't match.
func AssertHTTPStatus(t *testing.T, expected, actual int, context string) {
	t.Helper()
	if actual != expected {
		t.Errorf("%s: expected status %d, got %d", context, expected, actual)
	}
}

// AssertJSONResponse decodes JSON response and validates the status field.
func AssertJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus string) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}

	if status, ok := response["status"].(string); ok {
		if status != expectedStatus {
			t.Errorf("expected status '%s', got '%s'", expectedStatus, status)
		}
	} else {
		t.Error("response missing or invalid 'status' field")
	}

	return response
}

// CreateHTTPRequest creates an HTTP request with optional JSON body for testing.
func CreateHTTPRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("failed to create HTTP request: %v", err)
	}
	return req
}

// SeedHabit creates a habit in the store and fails the test on error.
func SeedHabit(t *testing.T, st store.Store, id, name string) models.Habit {
	t.Helper()
	habit := models.Habit{
		ID:        id,
		Name:      name,
		Frequency: models.FrequencyDaily,
		CreatedAt: time.Now(),
		IsActive:  true,
	}
	if err := st.CreateHabit(habit); err != nil {
		t.Fatalf("failed to seed habit %s: %v", id, err)
	}
	return habit
}

// SeedCompletion records a completion for a habit and fails the test on error.
func SeedCompletion(t *testing.T, st store.Store, id, habitID string, at time.Time) {
	t.Helper()
	completion := models.Completion{
		ID:          id,
		HabitID:     habitID,
		CompletedAt: at,
	}
	if err := st.AddCompletion(completion); err != nil {
		t.Fatalf("failed to seed completion %s: %v", id, err)
	}
}

// AssertHabitEquals compares two Habit structs for equality in tests.
func AssertHabitEquals(t *testing.T, expected, actual models.Habit, context string) {
	t.Helper()
	if actual.ID != expected.ID ||
		actual.Name != expected.Name ||
		actual.Description != expected.Description ||
		actual.Frequency != expected.Frequency ||
		actual.Goal != expected.Goal ||
		actual.Category != expected.Category ||
		actual.IsActive != expected.IsActive {
		t.Errorf("%s: habits don't match\nexpected: %+v\nactual: %+v", context, expected, actual)
	}
}
