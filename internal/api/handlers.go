// Package api provides HTTP handlers for HabitTrack endpoints.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/THEGOSTOFTOWER/HabitTrack/internal/locales"
	"github.com/THEGOSTOFTOWER/HabitTrack/internal/models"
	"github.com/THEGOSTOFTOWER/HabitTrack/internal/stats"
	"github.com/google/uuid"
)

// habitsHandler handles the habit collection endpoints (GET/POST /habits).
func (s *Server) habitsHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.habitsHandler: processing request", "method", r.Method, "path", r.URL.Path)
	switch r.Method {
	case http.MethodGet:
		s.listHabitsHandler(w, r)
	case http.MethodPost:
		s.createHabitHandler(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		slog.Warn("Server.habitsHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// listHabitsHandler handles GET /habits, returning active habits with their
// completed-today flag.
func (s *Server) listHabitsHandler(w http.ResponseWriter, r *http.Request) {
	habits, err := s.st.ListActiveHabits()
	if err != nil {
		slog.Error("Server.listHabitsHandler: failed to list habits", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to list habits"))
		return
	}

	now := s.now()
	items := make([]models.HabitListItem, 0, len(habits))
	for _, h := range habits {
		done, err := s.st.CompletedToday(h.ID, now)
		if err != nil {
			slog.Error("Server.listHabitsHandler: completed-today check failed", "error", err, "habitID", h.ID)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to list habits"))
			return
		}
		items = append(items, models.HabitListItem{Habit: h, CompletedToday: done})
	}
	slog.Debug("Server.listHabitsHandler: habits listed", "count", len(items))
	if len(items) == 0 {
		writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage(locales.Resolve(s.defaultLang, locales.KeyNoHabits), items))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(items))
}

// createHabitHandler handles POST /habits for transport adapters that collect
// all fields at once, bypassing the dialog.
func (s *Server) createHabitHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	var req models.CreateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.createHabitHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		slog.Warn("Server.createHabitHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	habit := models.Habit{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Frequency:   req.Frequency,
		Goal:        req.Goal,
		Category:    req.Category,
		CreatedAt:   s.now(),
		IsActive:    true,
	}
	if err := s.st.CreateHabit(habit); err != nil {
		slog.Error("Server.createHabitHandler: store failure", "error", err, "name", req.Name)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to create habit"))
		return
	}
	slog.Info("Server.createHabitHandler: habit created", "habitID", habit.ID, "name", habit.Name)
	writeJSONResponse(w, http.StatusCreated, models.Success(habit))
}

// habitHandler routes per-habit endpoints (/habits/{id}[/complete|/stats|/chart]).
func (s *Server) habitHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.habitHandler: processing request", "method", r.Method, "path", r.URL.Path)

	path := strings.TrimPrefix(r.URL.Path, "/habits/")
	segments := strings.Split(path, "/")
	if len(segments) == 0 || segments[0] == "" {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Unknown habit endpoint"))
		return
	}
	habitID := segments[0]

	if len(segments) == 1 {
		// /habits/{id}
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.getHabitHandler(w, r, habitID)
		return
	}

	if len(segments) == 2 {
		switch segments[1] {
		case "complete":
			if r.Method != http.MethodPost {
				w.Header().Set("Allow", http.MethodPost)
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			s.completeHabitHandler(w, r, habitID)
		case "stats":
			if r.Method != http.MethodGet {
				w.Header().Set("Allow", http.MethodGet)
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			s.habitStatsHandler(w, r, habitID)
		case "chart":
			if r.Method != http.MethodGet {
				w.Header().Set("Allow", http.MethodGet)
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			s.habitChartHandler(w, r, habitID)
		default:
			writeJSONResponse(w, http.StatusNotFound, models.Error("Unknown habit endpoint"))
		}
		return
	}

	writeJSONResponse(w, http.StatusNotFound, models.Error("Unknown habit endpoint"))
}

// lookupActiveHabit fetches a habit and writes a 404 when it is absent or
// inactive. A missing habit is a per-request condition, never a fault.
func (s *Server) lookupActiveHabit(w http.ResponseWriter, habitID string) *models.Habit {
	habit, err := s.st.GetHabit(habitID)
	if err != nil {
		slog.Error("Server.lookupActiveHabit: store failure", "error", err, "habitID", habitID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch habit"))
		return nil
	}
	if habit == nil || !habit.IsActive {
		slog.Debug("Server.lookupActiveHabit: habit not found", "habitID", habitID)
		writeJSONResponse(w, http.StatusNotFound, models.Error(locales.Resolve(s.defaultLang, locales.KeyHabitNotFound)))
		return nil
	}
	return habit
}

// getHabitHandler handles GET /habits/{id}.
func (s *Server) getHabitHandler(w http.ResponseWriter, r *http.Request, habitID string) {
	habit := s.lookupActiveHabit(w, habitID)
	if habit == nil {
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(habit))
}

// completeHabitHandler handles POST /habits/{id}/complete.
func (s *Server) completeHabitHandler(w http.ResponseWriter, r *http.Request, habitID string) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	habit := s.lookupActiveHabit(w, habitID)
	if habit == nil {
		return
	}

	// The notes body is optional; an empty body records a plain completion.
	var req models.CompleteHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Warn("Server.completeHabitHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	completion := models.Completion{
		ID:          uuid.NewString(),
		HabitID:     habit.ID,
		CompletedAt: s.now(),
		Notes:       req.Notes,
	}
	if err := completion.Validate(); err != nil {
		slog.Warn("Server.completeHabitHandler: validation failed", "error", err, "habitID", habitID)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	if err := s.st.AddCompletion(completion); err != nil {
		slog.Error("Server.completeHabitHandler: store failure", "error", err, "habitID", habitID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to record completion"))
		return
	}
	slog.Info("Server.completeHabitHandler: completion recorded", "habitID", habitID)
	writeJSONResponse(w, http.StatusCreated, models.Recorded(locales.Resolve(s.defaultLang, locales.KeyHabitCompleted), completion))
}

// habitStatsHandler handles GET /habits/{id}/stats.
func (s *Server) habitStatsHandler(w http.ResponseWriter, r *http.Request, habitID string) {
	habit := s.lookupActiveHabit(w, habitID)
	if habit == nil {
		return
	}
	times, err := s.st.GetCompletionTimes(habit.ID)
	if err != nil {
		slog.Error("Server.habitStatsHandler: failed to fetch completions", "error", err, "habitID", habitID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch completions"))
		return
	}
	result := stats.ComputeStats(habit.ID, habit.Name, times, s.now())
	slog.Debug("Server.habitStatsHandler: stats computed", "habitID", habitID, "total", result.TotalCompletions)
	writeJSONResponse(w, http.StatusOK, models.Success(result))
}

// habitChartHandler handles GET /habits/{id}/chart?days=N, returning the
// plain day-by-day series a chart renderer draws from.
func (s *Server) habitChartHandler(w http.ResponseWriter, r *http.Request, habitID string) {
	habit := s.lookupActiveHabit(w, habitID)
	if habit == nil {
		return
	}

	days := stats.RateWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			slog.Warn("Server.habitChartHandler: invalid days parameter", "days", raw)
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid days parameter"))
			return
		}
		days = parsed
	}

	now := s.now()
	times, err := s.st.GetCompletionTimesSince(habit.ID, now.AddDate(0, 0, -days-1))
	if err != nil {
		slog.Error("Server.habitChartHandler: failed to fetch completions", "error", err, "habitID", habitID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch completions"))
		return
	}
	series := stats.ProgressSeries(times, days, now)
	slog.Debug("Server.habitChartHandler: series built", "habitID", habitID, "days", days, "completed", series.CompletedDays)
	writeJSONResponse(w, http.StatusOK, models.Success(series))
}

// overviewHandler handles GET /stats/overview, returning statistics for all
// active habits in store listing order.
func (s *Server) overviewHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.overviewHandler: processing request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		slog.Warn("Server.overviewHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	habits, err := s.st.ListActiveHabits()
	if err != nil {
		slog.Error("Server.overviewHandler: failed to list habits", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to list habits"))
		return
	}

	entries := make([]stats.HabitCompletions, 0, len(habits))
	for _, h := range habits {
		times, err := s.st.GetCompletionTimes(h.ID)
		if err != nil {
			slog.Error("Server.overviewHandler: failed to fetch completions", "error", err, "habitID", h.ID)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch completions"))
			return
		}
		entries = append(entries, stats.HabitCompletions{Habit: h, Completions: times})
	}

	overview := stats.ComputeOverview(entries, s.now())
	slog.Debug("Server.overviewHandler: overview computed", "count", len(overview))
	writeJSONResponse(w, http.StatusOK, models.Success(overview))
}

// usersHandler routes per-user endpoints (/users/{id}/language).
func (s *Server) usersHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.usersHandler: processing request", "method", r.Method, "path", r.URL.Path)

	path := strings.TrimPrefix(r.URL.Path, "/users/")
	segments := strings.Split(path, "/")
	if len(segments) != 2 || segments[0] == "" || segments[1] != "language" {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Unknown user endpoint"))
		return
	}
	userID := segments[0]

	switch r.Method {
	case http.MethodGet:
		lang := s.languageFor(userID)
		writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"language": lang}))
	case http.MethodPut:
		if r.Body != nil {
			defer r.Body.Close()
		}
		var req models.SetLanguageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.Warn("Server.usersHandler: failed to decode JSON", "error", err)
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
			return
		}
		if err := req.Validate(); err != nil {
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
			return
		}
		if !locales.Supported(req.Language) {
			slog.Warn("Server.usersHandler: unsupported language", "lang", req.Language)
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Unsupported language"))
			return
		}
		if err := s.st.SetUserLanguage(userID, req.Language); err != nil {
			slog.Error("Server.usersHandler: store failure", "error", err, "userID", userID)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to set language"))
			return
		}
		slog.Info("Server.usersHandler: language updated", "userID", userID, "lang", req.Language)
		writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage(locales.Resolve(req.Language, locales.KeyLanguageSet), nil))
	default:
		w.Header().Set("Allow", "GET, PUT")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// healthHandler provides a health check endpoint for monitoring and load balancing
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	healthData := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	// Use the active habit count as a store health indicator
	if habits, err := s.st.ListActiveHabits(); err != nil {
		slog.Warn("Health check: failed to list habits", "error", err)
		healthData["status"] = "degraded"
		healthData["error"] = "Failed to reach habit store"
	} else {
		healthData["active_habits"] = len(habits)
	}

	statusCode := http.StatusOK
	if healthData["status"] == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSONResponse(w, statusCode, healthData)
}
