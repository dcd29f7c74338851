package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/THEGOSTOFTOWER/HabitTrack/internal/locales"
	"github.com/THEGOSTOFTOWER/HabitTrack/internal/models"
)

// dialogsHandler routes the habit-creation dialog endpoints
// (/dialogs/{userID}[/action]).
func (s *Server) dialogsHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.dialogsHandler: processing request", "method", r.Method, "path", r.URL.Path)

	path := strings.TrimPrefix(r.URL.Path, "/dialogs/")
	segments := strings.Split(path, "/")
	if len(segments) == 0 || segments[0] == "" {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Unknown dialog endpoint"))
		return
	}
	userID := segments[0]

	if len(segments) == 1 {
		// /dialogs/{userID}
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.getDialogHandler(w, r, userID)
		return
	}

	if len(segments) != 2 {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Unknown dialog endpoint"))
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	switch segments[1] {
	case "begin":
		s.beginDialogHandler(w, r, userID)
	case "name":
		s.dialogNameHandler(w, r, userID)
	case "frequency":
		s.dialogFrequencyHandler(w, r, userID)
	case "description":
		s.dialogDescriptionHandler(w, r, userID)
	case "skip":
		s.dialogSkipHandler(w, r, userID)
	case "cancel":
		s.dialogCancelHandler(w, r, userID)
	default:
		writeJSONResponse(w, http.StatusNotFound, models.Error("Unknown dialog endpoint"))
	}
}

// getDialogHandler handles GET /dialogs/{userID}.
func (s *Server) getDialogHandler(w http.ResponseWriter, r *http.Request, userID string) {
	state, ok := s.dialogs.Get(userID)
	if !ok {
		writeJSONResponse(w, http.StatusNotFound, models.Error("No active dialog"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(state))
}

// beginDialogHandler handles POST /dialogs/{userID}/begin. Any dialog already
// in progress for the user is replaced.
func (s *Server) beginDialogHandler(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	var req models.DialogBeginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Warn("Server.beginDialogHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	lang := req.Language
	if lang == "" {
		lang = s.languageFor(userID)
	}
	if !locales.Supported(lang) {
		slog.Warn("Server.beginDialogHandler: unsupported language", "lang", lang)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Unsupported language"))
		return
	}

	state := s.dialogs.Begin(userID, lang)
	slog.Info("Server.beginDialogHandler: dialog started", "userID", userID, "lang", lang)
	writeJSONResponse(w, http.StatusCreated, models.SuccessWithMessage(locales.Resolve(lang, locales.KeyPromptName), state))
}

// dialogNameHandler handles POST /dialogs/{userID}/name.
func (s *Server) dialogNameHandler(w http.ResponseWriter, r *http.Request, userID string) {
	req, ok := s.decodeDialogText(w, r)
	if !ok {
		return
	}

	state, err := s.dialogs.SubmitName(userID, req.Text)
	if err != nil {
		s.writeDialogError(w, userID, state, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage(locales.Resolve(state.Language, locales.KeyPromptFrequency), state))
}

// dialogFrequencyHandler handles POST /dialogs/{userID}/frequency. An unknown
// frequency value leaves the dialog where it is and re-prompts.
func (s *Server) dialogFrequencyHandler(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	var req models.DialogFrequencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.dialogFrequencyHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	state, err := s.dialogs.SelectFrequency(userID, req.Value)
	if err != nil {
		s.writeDialogError(w, userID, state, err)
		return
	}
	key := locales.KeyPromptDescription
	if state.Step == models.StepCollectingFrequency {
		// Unknown value was ignored; re-prompt for a frequency.
		key = locales.KeyPromptFrequency
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage(locales.Resolve(state.Language, key), state))
}

// dialogDescriptionHandler handles POST /dialogs/{userID}/description, the
// terminal transition that persists the habit.
func (s *Server) dialogDescriptionHandler(w http.ResponseWriter, r *http.Request, userID string) {
	req, ok := s.decodeDialogText(w, r)
	if !ok {
		return
	}

	habit, err := s.dialogs.SubmitDescription(userID, req.Text)
	if err != nil {
		state, _ := s.dialogs.Get(userID)
		s.writeDialogError(w, userID, state, err)
		return
	}
	lang := s.languageFor(userID)
	slog.Info("Server.dialogDescriptionHandler: habit created", "userID", userID, "habitID", habit.ID)
	writeJSONResponse(w, http.StatusCreated, models.SuccessWithMessage(locales.Resolve(lang, locales.KeyHabitCreated), habit))
}

// dialogSkipHandler handles POST /dialogs/{userID}/skip, finalizing with an
// empty description.
func (s *Server) dialogSkipHandler(w http.ResponseWriter, r *http.Request, userID string) {
	habit, err := s.dialogs.SkipDescription(userID)
	if err != nil {
		state, _ := s.dialogs.Get(userID)
		s.writeDialogError(w, userID, state, err)
		return
	}
	lang := s.languageFor(userID)
	slog.Info("Server.dialogSkipHandler: habit created", "userID", userID, "habitID", habit.ID)
	writeJSONResponse(w, http.StatusCreated, models.SuccessWithMessage(locales.Resolve(lang, locales.KeyHabitCreated), habit))
}

// dialogCancelHandler handles POST /dialogs/{userID}/cancel.
func (s *Server) dialogCancelHandler(w http.ResponseWriter, r *http.Request, userID string) {
	if err := s.dialogs.Cancel(userID); err != nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("No active dialog"))
		return
	}
	lang := s.languageFor(userID)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage(locales.Resolve(lang, locales.KeyDialogCancelled), nil))
}

// decodeDialogText decodes a free-text dialog payload, writing the error
// response itself on failure.
func (s *Server) decodeDialogText(w http.ResponseWriter, r *http.Request) (models.DialogTextRequest, bool) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	var req models.DialogTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.decodeDialogText: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return models.DialogTextRequest{}, false
	}
	return req, true
}

// writeDialogError maps dialog transition errors to HTTP responses. Validation
// failures carry a localized re-prompt message and the unchanged dialog state
// so the caller can render the retry without another round trip.
func (s *Server) writeDialogError(w http.ResponseWriter, userID string, state models.DialogState, err error) {
	switch {
	case errors.Is(err, models.ErrNoActiveDialog):
		writeJSONResponse(w, http.StatusNotFound, models.Error("No active dialog"))
	case errors.Is(err, models.ErrWrongDialogStep):
		writeJSONResponse(w, http.StatusConflict, models.Error("Dialog is at a different step"))
	case models.IsValidationError(err):
		lang := state.Language
		if lang == "" {
			lang = s.languageFor(userID)
		}
		resp := models.NewAPIResponseBuilder().
			WithStatus(models.APIStatusError).
			WithMessage(locales.Resolve(lang, validationMessageKey(err))).
			WithResult(state).
			Build()
		writeJSONResponse(w, http.StatusBadRequest, resp)
	default:
		slog.Error("Server.writeDialogError: dialog store failure", "error", err, "userID", userID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to create habit"))
	}
}

// validationMessageKey picks the localized message for a dialog validation error.
func validationMessageKey(err error) locales.Key {
	switch {
	case errors.Is(err, models.ErrEmptyHabitName):
		return locales.KeyErrNameEmpty
	case errors.Is(err, models.ErrHabitNameTooLong):
		return locales.KeyErrNameTooLong
	case errors.Is(err, models.ErrDescriptionTooLong):
		return locales.KeyErrDescriptionTooLong
	default:
		return locales.KeyErrNameEmpty
	}
}
