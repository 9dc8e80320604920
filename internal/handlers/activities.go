package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"teamcal-backend/internal/models"
	"teamcal-backend/internal/services"
)

type ActivitiesHandler struct {
	calendar *services.CalendarService
}

func NewActivitiesHandler(calendar *services.CalendarService) *ActivitiesHandler {
	return &ActivitiesHandler{calendar: calendar}
}

// GetActivities serves the calendar feed. Bounds arrive as from/to, or as
// start/end the way FullCalendar sends them; missing bounds fall back to the
// default window around now.
func (h *ActivitiesHandler) GetActivities(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	fromParam := firstNonEmpty(query.Get("from"), query.Get("start"))
	toParam := firstNonEmpty(query.Get("to"), query.Get("end"))

	from, to := h.calendar.DefaultWindow(time.Now().UTC())

	if fromParam != "" {
		parsed, err := parseDateParam(fromParam)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid from date", r))
			return
		}
		from = parsed
	}
	if toParam != "" {
		parsed, err := parseDateParam(toParam)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid to date", r))
			return
		}
		to = parsed
	}

	events, err := h.calendar.Events(r.Context(), from, to)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, events)
}

var dateParamFormats = []string{
	"2006-01-02",
	time.RFC3339,
}

func parseDateParam(s string) (time.Time, error) {
	for _, format := range dateParamFormats {
		if parsed, err := time.Parse(format, s); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ─── Shared response helpers ───

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var upstream *services.UpstreamError
	var unresolved *services.ContextUnresolvedError
	var storage *services.StorageError

	switch {
	case errors.Is(err, services.ErrSyncInProgress):
		writeJSON(w, http.StatusConflict, errorResp("SYNC_IN_PROGRESS", "A sync is already running", r))
	case errors.As(err, &upstream):
		writeJSON(w, http.StatusBadGateway, errorResp("UPSTREAM_ERROR", upstream.Error(), r))
	case errors.As(err, &unresolved):
		writeJSON(w, http.StatusConflict, errorResp("CONTEXT_UNRESOLVED", unresolved.Message, r))
	case errors.As(err, &storage):
		writeJSON(w, http.StatusInternalServerError, errorResp("STORAGE_ERROR", "Local store operation failed", r))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Something went wrong", r))
	}
}
