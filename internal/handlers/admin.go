package handlers

import (
	"encoding/json"
	"net/http"

	"teamcal-backend/internal/repository"
	"teamcal-backend/internal/services"
)

type AdminHandler struct {
	settings      services.SettingsStore
	store         services.ActivityStore
	sync          *services.SyncService
	retentionDays int
	enablePurge   bool
}

func NewAdminHandler(settings services.SettingsStore, store services.ActivityStore, sync *services.SyncService, retentionDays int, enablePurge bool) *AdminHandler {
	return &AdminHandler{
		settings:      settings,
		store:         store,
		sync:          sync,
		retentionDays: retentionDays,
		enablePurge:   enablePurge,
	}
}

// SaveCredentials stores the API token and optional context pair. An empty
// context clears the stored value, so the next sync re-resolves it via the
// identity lookup.
func (h *AdminHandler) SaveCredentials(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token     string `json:"token"`
		Context   string `json:"context"`
		ContextID string `json:"context_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.Token == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", map[string]string{"token": "token is required"}, r))
		return
	}

	ctx := r.Context()
	pairs := map[string]string{
		repository.SettingAPIToken:  req.Token,
		repository.SettingContext:   req.Context,
		repository.SettingContextID: req.ContextID,
	}
	for key, value := range pairs {
		var err error
		if value == "" {
			err = h.settings.Delete(ctx, key)
		} else {
			err = h.settings.Set(ctx, key, value)
		}
		if err != nil {
			handleServiceError(w, r, &services.StorageError{Err: err})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Credentials saved"})
}

// SyncNow triggers a guarded sync run and reports its outcome.
func (h *AdminHandler) SyncNow(w http.ResponseWriter, r *http.Request) {
	if err := h.sync.TriggerSync(r.Context()); err != nil {
		handleServiceError(w, r, err)
		return
	}

	status, err := h.sync.Status(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Sync complete",
		"status":  status,
	})
}

// Purge deletes activities older than the retention threshold.
func (h *AdminHandler) Purge(w http.ResponseWriter, r *http.Request) {
	if !h.enablePurge {
		writeJSON(w, http.StatusBadRequest, errorResp("PURGE_DISABLED", "Purge is disabled", r))
		return
	}

	days := h.retentionDays
	if r.Body != nil {
		var req struct {
			Days int `json:"days"`
		}
		// Empty body keeps the configured retention.
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.Days != 0 {
			days = req.Days
		}
	}
	if days <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "days must be positive", r))
		return
	}

	deleted, err := h.store.DeleteOlderThan(r.Context(), days)
	if err != nil {
		handleServiceError(w, r, &services.StorageError{Err: err})
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

// Status reports the recorded outcome of the most recent sync run.
func (h *AdminHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.sync.Status(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}
