package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"teamcal-backend/internal/models"
	"teamcal-backend/internal/repository"
	"teamcal-backend/internal/services"
)

func newActivitiesHandler(t *testing.T, store *repository.MemoryActivityStore) *ActivitiesHandler {
	t.Helper()
	return NewActivitiesHandler(services.NewCalendarService(store, 90, "#3788d8", "#6c757d"))
}

func seedStore(t *testing.T, store *repository.MemoryActivityStore, id string, starts time.Time) {
	t.Helper()
	err := store.ReplaceActivities(context.Background(), []models.Activity{{
		ID:           id,
		ResourceType: models.ResourceTypeEvent,
		StartsAt:     starts,
		Payload:      json.RawMessage(`{"reference":"REF-` + id + `"}`),
	}})
	if err != nil {
		t.Fatalf("Failed to seed store: %v", err)
	}
}

func TestGetActivities_InvalidDates(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"bad from", "/api/v1/activities?from=garbage&to=2024-03-01"},
		{"bad to", "/api/v1/activities?from=2024-03-01&to=garbage"},
		{"bad start alias", "/api/v1/activities?start=31-12-2024"},
	}

	handler := newActivitiesHandler(t, repository.NewMemoryActivityStore())

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			rr := httptest.NewRecorder()

			handler.GetActivities(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", rr.Code)
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if resp.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("Expected VALIDATION_ERROR, got %q", resp.Error.Code)
			}
		})
	}
}

func TestGetActivities_ReturnsWindow(t *testing.T) {
	store := repository.NewMemoryActivityStore()
	seedStore(t, store, "7", time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	handler := newActivitiesHandler(t, store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activities?from=2024-03-01&to=2024-03-31", nil)
	rr := httptest.NewRecorder()

	handler.GetActivities(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var events []models.CalendarEvent
	if err := json.NewDecoder(rr.Body).Decode(&events); err != nil {
		t.Fatalf("Failed to decode events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].ID != "7-event" {
		t.Errorf("Expected id '7-event', got %q", events[0].ID)
	}
	if events[0].Title != "REF-7" {
		t.Errorf("Expected title REF-7, got %q", events[0].Title)
	}
}

func TestGetActivities_FullCalendarAliases(t *testing.T) {
	store := repository.NewMemoryActivityStore()
	seedStore(t, store, "7", time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	handler := newActivitiesHandler(t, store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activities?start=2024-03-01&end=2024-03-31", nil)
	rr := httptest.NewRecorder()

	handler.GetActivities(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var events []models.CalendarEvent
	if err := json.NewDecoder(rr.Body).Decode(&events); err != nil {
		t.Fatalf("Failed to decode events: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("Expected 1 event via start/end aliases, got %d", len(events))
	}
}

func TestGetActivities_OversizedWindowEmpty(t *testing.T) {
	store := repository.NewMemoryActivityStore()
	seedStore(t, store, "7", time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	handler := newActivitiesHandler(t, store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activities?from=2024-01-01&to=2024-12-31", nil)
	rr := httptest.NewRecorder()

	handler.GetActivities(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 for oversized window, got %d", rr.Code)
	}

	var events []models.CalendarEvent
	if err := json.NewDecoder(rr.Body).Decode(&events); err != nil {
		t.Fatalf("Failed to decode events: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("Expected empty result, got %d events", len(events))
	}
}
