package models

import (
	"encoding/json"
	"time"
)

// Resource types stored locally.
const (
	ResourceTypeEvent    = "event"
	ResourceTypeExercise = "exercise"
)

// Activity is a normalized remote record (event or exercise). The pair
// (ID, ResourceType) is its identity; a later sync with the same pair fully
// replaces the stored row.
type Activity struct {
	ID           string          `json:"id"`
	ResourceType string          `json:"resource_type"`
	StartsAt     time.Time       `json:"starts_at"`
	EndsAt       *time.Time      `json:"ends_at,omitempty"`
	Payload      json.RawMessage `json:"payload"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Scope is the remote account the sync queries: kind is "team" or
// "organisation", ID the remote identifier for it.
type Scope struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// Sync status values recorded after each run.
const (
	SyncStatusIdle    = "idle"
	SyncStatusSuccess = "success"
	SyncStatusError   = "error"
)

type SyncStatus struct {
	Status      string     `json:"status"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

// CalendarEvent is the FullCalendar-shaped view of an activity served by the
// public feed endpoint.
type CalendarEvent struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Start         time.Time     `json:"start"`
	End           *time.Time    `json:"end,omitempty"`
	Color         string        `json:"color,omitempty"`
	ExtendedProps ExtendedProps `json:"extendedProps"`
}

type ExtendedProps struct {
	ResourceType         string `json:"resourceType"`
	Description          string `json:"description"`
	Reference            string `json:"reference"`
	ReferenceDescription string `json:"referenceDescription"`
}
