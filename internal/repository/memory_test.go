package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"teamcal-backend/internal/models"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("Bad test date %q: %v", value, err)
	}
	return parsed
}

func activity(id, resourceType string, starts time.Time, ends *time.Time) models.Activity {
	return models.Activity{
		ID:           id,
		ResourceType: resourceType,
		StartsAt:     starts,
		EndsAt:       ends,
		Payload:      json.RawMessage(`{}`),
	}
}

func TestMemoryActivityStore_RangeOverlap(t *testing.T) {
	store := NewMemoryActivityStore()
	ctx := context.Background()

	ends := mustTime(t, "2024-01-15")
	if err := store.ReplaceActivities(ctx, []models.Activity{
		activity("1", models.ResourceTypeEvent, mustTime(t, "2024-01-10"), &ends),
	}); err != nil {
		t.Fatalf("ReplaceActivities failed: %v", err)
	}

	tests := []struct {
		name     string
		from     string
		to       string
		expected int
	}{
		{"window overlaps tail", "2024-01-12", "2024-01-20", 1},
		{"window overlaps head", "2024-01-05", "2024-01-11", 1},
		{"window inside activity", "2024-01-11", "2024-01-12", 1},
		{"activity inside window", "2024-01-01", "2024-02-01", 1},
		{"window after activity", "2024-02-01", "2024-02-10", 0},
		{"window before activity", "2023-12-01", "2023-12-31", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := store.GetActivities(ctx, mustTime(t, tc.from), mustTime(t, tc.to))
			if err != nil {
				t.Fatalf("GetActivities failed: %v", err)
			}
			if len(got) != tc.expected {
				t.Errorf("Expected %d activities, got %d", tc.expected, len(got))
			}
		})
	}
}

func TestMemoryActivityStore_OpenEndedIncluded(t *testing.T) {
	store := NewMemoryActivityStore()
	ctx := context.Background()

	store.ReplaceActivities(ctx, []models.Activity{
		activity("1", models.ResourceTypeEvent, mustTime(t, "2024-01-10"), nil),
	})

	// Open-ended activities overlap any window at or after their start.
	got, err := store.GetActivities(ctx, mustTime(t, "2024-06-01"), mustTime(t, "2024-06-30"))
	if err != nil {
		t.Fatalf("GetActivities failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Expected open-ended activity to be returned, got %d", len(got))
	}
}

func TestMemoryActivityStore_UpsertReplace(t *testing.T) {
	store := NewMemoryActivityStore()
	ctx := context.Background()

	first := activity("1", models.ResourceTypeEvent, mustTime(t, "2024-01-10"), nil)
	first.Payload = json.RawMessage(`{"a":1}`)
	store.ReplaceActivities(ctx, []models.Activity{first})

	second := activity("1", models.ResourceTypeEvent, mustTime(t, "2024-01-10"), nil)
	second.Payload = json.RawMessage(`{"a":2}`)
	store.ReplaceActivities(ctx, []models.Activity{second})

	if store.Len() != 1 {
		t.Fatalf("Expected 1 row after upsert, got %d", store.Len())
	}

	got, _ := store.GetActivities(ctx, mustTime(t, "2024-01-01"), mustTime(t, "2024-02-01"))
	var payload map[string]int
	if err := json.Unmarshal(got[0].Payload, &payload); err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}
	if payload["a"] != 2 {
		t.Errorf("Expected payload a=2, got %d", payload["a"])
	}
}

func TestMemoryActivityStore_SameIDDifferentType(t *testing.T) {
	store := NewMemoryActivityStore()
	ctx := context.Background()

	store.ReplaceActivities(ctx, []models.Activity{
		activity("1", models.ResourceTypeEvent, mustTime(t, "2024-01-10"), nil),
		activity("1", models.ResourceTypeExercise, mustTime(t, "2024-01-11"), nil),
	})

	if store.Len() != 2 {
		t.Errorf("Expected 2 rows for same id across types, got %d", store.Len())
	}
}

func TestMemoryActivityStore_SkipsInvalid(t *testing.T) {
	store := NewMemoryActivityStore()
	ctx := context.Background()

	err := store.ReplaceActivities(ctx, []models.Activity{
		activity("", models.ResourceTypeEvent, mustTime(t, "2024-01-10"), nil),
		activity("1", "", mustTime(t, "2024-01-10"), nil),
		{ID: "2", ResourceType: models.ResourceTypeEvent},
		activity("3", models.ResourceTypeEvent, mustTime(t, "2024-01-10"), nil),
	})
	if err != nil {
		t.Fatalf("ReplaceActivities failed: %v", err)
	}

	if store.Len() != 1 {
		t.Errorf("Expected invalid items to be skipped, got %d rows", store.Len())
	}
}

func TestMemoryActivityStore_OrderedByStart(t *testing.T) {
	store := NewMemoryActivityStore()
	ctx := context.Background()

	store.ReplaceActivities(ctx, []models.Activity{
		activity("b", models.ResourceTypeEvent, mustTime(t, "2024-01-20"), nil),
		activity("a", models.ResourceTypeEvent, mustTime(t, "2024-01-10"), nil),
		activity("c", models.ResourceTypeExercise, mustTime(t, "2024-01-15"), nil),
	})

	got, err := store.GetActivities(ctx, mustTime(t, "2024-01-01"), mustTime(t, "2024-02-01"))
	if err != nil {
		t.Fatalf("GetActivities failed: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("Expected 3 activities, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].StartsAt.Before(got[i-1].StartsAt) {
			t.Errorf("Expected ascending start order, got %v before %v", got[i-1].StartsAt, got[i].StartsAt)
		}
	}
}

func TestMemoryActivityStore_DeleteOlderThan(t *testing.T) {
	store := NewMemoryActivityStore()
	ctx := context.Background()

	old := time.Now().UTC().AddDate(0, 0, -120)
	recent := time.Now().UTC().AddDate(0, 0, -5)

	store.ReplaceActivities(ctx, []models.Activity{
		activity("old-1", models.ResourceTypeEvent, old, nil),
		activity("old-2", models.ResourceTypeExercise, old, nil),
		activity("recent", models.ResourceTypeEvent, recent, nil),
	})

	deleted, err := store.DeleteOlderThan(ctx, 90)
	if err != nil {
		t.Fatalf("DeleteOlderThan failed: %v", err)
	}

	if deleted != 2 {
		t.Errorf("Expected 2 deleted, got %d", deleted)
	}
	if store.Len() != 1 {
		t.Errorf("Expected 1 remaining row, got %d", store.Len())
	}
}

func TestMemorySettingsStore(t *testing.T) {
	store := NewMemorySettingsStore()
	ctx := context.Background()

	if v, _ := store.Get(ctx, "missing"); v != "" {
		t.Errorf("Expected empty value for missing key, got %q", v)
	}

	store.Set(ctx, "k", "v1")
	store.Set(ctx, "k", "v2")
	if v, _ := store.Get(ctx, "k"); v != "v2" {
		t.Errorf("Expected overwritten value v2, got %q", v)
	}

	store.Delete(ctx, "k")
	if v, _ := store.Get(ctx, "k"); v != "" {
		t.Errorf("Expected empty value after delete, got %q", v)
	}
}
