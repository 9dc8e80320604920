package repository

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"teamcal-backend/internal/models"
)

// MemoryActivityStore keeps activities in memory. Same contract as
// ActivityRepo; used for local development and tests.
type MemoryActivityStore struct {
	mu         sync.RWMutex
	activities map[activityKey]models.Activity
}

type activityKey struct {
	id           string
	resourceType string
}

func NewMemoryActivityStore() *MemoryActivityStore {
	return &MemoryActivityStore{
		activities: make(map[activityKey]models.Activity),
	}
}

func (s *MemoryActivityStore) ReplaceActivities(ctx context.Context, items []models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, item := range items {
		if item.ID == "" || item.ResourceType == "" || item.StartsAt.IsZero() {
			continue
		}
		if len(item.Payload) == 0 {
			item.Payload = json.RawMessage("{}")
		}
		item.CreatedAt = now
		item.UpdatedAt = now
		s.activities[activityKey{item.ID, item.ResourceType}] = item
	}
	return nil
}

func (s *MemoryActivityStore) GetActivities(ctx context.Context, from, to time.Time) ([]models.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Activity
	for _, a := range s.activities {
		if a.StartsAt.After(to) {
			continue
		}
		if a.EndsAt != nil && a.EndsAt.Before(from) {
			continue
		}
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartsAt.Before(out[j].StartsAt)
	})
	return out, nil
}

func (s *MemoryActivityStore) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	var deleted int64
	for key, a := range s.activities {
		if a.StartsAt.Before(cutoff) {
			delete(s.activities, key)
			deleted++
		}
	}
	return deleted, nil
}

// Len reports the number of stored activities.
func (s *MemoryActivityStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.activities)
}

// MemorySettingsStore is the in-memory counterpart of SettingsRepo.
type MemorySettingsStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemorySettingsStore() *MemorySettingsStore {
	return &MemorySettingsStore{values: make(map[string]string)}
}

func (s *MemorySettingsStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key], nil
}

func (s *MemorySettingsStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemorySettingsStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
