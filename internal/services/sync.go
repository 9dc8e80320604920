package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"teamcal-backend/internal/lock"
	"teamcal-backend/internal/models"
	"teamcal-backend/internal/repository"
)

const syncLockKey = "teamcal:sync:lock"

// ActivityStore is the durable keyed storage the sync writes into and the
// calendar reads from. Satisfied by repository.ActivityRepo and the in-memory
// store.
type ActivityStore interface {
	ReplaceActivities(ctx context.Context, items []models.Activity) error
	GetActivities(ctx context.Context, from, to time.Time) ([]models.Activity, error)
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}

// SettingsStore holds credentials, the resolved context, and sync status
// metadata. Get returns "" for absent keys.
type SettingsStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// SyncService pulls events and exercises from the D4H API into the local
// store. The API client is built per run because the token lives in the
// settings store and may change between runs.
type SyncService struct {
	settings SettingsStore
	store    ActivityStore
	locker   lock.Locker
	newAPI   func(token string) ActivityAPI
	lockTTL  time.Duration
}

func NewSyncService(settings SettingsStore, store ActivityStore, locker lock.Locker, newAPI func(token string) ActivityAPI, lockTTL time.Duration) *SyncService {
	return &SyncService{
		settings: settings,
		store:    store,
		locker:   locker,
		newAPI:   newAPI,
		lockTTL:  lockTTL,
	}
}

// TriggerSync is the guarded entry point shared by the scheduler and the
// admin endpoint. When a run is already in progress it returns
// ErrSyncInProgress without side effects. Any other outcome is recorded in
// the settings store as status metadata.
func (s *SyncService) TriggerSync(ctx context.Context) error {
	release, ok, err := s.locker.Acquire(ctx, syncLockKey, s.lockTTL)
	if err != nil {
		return fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	if !ok {
		return ErrSyncInProgress
	}
	defer release()

	runErr := s.RunFullSync(ctx)
	s.recordOutcome(ctx, runErr)
	return runErr
}

// RunFullSync resolves the context, fetches both collections completely,
// normalizes, and bulk-upserts. No write happens until both fetches have
// returned.
func (s *SyncService) RunFullSync(ctx context.Context) error {
	token, err := s.settings.Get(ctx, repository.SettingAPIToken)
	if err != nil {
		return &StorageError{Err: err}
	}
	if token == "" {
		return &ContextUnresolvedError{Message: "API token is not configured"}
	}

	api := s.newAPI(token)

	scope, err := s.resolveScope(ctx, api)
	if err != nil {
		return err
	}

	events, err := api.GetEvents(ctx, scope, FetchOptions{})
	if err != nil {
		return err
	}
	exercises, err := api.GetExercises(ctx, scope, FetchOptions{})
	if err != nil {
		return err
	}

	items := NormalizeActivities(events, models.ResourceTypeEvent)
	items = append(items, NormalizeActivities(exercises, models.ResourceTypeExercise)...)

	if err := s.store.ReplaceActivities(ctx, items); err != nil {
		return &StorageError{Err: err}
	}

	if err := s.settings.Set(ctx, repository.SettingLastUpdated, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return &StorageError{Err: err}
	}
	return nil
}

// resolveScope reads the stored context pair, falling back to one whoami
// call for whichever half is missing. Both response key namings are accepted,
// first match wins.
func (s *SyncService) resolveScope(ctx context.Context, api ActivityAPI) (models.Scope, error) {
	kind, err := s.settings.Get(ctx, repository.SettingContext)
	if err != nil {
		return models.Scope{}, &StorageError{Err: err}
	}
	id, err := s.settings.Get(ctx, repository.SettingContextID)
	if err != nil {
		return models.Scope{}, &StorageError{Err: err}
	}

	if kind == "" || id == "" {
		whoami, err := api.WhoAmI(ctx)
		if err != nil {
			return models.Scope{}, err
		}
		if kind == "" {
			kind = stringField(whoami, "context", "contextType")
		}
		if id == "" {
			id = stringField(whoami, "id", "contextId")
		}
	}

	if kind == "" || id == "" {
		return models.Scope{}, &ContextUnresolvedError{Message: "could not determine API context; set context and context ID in settings"}
	}

	return models.Scope{Kind: kind, ID: id}, nil
}

func (s *SyncService) recordOutcome(ctx context.Context, runErr error) {
	if runErr != nil {
		if err := s.settings.Set(ctx, repository.SettingLastSyncError, runErr.Error()); err != nil {
			log.Printf("sync: failed to record error message: %v", err)
		}
		if err := s.settings.Set(ctx, repository.SettingLastSyncStatus, models.SyncStatusError); err != nil {
			log.Printf("sync: failed to record error status: %v", err)
		}
		return
	}

	if err := s.settings.Delete(ctx, repository.SettingLastSyncError); err != nil {
		log.Printf("sync: failed to clear error message: %v", err)
	}
	if err := s.settings.Set(ctx, repository.SettingLastSyncStatus, models.SyncStatusSuccess); err != nil {
		log.Printf("sync: failed to record success status: %v", err)
	}
}

// Status reads the recorded outcome of the most recent run.
func (s *SyncService) Status(ctx context.Context) (models.SyncStatus, error) {
	status, err := s.settings.Get(ctx, repository.SettingLastSyncStatus)
	if err != nil {
		return models.SyncStatus{}, &StorageError{Err: err}
	}
	if status == "" {
		status = models.SyncStatusIdle
	}

	lastError, err := s.settings.Get(ctx, repository.SettingLastSyncError)
	if err != nil {
		return models.SyncStatus{}, &StorageError{Err: err}
	}

	var lastUpdated *time.Time
	raw, err := s.settings.Get(ctx, repository.SettingLastUpdated)
	if err != nil {
		return models.SyncStatus{}, &StorageError{Err: err}
	}
	if raw != "" {
		if t, parseErr := time.Parse(time.RFC3339, raw); parseErr == nil {
			lastUpdated = &t
		}
	}

	return models.SyncStatus{
		Status:      status,
		LastUpdated: lastUpdated,
		LastError:   lastError,
	}, nil
}
