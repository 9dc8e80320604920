package services

import (
	"context"
	"errors"
	"log"
	"time"

	"teamcal-backend/internal/repository"
)

// SyncScheduler periodically triggers the guarded sync. It is only a timer;
// overlap protection lives in SyncService's lock.
type SyncScheduler struct {
	sync     *SyncService
	settings SettingsStore
	enabled  bool
	interval time.Duration
	stopChan chan struct{}
}

func NewSyncScheduler(sync *SyncService, settings SettingsStore, enabled bool, interval time.Duration) *SyncScheduler {
	return &SyncScheduler{
		sync:     sync,
		settings: settings,
		enabled:  enabled,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (s *SyncScheduler) Start() {
	if !s.enabled {
		return
	}

	go s.loop()

	log.Printf("Sync scheduler started (interval %s)", s.interval)
}

func (s *SyncScheduler) Stop() {
	select {
	case <-s.stopChan:
		return
	default:
		close(s.stopChan)
	}
}

func (s *SyncScheduler) loop() {
	// Run on startup as well as by interval.
	s.tick(context.Background())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.tick(context.Background())
		}
	}
}

func (s *SyncScheduler) tick(ctx context.Context) {
	token, err := s.settings.Get(ctx, repository.SettingAPIToken)
	if err != nil {
		log.Printf("scheduled sync: failed to read token: %v", err)
		return
	}
	if token == "" {
		// Nothing to do until credentials are saved.
		return
	}

	if err := s.sync.TriggerSync(ctx); err != nil {
		if errors.Is(err, ErrSyncInProgress) {
			log.Printf("scheduled sync skipped: previous run still in progress")
			return
		}
		log.Printf("scheduled sync failed: %v", err)
	}
}
