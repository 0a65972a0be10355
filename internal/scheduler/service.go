package scheduler

import (
	"context"
	"time"

	"github.com/deepsocial/backend/internal/config"
	"github.com/deepsocial/backend/internal/store"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Service runs periodic maintenance. Its one job today is failing
// searches that have been running longer than the configured TTL, so a
// client polling a dead run eventually sees a terminal state.
type Service struct {
	config *config.Config
	store  store.Store
	cron   *cron.Cron
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, st store.Store) *Service {
	return &Service{
		config: cfg,
		store:  st,
		cron:   cron.New(cron.WithSeconds()),
	}
}

// Start begins the scheduled maintenance
func (s *Service) Start() error {
	// Reap stale searches at the top of every hour
	_, err := s.cron.AddFunc("0 0 * * * *", func() {
		s.ReapStaleSearches()
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.Infof("Scheduler started, reaping searches older than %s hourly", s.config.StaleSearchTTL)
	return nil
}

// ReapStaleSearches fails every running search created before the TTL
// cutoff.
func (s *Service) ReapStaleSearches() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-s.config.StaleSearchTTL)
	reaped, err := s.store.FailStaleSearches(ctx, cutoff)
	if err != nil {
		logrus.Errorf("Stale search reaping failed: %v", err)
		return
	}

	if reaped > 0 {
		logrus.Infof("Marked %d stale searches as failed", reaped)
	}
}

// Stop stops the scheduler
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}
