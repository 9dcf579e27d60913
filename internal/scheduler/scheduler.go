// Package scheduler runs the background cache re-warm job so readers
// rarely pay the cold refresh cost themselves.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/cache"
)

// Scheduler manages the periodic cache re-warm job.
type Scheduler struct {
	cron      *cron.Cron
	store     *cache.Store
	refreshes map[cache.ResourceKey]cache.RefreshFunc
	logger    *logrus.Logger
	mu        sync.RWMutex
	isRunning bool
	jobIDs    []cron.EntryID
}

// New creates a scheduler over the cache store and its per-key refresh
// functions.
func New(store *cache.Store, refreshes map[cache.ResourceKey]cache.RefreshFunc, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		store:     store,
		refreshes: refreshes,
		logger:    logger,
		jobIDs:    make([]cron.EntryID, 0),
	}
}

// ScheduleRewarm schedules a job that re-warms every resource key on the
// given cron expression. A key that is still fresh costs nothing: the read
// path returns the hot entry without touching the upstream.
func (s *Scheduler) ScheduleRewarm(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, s.rewarmAll)
	if err != nil {
		return fmt.Errorf("failed to add re-warm job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("schedule", cronExpression).Info("Scheduled cache re-warm job")

	return nil
}

// rewarmAll refreshes each configured resource key, tolerating per-key
// failures so one broken upstream market does not stall the others.
func (s *Scheduler) rewarmAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for key, refresh := range s.refreshes {
		if _, err := s.store.Get(ctx, key, refresh); err != nil {
			s.logger.WithFields(logrus.Fields{
				"resource": string(key),
				"error":    err.Error(),
			}).Warn("Scheduled cache re-warm failed")
			continue
		}
		s.logger.WithField("resource", string(key)).Debug("Cache re-warmed")
	}
}

// Start starts the scheduler.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running re-warm to
// finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the time of the next scheduled re-warm.
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}
