package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"ChartBridge/internal/logger"
)

// Scheduler manages the periodic refresh and export jobs.
type Scheduler struct {
	Cron    *cron.Cron
	Refresh func()
	Export  func()
}

// NewScheduler creates a Scheduler around the given job funcs.
// Export may be nil when no export directory is configured.
func NewScheduler(refresh, export func()) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Refresh: refresh,
		Export:  export,
	}
}

// RegisterAll registers the refresh and export cron jobs.
func (s *Scheduler) RegisterAll(refreshCron, exportCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshJob); err != nil {
		return fmt.Errorf("register refresh job: %w", err)
	}
	if s.Export != nil {
		if _, err := s.Cron.AddFunc(exportCron, s.exportJob); err != nil {
			return fmt.Errorf("register export job: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Log.Info("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	logger.Log.Info("scheduler stopped")
}

// RunRefreshNow executes the refresh job immediately (manual trigger /
// RUN_ON_START).
func (s *Scheduler) RunRefreshNow() {
	s.refreshJob()
}

func (s *Scheduler) refreshJob() {
	logger.Log.Debug("refresh job triggered")
	s.Refresh()
}

func (s *Scheduler) exportJob() {
	logger.Log.Debug("export job triggered")
	s.Export()
}
