// Package scheduler runs the bot's background maintenance on cron
// schedules: proactive credential refresh and periodic health logging.
package scheduler

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/robfig/cron/v3"
)

const (
	refreshSchedule = "0 */6 * * *"
	healthSchedule  = "*/30 * * * *"
	memorySchedule  = "0 * * * *"
)

// CredentialRefresher sweeps stored credentials for expiring tokens.
type CredentialRefresher interface {
	RefreshExpiring(ctx context.Context)
	Count() int
}

type Service struct {
	credentials CredentialRefresher
	logger      *slog.Logger
	cron        *cron.Cron
}

func New(credentials CredentialRefresher, logger *slog.Logger) *Service {
	return &Service{
		credentials: credentials,
		logger:      logger,
		cron:        cron.New(),
	}
}

// Start registers the maintenance jobs and blocks until the context
// ends. Jobs inherit the start context so a shutdown interrupts any
// in-flight sweep.
func (s *Service) Start(ctx context.Context) error {
	if s.credentials == nil {
		s.logger.Info("scheduler disabled, dependencies missing")
		<-ctx.Done()
		return nil
	}

	if _, err := s.cron.AddFunc(refreshSchedule, func() {
		s.logger.Info("credential refresh sweep started")
		s.credentials.RefreshExpiring(ctx)
		s.logger.Info("credential refresh sweep completed", "linked_accounts", s.credentials.Count())
	}); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(healthSchedule, func() {
		s.logger.Info("health check",
			"linked_accounts", s.credentials.Count(),
			"goroutines", runtime.NumGoroutine())
	}); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(memorySchedule, func() {
		var stats runtime.MemStats
		runtime.ReadMemStats(&stats)
		s.logger.Info("memory usage",
			"heap_alloc_bytes", stats.HeapAlloc,
			"sys_bytes", stats.Sys,
			"num_gc", stats.NumGC)
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started",
		"refresh_schedule", refreshSchedule,
		"health_schedule", healthSchedule,
		"memory_schedule", memorySchedule)

	<-ctx.Done()
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("scheduler stopped")
	return nil
}
