// Package scheduler re-triggers the dossier gap analysis on a cron schedule,
// so a long-running monitor keeps its analysis view fresh without manual
// refreshes.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/tessario/messis/internal/common"
	"github.com/tessario/messis/internal/dispatch"
)

// Service drives scheduled analysis refreshes through the dispatcher.
type Service struct {
	dispatcher *dispatch.Dispatcher
	config     common.SchedulerConfig
	dossierID  string
	cron       *cron.Cron
	logger     arbor.ILogger

	mu      sync.Mutex
	running bool
	lastRun *time.Time
	lastErr string
}

// NewService creates a new scheduler service
func NewService(dispatcher *dispatch.Dispatcher, config common.SchedulerConfig, dossierID string, logger arbor.ILogger) *Service {
	return &Service{
		dispatcher: dispatcher,
		config:     config,
		dossierID:  dossierID,
		cron:       cron.New(),
		logger:     logger,
	}
}

// Start begins the scheduler with the configured cron expression
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if s.dossierID == "" {
		return fmt.Errorf("scheduler requires a dossier ID")
	}

	schedule := s.config.Schedule
	if schedule == "" {
		schedule = "0 */6 * * *" // Default: every 6 hours
	}

	if _, err := s.cron.AddFunc(schedule, s.refreshAnalysis); err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("schedule", schedule).
		Str("dossier_id", s.dossierID).
		Bool("force_refresh", s.config.ForceRefresh).
		Msg("Analysis refresh scheduler started")

	return nil
}

// Stop halts the scheduler and waits for an in-flight refresh to finish
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Analysis refresh scheduler stopped")
}

func (s *Service) refreshAnalysis() {
	result, err := s.dispatcher.StartAnalysis(context.Background(), s.dossierID, s.config.ForceRefresh)

	s.mu.Lock()
	now := time.Now()
	s.lastRun = &now
	if err != nil {
		s.lastErr = err.Error()
	} else {
		s.lastErr = ""
	}
	s.mu.Unlock()

	if err != nil {
		// A refresh already in flight is expected on tight schedules
		if errors.Is(err, dispatch.ErrCommandInFlight) {
			s.logger.Debug().Str("dossier_id", s.dossierID).Msg("Scheduled analysis refresh skipped, previous still in flight")
			return
		}
		s.logger.Warn().Err(err).Str("dossier_id", s.dossierID).Msg("Scheduled analysis refresh failed")
		return
	}

	s.logger.Info().
		Str("dossier_id", s.dossierID).
		Str("run_id", result.RunID).
		Msg("Scheduled analysis refresh started")
}

// LastRun returns the time and error of the most recent scheduled refresh
func (s *Service) LastRun() (*time.Time, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastErr
}
