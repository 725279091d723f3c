package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/streamer-hq/internal/nfl"
)

// WeekResolver supplies the current scoring week. Satisfied by the ESPN
// client.
type WeekResolver interface {
	CurrentWeek(ctx context.Context) (int, error)
}

// JobInfo tracks a scheduled job's run history for the admin endpoint.
type JobInfo struct {
	Name     string     `json:"name"`
	Schedule string     `json:"schedule"`
	LastRun  *time.Time `json:"last_run,omitempty"`
	LastErr  string     `json:"last_error,omitempty"`
	Runs     int        `json:"runs"`
}

// SchedulerService runs the background refresh jobs.
type SchedulerService struct {
	cron       *cron.Cron
	controller *RefreshController
	weeks      WeekResolver
	logger     *logrus.Logger

	mu   sync.Mutex
	jobs map[string]*JobInfo
}

// NewSchedulerService wires the scheduler. refreshSchedule is a standard
// 5-field cron expression.
func NewSchedulerService(controller *RefreshController, weeks WeekResolver, logger *logrus.Logger) *SchedulerService {
	return &SchedulerService{
		cron:       cron.New(),
		controller: controller,
		weeks:      weeks,
		logger:     logger,
		jobs:       make(map[string]*JobInfo),
	}
}

// Start registers and starts all jobs. Call once.
func (s *SchedulerService) Start(refreshSchedule string) error {
	if err := s.register("auto-refresh", refreshSchedule, s.runAutoRefresh); err != nil {
		return err
	}
	// Wednesday morning UTC: the week has rolled over, warm the new slate.
	if err := s.register("weekly-rollover", "0 8 * * 3", s.runAutoRefresh); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.WithField("component", "scheduler").Info("Background jobs started")
	return nil
}

// Stop halts the cron loop and waits for running jobs.
func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.WithField("component", "scheduler").Info("Background jobs stopped")
}

// Jobs returns a snapshot of job state.
func (s *SchedulerService) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobInfo, 0, len(s.jobs))
	for _, info := range s.jobs {
		out = append(out, *info)
	}
	return out
}

// TriggerJob runs a registered job immediately, outside its schedule.
func (s *SchedulerService) TriggerJob(name string) error {
	s.mu.Lock()
	_, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	s.runJob(name, s.runAutoRefresh)
	return nil
}

func (s *SchedulerService) register(name, schedule string, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	s.jobs[name] = &JobInfo{Name: name, Schedule: schedule}
	s.mu.Unlock()

	_, err := s.cron.AddFunc(schedule, func() { s.runJob(name, fn) })
	if err != nil {
		return fmt.Errorf("register job %s: %w", name, err)
	}
	return nil
}

// runJob executes one job with panic recovery and records the outcome.
func (s *SchedulerService) runJob(name string, fn func(ctx context.Context) error) {
	log := s.logger.WithFields(logrus.Fields{"component": "scheduler", "job": name})

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Job panicked: %v", r)
			s.recordRun(name, fmt.Errorf("panic: %v", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	log.Debug("Job starting")
	err := fn(ctx)
	s.recordRun(name, err)
	if err != nil {
		log.WithError(err).Error("Job failed")
		return
	}
	log.Debug("Job complete")
}

func (s *SchedulerService) recordRun(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.jobs[name]
	if !ok {
		return
	}
	now := time.Now().UTC()
	info.LastRun = &now
	info.Runs++
	info.LastErr = ""
	if err != nil {
		info.LastErr = err.Error()
	}
}

// runAutoRefresh rebuilds the weekly and rest-of-season snapshots for the
// current week.
func (s *SchedulerService) runAutoRefresh(ctx context.Context) error {
	week, err := s.weeks.CurrentWeek(ctx)
	if err != nil {
		return fmt.Errorf("resolve current week: %w", err)
	}

	for _, mode := range []string{nfl.ModeWeekly, nfl.ModeROS} {
		if _, err := s.controller.Refresh(ctx, week, mode, "scheduled"); err != nil {
			return fmt.Errorf("scheduled refresh week %d %s: %w", week, mode, err)
		}
	}
	return nil
}
