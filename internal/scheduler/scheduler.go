package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/wastage/internal/config"
)

// PendingReminder is implemented by the form controller.
type PendingReminder interface {
	RemindPending() bool
}

// Scheduler runs the closing-time reminder for unsubmitted drafts.
type Scheduler struct {
	cron     *cron.Cron
	form     PendingReminder
	schedule string
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance in the configured timezone.
func NewScheduler(cfg config.ReminderConfig, form PendingReminder, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc := time.Local
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
		}
		loc = l
	}

	// Standard 5-field cron expressions (min, hour, dom, month, dow).
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:     c,
		form:     form,
		schedule: cfg.CronSchedule,
		logger:   logger,
	}, nil
}

// Start registers the reminder job and starts the scheduler. An empty schedule disables it.
func (s *Scheduler) Start() error {
	if s.schedule == "" {
		s.logger.Info("draft reminder disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.remindPendingDraft); err != nil {
		return fmt.Errorf("schedule draft reminder %q: %w", s.schedule, err)
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) remindPendingDraft() {
	if s.form.RemindPending() {
		s.logger.Warn("unsubmitted wastage draft at closing time")
		return
	}
	s.logger.Debug("no pending wastage draft")
}
