package retention

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"arsmedica/dendron/pkg/evidence"
)

// Scheduler runs retention pruning on a cron schedule.
type Scheduler struct {
	pruner   *Pruner
	schedule string
	cron     *cron.Cron
	entryID  cron.EntryID
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a scheduler that runs the pruner on the cron
// expression from the pruner's configuration. The expression is
// validated here so a bad schedule fails at startup, not at 03:00.
func NewScheduler(pruner *Pruner) (*Scheduler, error) {
	schedule := pruner.config.PruneSchedule
	if schedule == "" {
		schedule = DefaultConfig().PruneSchedule
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, evidence.NewRetentionError(pruner.config.RetentionDays,
			fmt.Errorf("invalid prune schedule %q: %w", schedule, err))
	}

	return &Scheduler{
		pruner:   pruner,
		schedule: schedule,
		logger:   slog.Default().With("component", "evidence.retention.scheduler"),
	}, nil
}

// Start begins scheduled pruning. It returns immediately; prune runs
// happen on the cron goroutine.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("retention scheduler already running")
	}

	s.cron = cron.New()
	entryID, err := s.cron.AddFunc(s.schedule, s.runPrune)
	if err != nil {
		return evidence.NewRetentionError(s.pruner.config.RetentionDays,
			fmt.Errorf("scheduling prune: %w", err))
	}
	s.entryID = entryID
	s.cron.Start()
	s.running = true

	s.logger.Info("retention scheduler started",
		"schedule", s.schedule,
		"retention_days", s.pruner.config.RetentionDays,
		"next_run", s.cron.Entry(entryID).Next,
	)
	return nil
}

// Stop halts scheduled pruning and waits for any in-flight run.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info("retention scheduler stopped")
}

// IsRunning reports whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the time of the next scheduled prune. The zero time
// is returned when the scheduler is not running.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

func (s *Scheduler) runPrune() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if _, err := s.pruner.Prune(ctx); err != nil {
		s.logger.Error("scheduled prune failed", "error", err)
	}
}
