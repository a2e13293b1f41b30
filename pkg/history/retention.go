package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Mahi3005/data-alchemist/pkg/config"
)

// RetentionConfig controls pruning.
type RetentionConfig struct {
	// RetentionDays removes runs older than this. 0 keeps runs forever.
	RetentionDays int

	// MaxRuns keeps at most this many runs. 0 means unlimited.
	MaxRuns int

	// PruneSchedule is a standard five-field cron expression.
	PruneSchedule string
}

// RetentionFromConfig extracts the retention settings of cfg.
func RetentionFromConfig(cfg config.HistoryConfig) RetentionConfig {
	return RetentionConfig{
		RetentionDays: cfg.RetentionDays,
		MaxRuns:       cfg.MaxRuns,
		PruneSchedule: cfg.PruneSchedule,
	}
}

// Pruner enforces retention on a Storage.
type Pruner struct {
	storage Storage
	config  RetentionConfig
	logger  *slog.Logger
	now     func() time.Time
}

// NewPruner creates a pruner.
func NewPruner(storage Storage, cfg RetentionConfig) *Pruner {
	return &Pruner{
		storage: storage,
		config:  cfg,
		logger:  slog.Default().With("component", "history.retention"),
		now:     time.Now,
	}
}

// Prune deletes runs older than the retention period, then trims the store
// to MaxRuns. It returns the total number of runs deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var total int64

	if p.config.RetentionDays > 0 {
		cutoff := p.now().AddDate(0, 0, -p.config.RetentionDays)
		n, err := p.storage.DeleteBefore(ctx, cutoff)
		if err != nil {
			return total, fmt.Errorf("prune by age failed: %w", err)
		}
		total += n
		p.logger.Debug("pruned runs by age", "deleted_count", n, "cutoff_time", cutoff)
	}

	if p.config.MaxRuns > 0 {
		n, err := p.storage.KeepLatest(ctx, p.config.MaxRuns)
		if err != nil {
			return total, fmt.Errorf("prune by count failed: %w", err)
		}
		total += n
		p.logger.Debug("pruned runs by count", "deleted_count", n, "max_runs", p.config.MaxRuns)
	}

	if total > 0 {
		p.logger.Info("history pruning completed",
			"total_deleted", total,
			"retention_days", p.config.RetentionDays,
			"max_runs", p.config.MaxRuns,
		)
	}
	return total, nil
}

// Scheduler runs a Pruner on its cron schedule.
type Scheduler struct {
	pruner  *Pruner
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewScheduler creates a scheduler for pruner.
func NewScheduler(pruner *Pruner) *Scheduler {
	return &Scheduler{
		pruner: pruner,
		cron:   cron.New(),
		logger: slog.Default().With("component", "history.scheduler"),
	}
}

// Start schedules pruning and returns immediately. The scheduler stops when
// ctx is cancelled. An empty schedule disables it.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedule := s.pruner.config.PruneSchedule
	if schedule == "" {
		s.logger.Info("prune schedule not configured, skipping scheduler")
		return nil
	}
	if s.running {
		return nil
	}

	if _, err := s.cron.AddFunc(schedule, func() { s.runPruning(ctx) }); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	s.cron.Start()
	s.running = true

	s.logger.Info("retention scheduler started",
		"schedule", schedule,
		"retention_days", s.pruner.config.RetentionDays,
		"max_runs", s.pruner.config.MaxRuns,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

func (s *Scheduler) runPruning(ctx context.Context) {
	if _, err := s.pruner.Prune(ctx); err != nil {
		s.logger.Error("scheduled pruning failed", "error", err)
	}
}

// Stop stops the scheduler and waits for a running prune to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("retention scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled prune, or nil when not scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}

// Check is a health check that fails once the scheduler has stopped or has
// nothing scheduled.
func (s *Scheduler) Check(context.Context) error {
	if !s.IsRunning() {
		return errors.New("retention scheduler is not running")
	}
	if s.NextRun() == nil {
		return errors.New("no prune scheduled")
	}
	return nil
}
