package cron

import (
	"context"
	"sync"
	"time"

	"github.com/latoulicious/HokkoMail/internal/logging"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultSchedule runs the cleanup daily at 03:00
const DefaultSchedule = "0 0 3 * * *"

// Pruner deletes closed threads older than a cutoff
type Pruner interface {
	PruneClosed(ctx context.Context, before time.Time) (int64, error)
}

// RetentionManager periodically removes closed threads past their retention
type RetentionManager struct {
	cron      *cron.Cron
	cronEntry cron.EntryID
	pruner    Pruner
	retention time.Duration
	schedule  string
	log       zerolog.Logger
	now       func() time.Time

	mutex       sync.RWMutex
	isRunning   bool
	lastPruned  int64
	lastRunTime time.Time
}

// NewRetentionManager creates a retention manager with the default schedule
func NewRetentionManager(pruner Pruner, retention time.Duration, log zerolog.Logger) (*RetentionManager, error) {
	return NewRetentionManagerWithSchedule(pruner, retention, DefaultSchedule, log)
}

// NewRetentionManagerWithSchedule creates a retention manager with a custom
// six-field cron schedule. Call Start to begin running it.
func NewRetentionManagerWithSchedule(pruner Pruner, retention time.Duration, schedule string, log zerolog.Logger) (*RetentionManager, error) {
	manager := &RetentionManager{
		cron:      cron.New(cron.WithSeconds()),
		pruner:    pruner,
		retention: retention,
		schedule:  schedule,
		log:       logging.Component(log, "retention"),
		now:       time.Now,
	}

	entryID, err := manager.cron.AddFunc(schedule, func() { manager.Run(context.Background()) })
	if err != nil {
		return nil, err
	}
	manager.cronEntry = entryID
	return manager, nil
}

// Start starts the cron scheduler
func (rm *RetentionManager) Start() {
	rm.cron.Start()
	rm.log.Info().
		Str("schedule", rm.schedule).
		Dur("retention", rm.retention).
		Msg("scheduled closed thread cleanup")
}

// Run prunes once. Overlapping runs are skipped.
func (rm *RetentionManager) Run(ctx context.Context) {
	rm.mutex.Lock()
	if rm.isRunning {
		rm.mutex.Unlock()
		rm.log.Debug().Msg("cleanup already in progress, skipping")
		return
	}
	rm.isRunning = true
	rm.mutex.Unlock()

	defer func() {
		rm.mutex.Lock()
		rm.isRunning = false
		rm.mutex.Unlock()
	}()

	cutoff := rm.now().Add(-rm.retention)
	pruned, err := rm.pruner.PruneClosed(ctx, cutoff)
	if err != nil {
		rm.log.Error().Err(err).Time("cutoff", cutoff).Msg("failed to prune closed threads")
		return
	}

	rm.mutex.Lock()
	rm.lastPruned = pruned
	rm.lastRunTime = rm.now()
	rm.mutex.Unlock()

	rm.log.Info().Int64("pruned", pruned).Time("cutoff", cutoff).Msg("closed thread cleanup completed")
}

// Stop stops the cron scheduler and waits for a running cleanup
func (rm *RetentionManager) Stop() {
	<-rm.cron.Stop().Done()
	rm.log.Info().Msg("retention manager stopped")
}

// NextRun returns the next scheduled run time
func (rm *RetentionManager) NextRun() time.Time {
	return rm.cron.Entry(rm.cronEntry).Next
}

// IsRunning returns whether a cleanup is currently in progress
func (rm *RetentionManager) IsRunning() bool {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()
	return rm.isRunning
}

// LastRun returns when the last cleanup finished and how many threads it removed
func (rm *RetentionManager) LastRun() (time.Time, int64) {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()
	return rm.lastRunTime, rm.lastPruned
}

// Schedule returns the current cron schedule
func (rm *RetentionManager) Schedule() string {
	return rm.schedule
}
