package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultSyncCronSchedule runs a sweep at minute 0 of every hour
const DefaultSyncCronSchedule = "0 * * * *"

// anyValue marks a wildcard cron field
const anyValue = -1

// CronSchedule is a parsed "minute hour * * *" expression.
// Minute and hour accept a number, "*" or "*/N"; day, month and weekday must be "*".
type CronSchedule struct {
	expr       string
	minute     int
	minuteStep int
	hour       int
	hourStep   int
}

// ParseCronSchedule parses a five-field cron expression.
// An empty expression yields the hourly default.
func ParseCronSchedule(expr string) (CronSchedule, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		expr = DefaultSyncCronSchedule
	}

	parts := strings.Fields(expr)
	if len(parts) != 5 {
		return CronSchedule{}, fmt.Errorf("%w: expected 5 fields, got %d", ErrInvalidCronSchedule, len(parts))
	}
	for i, p := range parts[2:] {
		if p != "*" {
			return CronSchedule{}, fmt.Errorf("%w: field %d must be '*', got %q", ErrInvalidCronSchedule, i+3, p)
		}
	}

	s := CronSchedule{expr: strings.Join(parts, " ")}
	var err error
	if s.minute, s.minuteStep, err = parseCronField(parts[0], 59); err != nil {
		return CronSchedule{}, fmt.Errorf("%w: minute: %v", ErrInvalidCronSchedule, err)
	}
	if s.hour, s.hourStep, err = parseCronField(parts[1], 23); err != nil {
		return CronSchedule{}, fmt.Errorf("%w: hour: %v", ErrInvalidCronSchedule, err)
	}
	return s, nil
}

func parseCronField(field string, maxVal int) (value, step int, err error) {
	switch {
	case field == "*":
		return anyValue, 1, nil
	case strings.HasPrefix(field, "*/"):
		step, err = strconv.Atoi(strings.TrimPrefix(field, "*/"))
		if err != nil || step < 1 || step > maxVal {
			return 0, 0, fmt.Errorf("step must be 1-%d, got %q", maxVal, field)
		}
		return anyValue, step, nil
	default:
		value, err = strconv.Atoi(field)
		if err != nil || value < 0 || value > maxVal {
			return 0, 0, fmt.Errorf("must be 0-%d, got %q", maxVal, field)
		}
		return value, 1, nil
	}
}

func fieldMatches(value, step, actual int) bool {
	if value == anyValue {
		return actual%step == 0
	}
	return value == actual
}

// Matches reports whether the schedule fires during the minute containing t
func (s CronSchedule) Matches(t time.Time) bool {
	return fieldMatches(s.minute, s.minuteStep, t.Minute()) && fieldMatches(s.hour, s.hourStep, t.Hour())
}

// Next returns the first firing minute strictly after t
func (s CronSchedule) Next(t time.Time) time.Time {
	next := t.Truncate(time.Minute).Add(time.Minute)
	// a day holds every combination the two fields can express
	for i := 0; i < 24*60; i++ {
		if s.Matches(next) {
			return next
		}
		next = next.Add(time.Minute)
	}
	return next
}

// String returns the normalised expression
func (s CronSchedule) String() string {
	return s.expr
}

// SyncSubmitter accepts catalog sync jobs
type SyncSubmitter interface {
	ScheduleSync(trigger JobTrigger) (*Job, error)
}

// SyncTriggerConfig holds configuration for the sync trigger
type SyncTriggerConfig struct {
	Schedule CronSchedule
	// CheckInterval is how often the clock is compared against the schedule
	CheckInterval time.Duration
}

// DefaultSyncTriggerConfig returns the hourly trigger configuration
func DefaultSyncTriggerConfig() SyncTriggerConfig {
	schedule, _ := ParseCronSchedule(DefaultSyncCronSchedule)
	return SyncTriggerConfig{
		Schedule:      schedule,
		CheckInterval: 30 * time.Second,
	}
}

// SyncTrigger submits a catalog sync job each time the schedule fires.
// It does not wait for earlier sweeps to finish.
type SyncTrigger struct {
	config    SyncTriggerConfig
	submitter SyncSubmitter
	logger    *zap.Logger
	now       func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastFired time.Time
}

// NewSyncTrigger creates a new sync trigger
func NewSyncTrigger(config SyncTriggerConfig, submitter SyncSubmitter, logger *zap.Logger) *SyncTrigger {
	if config.CheckInterval <= 0 {
		config.CheckInterval = 30 * time.Second
	}
	if config.Schedule.expr == "" {
		config.Schedule = DefaultSyncTriggerConfig().Schedule
	}
	return &SyncTrigger{
		config:    config,
		submitter: submitter,
		logger:    logger,
		now:       time.Now,
	}
}

// Start starts the trigger loop
func (c *SyncTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Sync trigger started",
		zap.String("schedule", c.config.Schedule.String()),
		zap.Duration("check_interval", c.config.CheckInterval),
		zap.Time("next_run_at", c.config.Schedule.Next(c.now())),
	)

	return nil
}

// Stop stops the trigger loop
func (c *SyncTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Sync trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *SyncTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.checkAndTrigger()
		}
	}
}

// checkAndTrigger submits at most one job per matching minute
func (c *SyncTrigger) checkAndTrigger() bool {
	now := c.now()
	if !c.config.Schedule.Matches(now) {
		return false
	}

	slot := now.Truncate(time.Minute)
	c.mu.Lock()
	if c.lastFired.Equal(slot) {
		c.mu.Unlock()
		return false
	}
	c.lastFired = slot
	c.mu.Unlock()

	job, err := c.submitter.ScheduleSync(JobTriggerScheduled)
	if err != nil {
		c.logger.Error("Failed to schedule catalog sync", zap.Error(err))
		return false
	}

	c.logger.Info("Scheduled catalog sync",
		zap.String("job_id", job.ID.String()),
		zap.Time("next_run_at", c.config.Schedule.Next(now)),
	)
	return true
}
