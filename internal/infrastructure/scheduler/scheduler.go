// Package scheduler runs catalog sweeps in the background on a small
// worker pool, fed by the HTTP API and by the cron trigger.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrSchedulerNotRunning is returned when submitting to a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")
	// ErrJobQueueFull is returned when no queue slot is free
	ErrJobQueueFull = errors.New("job queue is full")
	// ErrUnsupportedJobType is returned by executors for job types they do not handle
	ErrUnsupportedJobType = errors.New("unsupported job type")
	// ErrInvalidCronSchedule is returned for cron expressions the trigger cannot evaluate
	ErrInvalidCronSchedule = errors.New("invalid cron schedule")
)

// JobStatus is where a job is in its lifecycle
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobType identifies the work a job performs
type JobType string

const JobTypeCatalogSync JobType = "catalog_sync"

// JobTrigger records what submitted a job
type JobTrigger string

const (
	JobTriggerScheduled JobTrigger = "scheduled"
	JobTriggerManual    JobTrigger = "manual"
)

// Job is one submitted unit of work. Identity fields are fixed at
// submission; status is owned by the worker and read through State.
type Job struct {
	ID          uuid.UUID
	Type        JobType
	Trigger     JobTrigger
	SubmittedAt time.Time

	mu       sync.Mutex
	status   JobStatus
	lastErr  string
	attempts int
}

// NewJob returns a pending job
func NewJob(jobType JobType, trigger JobTrigger) *Job {
	return &Job{
		ID:          uuid.New(),
		Type:        jobType,
		Trigger:     trigger,
		SubmittedAt: time.Now(),
		status:      JobStatusPending,
	}
}

// State returns the current status and the last failure message
func (j *Job) State() (JobStatus, string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status, j.lastErr
}

// Attempts is how many times a worker has started the job
func (j *Job) Attempts() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.attempts
}

func (j *Job) transition(status JobStatus, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = status
	switch {
	case status == JobStatusRunning:
		j.attempts++
		j.lastErr = ""
	case err != nil:
		j.lastErr = err.Error()
	}
}

// JobExecutor performs a job; the context carries the job timeout
type JobExecutor interface {
	Execute(ctx context.Context, job *Job) error
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	Enabled           bool
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
	QueueSize         int
}

// DefaultSchedulerConfig does not retry failed sweeps; the next trigger
// picks the work up again.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:           true,
		MaxConcurrentJobs: 2,
		JobTimeout:        30 * time.Minute,
		RetryAttempts:     0,
		RetryDelay:        5 * time.Minute,
		QueueSize:         100,
	}
}

// Scheduler runs submitted jobs on a fixed pool of workers. Jobs are
// independent, so two sweeps may overlap.
type Scheduler struct {
	cfg      SchedulerConfig
	executor JobExecutor
	logger   *zap.Logger

	queue  chan *Job
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool
}

// NewScheduler fills in missing pool, queue and timeout settings
func NewScheduler(cfg SchedulerConfig, executor JobExecutor, logger *zap.Logger) *Scheduler {
	def := DefaultSchedulerConfig()
	if cfg.MaxConcurrentJobs < 1 {
		cfg.MaxConcurrentJobs = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = def.JobTimeout
	}
	return &Scheduler{
		cfg:      cfg,
		executor: executor,
		logger:   logger.Named("scheduler"),
		queue:    make(chan *Job, cfg.QueueSize),
	}
}

// Start launches the workers. Starting a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	s.running = true

	ctx, s.cancel = context.WithCancel(ctx)
	for id := range s.cfg.MaxConcurrentJobs {
		s.wg.Add(1)
		go s.work(ctx, id)
	}

	s.logger.Info("Job scheduler started",
		zap.Int("workers", s.cfg.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.cfg.JobTimeout),
	)
	return nil
}

// IsRunning reports whether the scheduler accepts jobs
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Stop cancels running jobs and waits for the workers until ctx expires.
// Queued jobs are dropped.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	// closed under the lock so enqueue never sends on a closed channel
	close(s.queue)
	s.mu.Unlock()

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info("Job scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Job scheduler stop timed out")
		return ctx.Err()
	}
}

// SubmitJob queues job without blocking
func (s *Scheduler) SubmitJob(job *Job) error {
	if err := s.enqueue(job); err != nil {
		return err
	}
	s.logger.Debug("Job submitted",
		zap.Stringer("job_id", job.ID),
		zap.String("job_type", string(job.Type)),
		zap.String("trigger", string(job.Trigger)),
	)
	return nil
}

// ScheduleSync queues a catalog sweep
func (s *Scheduler) ScheduleSync(trigger JobTrigger) (*Job, error) {
	job := NewJob(JobTypeCatalogSync, trigger)
	if err := s.SubmitJob(job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *Scheduler) enqueue(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return ErrSchedulerNotRunning
	}
	select {
	case s.queue <- job:
		return nil
	default:
		return ErrJobQueueFull
	}
}

func (s *Scheduler) work(ctx context.Context, id int) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-s.queue:
			if !ok {
				return
			}
			s.run(ctx, job, id)
		}
	}
}

func (s *Scheduler) run(ctx context.Context, job *Job, worker int) {
	job.transition(JobStatusRunning, nil)
	log := s.logger.With(
		zap.Int("worker_id", worker),
		zap.Stringer("job_id", job.ID),
		zap.String("job_type", string(job.Type)),
		zap.String("trigger", string(job.Trigger)),
		zap.Int("attempt", job.Attempts()),
	)
	log.Info("Processing job")

	jobCtx, cancel := context.WithTimeout(ctx, s.cfg.JobTimeout)
	defer cancel()

	if err := s.executor.Execute(jobCtx, job); err != nil {
		job.transition(JobStatusFailed, err)
		log.Error("Job failed", zap.Error(err))
		if job.Attempts() <= s.cfg.RetryAttempts && ctx.Err() == nil {
			s.retryLater(job, log)
		}
		return
	}

	job.transition(JobStatusSuccess, nil)
	log.Info("Job completed")
}

// retryLater resubmits job after RetryDelay unless the scheduler stopped meanwhile
func (s *Scheduler) retryLater(job *Job, log *zap.Logger) {
	job.transition(JobStatusPending, nil)
	log.Info("Job scheduled for retry", zap.Duration("delay", s.cfg.RetryDelay))
	time.AfterFunc(s.cfg.RetryDelay, func() {
		if err := s.enqueue(job); err != nil {
			job.transition(JobStatusFailed, err)
			log.Warn("Job retry dropped", zap.Error(err))
		}
	})
}
