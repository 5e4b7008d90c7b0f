package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-giveaway-bot/internal/infra/metrics"
)

// Job is a periodic background task.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler runs every registered job once per interval.
type Scheduler struct {
	interval time.Duration
	jobs     []Job
	log      *zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler defaults interval to one minute when it is not positive.
func NewScheduler(interval time.Duration, logger *zerolog.Logger, jobs ...Job) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		interval: interval,
		jobs:     jobs,
		log:      logger,
		done:     make(chan struct{}),
	}
}

// Start runs the jobs once immediately and then on every tick. Calling Start twice has no effect.
func (s *Scheduler) Start(parentCtx context.Context) {
	if s.ctx != nil {
		return
	}
	s.ctx, s.cancel = context.WithCancel(parentCtx)
	go s.loop()
}

func (s *Scheduler) loop() {
	ticker := time.NewTicker(s.interval)
	defer func() {
		ticker.Stop()
		close(s.done)
	}()

	s.log.Info().Dur("interval", s.interval).Int("jobs", len(s.jobs)).Msg("scheduler started")
	s.runAll()
	for {
		select {
		case <-s.ctx.Done():
			s.log.Info().Msg("scheduler stopping")
			return
		case <-ticker.C:
			s.runAll()
		}
	}
}

func (s *Scheduler) runAll() {
	for _, job := range s.jobs {
		runCtx, cancel := context.WithTimeout(s.ctx, 30*time.Second)
		err := job.Run(runCtx)
		cancel()
		if err != nil {
			metrics.IncScheduledJob(job.Name(), "failed")
			s.log.Error().Err(err).Str("job", job.Name()).Msg("scheduled job failed")
			continue
		}
		metrics.IncScheduledJob(job.Name(), "ok")
	}
}

// Stop cancels the loop and waits for it to finish. It is idempotent.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.ctx = nil
	s.cancel = nil
	s.done = make(chan struct{})
}

// JobFunc adapts a function to Job.
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

func (j JobFunc) Name() string                  { return j.JobName }
func (j JobFunc) Run(ctx context.Context) error { return j.Fn(ctx) }
