// Package scheduler runs periodic jobs. Jobs own their domain logic; the
// scheduler owns timing. Retries are not done here: a failed run is logged
// and the next tick tries again.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Job is a unit of periodic work
type Job interface {
	Name() string
	Run() error
}

type scheduledJob struct {
	job      Job
	interval time.Duration
}

// Scheduler drives registered jobs on fixed intervals
type Scheduler struct {
	jobs []scheduledJob
	log  zerolog.Logger
	wg   sync.WaitGroup
}

// New creates a scheduler
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		log: log.With().Str("service", "scheduler").Logger(),
	}
}

// Register adds a job to run at the given interval
func (s *Scheduler) Register(job Job, interval time.Duration) {
	s.jobs = append(s.jobs, scheduledJob{job: job, interval: interval})
}

// Start launches one goroutine per job. Jobs run until the context is
// cancelled; Wait blocks until they have all stopped.
func (s *Scheduler) Start(ctx context.Context) {
	for _, sj := range s.jobs {
		s.wg.Add(1)
		go s.runLoop(ctx, sj)
	}
	s.log.Info().Int("jobs", len(s.jobs)).Msg("Scheduler started")
}

// Wait blocks until all job loops have exited
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) runLoop(ctx context.Context, sj scheduledJob) {
	defer s.wg.Done()

	ticker := time.NewTicker(sj.interval)
	defer ticker.Stop()

	log := s.log.With().Str("job", sj.job.Name()).Logger()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Job loop stopped")
			return
		case <-ticker.C:
			s.runJob(sj.job, log)
		}
	}
}

func (s *Scheduler) runJob(job Job, log zerolog.Logger) {
	start := time.Now()
	if err := job.Run(); err != nil {
		log.Error().Err(err).Dur("duration", time.Since(start)).Msg("Job failed")
		return
	}
	log.Debug().Dur("duration", time.Since(start)).Msg("Job finished")
}
