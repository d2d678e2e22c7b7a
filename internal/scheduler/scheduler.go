package scheduler

import (
	"context"
	"fmt"
	"time"

	"nfl_pickem/ingestion/internal/metrics"
	"nfl_pickem/ingestion/internal/season"
	"nfl_pickem/ingestion/internal/syncer"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Job binds a cron spec to a gatekeeper
type Job struct {
	Spec       string
	Gatekeeper syncer.Gatekeeper
}

// Scheduler runs the sync gatekeepers in-process on cron specs evaluated in
// Eastern time. It is an alternative to an external scheduler calling the
// trigger endpoints; both paths go through the same gatekeepers.
type Scheduler struct {
	cron    *cron.Cron
	jobs    []Job
	timeout time.Duration
}

// NewScheduler creates a new scheduler instance. Each run is bounded by timeout.
func NewScheduler(timeout time.Duration, jobs ...Job) *Scheduler {
	logger := cron.PrintfLogger(&log.Logger)
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(season.Eastern),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		jobs:    jobs,
		timeout: timeout,
	}
}

// Start registers every job and starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	for _, job := range s.jobs {
		job := job
		if _, err := s.cron.AddFunc(job.Spec, func() { s.run(ctx, job) }); err != nil {
			return fmt.Errorf("failed to schedule %s sync: %w", job.Gatekeeper.Name(), err)
		}
		log.Info().
			Str("kind", job.Gatekeeper.Name()).
			Str("schedule", job.Spec).
			Msg("Sync scheduled")
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")
	<-s.cron.Stop().Done()
	log.Info().Msg("Scheduler stopped")
}

// Entries returns the number of registered jobs
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) run(ctx context.Context, job Job) syncer.Result {
	if ctx.Err() != nil {
		return syncer.Result{}
	}

	name := job.Gatekeeper.Name()
	start := time.Now()

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result := job.Gatekeeper.Run(runCtx)
	metrics.RecordSchedulerRun(name, time.Since(start).Seconds())

	event := log.Info()
	if len(result.Errors) > 0 {
		event = log.Warn().Strs("errors", result.Errors)
	}
	event.
		Str("kind", name).
		Bool("synced", result.Synced).
		Int("synced_weeks", result.SyncedWeeks).
		Str("message", result.Message).
		Dur("duration", time.Since(start)).
		Msg("Scheduled sync complete")

	return result
}
