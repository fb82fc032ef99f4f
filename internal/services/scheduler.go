package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/logger"
)

// SchedulerConfig holds the periods of the scheduled sweeps
type SchedulerConfig struct {
	DispatchInterval   time.Duration
	StuckSweepInterval time.Duration
	NightlySchedule    string
}

// Scheduler runs the periodic sweeps on a cron. Each sweep is skipped while
// its previous run is still going.
type Scheduler struct {
	cron       *cron.Cron
	cfg        SchedulerConfig
	queue      *Queue
	reaper     *Reaper
	dispatcher *Dispatcher
}

// NewScheduler creates a scheduler. dispatcher may be nil when workers poll.
func NewScheduler(cfg SchedulerConfig, queue *Queue, reaper *Reaper, dispatcher *Dispatcher) *Scheduler {
	cronLogger := logger.CronLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		cfg:        cfg,
		queue:      queue,
		reaper:     reaper,
		dispatcher: dispatcher,
	}
}

// Start registers the sweeps and starts the cron
func (s *Scheduler) Start(ctx context.Context) error {
	if s.dispatcher != nil {
		if _, err := s.cron.AddFunc(every(s.cfg.DispatchInterval), func() { s.dispatch(ctx) }); err != nil {
			return fmt.Errorf("failed to schedule dispatch sweep: %w", err)
		}
	}
	if _, err := s.cron.AddFunc(every(s.cfg.StuckSweepInterval), func() { s.sweepStuck(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule stuck job sweep: %w", err)
	}
	if _, err := s.cron.AddFunc(s.cfg.NightlySchedule, func() { s.nightly(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule nightly refresh %q: %w", s.cfg.NightlySchedule, err)
	}

	s.cron.Start()
	logger.InfoWithFields("Scheduler started", map[string]interface{}{
		"dispatch":             s.dispatcher != nil,
		"dispatch_interval":    s.cfg.DispatchInterval.String(),
		"stuck_sweep_interval": s.cfg.StuckSweepInterval.String(),
		"nightly":              s.cfg.NightlySchedule,
	})
	return nil
}

// Stop stops the cron and waits for running sweeps
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	if s.dispatcher != nil {
		s.dispatcher.Wait()
	}
	logger.Info("Scheduler stopped")
}

// Entries reports how many sweeps are scheduled
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) dispatch(ctx context.Context) {
	n, err := s.dispatcher.Dispatch(ctx)
	if err != nil {
		logger.Errorf("Dispatch sweep failed: %v", err)
	}
	s.dispatcher.Wait()
	if n > 0 {
		logger.Infof("Dispatch sweep pushed %d jobs", n)
	}
}

func (s *Scheduler) sweepStuck(ctx context.Context) {
	res, err := s.reaper.Sweep(ctx)
	if err != nil {
		logger.Errorf("Stuck job sweep failed: %v", err)
		return
	}
	if res.Reclaimed+res.Failed > 0 {
		logger.Infof("Stuck job sweep reclaimed %d and failed %d jobs", res.Reclaimed, res.Failed)
	}
}

func (s *Scheduler) nightly(ctx context.Context) {
	if _, err := s.queue.EnqueueNightly(ctx); err != nil {
		logger.Errorf("Nightly refresh failed: %v", err)
	}
}

func every(d time.Duration) string {
	return "@every " + d.String()
}
