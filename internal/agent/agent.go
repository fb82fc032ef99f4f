// Package agent is the out-of-process scraping worker. It takes jobs from
// the acquisition API, either by polling or by accepting pushed jobs, fans
// each job out to its extraction backends and reports one callback per job.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/logger"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/types"
)

const (
	callbackAttempts = 3
	callbackBackoff  = 2 * time.Second
	reportTimeout    = 30 * time.Second
)

// API is the part of the acquisition API the agent talks to
type API interface {
	Poll(ctx context.Context, workerID string) (*types.PollJob, error)
	Callback(ctx context.Context, req types.CallbackRequest) (types.CallbackResponse, error)
}

// Agent processes scrape jobs
type Agent struct {
	cfg     *Config
	api     API
	runner  *Runner
	backoff time.Duration
	wg      sync.WaitGroup
}

// New creates an agent from its config
func New(cfg *Config, api API) (*Agent, error) {
	backends := make([]Backend, 0, len(cfg.Backends))
	for _, bc := range cfg.Backends {
		b, err := NewBackend(bc)
		if err != nil {
			return nil, err
		}
		backends = append(backends, b)
	}
	return &Agent{
		cfg:     cfg,
		api:     api,
		runner:  NewRunner(backends, cfg.Stagger, cfg.Jitter, cfg.JobTimeout),
		backoff: callbackBackoff,
	}, nil
}

// WorkerID returns the id the agent claims jobs under
func (a *Agent) WorkerID() string {
	return a.cfg.WorkerID
}

// Run polls for jobs until ctx is cancelled. An empty queue or a failed poll
// doubles the wait up to MaxIdle; a job resets it.
func (a *Agent) Run(ctx context.Context) error {
	logger.InfoWithFields("Agent started", map[string]interface{}{
		"worker_id": a.cfg.WorkerID,
		"server":    a.cfg.Server.URL,
		"backends":  len(a.cfg.Backends),
	})

	idle := a.cfg.PollInterval
	for {
		select {
		case <-ctx.Done():
			logger.Info("Agent received shutdown signal, stopping...")
			a.wg.Wait()
			return nil
		default:
		}

		job, err := a.api.Poll(ctx, a.cfg.WorkerID)
		switch {
		case err != nil && ctx.Err() == nil:
			logger.Errorf("Agent poll failed: %v", err)
		case job == nil:
			logger.Debug("Agent: no jobs to process")
		default:
			idle = a.cfg.PollInterval
			a.Process(ctx, Search{
				JobID:           job.ID,
				Query:           job.SearchTerm,
				RetailerFilters: job.RetailerFilters,
			}, a.cfg.WorkerID)
			continue
		}

		if err := sleep(ctx, idle); err != nil {
			continue
		}
		idle *= 2
		if idle > a.cfg.MaxIdle {
			idle = a.cfg.MaxIdle
		}
	}
}

// Process runs one search and reports its outcome. workerID is empty for
// pushed jobs, which are owned by the dispatcher.
func (a *Agent) Process(ctx context.Context, s Search, workerID string) types.CallbackRequest {
	logger.InfoWithFields("Processing job", map[string]interface{}{
		"job_id": s.JobID,
		"query":  s.Query,
	})
	outcome := a.runner.Run(ctx, s)
	for _, e := range outcome.Errors {
		logger.WarnWithFields("Backend failed", map[string]interface{}{
			"job_id":  s.JobID,
			"backend": e.Backend,
			"error":   e.Err.Error(),
		})
	}

	// a finished search is still reported during shutdown
	reportCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportTimeout)
	defer cancel()

	req := outcome.Callback(s.JobID, workerID)
	if err := a.report(reportCtx, req); err != nil {
		logger.Errorf("Callback for job %d failed: %v", s.JobID, err)
	}
	return req
}

// Dispatch processes a pushed search in the background
func (a *Agent) Dispatch(ctx context.Context, s Search) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.Process(ctx, s, "")
	}()
}

// Wait blocks until every dispatched search has been reported
func (a *Agent) Wait() {
	a.wg.Wait()
}

// report sends the callback. Transport failures and server errors are
// retried; a rejection by the server is final.
func (a *Agent) report(ctx context.Context, req types.CallbackRequest) error {
	var err error
	for attempt := 1; attempt <= callbackAttempts; attempt++ {
		var resp types.CallbackResponse
		resp, err = a.api.Callback(ctx, req)
		if err == nil {
			logger.InfoWithFields("Callback acknowledged", map[string]interface{}{
				"job_id":   req.JobID,
				"status":   req.Status,
				"listings": len(req.Data),
			})
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) && fiberErr.Code < fiber.StatusInternalServerError {
			return fmt.Errorf("callback rejected (%d): %s", fiberErr.Code, resp.Error)
		}
		if attempt < callbackAttempts {
			if sleepErr := sleep(ctx, a.backoff*time.Duration(attempt)); sleepErr != nil {
				return sleepErr
			}
		}
	}
	return err
}
