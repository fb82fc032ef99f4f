package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/repos"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/logger"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/transport"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/types"
)

const (
	// DispatchClaimer is recorded as the owner of pushed jobs
	DispatchClaimer = "dispatcher"
	// DefaultDispatchBatch is how many jobs one sweep pushes
	DefaultDispatchBatch = 5
	// DispatchTimeout bounds the push request itself, not the scrape
	DispatchTimeout = 30 * time.Second
	// WorkerJobsPath is the worker endpoint jobs are pushed to
	WorkerJobsPath = "/jobs"
)

// Dispatcher pushes claimable jobs to a worker that accepts inbound requests
type Dispatcher struct {
	store     *repos.Store
	queue     *Queue
	worker    *Worker
	workerURL string
	token     string
	batch     int
	now       Clock
	wg        sync.WaitGroup
}

// NewDispatcher creates a push dispatcher
func NewDispatcher(store *repos.Store, queue *Queue, worker *Worker, workerURL, token string, batch int, now Clock) *Dispatcher {
	if batch <= 0 {
		batch = DefaultDispatchBatch
	}
	return &Dispatcher{
		store:     store,
		queue:     queue,
		worker:    worker,
		workerURL: strings.TrimRight(workerURL, "/"),
		token:     token,
		batch:     batch,
		now:       clockOrDefault(now),
	}
}

// Dispatch claims up to one batch of jobs and pushes each in its own
// goroutine. It returns the number of jobs claimed.
func (d *Dispatcher) Dispatch(ctx context.Context) (int, error) {
	jobs, err := d.store.Jobs.Claimable(ctx, d.batch)
	if err != nil {
		return 0, err
	}

	claimed := 0
	for i := range jobs {
		job := jobs[i]
		err := d.store.Jobs.Claim(ctx, job.ID, DispatchClaimer, d.now())
		if errors.Is(err, repos.ErrJobNotClaimable) {
			continue
		}
		if err != nil {
			return claimed, err
		}
		claimed++
		job.Status = models.JobStatusRunning
		job.ClaimedBy = DispatchClaimer

		d.wg.Add(1)
		go func(job models.ScrapeJob) {
			defer d.wg.Done()
			d.push(ctx, &job)
		}(job)
	}
	return claimed, nil
}

// Wait blocks until every push of the last sweeps finished
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) push(ctx context.Context, job *models.ScrapeJob) {
	payload, err := d.worker.Payload(ctx, job)
	if err != nil {
		d.fail(ctx, job, "failed to build job payload: "+err.Error())
		return
	}

	req := types.DispatchRequest{
		JobID:           job.ID,
		Query:           payload.SearchTerm,
		RetailerFilters: payload.RetailerFilters,
	}
	headers := map[string]string{}
	if d.token != "" {
		headers[types.WorkerTokenHeader] = d.token
	}

	pushCtx, cancel := context.WithTimeout(ctx, DispatchTimeout)
	defer cancel()
	if err := transport.PostJSON(pushCtx, d.workerURL+WorkerJobsPath, headers, req, nil); err != nil {
		d.fail(ctx, job, "dispatch failed: "+err.Error())
		return
	}
	logger.InfoWithFields("Dispatched job to worker", map[string]interface{}{
		"job_id":  job.ID,
		"goal_id": job.GoalID,
		"worker":  d.workerURL,
	})
}

func (d *Dispatcher) fail(ctx context.Context, job *models.ScrapeJob, reason string) {
	if err := d.queue.FailAttempt(ctx, job, reason); err != nil {
		logger.Errorf("Failed to record dispatch failure for job %d: %v", job.ID, err)
	}
}
