package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/candidates"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/repos"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/events"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/logger"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/types"
)

// DefaultPollClaimer is recorded as the owner of jobs claimed by anonymous pollers
const DefaultPollClaimer = "poll"

// maxPollSkips bounds how many orphaned jobs a single poll closes out
const maxPollSkips = 5

// Worker implements the orchestrator side of the worker protocol: handing
// out jobs and ingesting the results workers report back.
type Worker struct {
	store   *repos.Store
	queue   *Queue
	filters *Filters
	events  events.Publisher
	now     Clock
}

// NewWorkerService creates a worker protocol service
func NewWorkerService(store *repos.Store, queue *Queue, filters *Filters, publisher events.Publisher, now Clock) *Worker {
	return &Worker{
		store:   store,
		queue:   queue,
		filters: filters,
		events:  publisherOrDefault(publisher),
		now:     clockOrDefault(now),
	}
}

// Poll claims the oldest eligible job for workerID and returns its payload,
// or nil when there is nothing to do.
func (s *Worker) Poll(ctx context.Context, workerID string) (*types.PollJob, error) {
	if workerID == "" {
		workerID = DefaultPollClaimer
	}
	for i := 0; i < maxPollSkips; i++ {
		job, err := s.store.Jobs.ClaimNext(ctx, workerID, s.now())
		if err != nil {
			return nil, err
		}
		if job == nil {
			return nil, nil
		}

		payload, err := s.Payload(ctx, job)
		if errors.Is(err, ErrGoalNotFound) {
			s.closeOrphan(ctx, job)
			continue
		}
		if err != nil {
			return nil, err
		}
		logger.InfoWithFields("Job claimed by poll", map[string]interface{}{
			"job_id":    job.ID,
			"goal_id":   job.GoalID,
			"worker_id": workerID,
			"attempts":  job.Attempts,
		})
		return payload, nil
	}
	return nil, nil
}

// Payload builds the work description for a claimed job
func (s *Worker) Payload(ctx context.Context, job *models.ScrapeJob) (*types.PollJob, error) {
	goal, err := s.store.Goals.Get(ctx, job.GoalID)
	if err != nil {
		return nil, mapNotFound(err, ErrGoalNotFound)
	}
	return &types.PollJob{
		ID:              job.ID,
		GoalID:          goal.ID,
		SearchTerm:      SearchQuery(goal),
		RetailerFilters: s.filters.Resolve(goal),
		Category:        goal.Category,
		Attempts:        job.Attempts,
	}, nil
}

func (s *Worker) closeOrphan(ctx context.Context, job *models.ScrapeJob) {
	if err := s.store.Jobs.Complete(ctx, job.ID, "goal no longer exists", s.now()); err != nil {
		logger.Errorf("Failed to close job %d of missing goal %d: %v", job.ID, job.GoalID, err)
		return
	}
	logger.Warnf("Closed job %d, goal %d no longer exists", job.ID, job.GoalID)
}

// CallbackOutcome describes what a callback changed
type CallbackOutcome struct {
	Job   *models.ScrapeJob
	Badge models.StatusBadge
	Merge candidates.MergeResult
}

// HandleCallback applies a worker's result to its job. Results for jobs the
// worker no longer owns are rejected with ErrStaleCallback.
func (s *Worker) HandleCallback(ctx context.Context, req types.CallbackRequest) (*CallbackOutcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	job, err := s.store.Jobs.Get(ctx, req.JobID)
	if err != nil {
		return nil, mapNotFound(err, ErrJobNotFound)
	}
	if job.Status != models.JobStatusRunning {
		return nil, fmt.Errorf("%w: job %d is %s", ErrStaleCallback, job.ID, job.Status)
	}
	if req.WorkerID != "" && job.ClaimedBy != "" && req.WorkerID != job.ClaimedBy {
		return nil, fmt.Errorf("%w: job %d is owned by %s", ErrStaleCallback, job.ID, job.ClaimedBy)
	}

	if req.Status == types.CallbackSuccess {
		if msg, failed := listingError(req.Data); failed {
			req.Status = types.CallbackError
			req.Error = msg
		}
	}

	if req.Status == types.CallbackError {
		return s.fail(ctx, job, req)
	}
	return s.ingest(ctx, job, req)
}

func (s *Worker) fail(ctx context.Context, job *models.ScrapeJob, req types.CallbackRequest) (*CallbackOutcome, error) {
	reason := truncate(req.Error, 2000)
	if reason == "" {
		reason = "worker reported an error"
	}
	if req.Scraper != "" {
		reason = req.Scraper + ": " + reason
	}
	if err := s.queue.FailAttempt(ctx, job, reason); err != nil {
		if errors.Is(err, repos.ErrJobStateChanged) {
			return nil, fmt.Errorf("%w: job %d changed state", ErrStaleCallback, job.ID)
		}
		return nil, err
	}
	updated, err := s.store.Jobs.Get(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	return &CallbackOutcome{Job: updated}, nil
}

func (s *Worker) ingest(ctx context.Context, job *models.ScrapeJob, req types.CallbackRequest) (*CallbackOutcome, error) {
	var (
		result   candidates.MergeResult
		previous models.StatusBadge
		orphan   bool
	)
	err := retryOnConflict(ctx, job.GoalID, func() error {
		return s.store.Transaction(ctx, func(tx *repos.Store) error {
			orphan = false
			goal, err := tx.Goals.Get(ctx, job.GoalID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					orphan = true
					return tx.Jobs.Complete(ctx, job.ID, "goal no longer exists", s.now())
				}
				return err
			}

			previous = goal.StatusBadge
			result = candidates.Merge(goal, req.Data, req.Scraper)
			goal.Candidates = result.Candidates
			goal.StatusBadge = result.Badge
			if err := tx.Goals.UpdateAcquisition(ctx, goal); err != nil {
				return err
			}
			return tx.Jobs.Complete(ctx, job.ID, resultNote(result), s.now())
		})
	})
	if errors.Is(err, repos.ErrJobStateChanged) {
		return nil, fmt.Errorf("%w: job %d changed state", ErrStaleCallback, job.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to ingest results for job %d: %w", job.ID, err)
	}

	updated, err := s.store.Jobs.Get(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	if orphan {
		return &CallbackOutcome{Job: updated}, nil
	}

	logger.InfoWithFields("Ingested scrape results", map[string]interface{}{
		"job_id":     job.ID,
		"goal_id":    job.GoalID,
		"scraper":    req.Scraper,
		"received":   result.Received,
		"candidates": len(result.Candidates),
		"excluded":   result.Excluded,
		"invalid":    result.Invalid,
		"duplicates": result.Duplicates,
		"badge":      result.Badge,
	})
	s.events.Publish(events.Event{
		Type:       events.EventJobCompleted,
		GoalID:     job.GoalID,
		JobID:      job.ID,
		Badge:      result.Badge,
		Candidates: len(result.Candidates),
		Time:       s.now(),
	})
	if previous != result.Badge {
		s.queue.publishBadge(job.GoalID, job.ID, result.Badge)
	}
	return &CallbackOutcome{Job: updated, Badge: result.Badge, Merge: result}, nil
}

// resultNote is the informational error stored on a completed job
func resultNote(r candidates.MergeResult) string {
	switch {
	case r.Received == 0:
		return "no results"
	case len(r.Candidates) == 0:
		return fmt.Sprintf("no new candidates: %d excluded, %d without url", r.Excluded, r.Invalid)
	default:
		return ""
	}
}

// listingError detects payloads in which every entry only reports an
// extraction error, such as [{"error": "..."}]
func listingError(data []models.Listing) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	msgs := make([]string, 0, len(data))
	for _, l := range data {
		if l.Error == "" || strings.TrimSpace(l.URL) != "" {
			return "", false
		}
		msgs = append(msgs, l.Error)
	}
	return strings.Join(msgs, "; "), true
}
