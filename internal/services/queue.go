package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/repos"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/events"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/logger"
)

// Queue owns the scrape job lifecycle outside of worker callbacks
type Queue struct {
	store   *repos.Store
	filters *Filters
	events  events.Publisher
	now     Clock
}

// NewQueueService creates a queue service
func NewQueueService(store *repos.Store, filters *Filters, publisher events.Publisher, now Clock) *Queue {
	return &Queue{
		store:   store,
		filters: filters,
		events:  publisherOrDefault(publisher),
		now:     clockOrDefault(now),
	}
}

// Enqueue creates a scrape job for the goal. For create and refresh triggers
// an existing active job is returned instead of a new one; the nightly
// trigger always creates a job. Goals outside the vehicle category get a job
// that is completed immediately and the not_supported badge. A vehicle goal
// still marked not_supported goes back to pending_search.
func (s *Queue) Enqueue(ctx context.Context, goalID uint, trigger models.JobTrigger) (*models.ScrapeJob, bool, error) {
	if trigger == "" {
		trigger = models.JobTriggerRefresh
	}
	goal, err := s.store.Goals.Get(ctx, goalID)
	if err != nil {
		return nil, false, mapNotFound(err, ErrGoalNotFound)
	}

	if !goal.IsVehicle() {
		job, err := s.shortCircuit(ctx, goal, trigger)
		return job, err == nil, err
	}

	var (
		job     *models.ScrapeJob
		created bool
		reset   bool
	)
	// the goal row lock serializes concurrent enqueues for the same goal
	err = s.store.Transaction(ctx, func(tx *repos.Store) error {
		if err := tx.Goals.Lock(ctx, goalID); err != nil {
			return mapNotFound(err, ErrGoalNotFound)
		}
		if trigger != models.JobTriggerNightly {
			existing, err := tx.Jobs.FindActiveForGoal(ctx, goalID)
			if err != nil {
				return err
			}
			if existing != nil {
				job = existing
				return nil
			}
		}

		now := s.now()
		job = &models.ScrapeJob{
			GoalID:    goalID,
			Status:    models.JobStatusPending,
			Trigger:   trigger,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Jobs.Create(ctx, job); err != nil {
			return err
		}
		created = true
		if goal.StatusBadge == models.BadgeNotSupported {
			reset = true
			return tx.Goals.SetStatusBadge(ctx, goalID, models.BadgePendingSearch)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if !created {
		logger.Debugf("Goal %d already has active job %d", goalID, job.ID)
		return job, false, nil
	}

	logger.InfoWithFields("Enqueued scrape job", map[string]interface{}{
		"job_id":  job.ID,
		"goal_id": goalID,
		"trigger": trigger,
	})
	if reset {
		s.publishBadge(goalID, job.ID, models.BadgePendingSearch)
	}
	if trigger != models.JobTriggerNightly {
		s.warm(goal)
	}
	return job, true, nil
}

// warm refreshes the goal's cached filters in the background if an extractor
// is configured
func (s *Queue) warm(goal *models.Goal) {
	if s.filters != nil {
		s.filters.Warm(goal)
	}
}

func (s *Queue) shortCircuit(ctx context.Context, goal *models.Goal, trigger models.JobTrigger) (*models.ScrapeJob, error) {
	now := s.now()
	job := &models.ScrapeJob{
		GoalID:    goal.ID,
		Status:    models.JobStatusCompleted,
		Trigger:   trigger,
		Error:     fmt.Sprintf("category %q is not supported for candidate acquisition", goal.Category),
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.store.Transaction(ctx, func(tx *repos.Store) error {
		if err := tx.Jobs.Create(ctx, job); err != nil {
			return err
		}
		return tx.Goals.SetStatusBadge(ctx, goal.ID, models.BadgeNotSupported)
	})
	if err != nil {
		return nil, err
	}
	logger.InfoWithFields("Category not supported, job completed", map[string]interface{}{
		"job_id":   job.ID,
		"goal_id":  goal.ID,
		"category": goal.Category,
	})
	if goal.StatusBadge != models.BadgeNotSupported {
		s.publishBadge(goal.ID, job.ID, models.BadgeNotSupported)
	}
	return job, nil
}

// EnqueueNightly creates one job for every active vehicle goal and returns
// how many were created. A failing goal does not stop the sweep.
func (s *Queue) EnqueueNightly(ctx context.Context) (int, error) {
	goals, err := s.store.Goals.ListActive(ctx, models.CategoryVehicle)
	if err != nil {
		return 0, err
	}
	created := 0
	for _, goal := range goals {
		if ctx.Err() != nil {
			return created, ctx.Err()
		}
		if _, _, err := s.Enqueue(ctx, goal.ID, models.JobTriggerNightly); err != nil {
			logger.Errorf("Failed to enqueue nightly job for goal %d: %v", goal.ID, err)
			continue
		}
		created++
	}
	logger.Infof("Nightly refresh enqueued %d of %d goals", created, len(goals))
	return created, nil
}

// Get returns a job by id
func (s *Queue) Get(ctx context.Context, id uint) (*models.ScrapeJob, error) {
	job, err := s.store.Jobs.Get(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrJobNotFound)
	}
	return job, nil
}

// List returns jobs matching opts and the total count
func (s *Queue) List(ctx context.Context, opts *models.ListOptions) ([]models.ScrapeJob, int64, error) {
	jobs, err := s.store.Jobs.List(ctx, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.Jobs.Count(ctx, opts)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// FailAttempt records a failed attempt of a running job. When the attempt
// budget is used up the goal is marked not_found.
func (s *Queue) FailAttempt(ctx context.Context, job *models.ScrapeJob, reason string) error {
	attempts := job.Attempts + 1
	if attempts > models.MaxAttempts {
		attempts = models.MaxAttempts
	}
	terminal := attempts >= models.MaxAttempts

	err := s.store.Transaction(ctx, func(tx *repos.Store) error {
		if err := tx.Jobs.Fail(ctx, job, reason, s.now()); err != nil {
			return err
		}
		if terminal {
			return setBadge(ctx, tx, job.GoalID, models.BadgeNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.WarnWithFields("Scrape job attempt failed", map[string]interface{}{
		"job_id":   job.ID,
		"goal_id":  job.GoalID,
		"attempts": attempts,
		"terminal": terminal,
		"error":    reason,
	})
	s.events.Publish(events.Event{
		Type:     events.EventJobFailed,
		GoalID:   job.GoalID,
		JobID:    job.ID,
		Attempts: attempts,
		Error:    reason,
		Time:     s.now(),
	})
	if terminal {
		s.publishBadge(job.GoalID, job.ID, models.BadgeNotFound)
	}
	return nil
}

func (s *Queue) publishBadge(goalID, jobID uint, badge models.StatusBadge) {
	s.events.Publish(events.Event{
		Type:   events.EventBadgeChanged,
		GoalID: goalID,
		JobID:  jobID,
		Badge:  badge,
		Time:   s.now(),
	})
}

// setBadge sets the goal badge, ignoring goals that no longer exist
func setBadge(ctx context.Context, tx *repos.Store, goalID uint, badge models.StatusBadge) error {
	err := tx.Goals.SetStatusBadge(ctx, goalID, badge)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Warnf("Goal %d no longer exists, skipping badge %s", goalID, badge)
		return nil
	}
	return err
}
