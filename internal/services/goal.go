package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/candidates"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/repos"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/events"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/logger"
)

// Goal provides the acquisition side of goals: syncing the fields the
// pipeline reads and applying user decisions on candidates.
type Goal struct {
	store  *repos.Store
	queue  *Queue
	events events.Publisher
	now    Clock
}

// NewGoalService creates a goal service
func NewGoalService(store *repos.Store, queue *Queue, publisher events.Publisher, now Clock) *Goal {
	return &Goal{
		store:  store,
		queue:  queue,
		events: publisherOrDefault(publisher),
		now:    clockOrDefault(now),
	}
}

// Get returns a goal by id
func (s *Goal) Get(ctx context.Context, id uint) (*models.Goal, error) {
	goal, err := s.store.Goals.Get(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrGoalNotFound)
	}
	return goal, nil
}

// Sync creates or updates a goal. The first time a goal is seen its create
// job is enqueued, as it is when an existing goal moves into the vehicle
// category. A changed search query re-warms the cached retailer filters.
func (s *Goal) Sync(ctx context.Context, goal *models.Goal) (*models.Goal, *models.ScrapeJob, bool, error) {
	previous, err := s.store.Goals.Get(ctx, goal.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, false, err
	}

	created, err := s.store.Goals.Upsert(ctx, goal)
	if err != nil {
		return nil, nil, false, err
	}

	stored, err := s.Get(ctx, goal.ID)
	if err != nil {
		return nil, nil, created, err
	}

	var job *models.ScrapeJob
	switch {
	case created || previous == nil:
		job, _, err = s.queue.Enqueue(ctx, goal.ID, models.JobTriggerCreate)
	case !previous.IsVehicle() && stored.IsVehicle():
		logger.Infof("Goal %d moved to category %q, enqueueing its first search", goal.ID, stored.Category)
		job, _, err = s.queue.Enqueue(ctx, goal.ID, models.JobTriggerCreate)
	case stored.IsVehicle() && SearchQuery(previous) != SearchQuery(stored):
		s.queue.warm(stored)
		return stored, nil, created, nil
	default:
		return stored, nil, created, nil
	}
	if err != nil {
		return nil, nil, created, err
	}

	stored, err = s.Get(ctx, goal.ID)
	if err != nil {
		return nil, nil, created, err
	}
	return stored, job, created, nil
}

// Refresh enqueues a user requested refresh
func (s *Goal) Refresh(ctx context.Context, id uint) (*models.ScrapeJob, bool, error) {
	return s.queue.Enqueue(ctx, id, models.JobTriggerRefresh)
}

// Act applies a candidate action. A concurrent write to the goal makes the
// action re-read the goal and apply again.
func (s *Goal) Act(ctx context.Context, id uint, action candidates.Action, url string) (*models.Goal, error) {
	var (
		goal     *models.Goal
		previous models.StatusBadge
	)
	err := retryOnConflict(ctx, id, func() error {
		var err error
		goal, err = s.Get(ctx, id)
		if err != nil {
			return err
		}
		previous = goal.StatusBadge
		if err := candidates.Apply(goal, action, url, s.now()); err != nil {
			return err
		}
		return s.store.Goals.UpdateAcquisition(ctx, goal)
	})
	if err != nil {
		return nil, err
	}

	logger.InfoWithFields("Candidate action applied", map[string]interface{}{
		"goal_id": id,
		"action":  action,
		"url":     url,
		"badge":   goal.StatusBadge,
	})
	if goal.StatusBadge != previous {
		s.events.Publish(events.Event{
			Type:   events.EventBadgeChanged,
			GoalID: id,
			Badge:  goal.StatusBadge,
			Time:   s.now(),
		})
	}
	return goal, nil
}
