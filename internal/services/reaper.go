package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/repos"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/events"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/logger"
)

// DefaultStuckThreshold is how long a job may stay running without a callback
const DefaultStuckThreshold = 10 * time.Minute

// SweepResult counts what a stuck job sweep did
type SweepResult struct {
	Reclaimed int
	Failed    int
}

// Reaper recovers jobs whose worker vanished
type Reaper struct {
	store     *repos.Store
	events    events.Publisher
	threshold time.Duration
	now       Clock
}

// NewReaper creates a reaper
func NewReaper(store *repos.Store, publisher events.Publisher, threshold time.Duration, now Clock) *Reaper {
	if threshold <= 0 {
		threshold = DefaultStuckThreshold
	}
	return &Reaper{
		store:     store,
		events:    publisherOrDefault(publisher),
		threshold: threshold,
		now:       clockOrDefault(now),
	}
}

// Sweep reclaims running jobs older than the threshold. Jobs below the
// reclaim limit go back to pending; the rest fail permanently, so no job
// ever exceeds the attempt cap.
func (r *Reaper) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	now := r.now()
	stuck, err := r.store.Jobs.FindStuck(ctx, now.Add(-r.threshold))
	if err != nil {
		return res, err
	}

	for i := range stuck {
		job := &stuck[i]
		reclaim := job.Attempts < models.ReclaimAttemptLimit
		badge := models.BadgeNotFound
		if reclaim {
			badge = models.BadgePendingSearch
		}

		err := r.store.Transaction(ctx, func(tx *repos.Store) error {
			if reclaim {
				reason := fmt.Sprintf("reclaimed: running for more than %s without a callback (attempt %d)", r.threshold, job.Attempts+1)
				if err := tx.Jobs.Reclaim(ctx, job, reason, now); err != nil {
					return err
				}
			} else {
				reason := fmt.Sprintf("failed: running for more than %s without a callback after %d attempts", r.threshold, job.Attempts+1)
				if err := tx.Jobs.FailPermanently(ctx, job, reason, now); err != nil {
					return err
				}
			}
			return setBadge(ctx, tx, job.GoalID, badge)
		})
		if errors.Is(err, repos.ErrJobStateChanged) {
			logger.Debugf("Job %d changed while sweeping, skipping", job.ID)
			continue
		}
		if err != nil {
			return res, err
		}

		fields := map[string]interface{}{
			"job_id":    job.ID,
			"goal_id":   job.GoalID,
			"attempts":  job.Attempts,
			"claimedBy": job.ClaimedBy,
		}
		if reclaim {
			res.Reclaimed++
			logger.WarnWithFields("Reclaimed stuck job", fields)
		} else {
			res.Failed++
			logger.WarnWithFields("Stuck job failed permanently", fields)
			r.events.Publish(events.Event{
				Type:     events.EventJobFailed,
				GoalID:   job.GoalID,
				JobID:    job.ID,
				Attempts: models.MaxAttempts,
				Error:    "stuck",
				Time:     now,
			})
		}
		r.events.Publish(events.Event{
			Type:   events.EventBadgeChanged,
			GoalID: job.GoalID,
			JobID:  job.ID,
			Badge:  badge,
			Time:   now,
		})
	}
	return res, nil
}
