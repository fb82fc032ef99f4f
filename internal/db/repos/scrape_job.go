package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
)

// ClaimCandidateLimit is how many of the oldest eligible jobs ClaimNext tries
const ClaimCandidateLimit = 5

// claimableCondition matches pending jobs and failed jobs with attempts left
const claimableCondition = "(status = ? OR (status = ? AND attempts < ?))"

func claimableArgs() []interface{} {
	return []interface{}{models.JobStatusPending, models.JobStatusFailed, models.MaxAttempts}
}

// ScrapeJobRepository provides access to scrape job database operations
type ScrapeJobRepository struct {
	db *gorm.DB
}

// NewScrapeJobRepository creates a new scrape job repository instance
func NewScrapeJobRepository(db *gorm.DB) *ScrapeJobRepository {
	return &ScrapeJobRepository{db: db}
}

// Create creates a new job in the database
func (r *ScrapeJobRepository) Create(ctx context.Context, job *models.ScrapeJob) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create scrape job: %w", err)
	}
	return nil
}

// Get retrieves a job by its ID
func (r *ScrapeJobRepository) Get(ctx context.Context, id uint) (*models.ScrapeJob, error) {
	var job models.ScrapeJob
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("job not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// List returns jobs, newest first
func (r *ScrapeJobRepository) List(ctx context.Context, opts *models.ListOptions) ([]models.ScrapeJob, error) {
	var jobs []models.ScrapeJob
	qry := r.filtered(ctx, opts)
	if opts != nil && opts.Limit > 0 {
		qry = qry.Limit(opts.Limit).Offset(opts.Offset)
	}
	err := qry.Order("created_at DESC, id DESC").Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// Count returns the number of jobs matching the filters of opts
func (r *ScrapeJobRepository) Count(ctx context.Context, opts *models.ListOptions) (int64, error) {
	var count int64
	if err := r.filtered(ctx, opts).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return count, nil
}

func (r *ScrapeJobRepository) filtered(ctx context.Context, opts *models.ListOptions) *gorm.DB {
	qry := r.db.WithContext(ctx).Model(&models.ScrapeJob{})
	if opts == nil {
		return qry
	}
	if opts.Status != nil {
		qry = qry.Where(models.JobStatusField+" = ?", *opts.Status)
	}
	if opts.GoalID != 0 {
		qry = qry.Where(models.JobGoalIDField+" = ?", opts.GoalID)
	}
	return qry
}

// FindActiveForGoal returns the newest pending, running or retryable job of
// the goal, or nil when there is none
func (r *ScrapeJobRepository) FindActiveForGoal(ctx context.Context, goalID uint) (*models.ScrapeJob, error) {
	var jobs []models.ScrapeJob
	err := r.db.WithContext(ctx).
		Where(models.JobGoalIDField+" = ?", goalID).
		Where("(status = ? OR status = ? OR (status = ? AND attempts < ?))",
			models.JobStatusPending, models.JobStatusRunning, models.JobStatusFailed, models.MaxAttempts).
		Order("created_at DESC, id DESC").
		Limit(1).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find active job: %w", err)
	}
	if len(jobs) == 0 {
		return nil, nil
	}
	return &jobs[0], nil
}

// Claimable returns up to limit of the oldest claimable jobs
func (r *ScrapeJobRepository) Claimable(ctx context.Context, limit int) ([]models.ScrapeJob, error) {
	var jobs []models.ScrapeJob
	err := r.db.WithContext(ctx).
		Where(claimableCondition, claimableArgs()...).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list claimable jobs: %w", err)
	}
	return jobs, nil
}

// Claim atomically moves a claimable job to running. Exactly one of any
// number of concurrent callers succeeds; the others get ErrJobNotClaimable.
func (r *ScrapeJobRepository) Claim(ctx context.Context, id uint, claimedBy string, now time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.ScrapeJob{}).
		Where("id = ?", id).
		Where(claimableCondition, claimableArgs()...).
		Updates(map[string]interface{}{
			models.JobStatusField:    models.JobStatusRunning,
			models.JobClaimedByField: claimedBy,
			models.JobUpdatedAtField: now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to claim job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrJobNotClaimable
	}
	return nil
}

// ClaimNext claims the oldest claimable job, or returns nil when the queue
// is empty. Jobs claimed by someone else in the meantime are skipped.
func (r *ScrapeJobRepository) ClaimNext(ctx context.Context, claimedBy string, now time.Time) (*models.ScrapeJob, error) {
	candidates, err := r.Claimable(ctx, ClaimCandidateLimit)
	if err != nil {
		return nil, err
	}
	for _, candidate := range candidates {
		err := r.Claim(ctx, candidate.ID, claimedBy, now)
		if errors.Is(err, ErrJobNotClaimable) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return r.Get(ctx, candidate.ID)
	}
	return nil, nil
}

// Complete moves a running job to completed. errMsg may carry an
// informational note such as "no results".
func (r *ScrapeJobRepository) Complete(ctx context.Context, id uint, errMsg string, now time.Time) error {
	return r.transition(ctx, &models.ScrapeJob{ID: id, Status: models.JobStatusRunning}, false, map[string]interface{}{
		models.JobStatusField:    models.JobStatusCompleted,
		models.JobErrorField:     errMsg,
		models.JobUpdatedAtField: now,
	})
}

// Fail moves a running job to failed and consumes one attempt
func (r *ScrapeJobRepository) Fail(ctx context.Context, job *models.ScrapeJob, errMsg string, now time.Time) error {
	return r.transition(ctx, job, true, map[string]interface{}{
		models.JobStatusField:    models.JobStatusFailed,
		models.JobAttemptsField:  nextAttempt(job.Attempts),
		models.JobErrorField:     errMsg,
		models.JobUpdatedAtField: now,
	})
}

// Reclaim returns a stuck running job to pending and consumes one attempt
func (r *ScrapeJobRepository) Reclaim(ctx context.Context, job *models.ScrapeJob, reason string, now time.Time) error {
	return r.transition(ctx, job, true, map[string]interface{}{
		models.JobStatusField:    models.JobStatusPending,
		models.JobAttemptsField:  nextAttempt(job.Attempts),
		models.JobErrorField:     reason,
		models.JobClaimedByField: "",
		models.JobUpdatedAtField: now,
	})
}

// FailPermanently moves a running job to failed with no attempts left
func (r *ScrapeJobRepository) FailPermanently(ctx context.Context, job *models.ScrapeJob, reason string, now time.Time) error {
	return r.transition(ctx, job, true, map[string]interface{}{
		models.JobStatusField:    models.JobStatusFailed,
		models.JobAttemptsField:  models.MaxAttempts,
		models.JobErrorField:     reason,
		models.JobUpdatedAtField: now,
	})
}

// FindStuck returns running jobs not updated since before
func (r *ScrapeJobRepository) FindStuck(ctx context.Context, before time.Time) ([]models.ScrapeJob, error) {
	var jobs []models.ScrapeJob
	err := r.db.WithContext(ctx).
		Where(models.JobStatusField+" = ? AND "+models.JobUpdatedAtField+" < ?", models.JobStatusRunning, before).
		Order("updated_at ASC, id ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find stuck jobs: %w", err)
	}
	return jobs, nil
}

// transition applies updates only if the job is still running and, when
// matchAttempts is set, still has the attempt count the caller read
func (r *ScrapeJobRepository) transition(ctx context.Context, job *models.ScrapeJob, matchAttempts bool, updates map[string]interface{}) error {
	qry := r.db.WithContext(ctx).Model(&models.ScrapeJob{}).
		Where("id = ? AND "+models.JobStatusField+" = ?", job.ID, models.JobStatusRunning)
	if matchAttempts {
		qry = qry.Where(models.JobAttemptsField+" = ?", job.Attempts)
	}
	result := qry.Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update job %d: %w", job.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrJobStateChanged
	}
	return nil
}

func nextAttempt(attempts int) int {
	if attempts+1 > models.MaxAttempts {
		return models.MaxAttempts
	}
	return attempts + 1
}
