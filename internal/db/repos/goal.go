package repos

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
)

// acquisitionColumns are the goal columns owned by candidate acquisition
var acquisitionColumns = []string{
	models.GoalCandidatesField,
	models.GoalDeniedCandidatesField,
	models.GoalShortlistedCandidatesField,
	models.GoalSelectedCandidateURLField,
	models.GoalStatusBadgeField,
	models.GoalRevisionField,
}

// descriptionColumns are the goal columns synced from the goal owner
var descriptionColumns = []string{"title", models.GoalStatusField, models.GoalCategoryField, "search_term", "search_filters"}

// GoalRepository provides access to goal-related database operations
type GoalRepository struct {
	db *gorm.DB
}

// NewGoalRepository creates a new goal repository instance
func NewGoalRepository(db *gorm.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// Get retrieves a goal by its ID
func (r *GoalRepository) Get(ctx context.Context, id uint) (*models.Goal, error) {
	var goal models.Goal
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("goal not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return &goal, nil
}

// Upsert creates the goal or updates its descriptive fields. Candidate
// partitions, badge and revision are never touched here. A changed search
// term drops the cached retailer filters. It reports whether the goal was
// created.
func (r *GoalRepository) Upsert(ctx context.Context, goal *models.Goal) (bool, error) {
	if err := goal.Validate(); err != nil {
		return false, fmt.Errorf("invalid goal: %w", err)
	}
	if goal.Status == "" {
		goal.Status = models.GoalStatusActive
	}

	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []models.Goal
		if err := tx.Select("id", "search_term").Where("id = ?", goal.ID).Limit(1).Find(&existing).Error; err != nil {
			return err
		}
		if len(existing) == 0 {
			created = true
			if goal.StatusBadge == "" {
				goal.StatusBadge = models.BadgePendingSearch
			}
			return tx.Create(goal).Error
		}
		if err := tx.Model(&models.Goal{}).Where("id = ?", goal.ID).Select(descriptionColumns).Updates(goal).Error; err != nil {
			return err
		}
		if existing[0].SearchTerm == goal.SearchTerm {
			return nil
		}
		return tx.Model(&models.Goal{}).Where("id = ?", goal.ID).
			Update(models.GoalRetailerFiltersField, gorm.Expr("NULL")).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to upsert goal: %w", err)
	}
	return created, nil
}

// Lock takes a row lock on the goal until the surrounding transaction ends.
// It is a no-op on sqlite, which serializes writers anyway.
func (r *GoalRepository) Lock(ctx context.Context, id uint) error {
	var goal models.Goal
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", id).
		First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("goal not found: %w", err)
	}
	if err != nil {
		return fmt.Errorf("failed to lock goal: %w", err)
	}
	return nil
}

// ListActive returns every active goal of the category
func (r *GoalRepository) ListActive(ctx context.Context, category models.Category) ([]models.Goal, error) {
	var goals []models.Goal
	err := r.db.WithContext(ctx).
		Where(models.GoalStatusField+" = ? AND LOWER("+models.GoalCategoryField+") = ?", models.GoalStatusActive, string(category)).
		Order("id ASC").
		Find(&goals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active goals: %w", err)
	}
	return goals, nil
}

// UpdateAcquisition writes the candidate partitions, the selection and the
// badge if the stored revision still equals goal.Revision. On success
// goal.Revision is advanced.
func (r *GoalRepository) UpdateAcquisition(ctx context.Context, goal *models.Goal) error {
	expected := goal.Revision
	next := *goal
	next.Revision = expected + 1

	result := r.db.WithContext(ctx).Model(&models.Goal{}).
		Where("id = ? AND "+models.GoalRevisionField+" = ?", goal.ID, expected).
		Select(acquisitionColumns).
		Updates(&next)
	if result.Error != nil {
		return fmt.Errorf("failed to update goal candidates: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRevisionConflict
	}
	goal.Revision = next.Revision
	return nil
}

// SetStatusBadge overwrites the badge regardless of the current revision
func (r *GoalRepository) SetStatusBadge(ctx context.Context, id uint, badge models.StatusBadge) error {
	result := r.db.WithContext(ctx).Model(&models.Goal{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			models.GoalStatusBadgeField: badge,
			models.GoalRevisionField:    gorm.Expr(models.GoalRevisionField + " + 1"),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to set status badge: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("goal not found: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

// SetRetailerFilters caches the extractor output on the goal. The write only
// lands while the goal's search term is still searchTerm; otherwise
// ErrStaleFilters is returned.
func (r *GoalRepository) SetRetailerFilters(ctx context.Context, id uint, searchTerm string, bundle *vehicle.FilterBundle) error {
	result := r.db.WithContext(ctx).Model(&models.Goal{}).
		Where("id = ? AND search_term = ?", id, searchTerm).
		Select(models.GoalRetailerFiltersField).
		Updates(&models.Goal{RetailerFilters: bundle})
	if result.Error != nil {
		return fmt.Errorf("failed to cache retailer filters: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStaleFilters
	}
	return nil
}
