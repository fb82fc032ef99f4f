package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrRevisionConflict is returned when a goal changed since it was read
	ErrRevisionConflict = errors.New("goal revision conflict")
	// ErrStaleFilters is returned when extracted filters belong to a search
	// term the goal no longer has
	ErrStaleFilters = errors.New("search term changed")
	// ErrJobNotClaimable is returned when a job is not pending or retryable anymore
	ErrJobNotClaimable = errors.New("job is not claimable")
	// ErrJobStateChanged is returned when a job left the state a transition expected
	ErrJobStateChanged = errors.New("job state changed")
)

// Store groups the repositories so they can share a transaction
type Store struct {
	db    *gorm.DB
	Goals *GoalRepository
	Jobs  *ScrapeJobRepository
}

// NewStore creates a store over the given connection
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:    db,
		Goals: NewGoalRepository(db),
		Jobs:  NewScrapeJobRepository(db),
	}
}

// Transaction runs fn with repositories bound to a single transaction
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
