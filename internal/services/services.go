// Package services holds the acquisition pipeline's business logic: the
// scrape job queue, worker callbacks, user candidate actions, retailer
// filter resolution and the periodic sweeps.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/repos"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/events"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/logger"
)

var (
	// ErrGoalNotFound is returned when a goal does not exist
	ErrGoalNotFound = errors.New("goal not found")
	// ErrJobNotFound is returned when a scrape job does not exist
	ErrJobNotFound = errors.New("job not found")
	// ErrStaleCallback is returned for callbacks on jobs the caller no longer owns
	ErrStaleCallback = errors.New("stale callback")
)

// MaxRevisionRetries bounds how often a goal mutation is reapplied after a
// concurrent write
const MaxRevisionRetries = 5

// Clock returns the current time
type Clock func() time.Time

// UTC is the default clock
func UTC() time.Time {
	return time.Now().UTC()
}

func clockOrDefault(now Clock) Clock {
	if now == nil {
		return UTC
	}
	return now
}

func publisherOrDefault(p events.Publisher) events.Publisher {
	if p == nil {
		return events.Discard{}
	}
	return p
}

// retryOnConflict runs fn until it stops returning repos.ErrRevisionConflict
func retryOnConflict(ctx context.Context, goalID uint, fn func() error) error {
	var err error
	for attempt := 1; attempt <= MaxRevisionRetries; attempt++ {
		if err = fn(); !errors.Is(err, repos.ErrRevisionConflict) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		logger.Debugf("Revision conflict on goal %d, retrying (%d/%d)", goalID, attempt, MaxRevisionRetries)
	}
	return fmt.Errorf("goal %d kept changing: %w", goalID, err)
}

// mapNotFound converts a gorm not-found error into the given sentinel
func mapNotFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// truncate trims s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
