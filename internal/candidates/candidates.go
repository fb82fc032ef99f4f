// Package candidates implements the operations on a goal's three candidate
// partitions. A url lives in at most one of candidates, deniedCandidates and
// shortlistedCandidates; every operation here preserves that.
package candidates

import (
	"errors"
	"fmt"
	"time"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
)

// ErrCandidateNotFound is returned when the url is not in the partition an
// action moves candidates out of
var ErrCandidateNotFound = errors.New("candidate not found")

// Action names a user decision on a candidate
type Action string

// Candidate actions
const (
	ActionDeny        Action = "deny"
	ActionRestore     Action = "restore"
	ActionShortlist   Action = "shortlist"
	ActionUnshortlist Action = "unshortlist"
	ActionSelect      Action = "select"
)

// ParseAction converts a string to an Action
func ParseAction(str string) (Action, error) {
	switch Action(str) {
	case ActionDeny, ActionRestore, ActionShortlist, ActionUnshortlist, ActionSelect:
		return Action(str), nil
	default:
		return "", fmt.Errorf("invalid candidate action: %s", str)
	}
}

// Apply runs the action for url against the goal
func Apply(goal *models.Goal, action Action, url string, now time.Time) error {
	switch action {
	case ActionDeny:
		return Deny(goal, url, now)
	case ActionRestore:
		return Restore(goal, url)
	case ActionShortlist:
		return Shortlist(goal, url, now)
	case ActionUnshortlist:
		return Unshortlist(goal, url)
	case ActionSelect:
		return Select(goal, url, now)
	default:
		return fmt.Errorf("invalid candidate action: %s", action)
	}
}

// Deny moves a candidate, active or shortlisted, to the denied partition
func Deny(goal *models.Goal, url string, now time.Time) error {
	if goal.DeniedCandidates.Contains(url) {
		return nil
	}
	c, ok := take(&goal.Candidates, url)
	if !ok {
		if c, ok = take(&goal.ShortlistedCandidates, url); !ok {
			return fmt.Errorf("%w: %s", ErrCandidateNotFound, url)
		}
	}
	denied := now
	c.DeniedAt = &denied
	c.ShortlistedAt = nil
	goal.DeniedCandidates = append(without(goal.DeniedCandidates, url), c)

	if goal.SelectedCandidateURL == url {
		goal.SelectedCandidateURL = ""
		goal.StatusBadge = goal.BadgeFor(goal.Candidates)
	}
	return nil
}

// Restore moves a denied candidate back to the active partition
func Restore(goal *models.Goal, url string) error {
	if goal.Candidates.Contains(url) {
		return nil
	}
	c, ok := take(&goal.DeniedCandidates, url)
	if !ok {
		return fmt.Errorf("%w: %s", ErrCandidateNotFound, url)
	}
	c.DeniedAt = nil
	goal.Candidates = append(without(goal.Candidates, url), c)
	if goal.StatusBadge == models.BadgeNotFound {
		goal.StatusBadge = goal.BadgeFor(goal.Candidates)
	}
	return nil
}

// Shortlist moves an active candidate to the shortlist
func Shortlist(goal *models.Goal, url string, now time.Time) error {
	if goal.ShortlistedCandidates.Contains(url) {
		return nil
	}
	c, ok := take(&goal.Candidates, url)
	if !ok {
		return fmt.Errorf("%w: %s", ErrCandidateNotFound, url)
	}
	at := now
	c.ShortlistedAt = &at
	goal.ShortlistedCandidates = append(without(goal.ShortlistedCandidates, url), c)
	return nil
}

// Unshortlist moves a shortlisted candidate back to the active partition and
// drops the selection if it pointed at it
func Unshortlist(goal *models.Goal, url string) error {
	if goal.Candidates.Contains(url) {
		return nil
	}
	c, ok := take(&goal.ShortlistedCandidates, url)
	if !ok {
		return fmt.Errorf("%w: %s", ErrCandidateNotFound, url)
	}
	c.ShortlistedAt = nil
	goal.Candidates = append(without(goal.Candidates, url), c)

	if goal.SelectedCandidateURL == url {
		goal.SelectedCandidateURL = ""
		goal.StatusBadge = goal.BadgeFor(goal.Candidates)
	}
	return nil
}

// Select shortlists the candidate if needed and makes it the goal's choice
func Select(goal *models.Goal, url string, now time.Time) error {
	if !goal.ShortlistedCandidates.Contains(url) {
		if err := Shortlist(goal, url, now); err != nil {
			return err
		}
	}
	goal.SelectedCandidateURL = url
	goal.StatusBadge = models.BadgeInStock
	return nil
}

// CheckDisjoint returns an error naming the first url found in more than one
// partition
func CheckDisjoint(goal *models.Goal) error {
	seen := make(map[string]string)
	for name, part := range map[string]models.Candidates{
		"candidates":            goal.Candidates,
		"deniedCandidates":      goal.DeniedCandidates,
		"shortlistedCandidates": goal.ShortlistedCandidates,
	} {
		for _, c := range part {
			if other, ok := seen[c.URL]; ok && other != name {
				return fmt.Errorf("url %s is in both %s and %s", c.URL, other, name)
			}
			seen[c.URL] = name
		}
	}
	return nil
}

// take removes the candidate with url from the partition and returns it
func take(part *models.Candidates, url string) (models.Candidate, bool) {
	i := part.Index(url)
	if i < 0 {
		return models.Candidate{}, false
	}
	c := (*part)[i]
	*part = without(*part, url)
	return c, true
}

// without returns a copy of the partition minus every entry with url
func without(part models.Candidates, url string) models.Candidates {
	out := make(models.Candidates, 0, len(part))
	for _, c := range part {
		if c.URL != url {
			out = append(out, c)
		}
	}
	return out
}
