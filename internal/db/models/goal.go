package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
)

// Field names for goal model
const (
	// GoalCandidatesField is the field name for active candidates
	GoalCandidatesField = "candidates"
	// GoalDeniedCandidatesField is the field name for denied candidates
	GoalDeniedCandidatesField = "denied_candidates"
	// GoalShortlistedCandidatesField is the field name for shortlisted candidates
	GoalShortlistedCandidatesField = "shortlisted_candidates"
	// GoalSelectedCandidateURLField is the field name for the selected candidate url
	GoalSelectedCandidateURLField = "selected_candidate_url"
	// GoalStatusBadgeField is the field name for the status badge
	GoalStatusBadgeField = "status_badge"
	// GoalRetailerFiltersField is the field name for the cached retailer filters
	GoalRetailerFiltersField = "retailer_filters"
	// GoalRevisionField is the field name for the optimistic concurrency counter
	GoalRevisionField = "revision"
	// GoalStatusField is the field name for the goal status
	GoalStatusField = "status"
	// GoalCategoryField is the field name for the goal category
	GoalCategoryField = "category"
)

// Category is the kind of thing a goal is about
type Category string

// CategoryVehicle is the only category the acquisition pipeline supports
const CategoryVehicle Category = "vehicle"

// IsSupported reports whether candidates can be acquired for the category
func (c Category) IsSupported() bool {
	return Category(strings.ToLower(string(c))) == CategoryVehicle
}

// GoalStatus is the lifecycle state of a goal
type GoalStatus string

// Goal status constants
const (
	// GoalStatusActive is a goal still being pursued
	GoalStatusActive GoalStatus = "active"
	// GoalStatusCompleted is a goal the user has reached
	GoalStatusCompleted GoalStatus = "completed"
	// GoalStatusArchived is a goal the user has put aside
	GoalStatusArchived GoalStatus = "archived"
)

// ParseGoalStatus converts a string to a GoalStatus type
func ParseGoalStatus(str string) (GoalStatus, error) {
	switch GoalStatus(str) {
	case GoalStatusActive, GoalStatusCompleted, GoalStatusArchived:
		return GoalStatus(str), nil
	default:
		return "", fmt.Errorf("invalid goal status: %s", str)
	}
}

// StatusBadge is the externally visible summary of a goal's acquisition state
type StatusBadge string

// Status badge constants
const (
	BadgePendingSearch   StatusBadge = "pending_search"
	BadgeCandidatesFound StatusBadge = "candidates_found"
	BadgeInStock         StatusBadge = "in_stock"
	BadgeNotFound        StatusBadge = "not_found"
	BadgeNotSupported    StatusBadge = "not_supported"
)

// ParseStatusBadge converts a string to a StatusBadge type
func ParseStatusBadge(str string) (StatusBadge, error) {
	switch StatusBadge(str) {
	case BadgePendingSearch, BadgeCandidatesFound, BadgeInStock, BadgeNotFound, BadgeNotSupported:
		return StatusBadge(str), nil
	default:
		return "", fmt.Errorf("invalid status badge: %s", str)
	}
}

// UnmarshalJSON implements json.Unmarshaler for StatusBadge
func (b *StatusBadge) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	badge, err := ParseStatusBadge(str)
	if err != nil {
		return err
	}
	*b = badge
	return nil
}

// Goal is the acquisition view of a user goal. CRUD on goals lives
// elsewhere; this record holds the fields the pipeline reads and owns.
type Goal struct {
	ID                    uint                  `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Title                 string                `json:"title" gorm:"type:text"`
	Status                GoalStatus            `json:"status" gorm:"not null;default:active;index"`
	Category              Category              `json:"category" gorm:"not null;index"`
	SearchTerm            string                `json:"searchTerm" gorm:"type:text"`
	SearchFilters         *vehicle.Descriptor   `json:"searchFilters,omitempty" gorm:"serializer:json;type:jsonb"`
	RetailerFilters       *vehicle.FilterBundle `json:"retailerFilters,omitempty" gorm:"serializer:json;type:jsonb"`
	Candidates            Candidates            `json:"candidates" gorm:"serializer:json;type:jsonb"`
	DeniedCandidates      Candidates            `json:"deniedCandidates" gorm:"serializer:json;type:jsonb"`
	ShortlistedCandidates Candidates            `json:"shortlistedCandidates" gorm:"serializer:json;type:jsonb"`
	SelectedCandidateURL  string                `json:"selectedCandidateUrl,omitempty" gorm:"type:text"`
	StatusBadge           StatusBadge           `json:"statusBadge" gorm:"not null;default:pending_search"`
	Revision              int64                 `json:"revision" gorm:"not null;default:0"`
	CreatedAt             time.Time             `json:"createdAt"`
	UpdatedAt             time.Time             `json:"updatedAt"`
}

// IsVehicle reports whether the pipeline can acquire candidates for the goal
func (g *Goal) IsVehicle() bool {
	return g.Category.IsSupported()
}

// Validate ensures that the goal data is valid
func (g *Goal) Validate() error {
	if g.ID == 0 {
		return fmt.Errorf("goal id cannot be empty")
	}
	if g.Category == "" {
		return fmt.Errorf("goal category cannot be empty")
	}
	if g.Status != "" {
		if _, err := ParseGoalStatus(string(g.Status)); err != nil {
			return err
		}
	}
	if g.SearchFilters != nil {
		if err := g.SearchFilters.Validate(); err != nil {
			return fmt.Errorf("invalid search filters: %w", err)
		}
	}
	return nil
}

// BadgeFor computes the status badge after candidates were acquired
func (g *Goal) BadgeFor(candidates Candidates) StatusBadge {
	switch {
	case g.SelectedCandidateURL != "":
		return BadgeInStock
	case len(candidates) > 0:
		return BadgeCandidatesFound
	default:
		return BadgeNotFound
	}
}
