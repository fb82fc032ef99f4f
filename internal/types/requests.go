package types

import (
	"fmt"
	"strings"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
)

// GoalSyncRequest carries the goal fields the acquisition pipeline reads.
// Candidate partitions are owned by the pipeline and cannot be set here.
type GoalSyncRequest struct {
	Title         string              `json:"title"`
	Status        models.GoalStatus   `json:"status,omitempty"`
	Category      models.Category     `json:"category"`
	SearchTerm    string              `json:"searchTerm"`
	SearchFilters *vehicle.Descriptor `json:"searchFilters,omitempty"`
}

// Validate checks the request
func (r GoalSyncRequest) Validate() error {
	if strings.TrimSpace(string(r.Category)) == "" {
		return fmt.Errorf("category is required")
	}
	if r.Status != "" {
		if _, err := models.ParseGoalStatus(string(r.Status)); err != nil {
			return err
		}
	}
	if r.SearchFilters != nil {
		if err := r.SearchFilters.Validate(); err != nil {
			return fmt.Errorf("invalid searchFilters: %w", err)
		}
	}
	return nil
}

// ToGoal builds the goal record for id
func (r GoalSyncRequest) ToGoal(id uint) *models.Goal {
	return &models.Goal{
		ID:            id,
		Title:         r.Title,
		Status:        r.Status,
		Category:      r.Category,
		SearchTerm:    r.SearchTerm,
		SearchFilters: r.SearchFilters,
	}
}

// CandidateActionRequest names the candidate a user acts on
type CandidateActionRequest struct {
	URL string `json:"url"`
}

// Validate checks the request
func (r CandidateActionRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return fmt.Errorf("url is required")
	}
	return nil
}

// JobCreateRequest asks for a scrape job for a goal
type JobCreateRequest struct {
	GoalID  uint              `json:"goalId"`
	Trigger models.JobTrigger `json:"trigger,omitempty"`
}

// Validate checks the request
func (r JobCreateRequest) Validate() error {
	if r.GoalID == 0 {
		return fmt.Errorf("goalId is required")
	}
	if r.Trigger != "" {
		if _, err := models.ParseJobTrigger(string(r.Trigger)); err != nil {
			return err
		}
	}
	return nil
}

// CompileRequest asks the compiler for every retailer's filters
type CompileRequest struct {
	Descriptor vehicle.Descriptor `json:"descriptor"`
}
