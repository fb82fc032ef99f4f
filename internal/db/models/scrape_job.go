package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Field names for scrape job model
const (
	// JobStatusField is the field name for job status
	JobStatusField = "status"
	// JobAttemptsField is the field name for the attempt counter
	JobAttemptsField = "attempts"
	// JobErrorField is the field name for the job error
	JobErrorField = "error"
	// JobClaimedByField is the field name for the current owner of a running job
	JobClaimedByField = "claimed_by"
	// JobUpdatedAtField is the field name for the last state change
	JobUpdatedAtField = "updated_at"
	// JobGoalIDField is the field name for the goal reference
	JobGoalIDField = "goal_id"
)

const (
	// MaxAttempts is the hard cap on attempts for a single job
	MaxAttempts = 3
	// ReclaimAttemptLimit is the attempt count at which a stuck job is failed
	// instead of being reclaimed
	ReclaimAttemptLimit = 2
)

// JobStatus represents the current state of a scrape job
type JobStatus string

// Job status constants
const (
	// JobStatusPending indicates the job is waiting to be claimed
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates a worker owns the job
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job finished, possibly with an informational error
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the last attempt failed
	JobStatusFailed JobStatus = "failed"
)

// jobTransitions lists every allowed (from -> to) status pair.
// Completed has no outgoing transitions.
var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusPending: {JobStatusRunning, JobStatusCompleted},
	JobStatusRunning: {JobStatusCompleted, JobStatusFailed, JobStatusPending},
	JobStatusFailed:  {JobStatusRunning},
}

// JobTrigger records why a job was created
type JobTrigger string

// Job trigger constants
const (
	// JobTriggerCreate is used for the first job of a new goal
	JobTriggerCreate JobTrigger = "create"
	// JobTriggerRefresh is used for an explicit user refresh
	JobTriggerRefresh JobTrigger = "refresh"
	// JobTriggerNightly is used by the nightly refresh sweep
	JobTriggerNightly JobTrigger = "nightly"
)

// ScrapeJob is a unit of scheduled work to acquire candidates for one goal
type ScrapeJob struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	GoalID    uint       `json:"goalId" gorm:"not null;index"`
	Status    JobStatus  `json:"status" gorm:"not null;index:idx_scrape_jobs_status_created"`
	Attempts  int        `json:"attempts" gorm:"not null;default:0"`
	Error     string     `json:"error,omitempty" gorm:"type:text"`
	Trigger   JobTrigger `json:"trigger" gorm:"not null"`
	ClaimedBy string     `json:"claimedBy,omitempty" gorm:"type:text"`
	CreatedAt time.Time  `json:"createdAt" gorm:"index:idx_scrape_jobs_status_created"`
	UpdatedAt time.Time  `json:"updatedAt" gorm:"index"`
}

// String returns the string representation of the job status
func (s JobStatus) String() string {
	return string(s)
}

// ParseJobStatus converts a string to a JobStatus type
func ParseJobStatus(str string) (JobStatus, error) {
	switch str {
	case string(JobStatusPending):
		return JobStatusPending, nil
	case string(JobStatusRunning):
		return JobStatusRunning, nil
	case string(JobStatusCompleted):
		return JobStatusCompleted, nil
	case string(JobStatusFailed):
		return JobStatusFailed, nil
	default:
		return "", fmt.Errorf("invalid job status: %s", str)
	}
}

// UnmarshalJSON implements json.Unmarshaler for JobStatus
func (s *JobStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status, err := ParseJobStatus(str)
	if err != nil {
		return err
	}

	*s = status
	return nil
}

// CanTransition reports whether a job may move from one status to another
func CanTransition(from, to JobStatus) bool {
	for _, s := range jobTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ParseJobTrigger converts a string to a JobTrigger type
func ParseJobTrigger(str string) (JobTrigger, error) {
	switch JobTrigger(str) {
	case JobTriggerCreate, JobTriggerRefresh, JobTriggerNightly:
		return JobTrigger(str), nil
	default:
		return "", fmt.Errorf("invalid job trigger: %s", str)
	}
}

// IsRetryable reports whether a failed job may be claimed again
func (j *ScrapeJob) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.Attempts < MaxAttempts
}

// IsTerminal reports whether the job can no longer change
func (j *ScrapeJob) IsTerminal() bool {
	return j.Status == JobStatusCompleted || (j.Status == JobStatusFailed && j.Attempts >= MaxAttempts)
}

// IsActive reports whether the job is queued, running or waiting for a retry
func (j *ScrapeJob) IsActive() bool {
	return j.Status == JobStatusPending || j.Status == JobStatusRunning || j.IsRetryable()
}

// Validate ensures that the job data is valid
func (j *ScrapeJob) Validate() error {
	if j.GoalID == 0 {
		return fmt.Errorf("goal id cannot be empty")
	}
	if j.Attempts < 0 || j.Attempts > MaxAttempts {
		return fmt.Errorf("attempts must be between 0 and %d, got %d", MaxAttempts, j.Attempts)
	}
	if _, err := ParseJobStatus(string(j.Status)); err != nil {
		return err
	}
	return nil
}

// BeforeCreate is a GORM hook that runs before creating a new job
func (j *ScrapeJob) BeforeCreate(_ *gorm.DB) error {
	if j.Status == "" {
		j.Status = JobStatusPending
	}
	if j.Trigger == "" {
		j.Trigger = JobTriggerRefresh
	}
	return j.Validate()
}
