package models

import (
	internalmodels "github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
)

// ScrapeJob is a unit of work to acquire candidates for one goal (public alias)
type ScrapeJob = internalmodels.ScrapeJob

// JobStatus is the state of a scrape job (public alias)
type JobStatus = internalmodels.JobStatus

// Job statuses (public aliases)
const (
	JobStatusPending   = internalmodels.JobStatusPending
	JobStatusRunning   = internalmodels.JobStatusRunning
	JobStatusCompleted = internalmodels.JobStatusCompleted
	JobStatusFailed    = internalmodels.JobStatusFailed
)

// JobTrigger records why a job was created (public alias)
type JobTrigger = internalmodels.JobTrigger

// Job triggers (public aliases)
const (
	JobTriggerCreate  = internalmodels.JobTriggerCreate
	JobTriggerRefresh = internalmodels.JobTriggerRefresh
	JobTriggerNightly = internalmodels.JobTriggerNightly
)

// MaxAttempts is the hard cap on attempts for a single job
const MaxAttempts = internalmodels.MaxAttempts

// ParseJobStatus converts a string to a JobStatus
func ParseJobStatus(str string) (JobStatus, error) {
	return internalmodels.ParseJobStatus(str)
}

// ParseJobTrigger converts a string to a JobTrigger
func ParseJobTrigger(str string) (JobTrigger, error) {
	return internalmodels.ParseJobTrigger(str)
}
