package handlers

// Common error messages
const (
	ErrMsgInvalidReqBody = "Invalid request body"
	ErrMsgInvalidGoalID  = "Invalid goal id"
	ErrMsgInvalidJobID   = "Invalid job id"
	ErrMsgUnauthorized   = "Invalid worker token"
)

// Goal error messages
const (
	ErrMsgGoalNotFound      = "Goal not found"
	ErrMsgGoalGetFailed     = "Failed to get goal"
	ErrMsgGoalSyncFailed    = "Failed to sync goal"
	ErrMsgCandidateNotFound = "Candidate not found"
	ErrMsgActionFailed      = "Failed to apply candidate action"
	ErrMsgUnknownAction     = "Unknown candidate action"
)

// Job error messages
const (
	ErrMsgJobNotFound      = "Job not found"
	ErrMsgJobGetFailed     = "Failed to get job"
	ErrMsgJobListFailed    = "Failed to list jobs"
	ErrMsgJobCreateFailed  = "Failed to create job"
	ErrMsgJobStatusInvalid = "Invalid job status"
)

// Pagination error messages
const (
	ErrMsgNegativePagination = "Page must be a positive number from 1"
)
