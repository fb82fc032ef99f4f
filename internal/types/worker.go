package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
)

// WorkerTokenHeader carries the shared secret on worker protocol requests
const WorkerTokenHeader = "X-Worker-Token"

// CallbackStatus is the outcome a worker reports for a job
type CallbackStatus string

// Callback statuses
const (
	CallbackSuccess CallbackStatus = "success"
	CallbackError   CallbackStatus = "error"
)

// PollRequest is the optional body of a poll call
type PollRequest struct {
	WorkerID string `json:"workerId,omitempty"`
}

// PollJob is the work handed to a polling worker
type PollJob struct {
	ID              uint                  `json:"id"`
	GoalID          uint                  `json:"goalId"`
	SearchTerm      string                `json:"searchTerm"`
	RetailerFilters *vehicle.FilterBundle `json:"retailerFilters"`
	Category        models.Category       `json:"category"`
	Attempts        int                   `json:"attempts"`
}

// PollResponse is the response of a poll call; Job is null when the queue is empty
type PollResponse struct {
	Job *PollJob `json:"job"`
}

// DispatchRequest is pushed to a worker in push mode
type DispatchRequest struct {
	JobID           uint                  `json:"jobId"`
	Query           string                `json:"query"`
	RetailerFilters *vehicle.FilterBundle `json:"retailerFilters"`
}

// CallbackRequest reports the outcome of a job
type CallbackRequest struct {
	JobID    uint             `json:"jobId"`
	WorkerID string           `json:"workerId,omitempty"`
	Scraper  string           `json:"scraper"`
	Status   CallbackStatus   `json:"status"`
	Error    string           `json:"error,omitempty"`
	Data     []models.Listing `json:"data"`
}

// UnmarshalJSON rejects callbacks whose jobId is not a positive integer
func (r *CallbackRequest) UnmarshalJSON(data []byte) error {
	type plain CallbackRequest
	var raw struct {
		plain
		JobID json.RawMessage `json:"jobId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var id uint
	dec := json.NewDecoder(bytes.NewReader(raw.JobID))
	if len(raw.JobID) == 0 || dec.Decode(&id) != nil {
		return fmt.Errorf("invalid jobId: %s", string(raw.JobID))
	}
	*r = CallbackRequest(raw.plain)
	r.JobID = id
	return nil
}

// Validate checks the callback shape
func (r CallbackRequest) Validate() error {
	if r.JobID == 0 {
		return fmt.Errorf("jobId is required")
	}
	switch r.Status {
	case CallbackSuccess, CallbackError:
	default:
		return fmt.Errorf("invalid status: %q", r.Status)
	}
	return nil
}

// CallbackResponse acknowledges a callback
type CallbackResponse struct {
	Acknowledged bool           `json:"acknowledged"`
	Status       CallbackStatus `json:"status"`
	Error        string         `json:"error,omitempty"`
}
