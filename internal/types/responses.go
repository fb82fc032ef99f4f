package types

import (
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
)

// PaginationResponse represents pagination information for list endpoints
// Example: {"total":42,"page":1,"limit":50,"offset":0}
type PaginationResponse struct {
	// Total number of items available across all pages
	Total int `json:"total"`

	// Current page number (1-based)
	Page int `json:"page"`

	// Maximum number of items per page
	Limit int `json:"limit"`

	// Number of items skipped from the beginning of the result set
	Offset int `json:"offset"`
}

// ListResponse defines a generic response structure for listing resources
type ListResponse[T any] struct {
	// Array of resource items
	Rows []T `json:"rows"`

	// Pagination information for the result set
	Pagination PaginationResponse `json:"pagination"`
}

// JobListResponse is the response of the job list endpoint
type JobListResponse = ListResponse[models.ScrapeJob]

// GoalSyncResponse is returned when a goal is created or updated
// Example: {"goal":{"id":1,"category":"vehicle"},"created":true,"job":{"id":3,"status":"pending"}}
type GoalSyncResponse struct {
	Goal    *models.Goal      `json:"goal"`
	Created bool              `json:"created"`
	Job     *models.ScrapeJob `json:"job,omitempty"`
}

// EnqueueResponse is returned when a scrape job is requested
type EnqueueResponse struct {
	Job *models.ScrapeJob `json:"job"`
	// Created is false when an active job for the goal already existed
	Created bool `json:"created"`
}

// CompileResponse is the output of the filter compiler endpoint
type CompileResponse struct {
	Retailers map[string]*vehicle.RetailerFilter `json:"retailers"`
}
