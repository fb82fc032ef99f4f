// Package types contains PUBLIC aliases for internal request/response structs.
//
// NOTE: This package uses type aliases to internal definitions
// so API clients do not depend on internal packages.
package types

import (
	internaltypes "github.com/keycasey/Neon-Goals-Service-sub000/internal/types"
)

// SlugResponse is the envelope of every non-worker response (public alias)
type SlugResponse = internaltypes.SlugResponse

// Slug is a type alias for internaltypes.Slug.
type Slug = internaltypes.Slug

// Slug constants (public aliases)
const (
	SuccessSlug      Slug = internaltypes.SuccessSlug
	ErrorSlug        Slug = internaltypes.ErrorSlug
	InvalidInputSlug Slug = internaltypes.InvalidInputSlug
	ServerErrorSlug  Slug = internaltypes.ServerErrorSlug
	NotFoundSlug     Slug = internaltypes.NotFoundSlug
	ConflictSlug     Slug = internaltypes.ConflictSlug
)

// PaginationResponse describes one page of a listing (public alias)
type PaginationResponse = internaltypes.PaginationResponse

// JobListResponse is the response of the job list endpoint (public alias)
type JobListResponse = internaltypes.JobListResponse

// GoalSyncResponse is returned when a goal is created or updated (public alias)
type GoalSyncResponse = internaltypes.GoalSyncResponse

// EnqueueResponse is returned when a scrape job is requested (public alias)
type EnqueueResponse = internaltypes.EnqueueResponse

// CompileResponse is the output of the filter compiler endpoint (public alias)
type CompileResponse = internaltypes.CompileResponse
